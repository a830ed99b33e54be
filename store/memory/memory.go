// Package memory provides the in-process reference implementation of the
// backing-store contract: a locked map whose Add performs check-and-insert
// under one lock, giving the atomic insert-if-absent the get-or-add engine
// requires. Expiration intent is enforced lazily on Get; there is no sweeper.
package memory

import (
	"context"
	"sync"
	"time"

	regioncache "github.com/unkn0wn-root/regioncache"
)

type storeKey struct {
	region string
	key    string
}

type Store[V any] struct {
	mu         sync.RWMutex
	items      map[storeKey]*regioncache.Item[V]
	defaultTTL time.Duration
}

var _ regioncache.Store[any] = (*Store[any])(nil)

type Config struct {
	// DefaultTTL applies to items that defer to store defaults, sliding
	// from last access. <= 0 => such items never expire.
	DefaultTTL time.Duration
}

func New[V any](cfg Config) *Store[V] {
	return &Store[V]{
		items:      make(map[storeKey]*regioncache.Item[V]),
		defaultTTL: cfg.DefaultTTL,
	}
}

// Get returns a copy of the stored item. Access bookkeeping happens under the
// store lock; the store's own entry is never exposed to callers, so concurrent
// Gets of one key cannot race on its timestamps.
func (s *Store[V]) Get(_ context.Context, key, region string) (*regioncache.Item[V], bool, error) {
	k := storeKey{region: region, key: key}
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[k]
	if !ok {
		return nil, false, nil
	}
	if s.expired(it, now) {
		delete(s.items, k)
		return nil, false, nil
	}
	it.LastAccessedUTC = now
	cp := *it
	return &cp, true, nil
}

func (s *Store[V]) Add(_ context.Context, item *regioncache.Item[V]) (bool, error) {
	k := storeKey{region: item.Region, key: item.Key}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.items[k]; ok && !s.expired(cur, time.Now().UTC()) {
		return false, nil
	}
	// store a copy; the caller keeps its pointer and must not be able to
	// mutate the entry out from under the lock
	cp := *item
	s.items[k] = &cp
	return true, nil
}

func (s *Store[V]) Del(_ context.Context, key, region string) (bool, error) {
	k := storeKey{region: region, key: key}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[k]
	delete(s.items, k)
	return ok, nil
}

func (s *Store[V]) Close(context.Context) error {
	s.mu.Lock()
	s.items = make(map[storeKey]*regioncache.Item[V])
	s.mu.Unlock()
	return nil
}

// Len reports live entries, including expired ones not yet swept by a Get.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[V]) expired(it *regioncache.Item[V], now time.Time) bool {
	mode, timeout := it.Mode, it.Timeout
	if it.UsesDefaultExpiration || mode == regioncache.ExpireDefault {
		if s.defaultTTL <= 0 {
			return false
		}
		mode, timeout = regioncache.ExpireSliding, s.defaultTTL
	}
	switch mode {
	case regioncache.ExpireSliding:
		return timeout > 0 && now.Sub(it.LastAccessedUTC) >= timeout
	case regioncache.ExpireAbsolute:
		return timeout > 0 && now.Sub(it.CreatedUTC) >= timeout
	default:
		return false
	}
}
