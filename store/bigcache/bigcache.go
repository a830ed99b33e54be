// Package bigcache backs the store contract with allegro/bigcache, keeping
// encoded transfer records so items cross a full serialization boundary even
// in-process. BigCache offers no conditional insert, so Add wraps the
// lookup+set pair in a store-wide mutex; atomicity is per-process only.
package bigcache

import (
	"context"
	"errors"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	regioncache "github.com/unkn0wn-root/regioncache"
	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/internal/keys"
	"github.com/unkn0wn-root/regioncache/transfer"
)

var ErrNilCodec = errors.New("bigcache store: codec is required")

type Store[V any] struct {
	mu    sync.Mutex
	c     *bc.BigCache
	codec codec.Codec
	ns    string
}

var _ regioncache.Store[any] = (*Store[any])(nil)

type Config struct {
	// LifeWindow is BigCache's global TTL. Per-entry expiration intent
	// cannot be enforced here; it is carried as metadata only.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited

	Codec codec.Codec // required
	// Namespace prefixes every storage key. "" => "rc".
	Namespace string
}

func New[V any](ctx context.Context, cfg Config) (*Store[V], error) {
	if cfg.Codec == nil {
		return nil, ErrNilCodec
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}

	ns := cfg.Namespace
	if ns == "" {
		ns = "rc"
	}
	transfer.Register[V]()

	return &Store[V]{c: c, codec: cfg.Codec, ns: ns}, nil
}

func (s *Store[V]) Get(_ context.Context, key, region string) (*regioncache.Item[V], bool, error) {
	k := keys.Storage(s.ns, region, key)
	b, err := s.c.Get(k)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	it, ok, err := transfer.DecodeItem[V](s.codec, b)
	if err != nil {
		_ = s.c.Delete(k) // self-heal corrupt
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	it.Touch()
	return it, true, nil
}

func (s *Store[V]) Add(_ context.Context, item *regioncache.Item[V]) (bool, error) {
	b, err := transfer.EncodeItem(s.codec, item)
	if err != nil {
		return false, err
	}
	k := keys.Storage(s.ns, item.Region, item.Key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.c.Get(k); err == nil {
		return false, nil
	} else if !errors.Is(err, bc.ErrEntryNotFound) {
		return false, err
	}
	if err := s.c.Set(k, b); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store[V]) Del(_ context.Context, key, region string) (bool, error) {
	err := s.c.Delete(keys.Storage(s.ns, region, key))
	if errors.Is(err, bc.ErrEntryNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store[V]) Close(_ context.Context) error {
	return s.c.Close()
}
