// Package redis backs the store contract with Redis. SET NX is the atomic
// insert-if-absent, so get-or-add correctness holds across processes sharing
// one Redis. Items cross the byte boundary as transfer records; expiration
// intent becomes TTLs (absolute deadlines measured from CreatedUTC, sliding
// windows refreshed on every read).
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	regioncache "github.com/unkn0wn-root/regioncache"
	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/internal/keys"
	"github.com/unkn0wn-root/regioncache/transfer"
)

var (
	ErrNilClient = errors.New("redis store: nil client")
	ErrNilCodec  = errors.New("redis store: nil codec")
)

type Store[V any] struct {
	rdb         goredis.UniversalClient
	codec       codec.Codec
	ns          string
	defaultTTL  time.Duration
	closeClient bool
}

var _ regioncache.Store[any] = (*Store[any])(nil)

type Config struct {
	Client goredis.UniversalClient
	Codec  codec.Codec

	// Namespace prefixes every storage key. "" => "rc".
	Namespace string
	// DefaultTTL applies to items deferring to store defaults. 0 => no expiry.
	// It is set once at Add and never refreshed on read; unlike the memory
	// store, defaults-deferring items age absolutely here, not from last
	// access.
	DefaultTTL time.Duration
	// CloseClient set true only if this store exclusively owns the client.
	CloseClient bool
}

func New[V any](cfg Config) (*Store[V], error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Codec == nil {
		return nil, ErrNilCodec
	}

	ns := cfg.Namespace
	if ns == "" {
		ns = "rc"
	}
	transfer.Register[V]()

	return &Store[V]{
		rdb:         cfg.Client,
		codec:       cfg.Codec,
		ns:          ns,
		defaultTTL:  cfg.DefaultTTL,
		closeClient: cfg.CloseClient,
	}, nil
}

func (s *Store[V]) Get(ctx context.Context, key, region string) (*regioncache.Item[V], bool, error) {
	k := keys.Storage(s.ns, region, key)
	b, err := s.rdb.Get(ctx, k).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}

	it, ok, err := transfer.DecodeItem[V](s.codec, b)
	if err != nil {
		_ = s.rdb.Del(ctx, k).Err() // self-heal corrupt
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}

	it.Touch()
	if !it.UsesDefaultExpiration && it.Mode == regioncache.ExpireSliding && it.Timeout > 0 {
		// sliding window restarts on access; PEXPIRE keeps millisecond
		// timeouts exact where EXPIRE would round up to a full second
		_ = s.rdb.PExpire(ctx, k, it.Timeout).Err()
	}
	return it, true, nil
}

func (s *Store[V]) Add(ctx context.Context, item *regioncache.Item[V]) (bool, error) {
	b, err := transfer.EncodeItem(s.codec, item)
	if err != nil {
		return false, err
	}
	ttl, ok := item.RemainingTTL(time.Now().UTC(), s.defaultTTL)
	if !ok {
		ttl = 0 // no expiry
	}
	return s.rdb.SetNX(ctx, keys.Storage(s.ns, item.Region, item.Key), b, ttl).Result()
}

func (s *Store[V]) Del(ctx context.Context, key, region string) (bool, error) {
	n, err := s.rdb.Del(ctx, keys.Storage(s.ns, region, key)).Result()
	return n > 0, err
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store[V]) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
