package regioncache

import "context"

// Store is the backing-store contract the get-or-add engine runs against.
// Implementations must be safe for concurrent use. The engine's correctness
// rests entirely on Add's atomicity; it adds no locking of its own.
//
// The keyspace is partitioned by region; region "" is the unscoped namespace,
// distinct from every named region.
type Store[V any] interface {
	// Get returns (item, true, nil) on hit; (nil, false, nil) on miss.
	// A point read with no side effects beyond access bookkeeping.
	Get(ctx context.Context, key, region string) (*Item[V], bool, error)

	// Add inserts item iff no entry exists for its key/region. Must be
	// atomic w.r.t. concurrent Adds of the same key/region: of N racing
	// calls exactly one returns true; the rest return false with the
	// existing entry untouched.
	Add(ctx context.Context, item *Item[V]) (bool, error)

	// Del removes a key; reports whether an entry was present.
	Del(ctx context.Context, key, region string) (bool, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
