package regioncache

import "context"

// ValueFactory produces the payload for a missing key. It runs at most once
// per get-or-add call, however many insert attempts that call makes.
type ValueFactory[V any] func(ctx context.Context, key, region string) (V, error)

// ItemFactory produces a fully configured item for a missing key (explicit
// expiration, region, etc.). Returning (nil, nil) declines creation: the try
// variants report not-found, the raising variants fail with
// FactoryDeclinedError. Like ValueFactory it runs at most once per call.
type ItemFactory[V any] func(ctx context.Context, key, region string) (*Item[V], error)

// Cache is the high-level, store-agnostic cache API.
// Region "" addresses the unscoped namespace in every method.
type Cache[V any] interface {
	// Point reads. No factory is ever invoked.
	Get(ctx context.Context, key, region string) (v V, ok bool, err error)
	GetItem(ctx context.Context, key, region string) (it *Item[V], ok bool, err error)

	// Get-or-add. The raising variants treat a declined factory and retry
	// exhaustion as errors; the try variants report ok=false instead.
	// Invalid input errors in every variant.
	GetOrAdd(ctx context.Context, key, region string, factory ValueFactory[V]) (V, error)
	TryGetOrAdd(ctx context.Context, key, region string, factory ValueFactory[V]) (v V, ok bool, err error)
	GetOrAddItem(ctx context.Context, key, region string, factory ItemFactory[V]) (*Item[V], error)
	TryGetOrAddItem(ctx context.Context, key, region string, factory ItemFactory[V]) (it *Item[V], ok bool, err error)

	// Remove deletes an entry; reports whether one was present.
	Remove(ctx context.Context, key, region string) (bool, error)
	Close(ctx context.Context) error
}

// Options tune the cache. Only Store is required.
type Options[V any] struct {
	// Required
	Store Store[V]

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// MaxRetries bounds the extra insert attempts after the first when
	// concurrent writers keep winning the key; attempts = MaxRetries + 1.
	// 0 => default (50). Negative => a single attempt, which fails on any
	// insert race. Keep the ceiling comfortably above the expected
	// concurrent-writer count.
	MaxRetries int
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
