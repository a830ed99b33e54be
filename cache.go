package regioncache

import (
	"context"
	"fmt"
	"strings"
)

const defaultMaxRetries = 50

type cache[V any] struct {
	store       Store[V]
	log         Logger
	hooks       Hooks
	maxAttempts int
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("regioncache: store is required")
	}

	c := &cache[V]{store: opts.Store}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	retries := opts.MaxRetries
	switch {
	case retries == 0:
		retries = defaultMaxRetries
	case retries < 0:
		retries = 0
	}
	c.maxAttempts = retries + 1

	return c, nil
}

func (c *cache[V]) Get(ctx context.Context, key, region string) (V, bool, error) {
	var zero V
	it, ok, err := c.GetItem(ctx, key, region)
	if err != nil || !ok {
		return zero, false, err
	}
	return it.Value, true, nil
}

func (c *cache[V]) GetItem(ctx context.Context, key, region string) (*Item[V], bool, error) {
	if err := checkArgs(key, region); err != nil {
		return nil, false, err
	}
	return c.store.Get(ctx, key, region)
}

func (c *cache[V]) GetOrAdd(ctx context.Context, key, region string, factory ValueFactory[V]) (V, error) {
	var zero V
	if factory == nil {
		return zero, ErrNilFactory
	}
	it, err := c.GetOrAddItem(ctx, key, region, itemFactory(factory))
	if err != nil {
		return zero, err
	}
	return it.Value, nil
}

func (c *cache[V]) TryGetOrAdd(ctx context.Context, key, region string, factory ValueFactory[V]) (V, bool, error) {
	var zero V
	if factory == nil {
		return zero, false, ErrNilFactory
	}
	it, ok, err := c.TryGetOrAddItem(ctx, key, region, itemFactory(factory))
	if err != nil || !ok {
		return zero, false, err
	}
	return it.Value, true, nil
}

func (c *cache[V]) GetOrAddItem(ctx context.Context, key, region string, factory ItemFactory[V]) (*Item[V], error) {
	it, _, err := c.getOrAddItem(ctx, key, region, factory, true)
	return it, err
}

func (c *cache[V]) TryGetOrAddItem(ctx context.Context, key, region string, factory ItemFactory[V]) (*Item[V], bool, error) {
	return c.getOrAddItem(ctx, key, region, factory, false)
}

// getOrAddItem is the bounded get-or-add loop shared by all four variants.
// raising selects the failure signaling: a declined factory and retry
// exhaustion become errors instead of ok=false.
//
// The candidate is memoized across iterations so the factory runs at most
// once per call, no matter how many insert races are lost. The loop holds no
// lock across the lookup/insert window; correctness rests on Store.Add being
// atomic per key/region.
func (c *cache[V]) getOrAddItem(ctx context.Context, key, region string, factory ItemFactory[V], raising bool) (*Item[V], bool, error) {
	if err := checkArgs(key, region); err != nil {
		return nil, false, err
	}
	if factory == nil {
		return nil, false, ErrNilFactory
	}

	var candidate *Item[V]
	invoked := false

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		it, ok, err := c.store.Get(ctx, key, region)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return it, true, nil
		}

		if !invoked {
			candidate, err = factory(ctx, key, region)
			if err != nil {
				return nil, false, err
			}
			invoked = true
			if candidate != nil && (candidate.Key != key || candidate.Region != region) {
				// A mismatched item would be stored where this loop never
				// looks and spin to exhaustion.
				return nil, false, &KeyMismatchError{
					WantKey: key, WantRegion: region,
					GotKey: candidate.Key, GotRegion: candidate.Region,
				}
			}
		}

		if candidate == nil {
			c.hooks.FactoryDeclined(key, region)
			if !raising {
				return nil, false, nil
			}
			return nil, false, &FactoryDeclinedError{Key: key, Region: region}
		}

		won, err := c.store.Add(ctx, candidate)
		if err != nil {
			return nil, false, err
		}
		if won {
			return candidate, true, nil
		}

		// Another writer inserted between our lookup and Add; refetch.
		c.hooks.AddRaceLost(key, region, attempt)
		c.log.Debug("add race lost; refetching", Fields{"key": key, "region": region, "attempt": attempt})
	}

	c.hooks.RetryExhausted(key, region, c.maxAttempts)
	if !raising {
		return nil, false, nil
	}
	return nil, false, &RetryExhaustedError{Key: key, Region: region, Attempts: c.maxAttempts}
}

func (c *cache[V]) Remove(ctx context.Context, key, region string) (bool, error) {
	if err := checkArgs(key, region); err != nil {
		return false, err
	}
	return c.store.Del(ctx, key, region)
}

func (c *cache[V]) Close(ctx context.Context) error {
	if c.store != nil {
		return c.store.Close(ctx)
	}
	return nil
}

// itemFactory lifts a value factory into an item factory. The produced item
// defers to the store's expiration defaults; value factories cannot decline.
func itemFactory[V any](f ValueFactory[V]) ItemFactory[V] {
	return func(ctx context.Context, key, region string) (*Item[V], error) {
		v, err := f(ctx, key, region)
		if err != nil {
			return nil, err
		}
		return NewItemIn(key, region, v), nil
	}
}

// checkArgs rejects invalid input before any store interaction.
func checkArgs(key, region string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if region != "" && strings.TrimSpace(region) == "" {
		return ErrInvalidRegion
	}
	return nil
}
