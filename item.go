package regioncache

import "time"

// ExpirationMode selects how an item's lifetime is interpreted.
type ExpirationMode uint8

const (
	// ExpireDefault defers to the backing store's default policy.
	ExpireDefault ExpirationMode = iota
	// ExpireNone never expires, explicitly.
	ExpireNone
	// ExpireSliding expires Timeout after the last access.
	ExpireSliding
	// ExpireAbsolute expires Timeout after CreatedUTC.
	ExpireAbsolute
)

func (m ExpirationMode) String() string {
	switch m {
	case ExpireDefault:
		return "default"
	case ExpireNone:
		return "none"
	case ExpireSliding:
		return "sliding"
	case ExpireAbsolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// Item is the unit of storage: a typed value plus metadata.
// Mutable only for LastAccessedUTC and expiration policy. Stores that share
// entries across callers must synchronize access bookkeeping or hand out
// copies; Item itself carries no lock.
type Item[V any] struct {
	Key    string
	Region string // "" => unscoped
	Value  V

	Mode    ExpirationMode
	Timeout time.Duration

	// UsesDefaultExpiration makes the store's default policy authoritative;
	// Mode and Timeout are then informational only.
	UsesDefaultExpiration bool

	CreatedUTC      time.Time
	LastAccessedUTC time.Time
}

// NewItem builds an unscoped item deferring to store expiration defaults.
func NewItem[V any](key string, value V) *Item[V] {
	return NewItemIn(key, "", value)
}

// NewItemIn builds an item in the given region deferring to store
// expiration defaults. CreatedUTC is set once here and survives
// serialization round trips unchanged.
func NewItemIn[V any](key, region string, value V) *Item[V] {
	now := time.Now().UTC()
	return &Item[V]{
		Key:                   key,
		Region:                region,
		Value:                 value,
		Mode:                  ExpireDefault,
		UsesDefaultExpiration: true,
		CreatedUTC:            now,
		LastAccessedUTC:       now,
	}
}

// WithExpiration returns a copy with an explicit expiration policy.
func (it *Item[V]) WithExpiration(mode ExpirationMode, timeout time.Duration) *Item[V] {
	cp := *it
	cp.Mode = mode
	cp.Timeout = timeout
	cp.UsesDefaultExpiration = false
	return &cp
}

// WithDefaultExpiration returns a copy that defers to the store's defaults.
func (it *Item[V]) WithDefaultExpiration() *Item[V] {
	cp := *it
	cp.Mode = ExpireDefault
	cp.Timeout = 0
	cp.UsesDefaultExpiration = true
	return &cp
}

// Touch records an access.
func (it *Item[V]) Touch() {
	it.LastAccessedUTC = time.Now().UTC()
}

// RemainingTTL translates the item's expiration intent into a TTL a
// duration-based backend can enforce, relative to now. storeDefault is the
// store's own default policy, applied when the item defers to defaults
// (<= 0 means the store has none). Absolute timeouts are measured from
// CreatedUTC, so the deadline is derivable from round-tripped fields alone;
// an already-passed deadline is clamped to 1ms rather than reported as
// never-expiring. ok=false means no TTL applies.
func (it *Item[V]) RemainingTTL(now time.Time, storeDefault time.Duration) (ttl time.Duration, ok bool) {
	if it.UsesDefaultExpiration || it.Mode == ExpireDefault {
		if storeDefault <= 0 {
			return 0, false
		}
		return storeDefault, true
	}
	switch it.Mode {
	case ExpireSliding:
		if it.Timeout <= 0 {
			return 0, false
		}
		return it.Timeout, true
	case ExpireAbsolute:
		if it.Timeout <= 0 {
			return 0, false
		}
		rem := it.CreatedUTC.Add(it.Timeout).Sub(now)
		if rem < time.Millisecond {
			rem = time.Millisecond
		}
		return rem, true
	default: // ExpireNone
		return 0, false
	}
}
