package regioncache

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKey    = errors.New("regioncache: key must be non-empty")
	ErrInvalidRegion = errors.New("regioncache: region must not be blank")
	ErrNilFactory    = errors.New("regioncache: factory is required")
)

// FactoryDeclinedError reports that a raising get-or-add variant asked for an
// unconditional create and the item factory returned nil. The try variants
// treat the same outcome as a plain not-found.
type FactoryDeclinedError struct {
	Key    string
	Region string
}

func (e *FactoryDeclinedError) Error() string {
	if e.Region != "" {
		return fmt.Sprintf("regioncache: factory declined to produce an item for %q in region %q", e.Key, e.Region)
	}
	return fmt.Sprintf("regioncache: factory declined to produce an item for %q", e.Key)
}

// RetryExhaustedError reports that every bounded attempt lost the insert race
// without ever observing the key. Raise Options.MaxRetries if contention on
// single keys is expected to be this high.
type RetryExhaustedError struct {
	Key      string
	Region   string
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	if e.Region != "" {
		return fmt.Sprintf("regioncache: could not get nor add item %q in region %q after %d attempts", e.Key, e.Region, e.Attempts)
	}
	return fmt.Sprintf("regioncache: could not get nor add item %q after %d attempts", e.Key, e.Attempts)
}

// KeyMismatchError reports a factory that returned an item keyed differently
// than the call that invoked it.
type KeyMismatchError struct {
	WantKey    string
	WantRegion string
	GotKey     string
	GotRegion  string
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("regioncache: factory item keyed %q/%q does not match requested %q/%q",
		e.GotKey, e.GotRegion, e.WantKey, e.WantRegion)
}
