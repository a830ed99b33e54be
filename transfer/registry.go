package transfer

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/internal/wire"
)

// The registry maps a runtime type identifier to the encode/decode pair for
// that type's record instantiation. It replaces open-generic reflection:
// Go cannot materialize record[T] for a T discovered at runtime, so every
// concrete type that crosses a broad-declared-type boundary needs an entry.
//
// Population is either explicit (Register at startup) or lazy: the concrete
// fast paths of EncodeItem/DecodeItem register their type on first
// encounter, and the typed store constructors register their value type.

type entry struct {
	encode func(c codec.Codec, m meta, v any) ([]byte, error)
	decode func(c codec.Codec, payload []byte, wantName string) (meta, any, error)
}

var (
	regMu  sync.RWMutex
	byName = map[string]entry{}
)

// Register makes T's record instantiation available to the
// broad-declared-type paths of EncodeItem and DecodeItem, keyed by T's
// derived type identifier. Idempotent and safe for concurrent use. A no-op
// for interface types: there is nothing concrete to instantiate.
func Register[T any]() {
	RegisterName[T](typeNameOf(reflect.TypeFor[T]()))
}

// RegisterName is Register with an explicit identifier, for when the derived
// one is ambiguous across packages. The identifier travels on the wire, so
// every process decoding these records must register the same name.
func RegisterName[T any](name string) {
	if reflect.TypeFor[T]().Kind() == reflect.Interface {
		return
	}

	e := entry{
		encode: func(c codec.Codec, m meta, v any) ([]byte, error) {
			tv, ok := v.(T)
			if !ok {
				return nil, fmt.Errorf("transfer: value of type %T does not match registered type %q", v, name)
			}
			return c.Marshal(recordOf[T](m, tv))
		},
		decode: func(c codec.Codec, payload []byte, wantName string) (meta, any, error) {
			var r record[T]
			if err := c.Unmarshal(payload, &r); err != nil {
				return meta{}, nil, err
			}
			if r.ValueType != wantName {
				return meta{}, nil, wire.ErrCorrupt
			}
			return metaFromRecord(r), r.Value, nil
		},
	}

	regMu.Lock()
	byName[name] = e
	regMu.Unlock()
}

func lookup(name string) (entry, bool) {
	regMu.RLock()
	e, ok := byName[name]
	regMu.RUnlock()
	return e, ok
}

func ensureRegistered[T any](name string) {
	if _, ok := lookup(name); !ok {
		RegisterName[T](name)
	}
}
