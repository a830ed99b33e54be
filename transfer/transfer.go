// Package transfer converts cache items to wire-safe transfer records and
// back across a pluggable codec, preserving type identity, expiration
// metadata, and entry age exactly.
//
// A record instantiation exists per concrete value type; instantiations are
// structurally identical and differ only in the Value field type. When an
// item's declared type matches its runtime value type, EncodeItem and
// DecodeItem use that instantiation directly. When values are stored under a
// broader declared type (typically `any`), the concrete instantiation is
// selected through a registry keyed by the runtime type identifier, so a
// round trip through an any-declared cache never erases the concrete type.
//
// Timestamps travel as UTC UnixNano integers: every codec round-trips them
// bit-exactly, so entry age survives out-of-process stores.
package transfer

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	regioncache "github.com/unkn0wn-root/regioncache"
	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/internal/wire"
)

var (
	ErrNilCodec = errors.New("transfer: codec is required")
	ErrNilItem  = errors.New("transfer: item is required")
)

// UnregisteredTypeError reports a broad-declared-type encode or decode whose
// concrete value type has no registered record instantiation.
type UnregisteredTypeError struct {
	Name string
}

func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("transfer: no record instantiation registered for value type %q; call transfer.Register for the concrete type", e.Name)
}

// record is the wire-safe shadow of an Item.
type record[V any] struct {
	Key                   string `json:"key" cbor:"key" msgpack:"key"`
	Region                string `json:"region,omitempty" cbor:"region,omitempty" msgpack:"region,omitempty"`
	Value                 V      `json:"value" cbor:"value" msgpack:"value"`
	ValueType             string `json:"valueType" cbor:"valueType" msgpack:"valueType"`
	Mode                  uint8  `json:"mode" cbor:"mode" msgpack:"mode"`
	TimeoutNanos          int64  `json:"timeoutNanos,omitempty" cbor:"timeoutNanos,omitempty" msgpack:"timeoutNanos,omitempty"`
	UsesDefaultExpiration bool   `json:"usesDefaultExpiration" cbor:"usesDefaultExpiration" msgpack:"usesDefaultExpiration"`
	CreatedNanos          int64  `json:"createdNanos" cbor:"createdNanos" msgpack:"createdNanos"`
	LastAccessedNanos     int64  `json:"lastAccessedNanos" cbor:"lastAccessedNanos" msgpack:"lastAccessedNanos"`
}

// meta carries everything but the value between an item and a record, so the
// registry's per-type closures stay small.
type meta struct {
	Key               string
	Region            string
	ValueType         string
	Mode              uint8
	TimeoutNanos      int64
	UsesDefault       bool
	CreatedNanos      int64
	LastAccessedNanos int64
}

func metaOf[V any](it *regioncache.Item[V], valueType string) meta {
	return meta{
		Key:               it.Key,
		Region:            it.Region,
		ValueType:         valueType,
		Mode:              uint8(it.Mode),
		TimeoutNanos:      int64(it.Timeout),
		UsesDefault:       it.UsesDefaultExpiration,
		CreatedNanos:      it.CreatedUTC.UnixNano(),
		LastAccessedNanos: it.LastAccessedUTC.UnixNano(),
	}
}

func recordOf[T any](m meta, v T) record[T] {
	return record[T]{
		Key:                   m.Key,
		Region:                m.Region,
		Value:                 v,
		ValueType:             m.ValueType,
		Mode:                  m.Mode,
		TimeoutNanos:          m.TimeoutNanos,
		UsesDefaultExpiration: m.UsesDefault,
		CreatedNanos:          m.CreatedNanos,
		LastAccessedNanos:     m.LastAccessedNanos,
	}
}

func metaFromRecord[T any](r record[T]) meta {
	return meta{
		Key:               r.Key,
		Region:            r.Region,
		ValueType:         r.ValueType,
		Mode:              r.Mode,
		TimeoutNanos:      r.TimeoutNanos,
		UsesDefault:       r.UsesDefaultExpiration,
		CreatedNanos:      r.CreatedNanos,
		LastAccessedNanos: r.LastAccessedNanos,
	}
}

// itemFrom restores an item verbatim: timestamps come back as the stored
// instants (never reset to "now") and expiration fields are restored even
// when the defaults flag makes them informational; the flag takes priority
// only at enforcement time.
func itemFrom[V any](m meta, v V) *regioncache.Item[V] {
	return &regioncache.Item[V]{
		Key:                   m.Key,
		Region:                m.Region,
		Value:                 v,
		Mode:                  regioncache.ExpirationMode(m.Mode),
		Timeout:               time.Duration(m.TimeoutNanos),
		UsesDefaultExpiration: m.UsesDefault,
		CreatedUTC:            time.Unix(0, m.CreatedNanos).UTC(),
		LastAccessedUTC:       time.Unix(0, m.LastAccessedNanos).UTC(),
	}
}

// typeNameOf derives the identifier stored on the wire for t. Named types
// are package-path qualified; unnamed and composite types fall back to
// reflect's syntax ("*main.user", "[]int", "interface {}"). Use RegisterName
// when two packages collide on an identifier.
func typeNameOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// EncodeItem builds the transfer record for the item's runtime value type,
// encodes it with c, and frames the result with the type identifier.
//
// Fast path: the declared type V is concrete and matches the runtime type,
// so record[V] is used directly. Otherwise the value is stored under a
// broader declared type and the registered instantiation for the runtime
// type is used, so decoding can reconstruct the concrete value.
func EncodeItem[V any](c codec.Codec, it *regioncache.Item[V]) ([]byte, error) {
	if c == nil {
		return nil, ErrNilCodec
	}
	if it == nil {
		return nil, ErrNilItem
	}

	declared := reflect.TypeFor[V]()
	rt := reflect.TypeOf(any(it.Value))
	if rt == nil {
		// nil interface value; only the declared type identifies it
		rt = declared
	}
	name := typeNameOf(rt)
	m := metaOf(it, name)

	if rt == declared {
		if declared.Kind() != reflect.Interface {
			ensureRegistered[V](name)
		}
		payload, err := c.Marshal(recordOf[V](m, it.Value))
		if err != nil {
			return nil, err
		}
		return wire.Encode(name, payload)
	}

	ent, ok := lookup(name)
	if !ok {
		return nil, &UnregisteredTypeError{Name: name}
	}
	payload, err := ent.encode(c, m, it.Value)
	if err != nil {
		return nil, err
	}
	return wire.Encode(name, payload)
}

// DecodeItem decodes bytes produced by EncodeItem into an Item[V].
// ok=false with a nil error means decoding yielded no record (empty input);
// corrupt framing or codec failures are errors.
//
// When the stored type identifier matches the declared type V, record[V] is
// decoded directly. Otherwise V is broader than the stored type (typically
// `any`) and the registered instantiation for the stored identifier
// reconstructs the concrete value.
func DecodeItem[V any](c codec.Codec, b []byte) (*regioncache.Item[V], bool, error) {
	if c == nil {
		return nil, false, ErrNilCodec
	}
	if len(b) == 0 {
		return nil, false, nil
	}

	name, payload, err := wire.Decode(b)
	if err != nil {
		return nil, false, err
	}

	declared := reflect.TypeFor[V]()
	if name == typeNameOf(declared) {
		var r record[V]
		if err := c.Unmarshal(payload, &r); err != nil {
			return nil, false, err
		}
		if r.ValueType != name {
			return nil, false, wire.ErrCorrupt
		}
		if declared.Kind() != reflect.Interface {
			ensureRegistered[V](name)
		}
		return itemFrom[V](metaFromRecord(r), r.Value), true, nil
	}

	ent, ok := lookup(name)
	if !ok {
		return nil, false, &UnregisteredTypeError{Name: name}
	}
	m, v, err := ent.decode(c, payload, name)
	if err != nil {
		return nil, false, err
	}
	val, assignable := v.(V)
	if !assignable {
		return nil, false, fmt.Errorf("transfer: stored value type %q is not assignable to declared type %s", name, declared)
	}
	return itemFrom[V](m, val), true, nil
}
