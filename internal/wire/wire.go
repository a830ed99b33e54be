package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("regioncache: corrupt envelope")
	magic4     = [...]byte{'R', 'G', 'N', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Envelope: magic(4) | ver(1) | tlen(u16 be) | typeName(tlen) | vlen(u32 be) | payload(vlen)
//
// The value-type identifier travels outside the codec payload so decoders can
// select the record instantiation without decoding the payload first.
func Encode(typeName string, payload []byte) ([]byte, error) {
	if l := len(typeName); l == 0 || l > 0xFFFF {
		return nil, ErrCorrupt
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 2 + len(typeName) + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint16(u2[:], uint16(len(typeName)))
	buf.Write(u2[:])
	buf.WriteString(typeName)

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)

	return buf.Bytes(), nil
}

// Decode returns the type identifier and payload. The payload slice aliases b
// (zero-copy); callers must not mutate it if b is shared. Trailing bytes are
// rejected as corruption.
func Decode(b []byte) (typeName string, payload []byte, err error) {
	const hdr = 4 + 1 + 2
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return "", nil, ErrCorrupt
	}

	off := 5

	tlen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if tlen <= 0 || tlen > len(b)-off {
		return "", nil, ErrCorrupt
	}
	typeName = string(b[off : off+tlen])
	off += tlen

	if off+4 > len(b) {
		return "", nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen > len(b)-off {
		return "", nil, ErrCorrupt
	}
	if off+vlen != len(b) {
		return "", nil, ErrCorrupt
	}

	return typeName, b[off : off+vlen], nil
}
