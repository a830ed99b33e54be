package wire

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func mustDecode(t *testing.T, b []byte) (string, []byte) {
	t.Helper()
	name, p, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return name, p
}

func TestRoundTripEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		typeName string
		payload  []byte
	}{
		{"main.user", nil},
		{"string", []byte("hello")},
		{"github.com/acme/app.Order", []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc, err := Encode(tc.typeName, tc.payload)
		if err != nil {
			t.Fatalf("Encode error: %v", err)
		}
		name, p := mustDecode(t, enc)
		if name != tc.typeName {
			t.Fatalf("typeName mismatch: got %q want %q", name, tc.typeName)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc, err := Encode("t", []byte("x"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestTypeNameLengthValidation(t *testing.T) {
	// empty type name -> error
	if _, err := Encode("", []byte("x")); err == nil {
		t.Fatalf("expected error on empty type name")
	}
	// too long (65536) -> error
	if _, err := Encode(strings.Repeat("a", 0x10000), nil); err == nil {
		t.Fatalf("expected error on type name length > 0xFFFF")
	}
	// boundary (65535) -> ok
	if _, err := Encode(strings.Repeat("b", 0xFFFF), nil); err != nil {
		t.Fatalf("boundary type name length should succeed: %v", err)
	}
}

func TestCorruptHeadersAndLengths(t *testing.T) {
	enc, err := Encode("t", []byte("abc"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// tlen beyond buffer
	badTlen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint16(badTlen[5:7], 9)
	if _, _, err := Decode(badTlen); err == nil {
		t.Fatalf("expected error on tlen beyond buffer")
	}

	// vlen too large (announce more than available)
	// layout: 4 magic + 1 ver + 2 tlen + 1 name = offset 8 for vlen
	badVlen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(badVlen[8:12], uint32(len("abc")+1))
	if _, _, err := Decode(badVlen); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	// truncated buffer
	trunc := enc[:len(enc)-1]
	if _, _, err := Decode(trunc); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
}

func TestZeroCopyPayload(t *testing.T) {
	enc, err := Encode("t", []byte("Z"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, p := mustDecode(t, enc)
	if len(p) != 1 {
		t.Fatalf("unexpected payload len")
	}
	// mutate payload slice. should mutate underlying enc bytes (zero-copy)
	p[0] = 'Q'
	_, p2 := mustDecode(t, enc)
	if p2[0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}
