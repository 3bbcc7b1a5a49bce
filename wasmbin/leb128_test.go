package wasmbin

import (
	"bytes"
	"testing"
)

func TestULEB128_RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 255, 624485, 0xFFFFFFFF}
	for _, v := range values {
		enc := AppendULEB128(nil, v)
		got, err := ReadULEB128(bytes.NewReader(enc))
		if err != nil {
			t.Fatalf("ReadULEB128(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestULEB128_KnownEncoding(t *testing.T) {
	// 624485 encodes as E5 8E 26 (canonical LEB128 example).
	enc := AppendULEB128(nil, 624485)
	want := []byte{0xE5, 0x8E, 0x26}
	if !bytes.Equal(enc, want) {
		t.Errorf("encode 624485 = %x, want %x", enc, want)
	}
}

func TestULEB128_Overflow(t *testing.T) {
	// Six continuation bytes exceed the 32-bit width.
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	if _, err := ReadULEB128(bytes.NewReader(data)); err != ErrOverflow {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}
