package types

import (
	"bytes"
	"math/big"
	"testing"
)

func TestDecodeHexTolerant(t *testing.T) {
	cases := []struct {
		in   string
		want []byte
	}{
		{"deadbeef", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"0xdeadbeef", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"", []byte{}},
	}
	for _, c := range cases {
		got, err := DecodeHex(c.in)
		if err != nil {
			t.Fatalf("DecodeHex(%q): %v", c.in, err)
		}
		if !bytes.Equal(got, c.want) {
			t.Errorf("DecodeHex(%q) = %x, want %x", c.in, got, c.want)
		}
	}
}

func TestDecodeHexRejectsOddLength(t *testing.T) {
	if _, err := DecodeHex("abc"); err == nil {
		t.Fatal("expected error for odd-length hex string")
	}
}

func TestEncodeHexRoundTrip(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0xff}
	if got, err := DecodeHex(EncodeHex(b)); err != nil || !bytes.Equal(got, b) {
		t.Fatalf("round trip failed: got %x, err %v", got, err)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	b := []byte("hello, idos")
	s := EncodeBase64(b)
	got, err := DecodeBase64(s)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, b) {
		t.Errorf("base64 round trip mismatch: got %q, want %q", got, b)
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("expected valid uuid, got %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); err == nil {
		t.Error("expected error for invalid uuid")
	}
}

func TestUUIDBytesRoundTrip(t *testing.T) {
	id := "550e8400-e29b-41d4-a716-446655440000"
	b, err := UUIDBytes(id)
	if err != nil {
		t.Fatal(err)
	}
	if got := UUIDFromBytes(b); got != id {
		t.Errorf("UUIDFromBytes(UUIDBytes(%q)) = %q", id, got)
	}
}

func TestLEEncodersRoundTrip(t *testing.T) {
	if got := ReadLE16(LE16(0xABCD)); got != 0xABCD {
		t.Errorf("LE16 round trip: got %x", got)
	}
	if got := ReadLE32(LE32(0xDEADBEEF)); got != 0xDEADBEEF {
		t.Errorf("LE32 round trip: got %x", got)
	}
	if got := ReadLE64(LE64(0x1122334455667788)); got != 0x1122334455667788 {
		t.Errorf("LE64 round trip: got %x", got)
	}
}

func TestLE128(t *testing.T) {
	v := big.NewInt(0x0102030405)
	out := LE128(v)
	want := [16]byte{0x05, 0x04, 0x03, 0x02, 0x01}
	if out != want {
		t.Errorf("LE128(%v) = %x, want %x", v, out, want)
	}
}

func TestUTF8Len(t *testing.T) {
	if got := UTF8Len("idos"); got != 4 {
		t.Errorf("UTF8Len = %d, want 4", got)
	}
	if got := UTF8Len("héllo"); got != 6 { // é is 2 bytes in UTF-8
		t.Errorf("UTF8Len(héllo) = %d, want 6", got)
	}
}
