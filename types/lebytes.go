package types

import (
	"encoding/binary"
	"math/big"
)

// LE16 returns the 2-byte little-endian encoding of v.
func LE16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// LE32 returns the 4-byte little-endian encoding of v.
func LE32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// LE64 returns the 8-byte little-endian encoding of v.
func LE64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// LE128 returns the 16-byte little-endian encoding of a non-negative integer.
// It is used for wire values wider than a uint64 (e.g. UUIDs treated as raw
// integers). Values that do not fit in 128 bits are truncated to their low
// 16 bytes.
func LE128(v *big.Int) [16]byte {
	var out [16]byte
	be := v.Bytes() // big-endian, no leading zero byte
	n := len(be)
	if n > 16 {
		be = be[n-16:]
		n = 16
	}
	for i := 0; i < n; i++ {
		out[i] = be[n-1-i]
	}
	return out
}

// ReadLE16 decodes a 2-byte little-endian unsigned integer.
func ReadLE16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

// ReadLE32 decodes a 4-byte little-endian unsigned integer.
func ReadLE32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// ReadLE64 decodes an 8-byte little-endian unsigned integer.
func ReadLE64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// UTF8Len returns the length, in bytes, of s's UTF-8 encoding. Go strings
// are already UTF-8, so this is simply len(s); it exists as a named helper
// because the wire format treats "byte length of the string" as a distinct
// concept from "number of wire elements".
func UTF8Len(s string) uint32 {
	return uint32(len(s))
}
