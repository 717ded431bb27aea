// Package types provides the wire-level value wrappers shared by the rest of
// the SDK: hex strings, base64 strings, UUID strings, and little-endian
// integer codecs. Nothing here talks to the network; it only knows how to
// encode and validate bytes.
package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// EncodeHex returns the lowercase, unprefixed hex encoding of b.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex decodes a hex string into bytes. It tolerates an optional "0x"
// or "0X" prefix on input but never produces one. An odd-length string or
// one containing characters outside [0-9a-fA-F] is rejected.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("types: hex string %q has odd length", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("types: invalid hex string: %w", err)
	}
	return b, nil
}

// MustDecodeHex is DecodeHex that panics on error. Intended for package-level
// constant-ish initialization, not for handling untrusted input.
func MustDecodeHex(s string) []byte {
	b, err := DecodeHex(s)
	if err != nil {
		panic(err)
	}
	return b
}
