package types

import (
	"encoding/base64"
	"fmt"
)

// EncodeBase64 returns the standard-alphabet, non-line-wrapped base64
// encoding of b, used for every payload and signature transmitted on the
// wire.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 decodes a standard-alphabet base64 string.
func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("types: invalid base64 string: %w", err)
	}
	return b, nil
}
