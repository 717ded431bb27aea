package codec

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/idos-network/idos-sdk-go/types"
)

// nullSentinel is the 4-byte little-endian encoding of -1 interpreted as a
// signed 32-bit length prefix, marking a null value. The implementer MUST
// reject any other encoding of null on input.
var nullSentinel = types.LE32(0xFFFFFFFF)

// EncodeValue encodes v against its declared parameter type t, dispatching
// between scalar and array framing based on t.IsArray. v == nil encodes as
// the null sentinel (a scalar null, or -- for an array type -- a null
// array, both using the same length/count sentinel).
func EncodeValue(v any, t ParamType) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if t.IsArray {
		return encodeArray(v, t)
	}
	return encodeScalar(v, t)
}

// DecodeValue decodes one value of type t from the front of b, returning the
// decoded value and the number of bytes consumed.
func DecodeValue(b []byte, t ParamType) (any, int, error) {
	if err := t.validate(); err != nil {
		return nil, 0, err
	}
	r := bytes.NewReader(b)
	var (
		v   any
		err error
	)
	if t.IsArray {
		v, err = decodeArray(r, t)
	} else {
		v, err = decodeScalar(r, t)
	}
	if err != nil {
		return nil, 0, err
	}
	return v, len(b) - r.Len(), nil
}

func encodeArray(v any, t ParamType) ([]byte, error) {
	if v == nil {
		return append([]byte{}, nullSentinel...), nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("codec: array value must be []any, got %T", v)
	}
	elemType := t
	elemType.IsArray = false

	var buf bytes.Buffer
	buf.Write(types.LE32(uint32(len(items))))
	for i, item := range items {
		enc, err := encodeScalar(item, elemType)
		if err != nil {
			return nil, fmt.Errorf("codec: array element %d: %w", i, err)
		}
		buf.Write(enc)
	}
	return buf.Bytes(), nil
}

func decodeArray(r *bytes.Reader, t ParamType) (any, error) {
	count, isNull, err := readLengthOrCount(r)
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, nil
	}
	elemType := t
	elemType.IsArray = false

	items := make([]any, 0, count)
	for i := 0; i < count; i++ {
		v, err := decodeScalar(r, elemType)
		if err != nil {
			return nil, fmt.Errorf("codec: array element %d: %w", i, err)
		}
		items = append(items, v)
	}
	return items, nil
}

func encodeScalar(v any, t ParamType) ([]byte, error) {
	if v == nil {
		return append([]byte{}, nullSentinel...), nil
	}

	switch t.Kind {
	case KindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("codec: text value must be string, got %T", v)
		}
		if t.MaxLen > 0 && len(s) > t.MaxLen {
			return nil, fmt.Errorf("codec: text value exceeds max_len %d", t.MaxLen)
		}
		return framed([]byte(s)), nil

	case KindBytea:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("codec: bytea value must be []byte, got %T", v)
		}
		return framed(b), nil

	case KindBool:
		bv, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("codec: bool value must be bool, got %T", v)
		}
		if bv {
			return framed([]byte{1}), nil
		}
		return framed([]byte{0}), nil

	case KindInt:
		iv, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		if t.Min != 0 || t.Max != 0 {
			if iv < t.Min || iv > t.Max {
				return nil, fmt.Errorf("codec: int value %d out of range [%d,%d]", iv, t.Min, t.Max)
			}
		}
		return framed(types.LE64(uint64(iv))), nil

	case KindUUID:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("codec: uuid value must be string, got %T", v)
		}
		b, err := types.UUIDBytes(s)
		if err != nil {
			return nil, err
		}
		return framed(b[:]), nil

	case KindNumeric:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("codec: numeric value must be decimal string, got %T", v)
		}
		return framed([]byte(s)), nil

	case KindUint256:
		bi, err := asBigInt(v)
		if err != nil {
			return nil, err
		}
		if bi.Sign() < 0 {
			return nil, fmt.Errorf("codec: uint256 value must be non-negative")
		}
		buf := make([]byte, 32)
		bi.FillBytes(buf) // big-endian, matching EVM uint256 ABI convention
		return framed(buf), nil

	default:
		return nil, fmt.Errorf("codec: unsupported kind %d", t.Kind)
	}
}

func decodeScalar(r *bytes.Reader, t ParamType) (any, error) {
	data, isNull, err := readFramed(r)
	if err != nil {
		return nil, err
	}
	if isNull {
		return nil, nil
	}

	switch t.Kind {
	case KindText:
		if t.MaxLen > 0 && len(data) > t.MaxLen {
			return nil, fmt.Errorf("codec: decoded text exceeds max_len %d", t.MaxLen)
		}
		return string(data), nil

	case KindBytea:
		return data, nil

	case KindBool:
		if len(data) != 1 {
			return nil, fmt.Errorf("codec: bool must be 1 byte, got %d", len(data))
		}
		return data[0] != 0, nil

	case KindInt:
		if len(data) != 8 {
			return nil, fmt.Errorf("codec: int must be 8 bytes, got %d", len(data))
		}
		return int64(types.ReadLE64(data)), nil

	case KindUUID:
		if len(data) != 16 {
			return nil, fmt.Errorf("codec: uuid must be 16 bytes, got %d", len(data))
		}
		var b [16]byte
		copy(b[:], data)
		return types.UUIDFromBytes(b), nil

	case KindNumeric:
		return string(data), nil

	case KindUint256:
		if len(data) != 32 {
			return nil, fmt.Errorf("codec: uint256 must be 32 bytes, got %d", len(data))
		}
		return new(big.Int).SetBytes(data), nil

	default:
		return nil, fmt.Errorf("codec: unsupported kind %d", t.Kind)
	}
}

// framed prepends the 4-byte little-endian length of data.
func framed(data []byte) []byte {
	out := make([]byte, 0, 4+len(data))
	out = append(out, types.LE32(uint32(len(data)))...)
	out = append(out, data...)
	return out
}

// readFramed reads a length-prefixed scalar, recognizing the -1 null
// sentinel. It is byte-compatible with readLengthOrCount; they are kept
// separate because a scalar's "length" and an array's "count" are distinct
// concepts even though they share a wire representation.
func readFramed(r *bytes.Reader) (data []byte, isNull bool, err error) {
	n, isNull, err := readLengthOrCount(r)
	if err != nil || isNull {
		return nil, isNull, err
	}
	data = make([]byte, n)
	if _, err := readFull(r, data); err != nil {
		return nil, false, fmt.Errorf("codec: reading %d-byte value: %w", n, err)
	}
	return data, false, nil
}

func readLengthOrCount(r *bytes.Reader) (n int, isNull bool, err error) {
	lb := make([]byte, 4)
	if _, err := readFull(r, lb); err != nil {
		return 0, false, fmt.Errorf("codec: reading length prefix: %w", err)
	}
	raw := types.ReadLE32(lb)
	if int32(raw) == -1 {
		return 0, true, nil
	}
	if int32(raw) < 0 {
		return 0, false, fmt.Errorf("codec: negative length %d is not the null sentinel", int32(raw))
	}
	return int(raw), false, nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	if r.Len() < len(buf) {
		return 0, fmt.Errorf("unexpected end of input: need %d bytes, have %d", len(buf), r.Len())
	}
	return r.Read(buf)
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("codec: int value must be an integer type, got %T", v)
	}
}

func asBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case int64:
		return big.NewInt(n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case string:
		bi, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, fmt.Errorf("codec: invalid decimal uint256 string %q", n)
		}
		return bi, nil
	default:
		return nil, fmt.Errorf("codec: uint256 value must be *big.Int, int, int64 or decimal string, got %T", v)
	}
}
