package signer

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
)

// Field describes one member of an EIP-712 struct type.
type Field struct {
	Name string
	Type string // "string", "address", "bool", "uint256", "bytes32", or another type's name; "Type[]" for arrays
}

// Types is the EIP-712 "types" map: type name -> ordered field list. The
// caller MUST include an "EIP712Domain" entry describing which of the
// domain's fields are present (name/version/chainId/verifyingContract/salt)
// when passing typed data through to a wallet signer; TypedData.Hash below
// derives it internally and does not require the caller to supply it.
type Types map[string][]Field

// Domain is the EIP-712 domain separator's logical content. Unset optional
// fields are omitted from encoding.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract string
}

// TypedData is a minimal, self-contained EIP-712 typed-data structure: a
// type schema, a primary type, a domain, and a message. It implements just
// enough of EIP-712 to cover struct/array/scalar fields, which is all the
// distributed-recovery requests and action-signing flows in this SDK need.
type TypedData struct {
	Types       Types
	PrimaryType string
	Domain      Domain
	Message     map[string]any
}

// Hash computes the final EIP-712 digest:
// keccak256("\x19\x01" || domainSeparator || hashStruct(message)).
func (td TypedData) Hash() ([]byte, error) {
	domainHash, err := td.hashDomain()
	if err != nil {
		return nil, fmt.Errorf("signer: hashing domain: %w", err)
	}
	msgHash, err := td.hashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, fmt.Errorf("signer: hashing message: %w", err)
	}
	return kwcrypto.Keccak256([]byte{0x19, 0x01}, domainHash, msgHash), nil
}

func (td TypedData) hashDomain() ([]byte, error) {
	fields := []Field{{"name", "string"}, {"version", "string"}}
	data := map[string]any{"name": td.Domain.Name, "version": td.Domain.Version}
	if td.Domain.ChainID != nil {
		fields = append(fields, Field{"chainId", "uint256"})
		data["chainId"] = td.Domain.ChainID
	}
	if td.Domain.VerifyingContract != "" {
		fields = append(fields, Field{"verifyingContract", "address"})
		data["verifyingContract"] = td.Domain.VerifyingContract
	}
	return td.hashStructWithFields("EIP712Domain", fields, data)
}

func (td TypedData) hashStruct(typeName string, data map[string]any) ([]byte, error) {
	fields, ok := td.Types[typeName]
	if !ok {
		return nil, fmt.Errorf("signer: unknown type %q", typeName)
	}
	return td.hashStructWithFields(typeName, fields, data)
}

func (td TypedData) hashStructWithFields(typeName string, fields []Field, data map[string]any) ([]byte, error) {
	typeHash := kwcrypto.Keccak256([]byte(td.encodeType(typeName, fields)))

	encoded := [][]byte{typeHash}
	for _, f := range fields {
		v, ok := data[f.Name]
		if !ok {
			return nil, fmt.Errorf("signer: field %q missing from message for type %q", f.Name, typeName)
		}
		enc, err := td.encodeValue(f.Type, v)
		if err != nil {
			return nil, fmt.Errorf("signer: field %q: %w", f.Name, err)
		}
		encoded = append(encoded, enc)
	}
	return kwcrypto.Keccak256(encoded...), nil
}

// encodeType renders the canonical EIP-712 type string, e.g.
// "Mail(address from,address to,string contents)", including referenced
// struct types appended in alphabetical order as EIP-712 §Definition of
// encodeType requires.
func (td TypedData) encodeType(typeName string, fields []Field) string {
	deps := map[string]bool{}
	td.collectDeps(typeName, fields, deps)
	delete(deps, typeName)

	depNames := make([]string, 0, len(deps))
	for d := range deps {
		depNames = append(depNames, d)
	}
	sort.Strings(depNames)

	var sb strings.Builder
	sb.WriteString(renderType(typeName, fields))
	for _, d := range depNames {
		sb.WriteString(renderType(d, td.Types[d]))
	}
	return sb.String()
}

func renderType(name string, fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Type + " " + f.Name
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

func (td TypedData) collectDeps(typeName string, fields []Field, seen map[string]bool) {
	if seen[typeName] {
		return
	}
	seen[typeName] = true
	for _, f := range fields {
		base := strings.TrimSuffix(f.Type, "[]")
		if sub, ok := td.Types[base]; ok {
			td.collectDeps(base, sub, seen)
		}
	}
}

func (td TypedData) encodeValue(fieldType string, v any) ([]byte, error) {
	if strings.HasSuffix(fieldType, "[]") {
		elemType := strings.TrimSuffix(fieldType, "[]")
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected []any for array type %q", fieldType)
		}
		encoded := make([][]byte, len(items))
		for i, item := range items {
			enc, err := td.encodeValue(elemType, item)
			if err != nil {
				return nil, err
			}
			encoded[i] = enc
		}
		flat := make([]byte, 0, len(encoded)*32)
		for _, e := range encoded {
			flat = append(flat, e...)
		}
		return kwcrypto.Keccak256(flat), nil
	}

	switch fieldType {
	case "string":
		s, _ := v.(string)
		return kwcrypto.Keccak256([]byte(s)), nil
	case "bytes":
		b, err := asBytes(v)
		if err != nil {
			return nil, err
		}
		return kwcrypto.Keccak256(b), nil
	case "bytes32":
		b, err := asBytes(v)
		if err != nil {
			return nil, err
		}
		return leftPad32(b), nil
	case "bool":
		b, _ := v.(bool)
		if b {
			return leftPad32([]byte{1}), nil
		}
		return leftPad32([]byte{0}), nil
	case "address":
		s, _ := v.(string)
		addr, err := addressBytes(s)
		if err != nil {
			return nil, err
		}
		return leftPad32(addr), nil
	case "uint256", "uint":
		n, err := asBigInt(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 32)
		n.FillBytes(buf)
		return buf, nil
	default:
		if sub, ok := td.Types[fieldType]; ok {
			m, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expected map[string]any for struct type %q", fieldType)
			}
			return td.hashStructWithFields(fieldType, sub, m)
		}
		return nil, fmt.Errorf("unsupported field type %q", fieldType)
	}
}

func asBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(strings.TrimPrefix(b, "0x")), nil
	default:
		return nil, fmt.Errorf("expected bytes-like value, got %T", v)
	}
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func addressBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 40 {
		return nil, fmt.Errorf("address %q is not 20 bytes", s)
	}
	out := make([]byte, 20)
	for i := 0; i < 20; i++ {
		hi, err := hexNibble(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit %q", c)
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
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case string:
		bi, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, fmt.Errorf("invalid decimal integer %q", n)
		}
		return bi, nil
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", v)
	}
}
