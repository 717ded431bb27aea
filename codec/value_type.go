// Package codec implements the wire format: per-type value encoding, the
// action-call and action-execution payload framings, the transaction
// envelope, and the canonical signable message construction.
package codec

import "fmt"

// Kind is the closed set of declared parameter types.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindBool
	KindBytea
	KindUUID
	KindNumeric
	KindUint256
)

// ParamType fully describes a declared parameter type: its variant plus the
// variant-specific constraints and the is_array flag every variant carries.
type ParamType struct {
	Kind      Kind
	IsArray   bool
	MaxLen    int   // Text only; 0 means unbounded
	Min, Max  int64 // Int only; both zero means unbounded
	Precision int   // Numeric only
	Scale     int   // Numeric only
}

// Text returns a scalar Text parameter type, optionally bounded by maxLen
// (0 for unbounded).
func Text(maxLen int) ParamType { return ParamType{Kind: KindText, MaxLen: maxLen} }

// Int returns a scalar Int parameter type, optionally bounded by [min,max]
// (both zero for unbounded).
func Int(min, max int64) ParamType { return ParamType{Kind: KindInt, Min: min, Max: max} }

// Bool returns a scalar Bool parameter type.
func Bool() ParamType { return ParamType{Kind: KindBool} }

// Bytea returns a scalar Bytea parameter type.
func Bytea() ParamType { return ParamType{Kind: KindBytea} }

// UUID returns a Uuid parameter type; isArray selects between a single UUID
// and an array of UUIDs.
func UUID(isArray bool) ParamType { return ParamType{Kind: KindUUID, IsArray: isArray} }

// Numeric returns a scalar Numeric(precision,scale) parameter type.
func Numeric(precision, scale int) ParamType {
	return ParamType{Kind: KindNumeric, Precision: precision, Scale: scale}
}

// Uint256 returns a scalar Uint256 parameter type.
func Uint256() ParamType { return ParamType{Kind: KindUint256} }

// Array returns t with IsArray set, for declaring an array of any variant.
func Array(t ParamType) ParamType {
	t.IsArray = true
	return t
}

// typeName is the wire name for each declared type's metadata pair.
func (t ParamType) typeName() string {
	switch t.Kind {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindBytea:
		return "bytea"
	case KindUUID:
		return "uuid"
	case KindNumeric:
		return "numeric"
	case KindUint256:
		return "uint256"
	default:
		return "unknown"
	}
}

// Metadata returns the (type_name, [precision_or_0, scale_or_0]) pair
// transmitted alongside every value on the wire.
func (t ParamType) Metadata() (string, [2]int) {
	if t.Kind == KindNumeric {
		return t.typeName(), [2]int{t.Precision, t.Scale}
	}
	return t.typeName(), [2]int{0, 0}
}

// fixedWidth reports the exact byte width of a scalar of this kind, and
// whether that width is fixed (as opposed to length-prefixed-variable).
func (t ParamType) fixedWidth() (width int, isFixed bool) {
	switch t.Kind {
	case KindInt:
		return 8, true
	case KindBool:
		return 1, true
	case KindUUID:
		return 16, true
	case KindUint256:
		return 32, true
	default:
		return 0, false
	}
}

func (t ParamType) validate() error {
	if t.Kind < KindText || t.Kind > KindUint256 {
		return fmt.Errorf("codec: unknown parameter kind %d", t.Kind)
	}
	return nil
}
