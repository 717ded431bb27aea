package codec

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
	"github.com/idos-network/idos-sdk-go/signer"
	"github.com/idos-network/idos-sdk-go/types"
)

// signature-message canonicalization must match byte for byte.
func TestSignableMessageCanonicalization(t *testing.T) {
	payload := types.MustDecodeHex("deadbeef")
	tx := &Transaction{
		Body: TxBody{
			Desc:    "x",
			Type:    "execute",
			Fee:     "0",
			Nonce:   1,
			ChainID: "c",
		},
	}

	got := SignableMessage(tx, payload)
	digest := types.EncodeHex(kwcrypto.PayloadDigest(payload))
	want := "x\n\nPayloadType: execute\nPayloadDigest: " + digest + "\nFee: 0\nNonce: 1\n\nKwil Chain ID: c\n"

	if got != want {
		t.Errorf("SignableMessage mismatch:\n got: %q\nwant: %q", got, want)
	}
}

// call payload framing.
func TestCallPayloadFraming(t *testing.T) {
	got, err := EncodeCallPayload("idos", "get_user", nil)
	if err != nil {
		t.Fatal(err)
	}

	var want bytes.Buffer
	want.Write(types.LE16(0))
	want.Write(types.LE32(4))
	want.WriteString("idos")
	want.Write(types.LE32(8))
	want.WriteString("get_user")
	want.Write(types.LE32(0))

	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("call payload mismatch:\n got: %x\nwant: %x", got, want.Bytes())
	}
}

func TestExecutionPayloadSingleCall(t *testing.T) {
	args := []Arg{{Value: "alice", Type: Text(0)}}
	got, err := EncodeExecutionPayload("idos", "add_wallet", [][]Arg{args})
	if err != nil {
		t.Fatal(err)
	}

	// version || ns || name || args_outer(=1) || args_count(=1) || arg
	var want bytes.Buffer
	want.Write(types.LE16(0))
	want.Write(types.LE32(4))
	want.WriteString("idos")
	want.Write(types.LE32(10))
	want.WriteString("add_wallet")
	want.Write(types.LE32(1)) // args_outer
	want.Write(types.LE32(1)) // one arg in the single call
	enc, err := encodeArg(args[0])
	if err != nil {
		t.Fatal(err)
	}
	want.Write(enc)

	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("execution payload mismatch:\n got: %x\nwant: %x", got, want.Bytes())
	}
}

func TestValueRoundTripAllKinds(t *testing.T) {
	cases := []struct {
		name string
		t    ParamType
		v    any
	}{
		{"text", Text(0), "hello"},
		{"empty text", Text(0), ""},
		{"int", Int(0, 0), int64(-42)},
		{"bool true", Bool(), true},
		{"bool false", Bool(), false},
		{"bytea", Bytea(), []byte{1, 2, 3}},
		{"empty bytea", Bytea(), []byte{}},
		{"uuid", UUID(false), "550e8400-e29b-41d4-a716-446655440000"},
		{"numeric", Numeric(10, 2), "123.45"},
		{"uint256", Uint256(), big.NewInt(123456789)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc, err := EncodeValue(c.v, c.t)
			if err != nil {
				t.Fatal(err)
			}
			got, n, err := DecodeValue(enc, c.t)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(enc) {
				t.Errorf("consumed %d bytes, expected %d", n, len(enc))
			}
			assertValueEqual(t, c.v, got)
		})
	}
}

func TestValueRoundTripArrays(t *testing.T) {
	arrType := Array(Text(0))
	v := []any{"a", "b", "c"}
	enc, err := EncodeValue(v, arrType)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := DecodeValue(enc, arrType)
	if err != nil {
		t.Fatal(err)
	}
	gotSlice, ok := got.([]any)
	if !ok || len(gotSlice) != 3 {
		t.Fatalf("expected 3-element array, got %#v", got)
	}
	for i, want := range v {
		if gotSlice[i] != want {
			t.Errorf("element %d = %v, want %v", i, gotSlice[i], want)
		}
	}
}

func TestEmptyArrayDistinctFromNull(t *testing.T) {
	arrType := Array(Text(0))

	emptyEnc, err := EncodeValue([]any{}, arrType)
	if err != nil {
		t.Fatal(err)
	}
	nullEnc, err := EncodeValue(nil, arrType)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(emptyEnc, nullEnc) {
		t.Fatal("empty array and null array must not encode identically")
	}

	emptyGot, _, err := DecodeValue(emptyEnc, arrType)
	if err != nil {
		t.Fatal(err)
	}
	if emptyGot == nil {
		t.Error("decoding an empty array must not yield nil")
	}
	if s, ok := emptyGot.([]any); !ok || len(s) != 0 {
		t.Errorf("expected empty []any, got %#v", emptyGot)
	}

	nullGot, _, err := DecodeValue(nullEnc, arrType)
	if err != nil {
		t.Fatal(err)
	}
	if nullGot != nil {
		t.Errorf("expected nil for null array, got %#v", nullGot)
	}
}

func TestNullScalarSentinel(t *testing.T) {
	enc, err := EncodeValue(nil, Text(0))
	if err != nil {
		t.Fatal(err)
	}
	want := append([]byte{}, nullSentinel...)
	if !bytes.Equal(enc, want) {
		t.Errorf("null encoding = %x, want %x", enc, want)
	}
	got, n, err := DecodeValue(enc, Text(0))
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil, got %#v", got)
	}
	if n != 4 {
		t.Errorf("consumed %d bytes, want 4", n)
	}
}

func TestSignEnvelope(t *testing.T) {
	s, err := signer.GenerateEd25519Signer()
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte("execution payload bytes")
	tx := NewUnsignedTransaction("desc", payload, 1, "chain-1", s.GetSignatureType(), types.EncodeHex(s.GetIdentifier()))

	if tx.IsSigned() {
		t.Fatal("freshly built transaction must be unsigned")
	}

	if err := Sign(tx, payload, s); err != nil {
		t.Fatal(err)
	}
	if !tx.IsSigned() {
		t.Fatal("transaction must be signed after Sign")
	}
}

func assertValueEqual(t *testing.T, want, got any) {
	t.Helper()
	switch w := want.(type) {
	case *big.Int:
		g, ok := got.(*big.Int)
		if !ok || w.Cmp(g) != 0 {
			t.Errorf("got %#v, want %#v", got, want)
		}
	case []byte:
		g, ok := got.([]byte)
		if !ok || !bytes.Equal(w, g) {
			t.Errorf("got %#v, want %#v", got, want)
		}
	default:
		if got != want {
			t.Errorf("got %#v, want %#v", got, want)
		}
	}
}
