package codec

import (
	"bytes"
	"fmt"

	"github.com/idos-network/idos-sdk-go/types"
)

// PayloadVersion is the wire-format version embedded at the head of every
// action-call and action-execution payload.
const PayloadVersion uint16 = 0

// Arg pairs a value with the declared parameter type it must be encoded
// against.
type Arg struct {
	Value any
	Type  ParamType
}

func encodeNamespaceName(namespace, name string) []byte {
	var buf bytes.Buffer
	buf.Write(types.LE16(PayloadVersion))
	buf.Write(types.LE32(types.UTF8Len(namespace)))
	buf.WriteString(namespace)
	buf.Write(types.LE32(types.UTF8Len(name)))
	buf.WriteString(name)
	return buf.Bytes()
}

// encodeArg writes one per-arg unit: the encoded value followed by its type
// descriptor (type_name, is_array, precision, scale).
func encodeArg(a Arg) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := EncodeValue(a.Value, a.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(enc)
	buf.Write(encodeTypeDescriptor(a.Type))
	return buf.Bytes(), nil
}

func encodeTypeDescriptor(t ParamType) []byte {
	name, meta := t.Metadata()
	var buf bytes.Buffer
	buf.Write(types.LE32(types.UTF8Len(name)))
	buf.WriteString(name)
	if t.IsArray {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.Write(types.LE32(uint32(meta[0])))
	buf.Write(types.LE32(uint32(meta[1])))
	return buf.Bytes()
}

// EncodeCallPayload builds the action-call payload submitted with a view
// RPC: version || namespace || name || len(args) || per-arg(value,type).
func EncodeCallPayload(namespace, name string, args []Arg) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(encodeNamespaceName(namespace, name))
	buf.Write(types.LE32(uint32(len(args))))
	for i, a := range args {
		enc, err := encodeArg(a)
		if err != nil {
			return nil, fmt.Errorf("codec: call payload arg %d: %w", i, err)
		}
		buf.Write(enc)
	}
	return buf.Bytes(), nil
}

// EncodeExecutionPayload builds the action-execution payload submitted with
// a transaction: version || namespace || name || len(calls) ||
// per-call(len(args) || per-arg(value,type)). A single-call execution has
// len(calls) == 1.
func EncodeExecutionPayload(namespace, name string, calls [][]Arg) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(encodeNamespaceName(namespace, name))
	buf.Write(types.LE32(uint32(len(calls))))
	for ci, call := range calls {
		buf.Write(types.LE32(uint32(len(call))))
		for ai, a := range call {
			enc, err := encodeArg(a)
			if err != nil {
				return nil, fmt.Errorf("codec: execution payload call %d arg %d: %w", ci, ai, err)
			}
			buf.Write(enc)
		}
	}
	return buf.Bytes(), nil
}
