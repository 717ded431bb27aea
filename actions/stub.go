// Package actions implements the action executor: the nonce-fetch,
// encode, envelope, sign, broadcast, and result-mapping pipeline driven
// by an ActionStub, plus the auto re-authentication the action executor
// is responsible for.
package actions

import "github.com/idos-network/idos-sdk-go/codec"

// ActionStub is the contract an externally-generated action definition
// must satisfy. Stubs are mechanically derived from the network's
// schema; this SDK only consumes the shape.
type ActionStub interface {
	// Namespace is the action's owning namespace (e.g. "idos").
	Namespace() string
	// Name is the action's name within its namespace (e.g. "add_wallet").
	Name() string
	// ParamTypes is the action's ordered positional parameter types.
	ParamTypes() []codec.ParamType
	// ProjectInput projects an application-level input record into
	// ordered values matching ParamTypes, in order.
	ProjectInput(input any) ([]any, error)
	// DecodeRow decodes one result row (column name -> cell value) into
	// the action's output record shape. Used by view and callSingle.
	DecodeRow(row map[string]any) (any, error)
}

// buildArgs pairs projected values with their declared types, in order.
func buildArgs(values []any, types []codec.ParamType) ([]codec.Arg, error) {
	if len(values) != len(types) {
		return nil, &ValidationError{Msg: "projected input has a different arity than the action's parameter types"}
	}
	args := make([]codec.Arg, len(values))
	for i, v := range values {
		args[i] = codec.Arg{Value: v, Type: types[i]}
	}
	return args, nil
}
