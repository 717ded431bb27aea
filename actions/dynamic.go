package actions

import (
	"fmt"

	"github.com/idos-network/idos-sdk-go/codec"
)

// DynamicStub is an ActionStub built at runtime from a namespace, name,
// and ordered parameter types, for callers (like a CLI) that don't have a
// generated Go type per action. Input must be a []any matching ParamTypes
// in order; decoded rows are returned as-is.
type DynamicStub struct {
	Ns     string
	Action string
	Types  []codec.ParamType
}

// NewDynamicStub builds a DynamicStub for namespace.name with the given
// positional parameter types.
func NewDynamicStub(namespace, name string, types []codec.ParamType) DynamicStub {
	return DynamicStub{Ns: namespace, Action: name, Types: types}
}

func (s DynamicStub) Namespace() string             { return s.Ns }
func (s DynamicStub) Name() string                  { return s.Action }
func (s DynamicStub) ParamTypes() []codec.ParamType { return s.Types }

// ProjectInput requires input to already be a []any in positional order;
// it is the caller's job (e.g. parsing CLI flags) to produce that shape.
func (s DynamicStub) ProjectInput(input any) ([]any, error) {
	values, ok := input.([]any)
	if !ok {
		return nil, &ValidationError{Msg: fmt.Sprintf("dynamic stub %s.%s: input must be []any, got %T", s.Ns, s.Action, input)}
	}
	return values, nil
}

// DecodeRow returns the row unchanged; callers without a generated record
// type work directly with the column-name-keyed map.
func (s DynamicStub) DecodeRow(row map[string]any) (any, error) {
	return row, nil
}
