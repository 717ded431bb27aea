package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/idos-network/idos-sdk-go/codec"
)

// parseParamTypes turns comma-separated type names ("text", "int",
// "bool") into codec.ParamType values, in positional order.
func parseParamTypes(specs []string) ([]codec.ParamType, error) {
	types := make([]codec.ParamType, len(specs))
	for i, spec := range specs {
		switch strings.ToLower(strings.TrimSpace(spec)) {
		case "text", "":
			types[i] = codec.Text(0)
		case "int":
			types[i] = codec.Int(0, 0)
		case "bool":
			types[i] = codec.Bool()
		default:
			return nil, fmt.Errorf("unknown param type %q (valid: text, int, bool)", spec)
		}
	}
	return types, nil
}

// parseParamValues converts raw CLI strings into the Go values codec.Arg
// expects for each positional type.
func parseParamValues(raw []string, types []codec.ParamType) ([]any, error) {
	if len(raw) != len(types) {
		return nil, fmt.Errorf("got %d params but %d types", len(raw), len(types))
	}
	values := make([]any, len(raw))
	for i, v := range raw {
		switch types[i].Kind {
		case codec.KindInt:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", i, err)
			}
			values[i] = n
		case codec.KindBool:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", i, err)
			}
			values[i] = b
		default:
			values[i] = v
		}
	}
	return values, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
