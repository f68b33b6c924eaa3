package venom

import (
	"fmt"
	"strings"

	"github.com/venom-lang/venom/types"
)

// TypeOfValue classifies one call-site argument into a lattice type. The
// argument types observed at the first call drive the whole compilation, so
// anything unclassifiable is a hard error rather than a guess.
func TypeOfValue(v any) (types.Type, error) {
	switch x := v.(type) {
	case bool:
		return types.Bool, nil
	case int:
		return types.I64, nil
	case int64:
		return types.I64, nil
	case float64:
		return types.F64, nil
	case string:
		return types.Str, nil
	case []byte:
		return types.Bytes, nil
	case []bool:
		return types.Array{Elem: types.Bool}, nil
	case []int64:
		return types.Array{Elem: types.I64}, nil
	case []int:
		return types.Array{Elem: types.I64}, nil
	case []float64:
		return types.Array{Elem: types.F64}, nil
	case []any:
		return typeOfList(x)
	case nil:
		return types.Inv, fmt.Errorf("cannot classify a nil argument")
	default:
		return types.Inv, fmt.Errorf("cannot classify argument of type %T", v)
	}
}

// typeOfList classifies a heterogeneous-capable slice. Empty and mixed-type
// lists carry no usable element type.
func typeOfList(xs []any) (types.Type, error) {
	if len(xs) == 0 {
		return types.Inv, fmt.Errorf("cannot classify an empty list argument")
	}
	elem, err := TypeOfValue(xs[0])
	if err != nil {
		return types.Inv, err
	}
	for _, x := range xs[1:] {
		t, err := TypeOfValue(x)
		if err != nil {
			return types.Inv, err
		}
		if !types.Equal(elem, t) {
			return types.Inv, fmt.Errorf("cannot classify a mixed-type list argument: %s and %s", elem, t)
		}
	}
	return types.Array{Elem: elem}, nil
}

// TypesOfArgs classifies every argument in order.
func TypesOfArgs(args []any) ([]types.Type, error) {
	ts := make([]types.Type, len(args))
	for i, arg := range args {
		t, err := TypeOfValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		ts[i] = t
	}
	return ts, nil
}

// Signature renders an argument-type tuple as its mangling letters, e.g.
// (I64, [F64]) renders as "lPd".
func Signature(argTypes []types.Type) string {
	var sb strings.Builder
	for _, t := range argTypes {
		sb.WriteString(t.Mangle())
	}
	return sb.String()
}
