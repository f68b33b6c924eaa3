package compiler

import "github.com/venom-lang/venom/types"

// The fixed builtin catalog. Each entry is generic over its argument types;
// the declared return type is bound into every specialization.
var builtinReturns = []struct {
	name string
	ret  types.Type
}{
	{"print", types.Void},
	{"range", types.I64},
	{"len", types.I64},
	{"float", types.F64},
	{"int", types.I64},
	{"bool", types.Bool},
}

func defaultBuiltins() (map[string]*FunctionBuiltin, []string) {
	catalog := make(map[string]*FunctionBuiltin, len(builtinReturns))
	order := make([]string, 0, len(builtinReturns))
	for _, b := range builtinReturns {
		catalog[b.name] = &FunctionBuiltin{
			Name:            b.name,
			Return:          b.ret,
			Specializations: make(map[string]types.Func),
		}
		order = append(order, b.name)
	}
	return catalog, order
}
