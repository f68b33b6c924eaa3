package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venom-lang/venom/types"
)

func TestMangle(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []types.Type
		ret  types.Type
		want string
	}{
		{"no args", "f", nil, types.Void, "$f$v"},
		{"range over int", "range", []types.Type{types.I64}, types.I64, "$range$l$l"},
		{"len of int array", "len", []types.Type{types.Array{Elem: types.I64}}, types.I64, "$len$Pl$l"},
		{"print two floats", "print", []types.Type{types.F64, types.F64}, types.Void, "$print$d$d$v"},
		{"len of str", "len", []types.Type{types.Str}, types.I64, "$len$Ps$l"},
		{"bool conversion", "bool", []types.Type{types.F64}, types.Bool, "$bool$d$b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mangle(tt.fn, tt.args, tt.ret))
		})
	}
}

func TestSpecializeDeduplicates(t *testing.T) {
	fb := &FunctionBuiltin{
		Name:            "range",
		Return:          types.I64,
		Specializations: make(map[string]types.Func),
	}

	f1, mangled1, fresh := fb.Specialize([]types.Type{types.I64})
	assert.True(t, fresh)
	assert.Equal(t, "$range$l$l", mangled1)
	assert.Equal(t, types.I64, f1.Return)

	// The same argument tuple reuses the recorded signature.
	f2, mangled2, fresh := fb.Specialize([]types.Type{types.I64})
	assert.False(t, fresh)
	assert.Equal(t, mangled1, mangled2)
	assert.Equal(t, f1, f2)

	// A different tuple mints a new one.
	_, mangled3, fresh := fb.Specialize([]types.Type{types.F64})
	assert.True(t, fresh)
	assert.NotEqual(t, mangled1, mangled3)

	assert.Equal(t, []string{mangled1, mangled3}, fb.Order)
	require.Len(t, fb.Specializations, 2)
	assert.Equal(t, []types.Type{types.I64}, fb.Specializations[mangled1].ParamTypes())
}

func TestFunctionDefAddSpecialization(t *testing.T) {
	fd := &FunctionDef{Name: "add", Params: []string{"a", "b"}}

	spec := types.Func{
		Name: "add",
		Params: []types.Param{
			{Name: "a", Type: types.I64},
			{Name: "b", Type: types.F64},
		},
		Return: types.F64,
	}

	mangled, fresh := fd.AddSpecialization(spec)
	assert.True(t, fresh)
	assert.Equal(t, "$add$l$d$d", mangled)

	_, fresh = fd.AddSpecialization(spec)
	assert.False(t, fresh)
	assert.Equal(t, []string{mangled}, fd.Order)
}

func TestSymbolStrings(t *testing.T) {
	v := &Variable{Name: "x", Type: types.I64}
	assert.Equal(t, `VARIABLE("x", I64)`, v.String())

	p := &Parameter{Name: "a", Type: types.F64}
	assert.Equal(t, `PARAMETER("a", F64)`, p.String())

	fb := &FunctionBuiltin{Name: "range", Return: types.I64, Specializations: make(map[string]types.Func)}
	assert.Equal(t, `BUILTINFUNC("range", 0 specializations)`, fb.String())
	fb.Specialize([]types.Type{types.I64})
	assert.Equal(t, `BUILTINFUNC("range", 1 specialization)`, fb.String())
}
