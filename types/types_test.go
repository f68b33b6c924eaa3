package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeRenderings(t *testing.T) {
	tests := []struct {
		name   string
		typ    Type
		str    string
		ir     string
		mangle string
	}{
		{"invalid", Inv, "Invalid", "!", "?"},
		{"void", Void, "Void", "", "v"},
		{"bool", Bool, "Bool", "i32", "b"},
		{"i8", I8, "I8", "i8", "a"},
		{"i16", I16, "I16", "i16", "s"},
		{"i32", I32, "I32", "i32", "i"},
		{"i64", I64, "I64", "i64", "l"},
		{"f32", F32, "F32", "f32", "f"},
		{"f64", F64, "F64", "f64", "d"},
		{"array of i64", Array{Elem: I64}, "[I64]", "i64*", "Pl"},
		{"sized array", Array{Elem: F64, Size: 4}, "[4 x F64]", "f64*", "Pd"},
		{"str", Str, "[I16]", "i16*", "Ps"},
		{"bytes", Bytes, "[I8]", "i8*", "Pa"},
		{"ptr", Ptr{Elem: I64}, "Ptr_I64", "i64*", "pl"},
		{"nested array", Array{Elem: Array{Elem: I64}}, "[[I64]]", "i64**", "PPl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.typ.String())
			assert.Equal(t, tt.ir, tt.typ.IR())
			assert.Equal(t, tt.mangle, tt.typ.Mangle())
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Type
		equal bool
	}{
		{"same int width", I64, Int{Width: 64}, true},
		{"different int widths", I64, I32, false},
		{"int vs float", I64, F64, false},
		{"same float width", F64, Float{Width: 64}, true},
		{"bool vs int", Bool, I32, false},
		{"void vs void", Void, VoidType{}, true},
		{"arrays same elem", Array{Elem: I64}, Array{Elem: I64}, true},
		{"arrays different elem", Array{Elem: I64}, Array{Elem: F64}, false},
		{"arrays different size", Array{Elem: I64, Size: 2}, Array{Elem: I64, Size: 3}, false},
		{"str is i16 array", Str, Array{Elem: Int{Width: 16}}, true},
		{"ptr same elem", Ptr{Elem: F64}, Ptr{Elem: F64}, true},
		{"ptr vs array", Ptr{Elem: I64}, Array{Elem: I64}, false},
		{"invalid vs invalid", Inv, Invalid{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Equal(tt.a, tt.b))
			assert.Equal(t, tt.equal, Equal(tt.b, tt.a))
		})
	}
}

func TestEqualSlices(t *testing.T) {
	assert.True(t, EqualSlices(nil, nil))
	assert.True(t, EqualSlices([]Type{I64, F64}, []Type{I64, F64}))
	assert.False(t, EqualSlices([]Type{I64}, []Type{I64, F64}))
	assert.False(t, EqualSlices([]Type{I64, F64}, []Type{F64, I64}))
}

func TestFuncMangleAndParams(t *testing.T) {
	f := Func{
		Name: "range",
		Params: []Param{
			{Name: "n", Type: I64},
		},
		Return: I64,
	}
	assert.Equal(t, "Frangell", f.Mangle())
	assert.Equal(t, []Type{I64}, f.ParamTypes())
	assert.Equal(t, "I64 = range(n I64)", f.String())
}

func TestNativeWidth(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		width int
	}{
		{"bool passes as 32-bit", Bool, 4},
		{"i32", I32, 4},
		{"i64", I64, 8},
		{"f32", F32, 4},
		{"f64", F64, 8},
		{"array is a pointer", Array{Elem: I64}, 8},
		{"str is a pointer", Str, 8},
		{"ptr", Ptr{Elem: F64}, 8},
		{"void has no storage", Void, 0},
		{"invalid has no storage", Inv, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.width, NativeWidth(tt.typ))
		})
	}
}
