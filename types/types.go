package types

import (
	"fmt"
	"strings"
)

type Kind int

const (
	InvalidKind Kind = iota
	VoidKind
	BoolKind
	IntKind
	FloatKind
	ArrayKind
	PtrKind
	StructKind
	FuncKind
)

// Type is the interface for all types in the lattice. Every type renders
// three ways: String for humans, IR for the low-level dump, and Mangle for
// composing unique specialization names.
type Type interface {
	Kind() Kind
	String() string
	IR() string
	Mangle() string
}

// Value-typed singletons; Int and Float are comparable by value so these are
// safe as map keys.
var (
	Inv  Type = Invalid{}
	Void Type = VoidType{}
	Bool Type = BoolType{}
	I8   Type = Int{Width: 8}
	I16  Type = Int{Width: 16}
	I32  Type = Int{Width: 32}
	I64  Type = Int{Width: 64}
	F32  Type = Float{Width: 32}
	F64  Type = Float{Width: 64}

	// Str and Bytes are dynamically-sized sequences of code units.
	Str   Type = Array{Elem: I16}
	Bytes Type = Array{Elem: I8}
)

// Invalid is the error sentinel. It unifies with nothing and is used to
// propagate unrecoverable type errors without aborting a walk.
type Invalid struct{}

func (i Invalid) Kind() Kind     { return InvalidKind }
func (i Invalid) String() string { return "Invalid" }
func (i Invalid) IR() string     { return "!" }
func (i Invalid) Mangle() string { return "?" }

type VoidType struct{}

func (v VoidType) Kind() Kind     { return VoidKind }
func (v VoidType) String() string { return "Void" }
func (v VoidType) IR() string     { return "" }
func (v VoidType) Mangle() string { return "v" }

type BoolType struct{}

func (b BoolType) Kind() Kind     { return BoolKind }
func (b BoolType) String() string { return "Bool" }
func (b BoolType) IR() string     { return "i32" }
func (b BoolType) Mangle() string { return "b" }

// Int represents a signed integer type with a given bit width.
type Int struct {
	Width uint32 // 8, 16, 32 or 64
}

func (i Int) Kind() Kind     { return IntKind }
func (i Int) String() string { return fmt.Sprintf("I%d", i.Width) }
func (i Int) IR() string     { return fmt.Sprintf("i%d", i.Width) }

func (i Int) Mangle() string {
	switch i.Width {
	case 8:
		return "a"
	case 16:
		return "s"
	case 32:
		return "i"
	default:
		return "l"
	}
}

// Float represents a floating-point type with a given precision.
type Float struct {
	Width uint32 // 32 or 64
}

func (f Float) Kind() Kind     { return FloatKind }
func (f Float) String() string { return fmt.Sprintf("F%d", f.Width) }
func (f Float) IR() string     { return fmt.Sprintf("f%d", f.Width) }

func (f Float) Mangle() string {
	if f.Width == 32 {
		return "f"
	}
	return "d"
}

// Array is a homogeneous sequence. Size is 0 for dynamically-sized sequences.
type Array struct {
	Elem Type
	Size int
}

func (a Array) Kind() Kind { return ArrayKind }

func (a Array) String() string {
	if a.Size > 0 {
		return fmt.Sprintf("[%d x %s]", a.Size, a.Elem)
	}
	return "[" + a.Elem.String() + "]"
}

func (a Array) IR() string     { return a.Elem.IR() + "*" }
func (a Array) Mangle() string { return "P" + a.Elem.Mangle() }

// Ptr represents a nullable value of the pointee type.
type Ptr struct {
	Elem Type
}

func (p Ptr) Kind() Kind     { return PtrKind }
func (p Ptr) String() string { return "Ptr_" + p.Elem.String() }
func (p Ptr) IR() string     { return p.Elem.IR() + "*" }
func (p Ptr) Mangle() string { return "p" + p.Elem.Mangle() }

type Field struct {
	Name string
	Type Type
}

// Struct is a named record with ordered fields.
type Struct struct {
	Name   string
	Fields []Field
}

func (s Struct) Kind() Kind { return StructKind }

func (s Struct) String() string {
	var fields []string
	for _, f := range s.Fields {
		fields = append(fields, f.Name+" "+f.Type.String())
	}
	return fmt.Sprintf("%s{%s}", s.Name, strings.Join(fields, ", "))
}

func (s Struct) IR() string     { return "%" + s.Name }
func (s Struct) Mangle() string { return fmt.Sprintf("T%d%s", len(s.Name), s.Name) }

type Param struct {
	Name string
	Type Type
}

// Func is a concrete function signature: one specialization of a generic
// function, with ordered parameters and the bound return type.
type Func struct {
	Name   string
	Params []Param
	Return Type
}

func (f Func) Kind() Kind { return FuncKind }

func (f Func) String() string {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.Name+" "+p.Type.String())
	}
	return fmt.Sprintf("%s = %s(%s)", f.Return, f.Name, strings.Join(params, ", "))
}

func (f Func) IR() string { return f.Return.IR() }

func (f Func) Mangle() string {
	m := "F" + f.Name
	for _, p := range f.Params {
		m += p.Type.Mangle()
	}
	return m + f.Return.Mangle()
}

// ParamTypes returns the parameter types in declaration order.
func (f Func) ParamTypes() []Type {
	ts := make([]Type, len(f.Params))
	for i, p := range f.Params {
		ts[i] = p.Type
	}
	return ts
}

// Equal performs structural equality with a dispatcher by Kind, avoiding
// brittle String() comparison.
func Equal(a, b Type) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	cmp := typeComparer(a.Kind())
	return cmp(a, b)
}

func typeComparer(k Kind) func(a, b Type) bool {
	switch k {
	case InvalidKind, VoidKind, BoolKind:
		return func(a, b Type) bool { return true }
	case IntKind:
		return eqInt
	case FloatKind:
		return eqFloat
	case ArrayKind:
		return eqArray
	case PtrKind:
		return eqPtr
	case StructKind:
		return eqStruct
	case FuncKind:
		return eqFunc
	default:
		return func(a, b Type) bool { panic(fmt.Sprintf("Equal: unhandled kind %v", k)) }
	}
}

func eqInt(a, b Type) bool {
	return a.(Int).Width == b.(Int).Width
}

func eqFloat(a, b Type) bool {
	return a.(Float).Width == b.(Float).Width
}

func eqArray(a, b Type) bool {
	aa := a.(Array)
	ba := b.(Array)
	return aa.Size == ba.Size && Equal(aa.Elem, ba.Elem)
}

func eqPtr(a, b Type) bool {
	return Equal(a.(Ptr).Elem, b.(Ptr).Elem)
}

func eqStruct(a, b Type) bool {
	as := a.(Struct)
	bs := b.(Struct)
	if as.Name != bs.Name || len(as.Fields) != len(bs.Fields) {
		return false
	}
	for i := range as.Fields {
		if as.Fields[i].Name != bs.Fields[i].Name || !Equal(as.Fields[i].Type, bs.Fields[i].Type) {
			return false
		}
	}
	return true
}

func eqFunc(a, b Type) bool {
	af := a.(Func)
	bf := b.(Func)
	if af.Name != bf.Name || len(af.Params) != len(bf.Params) {
		return false
	}
	for i := range af.Params {
		if af.Params[i].Name != bf.Params[i].Name || !Equal(af.Params[i].Type, bf.Params[i].Type) {
			return false
		}
	}
	return Equal(af.Return, bf.Return)
}

// EqualSlices reports whether two type slices compare equal elementwise.
func EqualSlices(xs, ys []Type) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// NativeWidth is the storage width in bytes under the native calling
// convention: Bool and I32 pass as 32-bit, I64 as 64-bit, floats at their
// own width, arrays and pointers as machine pointers. Void has no storage.
func NativeWidth(t Type) int {
	switch t.Kind() {
	case BoolKind:
		return 4
	case IntKind:
		return int(t.(Int).Width) / 8
	case FloatKind:
		return int(t.(Float).Width) / 8
	case ArrayKind, PtrKind:
		return 8
	default:
		return 0
	}
}
