package compiler

import (
	"fmt"

	"github.com/venom-lang/venom/ast"
	"github.com/venom-lang/venom/types"
)

// Symbol is any named entity stored in a scope frame.
type Symbol interface {
	SymName() string
	String() string
}

// Variable is declared by assignment or as a loop target. Its type may be
// widened in place by a later augmented assignment.
type Variable struct {
	Name string
	Type types.Type
}

func (v *Variable) SymName() string { return v.Name }
func (v *Variable) String() string {
	return fmt.Sprintf("VARIABLE(%q, %s)", v.Name, v.Type)
}

// Parameter is bound once from the call-site argument types and immutable
// thereafter.
type Parameter struct {
	Name string
	Type types.Type
}

func (p *Parameter) SymName() string { return p.Name }
func (p *Parameter) String() string {
	return fmt.Sprintf("PARAMETER(%q, %s)", p.Name, p.Type)
}

// FunctionBuiltin is a generic builtin. Specializations accumulates one
// concrete signature per distinct argument-type tuple seen across all call
// sites analyzed against this table.
type FunctionBuiltin struct {
	Name            string
	Return          types.Type
	Specializations map[string]types.Func
	Order           []string // mangled names in insertion order
}

func (fb *FunctionBuiltin) SymName() string { return fb.Name }
func (fb *FunctionBuiltin) String() string {
	n := len(fb.Specializations)
	plural := ""
	if n != 1 {
		plural = "s"
	}
	return fmt.Sprintf("BUILTINFUNC(%q, %d specialization%s)", fb.Name, n, plural)
}

// Specialize binds concrete argument types to this builtin, registering the
// signature under its mangled name. It reports whether the signature is new.
func (fb *FunctionBuiltin) Specialize(args []types.Type) (types.Func, string, bool) {
	mangled := Mangle(fb.Name, args, fb.Return)
	if f, ok := fb.Specializations[mangled]; ok {
		return f, mangled, false
	}
	params := make([]types.Param, len(args))
	for i, a := range args {
		params[i] = types.Param{Name: fmt.Sprintf("arg%d", i), Type: a}
	}
	f := types.Func{Name: fb.Name, Params: params, Return: fb.Return}
	fb.Specializations[mangled] = f
	fb.Order = append(fb.Order, mangled)
	return f, mangled, true
}

// FunctionDef is a user function. It accumulates specializations the same way
// builtins do, one per distinct call-site argument-type tuple.
type FunctionDef struct {
	Name            string
	Node            *ast.FuncDef
	Params          []string
	Specializations map[string]types.Func
	Order           []string
}

func (fd *FunctionDef) SymName() string { return fd.Name }
func (fd *FunctionDef) String() string {
	np := len(fd.Params)
	ns := len(fd.Specializations)
	pp, ps := "", ""
	if np != 1 {
		pp = "s"
	}
	if ns != 1 {
		ps = "s"
	}
	return fmt.Sprintf("FUNCTIONDEF(%q, %d parameter%s, %d specialization%s)", fd.Name, np, pp, ns, ps)
}

// AddSpecialization registers a concrete signature for this function,
// reporting whether it is new.
func (fd *FunctionDef) AddSpecialization(f types.Func) (string, bool) {
	mangled := Mangle(fd.Name, f.ParamTypes(), f.Return)
	if _, ok := fd.Specializations[mangled]; ok {
		return mangled, false
	}
	if fd.Specializations == nil {
		fd.Specializations = make(map[string]types.Func)
	}
	fd.Specializations[mangled] = f
	fd.Order = append(fd.Order, mangled)
	return mangled, true
}
