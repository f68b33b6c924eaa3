package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/venom-lang/venom/ast"
	"github.com/venom-lang/venom/token"
	"github.com/venom-lang/venom/types"
)

// Analyzer performs the single semantic pass over one function body: it
// deduces the type of every expression, registers variables and loop targets
// into the current scope, records builtin specializations per call site, and
// collects the type of every return statement. It never stops at the first
// failure; diagnostics accumulate and Inv propagates so one pass can report
// as much as possible.
type Analyzer struct {
	table       *SymbolTable
	source      string
	returnTypes []types.Type

	Errors []*token.CompileError
	Infos  []*token.CompileError
}

func NewAnalyzer(table *SymbolTable, source string) *Analyzer {
	return &Analyzer{
		table:  table,
		source: source,
	}
}

func (a *Analyzer) errorf(pos token.Pos, format string, args ...any) {
	a.Errors = append(a.Errors, &token.CompileError{
		Pos: pos,
		Msg: fmt.Sprintf(format, args...),
	})
}

func (a *Analyzer) infof(pos token.Pos, format string, args ...any) {
	a.Infos = append(a.Infos, &token.CompileError{
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
		Severity: token.Info,
	})
}

// Render formats the accumulated error diagnostics against the analyzed
// source, with line excerpts and carets.
func (a *Analyzer) Render() string {
	return token.RenderAll(a.Errors, a.source)
}

// Err folds the accumulated diagnostics into one error, or nil.
func (a *Analyzer) Err() error {
	if len(a.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(a.Errors))
	for i, ce := range a.Errors {
		errs[i] = ce
	}
	return errors.Join(errs...)
}

// ReturnTypes lists the deduced type of every return statement in source
// order.
func (a *Analyzer) ReturnTypes() []types.Type {
	return a.returnTypes
}

// AnalyzeFunc walks the function body in the current scope. Parameters must
// already be bound into that scope by the caller. It returns the function's
// return type: an explicit annotation wins outright; otherwise the type is
// inferred from the collected return statements, which must agree.
func (a *Analyzer) AnalyzeFunc(fn *ast.FuncDef) (types.Type, error) {
	for _, stmt := range fn.Body {
		a.stmt(stmt)
	}

	if len(a.Errors) > 0 {
		return types.Inv, a.Err()
	}

	if fn.Returns != "" {
		if t, err := types.ParseAnnotation(fn.Returns); err == nil && t.Kind() != types.InvalidKind {
			return t, nil
		}
	}

	if len(a.returnTypes) == 0 {
		return types.Void, nil
	}

	var distinct []types.Type
	for _, t := range a.returnTypes {
		if t.Kind() == types.InvalidKind {
			continue
		}
		seen := false
		for _, d := range distinct {
			if types.Equal(d, t) {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, t)
		}
	}

	switch len(distinct) {
	case 0:
		// Every return expression was uninferable.
		return types.Inv, fmt.Errorf("cannot deduce return type for function %q", fn.Name)
	case 1:
		return distinct[0], nil
	default:
		names := make([]string, len(distinct))
		for i, t := range distinct {
			names[i] = t.String()
		}
		sort.Strings(names)
		a.errorf(fn.Pos(), "function %q has different return types: %s", fn.Name, strings.Join(names, ", "))
		return types.Inv, a.Err()
	}
}

func (a *Analyzer) stmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.AssignStatement:
		a.assign(s)
	case *ast.AnnAssignStatement:
		a.annAssign(s)
	case *ast.AugAssignStatement:
		a.augAssign(s)
	case *ast.ReturnStatement:
		a.ret(s)
	case *ast.ForStatement:
		a.forLoop(s)
	case *ast.ExprStatement:
		a.exprType(s.Expr)
	default:
		a.errorf(stmt.Pos(), "unsupported statement type %T", stmt)
	}
}

func (a *Analyzer) assign(s *ast.AssignStatement) {
	valueType := a.exprType(s.Value)
	for _, target := range s.Targets {
		switch t := target.(type) {
		case *ast.Identifier:
			a.table.AddSymbol(&Variable{Name: t.Name, Type: valueType})
		case *ast.TupleExpr:
			a.errorf(t.Pos(), "unpacking assignment targets are not supported")
		default:
			a.errorf(target.Pos(), "unsupported assignment target %T", target)
		}
	}
}

func (a *Analyzer) annAssign(s *ast.AnnAssignStatement) {
	annotated := types.Inv
	if s.Annotation != "" {
		// An unparseable annotation is ignored and inference takes over.
		if t, err := types.ParseAnnotation(s.Annotation); err == nil {
			annotated = t
		}
	}

	inferred := types.Inv
	if s.Value != nil {
		inferred = a.exprType(s.Value)
	}

	chosen := types.Inv
	if annotated.Kind() != types.InvalidKind {
		chosen = annotated
		// A None value is compatible with any annotation.
		if inferred.Kind() != types.InvalidKind && inferred.Kind() != types.VoidKind && !types.Equal(annotated, inferred) {
			a.errorf(s.Pos(), "inferred type %s for %q conflicts with annotated type %s", inferred, s.Target.Name, annotated)
			chosen = types.Inv
		}
	} else if inferred.Kind() != types.InvalidKind {
		chosen = inferred
	}

	a.table.AddSymbol(&Variable{Name: s.Target.Name, Type: chosen})
}

func (a *Analyzer) augAssign(s *ast.AugAssignStatement) {
	sym, ok := a.table.Resolve(s.Target.Name)
	if !ok {
		a.errorf(s.Target.Pos(), "undefined identifier: %s", s.Target.Name)
		a.exprType(s.Value)
		return
	}

	valueType := a.exprType(s.Value)
	switch v := sym.(type) {
	case *Variable:
		// Last write wins: the stored type is widened in place, no union
		// type is modeled.
		if valueType.Kind() != types.InvalidKind && !types.Equal(v.Type, valueType) {
			v.Type = valueType
		}
	case *Parameter:
		if valueType.Kind() != types.InvalidKind && !types.Equal(v.Type, valueType) {
			a.errorf(s.Pos(), "cannot change type of parameter %q from %s to %s", v.Name, v.Type, valueType)
		}
	default:
		a.errorf(s.Pos(), "cannot assign to %s", sym)
	}
}

func (a *Analyzer) ret(s *ast.ReturnStatement) {
	t := types.Void
	if s.Value != nil {
		t = a.exprType(s.Value)
	}
	a.returnTypes = append(a.returnTypes, t)
}

func (a *Analyzer) forLoop(s *ast.ForStatement) {
	elem := types.Inv
	switch it := s.Iter.(type) {
	case *ast.CallExpr:
		// The call's deduced type is the element type; iterating range(...)
		// yields I64 elements and registers the specialization.
		elem = a.exprType(it)
	default:
		iterType := a.exprType(s.Iter)
		if arr, ok := iterType.(types.Array); ok {
			elem = arr.Elem
		} else if iterType.Kind() != types.InvalidKind {
			a.errorf(s.Iter.Pos(), "unsupported loop iterable of type %s", iterType)
		}
	}

	switch t := s.Target.(type) {
	case *ast.Identifier:
		a.table.AddSymbol(&Variable{Name: t.Name, Type: elem})
	case *ast.TupleExpr:
		a.errorf(t.Pos(), "unpacking loop targets are not supported")
	default:
		a.errorf(s.Target.Pos(), "unsupported loop target %T", s.Target)
	}

	for _, stmt := range s.Body {
		a.stmt(stmt)
	}
	for _, stmt := range s.Else {
		a.stmt(stmt)
	}
}

// exprType deduces the type of an expression, emitting diagnostics and
// registering builtin specializations along the way. Inv marks a subtree
// whose type could not be established.
func (a *Analyzer) exprType(expr ast.Expression) types.Type {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return types.I64
	case *ast.FloatLiteral:
		return types.F64
	case *ast.BoolLiteral:
		return types.Bool
	case *ast.StringLiteral:
		return types.Str
	case *ast.BytesLiteral:
		return types.Bytes
	case *ast.NoneLiteral:
		return types.Void

	case *ast.Identifier:
		return a.identType(e)

	case *ast.BinaryExpr:
		return a.binaryType(e)

	case *ast.CompareExpr:
		// Operand walks register any nested call specializations.
		a.exprType(e.Left)
		for _, r := range e.Rights {
			a.exprType(r)
		}
		return types.Bool

	case *ast.BoolExpr:
		for _, v := range e.Values {
			a.exprType(v)
		}
		return types.Bool

	case *ast.UnaryExpr:
		return a.unaryType(e)

	case *ast.SubscriptExpr:
		return a.subscriptType(e)

	case *ast.ListLiteral:
		return a.listType(e)

	case *ast.CallExpr:
		return a.callType(e)

	case *ast.IfExpr:
		return a.ifExprType(e)

	default:
		a.errorf(expr.Pos(), "unsupported expression type %T", expr)
		return types.Inv
	}
}

func (a *Analyzer) identType(e *ast.Identifier) types.Type {
	sym, ok := a.table.Resolve(e.Name)
	if !ok {
		a.errorf(e.Pos(), "undefined identifier: %s", e.Name)
		return types.Inv
	}
	switch s := sym.(type) {
	case *Variable:
		return s.Type
	case *Parameter:
		return s.Type
	default:
		a.errorf(e.Pos(), "cannot use function %q as a value", e.Name)
		return types.Inv
	}
}

func (a *Analyzer) binaryType(e *ast.BinaryExpr) types.Type {
	leftType := a.exprType(e.Left)
	rightType := a.exprType(e.Right)
	if leftType.Kind() == types.InvalidKind || rightType.Kind() == types.InvalidKind {
		return types.Inv
	}

	result := types.CoerceBinary(e.Op, leftType, rightType)
	if result.Kind() == types.InvalidKind {
		a.errorf(e.Pos(), "unsupported operator: %q for types: %s, %s", e.Op.String(), leftType, rightType)
	}
	return result
}

func (a *Analyzer) unaryType(e *ast.UnaryExpr) types.Type {
	operandType := a.exprType(e.Operand)
	if operandType.Kind() == types.InvalidKind {
		return types.Inv
	}

	result := types.CoerceUnary(e.Op, operandType)
	if result.Kind() == types.InvalidKind {
		a.errorf(e.Pos(), "unsupported unary operator: %q for type: %s", e.Op.String(), operandType)
	}
	return result
}

func (a *Analyzer) subscriptType(e *ast.SubscriptExpr) types.Type {
	ident, ok := e.Value.(*ast.Identifier)
	if !ok {
		a.errorf(e.Value.Pos(), "unsupported subscript base %T", e.Value)
		return types.Inv
	}

	sym, ok := a.table.Resolve(ident.Name)
	if !ok {
		a.errorf(ident.Pos(), "undefined identifier: %s", ident.Name)
		return types.Inv
	}

	var symType types.Type
	switch s := sym.(type) {
	case *Variable:
		symType = s.Type
	case *Parameter:
		symType = s.Type
	default:
		a.errorf(e.Pos(), "cannot subscript %s", sym)
		return types.Inv
	}

	arr, ok := symType.(types.Array)
	if !ok {
		a.errorf(e.Pos(), "cannot subscript non-array type %s", symType)
		return types.Inv
	}

	a.exprType(e.Index)
	return arr.Elem
}

func (a *Analyzer) listType(e *ast.ListLiteral) types.Type {
	if len(e.Elems) == 0 {
		a.errorf(e.Pos(), "empty lists are not supported")
		return types.Inv
	}

	elemType := a.exprType(e.Elems[0])
	if elemType.Kind() == types.InvalidKind {
		return types.Inv
	}
	for _, elem := range e.Elems[1:] {
		t := a.exprType(elem)
		if t.Kind() == types.InvalidKind {
			return types.Inv
		}
		if !types.Equal(elemType, t) {
			a.errorf(e.Pos(), "mixed-type lists are not supported")
			return types.Inv
		}
	}
	return types.Array{Elem: elemType}
}

func (a *Analyzer) callType(e *ast.CallExpr) types.Type {
	ident, ok := e.Func.(*ast.Identifier)
	if !ok {
		a.errorf(e.Func.Pos(), "unsupported call target: %s", e.Func)
		return types.Inv
	}

	sym, found := a.table.Resolve(ident.Name)
	if found {
		fb, ok := sym.(*FunctionBuiltin)
		if !ok {
			a.errorf(e.Pos(), "cannot call %s", sym)
			return types.Inv
		}

		args := make([]types.Type, len(e.Args))
		for i, arg := range e.Args {
			args[i] = a.exprType(arg)
			if args[i].Kind() == types.InvalidKind {
				return types.Inv
			}
		}

		f, mangled, fresh := fb.Specialize(args)
		if fresh {
			a.infof(e.Pos(), "compiled new specialization %s of builtin %s", mangled, fb.Name)
		}
		return f.Return
	}

	// list(x) passes an array value through unchanged.
	if ident.Name == "list" {
		if len(e.Args) == 0 {
			a.errorf(e.Pos(), "empty lists are not supported")
			return types.Inv
		}
		if len(e.Args) > 1 {
			a.errorf(e.Pos(), "list takes exactly one argument, got %d", len(e.Args))
			return types.Inv
		}
		argType := a.exprType(e.Args[0])
		if argType.Kind() == types.ArrayKind {
			return argType
		}
		if argType.Kind() != types.InvalidKind {
			a.errorf(e.Pos(), "unsupported type in list: %s", argType)
		}
		return types.Inv
	}

	a.errorf(ident.Pos(), "undefined function: %s", ident.Name)
	return types.Inv
}

func (a *Analyzer) ifExprType(e *ast.IfExpr) types.Type {
	cmp, ok := e.Test.(*ast.CompareExpr)
	if !ok {
		a.errorf(e.Test.Pos(), "unsupported ternary test %T", e.Test)
		return types.Inv
	}
	if len(cmp.Ops) > 1 {
		a.errorf(cmp.Pos(), "ternary test does not support more than one comparison")
		return types.Inv
	}
	a.exprType(cmp.Left)
	a.exprType(cmp.Rights[0])

	ifType := a.exprType(e.Body)
	elseType := a.exprType(e.Else)
	if ifType.Kind() == types.InvalidKind || elseType.Kind() == types.InvalidKind {
		return types.Inv
	}
	if !types.Equal(ifType, elseType) {
		a.errorf(e.Pos(), "ternary has different types for if and else branches: %s and %s", ifType, elseType)
		return types.Inv
	}
	return ifType
}
