package ir

import (
	"fmt"

	"github.com/venom-lang/venom/ast"
	"github.com/venom-lang/venom/compiler"
	"github.com/venom-lang/venom/token"
	"github.com/venom-lang/venom/types"
)

// Builder lowers an analyzed function body into Module form. It runs only
// after analysis succeeded and trusts the symbol table for every type; any
// shape it cannot lower aborts the whole build with a positioned error
// instead of emitting a malformed function.
type Builder struct {
	table  *compiler.SymbolTable
	module *Module
	fn     *Function
	block  *Block

	blockCount int
}

func NewBuilder(table *compiler.SymbolTable) *Builder {
	return &Builder{
		table:  table,
		module: NewModule(),
	}
}

func (b *Builder) failf(pos token.Pos, format string, args ...any) error {
	return &token.CompileError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Build lowers one IR function per specialization recorded against fn's
// symbol. The current scope must be the one fn's scope was created under.
func (b *Builder) Build(fn *ast.FuncDef) (*Module, error) {
	sym, ok := b.table.Resolve(fn.Name)
	if !ok {
		return nil, b.failf(fn.Pos(), "undefined function: %s", fn.Name)
	}
	fd, ok := sym.(*compiler.FunctionDef)
	if !ok {
		return nil, b.failf(fn.Pos(), "cannot lower %s", sym)
	}
	if len(fd.Order) == 0 {
		return nil, b.failf(fn.Pos(), "function %q has no specializations", fn.Name)
	}

	for _, mangled := range fd.Order {
		spec := fd.Specializations[mangled]
		if err := b.table.SetScope(fn.Name); err != nil {
			return nil, err
		}
		err := b.buildFunc(fn, mangled, spec)
		b.table.PopScope()
		if err != nil {
			return nil, err
		}
	}
	return b.module, nil
}

func (b *Builder) buildFunc(fn *ast.FuncDef, mangled string, spec types.Func) error {
	b.module.resetVersions()
	b.blockCount = 0

	params := make([]Param, len(spec.Params))
	for i, p := range spec.Params {
		params[i] = Param{Name: p.Name, Type: p.Type}
	}
	b.fn = &Function{
		Name:   mangled,
		Return: spec.Return,
		Params: params,
	}
	b.block = b.newBlock("entry")

	for _, stmt := range fn.Body {
		if err := b.lowerStmt(stmt); err != nil {
			return err
		}
	}

	// A body that falls off the end returns no value.
	if b.block.Term == nil {
		b.block.Term = &Return{}
	}

	b.module.Funcs = append(b.module.Funcs, b.fn)
	return nil
}

func (b *Builder) newBlock(name string) *Block {
	if name == "" {
		b.blockCount++
		name = fmt.Sprintf("L%d", b.blockCount)
	}
	blk := &Block{Name: name}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	b.block = blk
	return blk
}

func (b *Builder) emit(s Statement) {
	b.block.Stmts = append(b.block.Stmts, s)
}

// castTypes reconciles two operand versions for a binary form. Equal types
// pass through. Unequal types with distinct positive ranks cast the lower
// operand up and return the substituted versions; anything else cannot be
// reconciled and fails.
func (b *Builder) castTypes(pos token.Pos, left, right int) (int, int, types.Type, error) {
	lt := b.module.TypeOf(left)
	rt := b.module.TypeOf(right)
	if types.Equal(lt, rt) {
		return left, right, lt, nil
	}

	lr := types.Rank(lt)
	rr := types.Rank(rt)
	if lr == 0 || rr == 0 || lr == rr {
		return 0, 0, types.Inv, b.failf(pos, "cannot reconcile types %s and %s", lt, rt)
	}

	if lr < rr {
		v := b.module.newVersion(rt)
		b.emit(&Cast{Ver: v, From: left, To: rt})
		return v, right, rt, nil
	}
	v := b.module.newVersion(lt)
	b.emit(&Cast{Ver: v, From: right, To: lt})
	return left, v, lt, nil
}

func (b *Builder) lowerStmt(stmt ast.Statement) error {
	if b.block.Term != nil {
		return b.failf(stmt.Pos(), "unreachable statement after return")
	}

	switch s := stmt.(type) {
	case *ast.AssignStatement:
		return b.lowerAssign(s)
	case *ast.AnnAssignStatement:
		// A bare declaration or a None value binds nothing; the annotation
		// already fixed the symbol's type during analysis.
		if s.Value == nil {
			return nil
		}
		if _, isNone := s.Value.(*ast.NoneLiteral); isNone {
			return nil
		}
		v, err := b.lowerExpr(s.Value)
		if err != nil {
			return err
		}
		b.module.bind(s.Target.Name, v)
		return nil
	case *ast.AugAssignStatement:
		return b.lowerAugAssign(s)
	case *ast.ReturnStatement:
		return b.lowerReturn(s)
	case *ast.ForStatement:
		return b.lowerFor(s)
	case *ast.ExprStatement:
		_, err := b.lowerExpr(s.Expr)
		return err
	default:
		return b.failf(stmt.Pos(), "unsupported statement type %T", stmt)
	}
}

func (b *Builder) lowerAssign(s *ast.AssignStatement) error {
	v, err := b.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	for _, target := range s.Targets {
		ident, ok := target.(*ast.Identifier)
		if !ok {
			return b.failf(target.Pos(), "unsupported assignment target %T", target)
		}
		b.module.bind(ident.Name, v)
	}
	return nil
}

// lowerAugAssign writes the combined result back into the target's existing
// version slot instead of allocating a new one.
func (b *Builder) lowerAugAssign(s *ast.AugAssignStatement) error {
	target, err := b.lowerExpr(s.Target)
	if err != nil {
		return err
	}
	value, err := b.lowerExpr(s.Value)
	if err != nil {
		return err
	}

	left, right, t, err := b.castTypes(s.Pos(), target, value)
	if err != nil {
		return err
	}
	b.emit(&BinaryOp{Ver: target, Op: s.Op, Left: left, Right: right, Type: t})
	b.module.types[target] = t
	return nil
}

func (b *Builder) lowerReturn(s *ast.ReturnStatement) error {
	if s.Value == nil {
		b.block.Term = &Return{}
		return nil
	}
	// return None closes the block the same way a bare return does.
	if _, isNone := s.Value.(*ast.NoneLiteral); isNone {
		b.block.Term = &Return{}
		return nil
	}
	v, err := b.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	b.block.Term = &Return{Value: v, HasValue: true}
	return nil
}

// lowerFor wires the minimal range-style loop: body block, in-place
// increment of the loop variable, a bound comparison, and a backward
// conditional jump. Array iteration is not lowered yet.
// TODO: thread block parameters once the loop body can rebind outer names.
func (b *Builder) lowerFor(s *ast.ForStatement) error {
	ident, ok := s.Target.(*ast.Identifier)
	if !ok {
		return b.failf(s.Target.Pos(), "unsupported loop target %T", s.Target)
	}
	call, ok := s.Iter.(*ast.CallExpr)
	if !ok {
		return b.failf(s.Iter.Pos(), "only call iterables can be lowered")
	}

	target, err := b.lowerExpr(ident)
	if err != nil {
		return err
	}
	bound, err := b.lowerExpr(call)
	if err != nil {
		return err
	}
	target, bound, _, err = b.castTypes(s.Pos(), target, bound)
	if err != nil {
		return err
	}

	body := b.newBlock("")
	for _, stmt := range s.Body {
		if err := b.lowerStmt(stmt); err != nil {
			return err
		}
	}
	if b.block.Term != nil {
		return b.failf(s.Pos(), "loop body may not return")
	}

	b.emit(&Increment{Ver: target})
	cond := b.module.newVersion(types.Bool)
	b.emit(&CompareOp{Ver: cond, Op: token.Lt, Left: target, Right: bound})
	b.block.Term = &CondJump{Target: body.Name, Op: token.Lt, Cond: cond}

	b.newBlock("")
	for _, stmt := range s.Else {
		if err := b.lowerStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) lowerExpr(expr ast.Expression) (int, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		v := b.module.newVersion(types.I64)
		b.emit(&Literal{Ver: v, Value: e.String(), Type: types.I64})
		return v, nil
	case *ast.FloatLiteral:
		v := b.module.newVersion(types.F64)
		b.emit(&Literal{Ver: v, Value: e.String(), Type: types.F64})
		return v, nil
	case *ast.BoolLiteral:
		v := b.module.newVersion(types.Bool)
		b.emit(&Literal{Ver: v, Value: e.String(), Type: types.Bool})
		return v, nil
	case *ast.StringLiteral:
		v := b.module.newVersion(types.Str)
		b.emit(&Literal{Ver: v, Value: e.String(), Type: types.Str})
		return v, nil
	case *ast.BytesLiteral:
		v := b.module.newVersion(types.Bytes)
		b.emit(&Literal{Ver: v, Value: e.String(), Type: types.Bytes})
		return v, nil
	case *ast.NoneLiteral:
		v := b.module.newVersion(types.Void)
		b.emit(&Literal{Ver: v, Value: e.String(), Type: types.Void})
		return v, nil

	case *ast.Identifier:
		return b.lowerIdent(e)

	case *ast.UnaryExpr:
		operand, err := b.lowerExpr(e.Operand)
		if err != nil {
			return 0, err
		}
		t := b.module.TypeOf(operand)
		v := b.module.newVersion(t)
		b.emit(&UnaryOp{Ver: v, Op: e.Op, Operand: operand, Type: t})
		return v, nil

	case *ast.BinaryExpr:
		left, err := b.lowerExpr(e.Left)
		if err != nil {
			return 0, err
		}
		right, err := b.lowerExpr(e.Right)
		if err != nil {
			return 0, err
		}
		left, right, t, err := b.castTypes(e.Pos(), left, right)
		if err != nil {
			return 0, err
		}
		v := b.module.newVersion(t)
		b.emit(&BinaryOp{Ver: v, Op: e.Op, Left: left, Right: right, Type: t})
		return v, nil

	case *ast.CompareExpr:
		return b.lowerCompare(e)

	case *ast.SubscriptExpr:
		return b.lowerSubscript(e)

	case *ast.CallExpr:
		return b.lowerCall(e)

	case *ast.IfExpr:
		return b.lowerIfExpr(e)

	default:
		return 0, b.failf(expr.Pos(), "unsupported expression type %T", expr)
	}
}

// lowerIdent reuses the name's latest version if one exists; the first read
// emits an explicit reference with the symbol's resolved type.
func (b *Builder) lowerIdent(e *ast.Identifier) (int, error) {
	if v, ok := b.module.lookup(e.Name); ok {
		return v, nil
	}

	sym, ok := b.table.Resolve(e.Name)
	if !ok {
		return 0, b.failf(e.Pos(), "undefined identifier: %s", e.Name)
	}
	var t types.Type
	switch s := sym.(type) {
	case *compiler.Variable:
		t = s.Type
	case *compiler.Parameter:
		t = s.Type
	default:
		return 0, b.failf(e.Pos(), "cannot lower %s", sym)
	}

	v := b.module.newVersion(t)
	b.emit(&VarRef{Ver: v, Name: e.Name, Type: t})
	b.module.bind(e.Name, v)
	return v, nil
}

func (b *Builder) lowerCompare(e *ast.CompareExpr) (int, error) {
	if len(e.Ops) != 1 {
		return 0, b.failf(e.Pos(), "chained comparisons are not supported")
	}
	left, err := b.lowerExpr(e.Left)
	if err != nil {
		return 0, err
	}
	right, err := b.lowerExpr(e.Rights[0])
	if err != nil {
		return 0, err
	}
	left, right, _, err = b.castTypes(e.Pos(), left, right)
	if err != nil {
		return 0, err
	}
	v := b.module.newVersion(types.Bool)
	b.emit(&CompareOp{Ver: v, Op: e.Ops[0], Left: left, Right: right})
	return v, nil
}

func (b *Builder) lowerSubscript(e *ast.SubscriptExpr) (int, error) {
	base, err := b.lowerExpr(e.Value)
	if err != nil {
		return 0, err
	}
	offset, err := b.lowerExpr(e.Index)
	if err != nil {
		return 0, err
	}

	arr, ok := b.module.TypeOf(base).(types.Array)
	if !ok {
		return 0, b.failf(e.Pos(), "cannot subscript non-array type %s", b.module.TypeOf(base))
	}
	v := b.module.newVersion(arr.Elem)
	b.emit(&MemoryLoad{Ver: v, Base: base, Offset: offset, Type: arr.Elem})
	return v, nil
}

// lowerCall matches the lowered argument types against the specializations
// the analyzer accumulated and emits a call to the matching mangled name.
func (b *Builder) lowerCall(e *ast.CallExpr) (int, error) {
	ident, ok := e.Func.(*ast.Identifier)
	if !ok {
		return 0, b.failf(e.Func.Pos(), "unsupported call target: %s", e.Func)
	}

	args := make([]int, len(e.Args))
	argTypes := make([]types.Type, len(e.Args))
	for i, arg := range e.Args {
		v, err := b.lowerExpr(arg)
		if err != nil {
			return 0, err
		}
		args[i] = v
		argTypes[i] = b.module.TypeOf(v)
	}

	// list(x) passes the array version through untouched.
	if ident.Name == "list" {
		if _, found := b.table.Resolve("list"); !found {
			if len(args) != 1 {
				return 0, b.failf(e.Pos(), "list takes exactly one argument")
			}
			return args[0], nil
		}
	}

	sym, found := b.table.Resolve(ident.Name)
	if !found {
		return 0, b.failf(ident.Pos(), "undefined function: %s", ident.Name)
	}
	fb, ok := sym.(*compiler.FunctionBuiltin)
	if !ok {
		return 0, b.failf(e.Pos(), "cannot call %s", sym)
	}

	for _, mangled := range fb.Order {
		spec := fb.Specializations[mangled]
		if !types.EqualSlices(spec.ParamTypes(), argTypes) {
			continue
		}
		v := b.module.newVersion(spec.Return)
		b.emit(&Call{Ver: v, Func: mangled, Args: args, Type: spec.Return})
		return v, nil
	}
	return 0, b.failf(e.Pos(), "no specialization of %s matches the argument types", ident.Name)
}

func (b *Builder) lowerIfExpr(e *ast.IfExpr) (int, error) {
	cmp, ok := e.Test.(*ast.CompareExpr)
	if !ok || len(cmp.Ops) != 1 {
		return 0, b.failf(e.Test.Pos(), "ternary test must be a single comparison")
	}

	cond, err := b.lowerCompare(cmp)
	if err != nil {
		return 0, err
	}

	then, err := b.lowerExpr(e.Body)
	if err != nil {
		return 0, err
	}
	els, err := b.lowerExpr(e.Else)
	if err != nil {
		return 0, err
	}
	then, els, t, err := b.castTypes(e.Pos(), then, els)
	if err != nil {
		return 0, err
	}

	v := b.module.newVersion(t)
	b.emit(&CondMove{Ver: v, Cmp: cond, Then: then, Else: els, Type: t})
	return v, nil
}
