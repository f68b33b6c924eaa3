package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venom-lang/venom/ast"
	"github.com/venom-lang/venom/token"
	"github.com/venom-lang/venom/types"
)

var pos = token.Pos{Line: 1, Column: 1}

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Position: pos, Name: name}
}

func intLit(v int64) *ast.IntLiteral {
	return &ast.IntLiteral{Position: pos, Value: v}
}

func floatLit(v float64) *ast.FloatLiteral {
	return &ast.FloatLiteral{Position: pos, Value: v}
}

func bin(op token.BinaryOp, left, right ast.Expression) *ast.BinaryExpr {
	return &ast.BinaryExpr{Position: pos, Op: op, Left: left, Right: right}
}

func cmp(op token.CompareOp, left, right ast.Expression) *ast.CompareExpr {
	return &ast.CompareExpr{Position: pos, Left: left, Ops: []token.CompareOp{op}, Rights: []ast.Expression{right}}
}

func call(name string, args ...ast.Expression) *ast.CallExpr {
	return &ast.CallExpr{Position: pos, Func: ident(name), Args: args}
}

func ret(value ast.Expression) *ast.ReturnStatement {
	return &ast.ReturnStatement{Position: pos, Value: value}
}

func assign(name string, value ast.Expression) *ast.AssignStatement {
	return &ast.AssignStatement{Position: pos, Targets: []ast.Expression{ident(name)}, Value: value}
}

func funcDef(name string, params []string, returns string, body ...ast.Statement) *ast.FuncDef {
	return &ast.FuncDef{Position: pos, Name: name, Params: params, Returns: returns, Body: body}
}

// analyze binds argTypes as parameters of fn in a fresh function scope and
// runs the analyzer over the body.
func analyze(t *testing.T, fn *ast.FuncDef, argTypes ...types.Type) (*Analyzer, *SymbolTable, types.Type, error) {
	t.Helper()
	require.Equal(t, len(fn.Params), len(argTypes))

	table := NewSymbolTable("")
	table.PushScope(fn.Name, FuncScope)
	for i, name := range fn.Params {
		table.AddSymbol(&Parameter{Name: name, Type: argTypes[i]})
	}
	a := NewAnalyzer(table, "")
	retType, err := a.AnalyzeFunc(fn)
	return a, table, retType, err
}

func TestAnalyzeIntAddition(t *testing.T) {
	fn := funcDef("add", []string{"a", "b"}, "",
		ret(bin(token.Add, ident("a"), ident("b"))),
	)
	a, _, retType, err := analyze(t, fn, types.I64, types.I64)
	require.NoError(t, err)
	assert.Equal(t, types.I64, retType)
	assert.Empty(t, a.Errors)
}

func TestAnalyzeFloatPromotion(t *testing.T) {
	fn := funcDef("add", []string{"a", "b"}, "",
		ret(bin(token.Add, ident("a"), ident("b"))),
	)
	_, _, retType, err := analyze(t, fn, types.I64, types.F64)
	require.NoError(t, err)
	assert.Equal(t, types.F64, retType)
}

func TestAnalyzeTrueDivisionAlwaysFloat(t *testing.T) {
	fn := funcDef("half", []string{"a"}, "",
		ret(bin(token.Div, ident("a"), intLit(2))),
	)
	_, _, retType, err := analyze(t, fn, types.I64)
	require.NoError(t, err)
	assert.Equal(t, types.F64, retType)
}

func TestAnalyzeZeroReturnsMeanVoid(t *testing.T) {
	fn := funcDef("noop", []string{"a"}, "",
		assign("x", ident("a")),
	)
	_, _, retType, err := analyze(t, fn, types.I64)
	require.NoError(t, err)
	assert.Equal(t, types.Void, retType)
}

func TestAnalyzeReturnTypeConflict(t *testing.T) {
	fn := funcDef("mixed", nil, "",
		ret(intLit(1)),
		ret(floatLit(2.0)),
	)
	a, _, retType, err := analyze(t, fn)
	require.Error(t, err)
	assert.Equal(t, types.InvalidKind, retType.Kind())
	assert.Len(t, a.ReturnTypes(), 2)
	require.Len(t, a.Errors, 1)
	assert.Contains(t, a.Errors[0].Msg, "different return types")
	assert.Contains(t, a.Errors[0].Msg, "F64")
	assert.Contains(t, a.Errors[0].Msg, "I64")
}

func TestAnalyzeAnnotationWinsOverInference(t *testing.T) {
	// An explicit annotation silences even conflicting return statements.
	fn := funcDef("mixed", nil, "float",
		ret(intLit(1)),
		ret(floatLit(2.0)),
	)
	_, _, retType, err := analyze(t, fn)
	require.NoError(t, err)
	assert.Equal(t, types.F64, retType)
}

func TestAnalyzeUndefinedIdentifier(t *testing.T) {
	fn := funcDef("f", nil, "",
		ret(ident("missing")),
	)
	a, _, retType, err := analyze(t, fn)
	require.Error(t, err)
	assert.Equal(t, types.InvalidKind, retType.Kind())
	require.Len(t, a.Errors, 1)
	assert.Contains(t, a.Errors[0].Msg, "undefined identifier: missing")
	assert.Contains(t, a.Render(), "undefined identifier: missing")
}

func TestAnalyzeRangeLoopRegistersSpecialization(t *testing.T) {
	// for i in range(n): s += i
	fn := funcDef("sum", []string{"n"}, "",
		assign("s", intLit(0)),
		&ast.ForStatement{
			Position: pos,
			Target:   ident("i"),
			Iter:     call("range", ident("n")),
			Body: []ast.Statement{
				&ast.AugAssignStatement{Position: pos, Target: ident("s"), Op: token.Add, Value: ident("i")},
			},
		},
		ret(ident("s")),
	)
	a, table, retType, err := analyze(t, fn, types.I64)
	require.NoError(t, err)
	assert.Equal(t, types.I64, retType)

	// The loop variable picked up the element type of range.
	sym, ok := table.Resolve("i")
	require.True(t, ok)
	assert.Equal(t, types.I64, sym.(*Variable).Type)

	specs := table.BuiltinSpecializations()
	require.Len(t, specs["range"], 1)
	assert.Equal(t, []types.Type{types.I64}, specs["range"][0].ParamTypes())
	require.Len(t, a.Infos, 1)
	assert.Contains(t, a.Infos[0].Msg, "$range$l$l")
}

func TestAnalyzeSpecializationDeduplication(t *testing.T) {
	fn := funcDef("f", []string{"x"}, "",
		&ast.ExprStatement{Position: pos, Expr: call("print", ident("x"))},
		&ast.ExprStatement{Position: pos, Expr: call("print", ident("x"))},
		&ast.ExprStatement{Position: pos, Expr: call("print", floatLit(1.5))},
	)
	a, table, _, err := analyze(t, fn, types.I64)
	require.NoError(t, err)

	specs := table.BuiltinSpecializations()
	require.Len(t, specs["print"], 2)
	// Only the two distinct tuples announced a compilation.
	assert.Len(t, a.Infos, 2)
}

func TestAnalyzeAugAssignWidensVariable(t *testing.T) {
	fn := funcDef("f", nil, "",
		assign("x", intLit(1)),
		&ast.AugAssignStatement{Position: pos, Target: ident("x"), Op: token.Add, Value: floatLit(2.0)},
		ret(ident("x")),
	)
	_, table, retType, err := analyze(t, fn)
	require.NoError(t, err)
	assert.Equal(t, types.F64, retType)

	sym, _ := table.Resolve("x")
	assert.Equal(t, types.F64, sym.(*Variable).Type)
}

func TestAnalyzeAugAssignCannotRetypeParameter(t *testing.T) {
	fn := funcDef("f", []string{"a"}, "",
		&ast.AugAssignStatement{Position: pos, Target: ident("a"), Op: token.Add, Value: floatLit(2.0)},
	)
	a, _, _, err := analyze(t, fn, types.I64)
	require.Error(t, err)
	require.Len(t, a.Errors, 1)
	assert.Contains(t, a.Errors[0].Msg, "cannot change type of parameter")
}

func TestAnalyzeAnnAssign(t *testing.T) {
	tests := []struct {
		name       string
		stmt       *ast.AnnAssignStatement
		wantType   types.Type
		wantErrMsg string
	}{
		{
			name:     "annotation only",
			stmt:     &ast.AnnAssignStatement{Position: pos, Target: ident("x"), Annotation: "int"},
			wantType: types.I64,
		},
		{
			name:     "annotation agrees with value",
			stmt:     &ast.AnnAssignStatement{Position: pos, Target: ident("x"), Annotation: "float", Value: floatLit(1.0)},
			wantType: types.F64,
		},
		{
			name:     "none value compatible with any annotation",
			stmt:     &ast.AnnAssignStatement{Position: pos, Target: ident("x"), Annotation: "int", Value: &ast.NoneLiteral{Position: pos}},
			wantType: types.I64,
		},
		{
			name:     "unparseable annotation falls back to inference",
			stmt:     &ast.AnnAssignStatement{Position: pos, Target: ident("x"), Annotation: "complex", Value: intLit(1)},
			wantType: types.I64,
		},
		{
			name:       "annotation conflicts with value",
			stmt:       &ast.AnnAssignStatement{Position: pos, Target: ident("x"), Annotation: "int", Value: floatLit(1.0)},
			wantType:   types.Inv,
			wantErrMsg: "conflicts with annotated type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := funcDef("f", nil, "", tt.stmt)
			a, table, _, _ := analyze(t, fn)

			sym, ok := table.Resolve("x")
			require.True(t, ok)
			assert.True(t, types.Equal(tt.wantType, sym.(*Variable).Type))

			if tt.wantErrMsg == "" {
				assert.Empty(t, a.Errors)
			} else {
				require.NotEmpty(t, a.Errors)
				assert.Contains(t, a.Errors[0].Msg, tt.wantErrMsg)
			}
		})
	}
}

func TestAnalyzeTupleTargetRejected(t *testing.T) {
	fn := funcDef("f", nil, "",
		&ast.AssignStatement{
			Position: pos,
			Targets: []ast.Expression{
				&ast.TupleExpr{Position: pos, Elems: []ast.Expression{ident("x"), ident("y")}},
			},
			Value: intLit(1),
		},
	)
	a, _, _, err := analyze(t, fn)
	require.Error(t, err)
	require.Len(t, a.Errors, 1)
	assert.Contains(t, a.Errors[0].Msg, "unpacking assignment targets are not supported")
}

func TestAnalyzeListLiterals(t *testing.T) {
	tests := []struct {
		name       string
		elems      []ast.Expression
		wantType   types.Type
		wantErrMsg string
	}{
		{
			name:     "homogeneous ints",
			elems:    []ast.Expression{intLit(1), intLit(2), intLit(3)},
			wantType: types.Array{Elem: types.I64},
		},
		{
			name:     "homogeneous floats",
			elems:    []ast.Expression{floatLit(1.0), floatLit(2.0)},
			wantType: types.Array{Elem: types.F64},
		},
		{
			name:       "empty rejected",
			elems:      nil,
			wantType:   types.Inv,
			wantErrMsg: "empty lists are not supported",
		},
		{
			name:       "mixed rejected",
			elems:      []ast.Expression{intLit(1), floatLit(2.0)},
			wantType:   types.Inv,
			wantErrMsg: "mixed-type lists are not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := funcDef("f", nil, "",
				assign("xs", &ast.ListLiteral{Position: pos, Elems: tt.elems}),
			)
			a, table, _, _ := analyze(t, fn)

			sym, ok := table.Resolve("xs")
			require.True(t, ok)
			assert.True(t, types.Equal(tt.wantType, sym.(*Variable).Type))

			if tt.wantErrMsg != "" {
				require.NotEmpty(t, a.Errors)
				assert.Contains(t, a.Errors[0].Msg, tt.wantErrMsg)
			}
		})
	}
}

func TestAnalyzeListPassthrough(t *testing.T) {
	fn := funcDef("f", []string{"xs"}, "",
		ret(call("list", ident("xs"))),
	)
	_, _, retType, err := analyze(t, fn, types.Array{Elem: types.F64})
	require.NoError(t, err)
	assert.True(t, types.Equal(types.Array{Elem: types.F64}, retType))
}

func TestAnalyzeListCallArity(t *testing.T) {
	fn := funcDef("f", []string{"xs", "ys"}, "",
		ret(call("list", ident("xs"), ident("ys"))),
	)
	a, _, _, err := analyze(t, fn, types.Array{Elem: types.I64}, types.Array{Elem: types.I64})
	require.Error(t, err)
	require.NotEmpty(t, a.Errors)
	assert.Contains(t, a.Errors[0].Msg, "list takes exactly one argument")
}

func TestAnalyzeSubscript(t *testing.T) {
	fn := funcDef("first", []string{"xs"}, "",
		ret(&ast.SubscriptExpr{Position: pos, Value: ident("xs"), Index: intLit(0)}),
	)
	_, _, retType, err := analyze(t, fn, types.Array{Elem: types.I64})
	require.NoError(t, err)
	assert.Equal(t, types.I64, retType)
}

func TestAnalyzeSubscriptNonArray(t *testing.T) {
	fn := funcDef("f", []string{"x"}, "",
		ret(&ast.SubscriptExpr{Position: pos, Value: ident("x"), Index: intLit(0)}),
	)
	a, _, _, err := analyze(t, fn, types.I64)
	require.Error(t, err)
	require.NotEmpty(t, a.Errors)
	assert.Contains(t, a.Errors[0].Msg, "cannot subscript non-array type")
}

func TestAnalyzeStringIteration(t *testing.T) {
	fn := funcDef("f", []string{"s"}, "",
		&ast.ForStatement{
			Position: pos,
			Target:   ident("c"),
			Iter:     ident("s"),
			Body: []ast.Statement{
				&ast.ExprStatement{Position: pos, Expr: call("print", ident("c"))},
			},
		},
	)
	_, table, _, err := analyze(t, fn, types.Str)
	require.NoError(t, err)

	// Iterating a string yields its code units.
	sym, ok := table.Resolve("c")
	require.True(t, ok)
	assert.Equal(t, types.I16, sym.(*Variable).Type)
}

func TestAnalyzeIfExpr(t *testing.T) {
	fn := funcDef("clamp", []string{"a"}, "",
		ret(&ast.IfExpr{
			Position: pos,
			Test:     cmp(token.Lt, ident("a"), intLit(10)),
			Body:     ident("a"),
			Else:     intLit(10),
		}),
	)
	_, _, retType, err := analyze(t, fn, types.I64)
	require.NoError(t, err)
	assert.Equal(t, types.I64, retType)
}

func TestAnalyzeIfExprBranchMismatch(t *testing.T) {
	fn := funcDef("f", []string{"a"}, "",
		ret(&ast.IfExpr{
			Position: pos,
			Test:     cmp(token.Lt, ident("a"), intLit(10)),
			Body:     intLit(1),
			Else:     floatLit(2.0),
		}),
	)
	a, _, _, err := analyze(t, fn, types.I64)
	require.Error(t, err)
	require.NotEmpty(t, a.Errors)
	assert.Contains(t, a.Errors[0].Msg, "different types for if and else branches")
}

func TestAnalyzeComparisonIsBool(t *testing.T) {
	fn := funcDef("f", []string{"a"}, "",
		ret(cmp(token.Eq, ident("a"), intLit(0))),
	)
	_, _, retType, err := analyze(t, fn, types.I64)
	require.NoError(t, err)
	assert.Equal(t, types.Bool, retType)
}

func TestAnalyzeCallNonFunction(t *testing.T) {
	fn := funcDef("f", []string{"x"}, "",
		ret(call("x")),
	)
	a, _, _, err := analyze(t, fn, types.I64)
	require.Error(t, err)
	require.NotEmpty(t, a.Errors)
	assert.Contains(t, a.Errors[0].Msg, "cannot call")
}

func TestAnalyzeAccumulatesMultipleErrors(t *testing.T) {
	fn := funcDef("f", nil, "",
		assign("x", ident("missing1")),
		assign("y", ident("missing2")),
	)
	a, _, _, err := analyze(t, fn)
	require.Error(t, err)
	assert.Len(t, a.Errors, 2)
}
