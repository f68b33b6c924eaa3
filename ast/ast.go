package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/venom-lang/venom/token"
)

// The base Node interface. Every node carries the position metadata the
// front-end recorded for it.
type Node interface {
	Pos() token.Pos
	String() string
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

// FuncDef is one function definition handed over by the front-end: the unit
// of compilation. Annotations arrive as their source spelling ("int",
// "List[float]", ...) and are parsed by the type lattice, not here.
type FuncDef struct {
	Position token.Pos
	Name     string
	Params   []string
	Returns  string // return annotation spelling, "" if absent
	Body     []Statement
}

func (fd *FuncDef) Pos() token.Pos { return fd.Position }
func (fd *FuncDef) String() string {
	var out bytes.Buffer
	out.WriteString("def ")
	out.WriteString(fd.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(fd.Params, ", "))
	out.WriteString(")")
	if fd.Returns != "" {
		out.WriteString(" -> " + fd.Returns)
	}
	out.WriteString(":")
	for _, s := range fd.Body {
		out.WriteString(" " + s.String())
	}
	return out.String()
}

// Statements

// AssignStatement is a plain assignment: target(s) = value.
type AssignStatement struct {
	Position token.Pos
	Targets  []Expression
	Value    Expression
}

func (as *AssignStatement) statementNode() {}
func (as *AssignStatement) Pos() token.Pos { return as.Position }
func (as *AssignStatement) String() string {
	var out bytes.Buffer
	for i, t := range as.Targets {
		if i > 0 {
			out.WriteString(" = ")
		}
		out.WriteString(t.String())
	}
	out.WriteString(" = ")
	out.WriteString(as.Value.String())
	return out.String()
}

// AnnAssignStatement is an annotated assignment: target: annotation = value.
// Value may be nil for a bare declaration.
type AnnAssignStatement struct {
	Position   token.Pos
	Target     *Identifier
	Annotation string
	Value      Expression
}

func (as *AnnAssignStatement) statementNode() {}
func (as *AnnAssignStatement) Pos() token.Pos { return as.Position }
func (as *AnnAssignStatement) String() string {
	s := as.Target.String() + ": " + as.Annotation
	if as.Value != nil {
		s += " = " + as.Value.String()
	}
	return s
}

// AugAssignStatement is an augmented assignment: target op= value.
type AugAssignStatement struct {
	Position token.Pos
	Target   *Identifier
	Op       token.BinaryOp
	Value    Expression
}

func (as *AugAssignStatement) statementNode() {}
func (as *AugAssignStatement) Pos() token.Pos { return as.Position }
func (as *AugAssignStatement) String() string {
	return fmt.Sprintf("%s %s= %s", as.Target, as.Op, as.Value)
}

type ReturnStatement struct {
	Position token.Pos
	Value    Expression // nil for a bare return
}

func (rs *ReturnStatement) statementNode() {}
func (rs *ReturnStatement) Pos() token.Pos { return rs.Position }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// ForStatement iterates Target over Iter. Else holds the loop-else clause.
type ForStatement struct {
	Position token.Pos
	Target   Expression
	Iter     Expression
	Body     []Statement
	Else     []Statement
}

func (fs *ForStatement) statementNode() {}
func (fs *ForStatement) Pos() token.Pos { return fs.Position }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for ")
	out.WriteString(fs.Target.String())
	out.WriteString(" in ")
	out.WriteString(fs.Iter.String())
	out.WriteString(":")
	for _, s := range fs.Body {
		out.WriteString(" " + s.String())
	}
	return out.String()
}

// ExprStatement is an expression evaluated for its effect, e.g. a bare call.
type ExprStatement struct {
	Position token.Pos
	Expr     Expression
}

func (es *ExprStatement) statementNode() {}
func (es *ExprStatement) Pos() token.Pos { return es.Position }
func (es *ExprStatement) String() string { return es.Expr.String() }

// Expressions

type Identifier struct {
	Position token.Pos
	Name     string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) Pos() token.Pos  { return i.Position }
func (i *Identifier) String() string  { return i.Name }

type IntLiteral struct {
	Position token.Pos
	Value    int64
}

func (il *IntLiteral) expressionNode() {}
func (il *IntLiteral) Pos() token.Pos  { return il.Position }
func (il *IntLiteral) String() string  { return fmt.Sprintf("%d", il.Value) }

type FloatLiteral struct {
	Position token.Pos
	Value    float64
}

func (fl *FloatLiteral) expressionNode() {}
func (fl *FloatLiteral) Pos() token.Pos  { return fl.Position }
func (fl *FloatLiteral) String() string  { return fmt.Sprintf("%g", fl.Value) }

type BoolLiteral struct {
	Position token.Pos
	Value    bool
}

func (bl *BoolLiteral) expressionNode() {}
func (bl *BoolLiteral) Pos() token.Pos  { return bl.Position }
func (bl *BoolLiteral) String() string {
	if bl.Value {
		return "True"
	}
	return "False"
}

type StringLiteral struct {
	Position token.Pos
	Value    string
}

func (sl *StringLiteral) expressionNode() {}
func (sl *StringLiteral) Pos() token.Pos  { return sl.Position }
func (sl *StringLiteral) String() string  { return fmt.Sprintf("%q", sl.Value) }

type BytesLiteral struct {
	Position token.Pos
	Value    []byte
}

func (bl *BytesLiteral) expressionNode() {}
func (bl *BytesLiteral) Pos() token.Pos  { return bl.Position }
func (bl *BytesLiteral) String() string  { return fmt.Sprintf("b%q", bl.Value) }

// NoneLiteral is the valueless literal.
type NoneLiteral struct {
	Position token.Pos
}

func (nl *NoneLiteral) expressionNode() {}
func (nl *NoneLiteral) Pos() token.Pos  { return nl.Position }
func (nl *NoneLiteral) String() string  { return "None" }

type ListLiteral struct {
	Position token.Pos
	Elems    []Expression
}

func (ll *ListLiteral) expressionNode() {}
func (ll *ListLiteral) Pos() token.Pos  { return ll.Position }
func (ll *ListLiteral) String() string {
	return "[" + exprVec(ll.Elems) + "]"
}

type UnaryExpr struct {
	Position token.Pos
	Op       token.UnaryOp
	Operand  Expression
}

func (ue *UnaryExpr) expressionNode() {}
func (ue *UnaryExpr) Pos() token.Pos  { return ue.Position }
func (ue *UnaryExpr) String() string {
	sep := ""
	if ue.Op == token.Not {
		sep = " "
	}
	return "(" + ue.Op.String() + sep + ue.Operand.String() + ")"
}

type BinaryExpr struct {
	Position token.Pos
	Op       token.BinaryOp
	Left     Expression
	Right    Expression
}

func (be *BinaryExpr) expressionNode() {}
func (be *BinaryExpr) Pos() token.Pos  { return be.Position }
func (be *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", be.Left, be.Op, be.Right)
}

// CompareExpr is a comparison chain: Left Ops[0] Rights[0] Ops[1] Rights[1]...
// A single comparison has one op and one right operand.
type CompareExpr struct {
	Position token.Pos
	Left     Expression
	Ops      []token.CompareOp
	Rights   []Expression
}

func (ce *CompareExpr) expressionNode() {}
func (ce *CompareExpr) Pos() token.Pos  { return ce.Position }
func (ce *CompareExpr) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(ce.Left.String())
	for i, op := range ce.Ops {
		out.WriteString(" " + op.String() + " ")
		out.WriteString(ce.Rights[i].String())
	}
	out.WriteString(")")
	return out.String()
}

// BoolExpr is an and/or combination over two or more values.
type BoolExpr struct {
	Position token.Pos
	Op       token.BoolOp
	Values   []Expression
}

func (be *BoolExpr) expressionNode() {}
func (be *BoolExpr) Pos() token.Pos  { return be.Position }
func (be *BoolExpr) String() string {
	parts := make([]string, len(be.Values))
	for i, v := range be.Values {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, " "+be.Op.String()+" ") + ")"
}

type CallExpr struct {
	Position token.Pos
	Func     Expression // *Identifier for supported calls
	Args     []Expression
}

func (ce *CallExpr) expressionNode() {}
func (ce *CallExpr) Pos() token.Pos  { return ce.Position }
func (ce *CallExpr) String() string {
	return ce.Func.String() + "(" + exprVec(ce.Args) + ")"
}

// AttributeExpr represents obj.attr. Attribute access is not in the supported
// subset; the node exists so the analyzer can reject it with a position.
type AttributeExpr struct {
	Position token.Pos
	Value    Expression
	Attr     string
}

func (ae *AttributeExpr) expressionNode() {}
func (ae *AttributeExpr) Pos() token.Pos  { return ae.Position }
func (ae *AttributeExpr) String() string  { return ae.Value.String() + "." + ae.Attr }

type SubscriptExpr struct {
	Position token.Pos
	Value    Expression
	Index    Expression
}

func (se *SubscriptExpr) expressionNode() {}
func (se *SubscriptExpr) Pos() token.Pos  { return se.Position }
func (se *SubscriptExpr) String() string {
	return se.Value.String() + "[" + se.Index.String() + "]"
}

// IfExpr is the ternary: Body if Test else Else.
type IfExpr struct {
	Position token.Pos
	Test     Expression
	Body     Expression
	Else     Expression
}

func (ie *IfExpr) expressionNode() {}
func (ie *IfExpr) Pos() token.Pos  { return ie.Position }
func (ie *IfExpr) String() string {
	return fmt.Sprintf("(%s if %s else %s)", ie.Body, ie.Test, ie.Else)
}

// TupleExpr represents tuple syntax in targets (x, y = ...). Unpacking is
// unsupported; the analyzer rejects it with a diagnostic.
type TupleExpr struct {
	Position token.Pos
	Elems    []Expression
}

func (te *TupleExpr) expressionNode() {}
func (te *TupleExpr) Pos() token.Pos  { return te.Position }
func (te *TupleExpr) String() string  { return "(" + exprVec(te.Elems) + ")" }

func exprVec(a []Expression) string {
	if len(a) == 0 {
		return ""
	}
	ret := a[0].String()
	for _, val := range a[1:] {
		ret += ", "
		ret += val.String()
	}
	return ret
}
