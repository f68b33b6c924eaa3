// Package ir is the typed intermediate form produced after semantic analysis.
// Values are versioned: every statement yields one integer version, and
// statements refer to their operands by version. Versioning is last writer
// wins per name, not full SSA, so there are no phi nodes or block joins.
package ir

import (
	"fmt"
	"strings"

	"github.com/venom-lang/venom/token"
	"github.com/venom-lang/venom/types"
)

// Module owns the lowered functions and the version space used while
// building them. The version space is reset at the start of each function.
type Module struct {
	Funcs []*Function

	versions int
	names    map[string]int
	types    map[int]types.Type
}

func NewModule() *Module {
	return &Module{
		names: make(map[string]int),
		types: make(map[int]types.Type),
	}
}

func (m *Module) resetVersions() {
	m.versions = 0
	m.names = make(map[string]int)
	m.types = make(map[int]types.Type)
}

// newVersion hands out the next version and records its type.
func (m *Module) newVersion(t types.Type) int {
	v := m.versions
	m.versions++
	m.types[v] = t
	return v
}

// bind makes v the current version for name within this function.
func (m *Module) bind(name string, v int) {
	m.names[name] = v
}

func (m *Module) lookup(name string) (int, bool) {
	v, ok := m.names[name]
	return v, ok
}

// TypeOf reports the recorded type of a version. Unknown versions are Invalid.
func (m *Module) TypeOf(v int) types.Type {
	if t, ok := m.types[v]; ok {
		return t
	}
	return types.Inv
}

func (m *Module) String() string {
	var sb strings.Builder
	for i, f := range m.Funcs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}

// Param is one function parameter with its concrete type.
type Param struct {
	Name string
	Type types.Type
}

// Function is one lowered specialization: the mangled name, the concrete
// parameter and return types, and the blocks in construction order.
type Function struct {
	Name   string
	Return types.Type
	Params []Param
	Blocks []*Block
}

func (f *Function) String() string {
	var sb strings.Builder
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + " " + p.Type.IR()
	}
	ret := f.Return.IR()
	if ret != "" {
		ret = " " + ret
	}
	fmt.Fprintf(&sb, "func %s(%s)%s {\n", f.Name, strings.Join(params, ", "), ret)
	for _, b := range f.Blocks {
		sb.WriteString(b.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Block is a straight-line statement run closed by at most one terminator.
// A nil terminator means the block is still under construction; a finished
// function has no open blocks.
type Block struct {
	Name   string
	Params []string
	Stmts  []Statement
	Term   Terminator
}

func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	if len(b.Params) > 0 {
		sb.WriteString("(" + strings.Join(b.Params, ", ") + ")")
	}
	sb.WriteString(":\n")
	for _, s := range b.Stmts {
		sb.WriteString("\t" + s.String() + "\n")
	}
	if b.Term != nil {
		sb.WriteString("\t" + b.Term.String() + "\n")
	}
	return sb.String()
}

// Statement is the closed set of value-producing instructions. Version
// reports the value a statement defines; Increment and Decrement reuse an
// existing version in place.
type Statement interface {
	Version() int
	String() string
	stmt()
}

// VarRef captures the first read of a named variable or parameter.
type VarRef struct {
	Ver  int
	Name string
	Type types.Type
}

func (s *VarRef) stmt()        {}
func (s *VarRef) Version() int { return s.Ver }
func (s *VarRef) String() string {
	return fmt.Sprintf("v%d = var %s %s", s.Ver, s.Name, s.Type.IR())
}

// Literal materializes a source constant.
type Literal struct {
	Ver   int
	Value string
	Type  types.Type
}

func (s *Literal) stmt()        {}
func (s *Literal) Version() int { return s.Ver }
func (s *Literal) String() string {
	return fmt.Sprintf("v%d = lit %s %s", s.Ver, s.Value, s.Type.IR())
}

type UnaryOp struct {
	Ver     int
	Op      token.UnaryOp
	Operand int
	Type    types.Type
}

func (s *UnaryOp) stmt()        {}
func (s *UnaryOp) Version() int { return s.Ver }
func (s *UnaryOp) String() string {
	return fmt.Sprintf("v%d = %s v%d %s", s.Ver, s.Op, s.Operand, s.Type.IR())
}

type BinaryOp struct {
	Ver   int
	Op    token.BinaryOp
	Left  int
	Right int
	Type  types.Type
}

func (s *BinaryOp) stmt()        {}
func (s *BinaryOp) Version() int { return s.Ver }
func (s *BinaryOp) String() string {
	return fmt.Sprintf("v%d = %s v%d, v%d %s", s.Ver, s.Op, s.Left, s.Right, s.Type.IR())
}

// CompareOp always yields a Bool version.
type CompareOp struct {
	Ver   int
	Op    token.CompareOp
	Left  int
	Right int
}

func (s *CompareOp) stmt()        {}
func (s *CompareOp) Version() int { return s.Ver }
func (s *CompareOp) String() string {
	return fmt.Sprintf("v%d = cmp %s v%d, v%d", s.Ver, s.Op, s.Left, s.Right)
}

// CondMove selects between two versions on a prior comparison's result.
type CondMove struct {
	Ver  int
	Cmp  int
	Then int
	Else int
	Type types.Type
}

func (s *CondMove) stmt()        {}
func (s *CondMove) Version() int { return s.Ver }
func (s *CondMove) String() string {
	return fmt.Sprintf("v%d = cmov v%d ? v%d : v%d %s", s.Ver, s.Cmp, s.Then, s.Else, s.Type.IR())
}

// Call invokes one concrete specialization by its mangled name.
type Call struct {
	Ver  int
	Func string
	Args []int
	Type types.Type
}

func (s *Call) stmt()        {}
func (s *Call) Version() int { return s.Ver }
func (s *Call) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = fmt.Sprintf("v%d", a)
	}
	t := s.Type.IR()
	if t == "" {
		t = "void"
	}
	return fmt.Sprintf("v%d = call %s(%s) %s", s.Ver, s.Func, strings.Join(args, ", "), t)
}

// MemoryLoad reads one array element.
type MemoryLoad struct {
	Ver    int
	Base   int
	Offset int
	Type   types.Type
}

func (s *MemoryLoad) stmt()        {}
func (s *MemoryLoad) Version() int { return s.Ver }
func (s *MemoryLoad) String() string {
	return fmt.Sprintf("v%d = load v%d[v%d] %s", s.Ver, s.Base, s.Offset, s.Type.IR())
}

// Cast widens a version to a higher-rank type.
type Cast struct {
	Ver  int
	From int
	To   types.Type
}

func (s *Cast) stmt()        {}
func (s *Cast) Version() int { return s.Ver }
func (s *Cast) String() string {
	return fmt.Sprintf("v%d = cast v%d to %s", s.Ver, s.From, s.To.IR())
}

// Increment bumps an existing version in place.
type Increment struct {
	Ver int
}

func (s *Increment) stmt()          {}
func (s *Increment) Version() int   { return s.Ver }
func (s *Increment) String() string { return fmt.Sprintf("inc v%d", s.Ver) }

// Decrement lowers an existing version in place.
type Decrement struct {
	Ver int
}

func (s *Decrement) stmt()          {}
func (s *Decrement) Version() int   { return s.Ver }
func (s *Decrement) String() string { return fmt.Sprintf("dec v%d", s.Ver) }

// Terminator closes a block.
type Terminator interface {
	String() string
	term()
}

// Return ends the function, optionally yielding a version.
type Return struct {
	Value    int
	HasValue bool
}

func (t *Return) term() {}
func (t *Return) String() string {
	if t.HasValue {
		return fmt.Sprintf("ret v%d", t.Value)
	}
	return "ret"
}

// CondJump transfers to the named block when the comparison held.
type CondJump struct {
	Target string
	Op     token.CompareOp
	Cond   int
}

func (t *CondJump) term() {}
func (t *CondJump) String() string {
	return fmt.Sprintf("cjump %s v%d %s", t.Op, t.Cond, t.Target)
}
