package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/venom-lang/venom/types"
)

type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	ClassScope
	FuncScope
	BlockScope
)

var scopeKinds = [...]string{
	ModuleScope: "Module",
	ClassScope:  "Class",
	FuncScope:   "Function",
	BlockScope:  "Block",
}

func (sk ScopeKind) String() string {
	if int(sk) < len(scopeKinds) {
		return scopeKinds[sk]
	}
	return "Unknown"
}

const noParent = -1

// scopeFrame is one level of the lexical nesting tree. Frames live in the
// table's arena and refer to each other by index, so there is no parent
// back-pointer to manage and "current scope" is a plain index.
type scopeFrame struct {
	name     string
	kind     ScopeKind
	parent   int
	children []int
	symbols  map[string]Symbol
}

// SymbolTable is the hierarchical scoped storage of named entities. Frames
// persist for the lifetime of the table; the current index moves as a walk
// enters and exits scopes. A table serves exactly one compilation at a time.
type SymbolTable struct {
	frames   []scopeFrame
	current  int
	builtins map[string]*FunctionBuiltin
	order    []string // builtin names, fixed catalog order
}

// NewSymbolTable creates a table rooted at a module scope, with the fixed
// builtin catalog visible from every scope.
func NewSymbolTable(name string) *SymbolTable {
	if name == "" {
		name = "__module__"
	}
	st := &SymbolTable{current: 0}
	st.frames = append(st.frames, scopeFrame{
		name:    name,
		kind:    ModuleScope,
		parent:  noParent,
		symbols: make(map[string]Symbol),
	})
	st.builtins, st.order = defaultBuiltins()
	return st
}

// PushScope creates a new child of the current frame and descends into it.
func (st *SymbolTable) PushScope(name string, kind ScopeKind) {
	id := len(st.frames)
	st.frames = append(st.frames, scopeFrame{
		name:    name,
		kind:    kind,
		parent:  st.current,
		symbols: make(map[string]Symbol),
	})
	st.frames[st.current].children = append(st.frames[st.current].children, id)
	st.current = id
}

// SetScope descends into an existing child frame by name. It never creates.
func (st *SymbolTable) SetScope(name string) error {
	for _, id := range st.frames[st.current].children {
		if st.frames[id].name == name {
			st.current = id
			return nil
		}
	}
	return fmt.Errorf("no scope named %q under %q", name, st.frames[st.current].name)
}

// PopScope moves current back to its parent. Popping the root is a walk bug.
func (st *SymbolTable) PopScope() {
	if st.frames[st.current].parent == noParent {
		panic("cannot pop module scope")
	}
	st.current = st.frames[st.current].parent
}

// AddSymbol inserts or overwrites by name in the current frame only.
func (st *SymbolTable) AddSymbol(sym Symbol) {
	st.frames[st.current].symbols[sym.SymName()] = sym
}

// Resolve walks from the current frame up through its ancestors, returning
// the nearest enclosing definition. The builtin catalog is a fallback after
// the scope chain, so a local may shadow a builtin name.
func (st *SymbolTable) Resolve(name string) (Symbol, bool) {
	for id := st.current; id != noParent; id = st.frames[id].parent {
		if sym, ok := st.frames[id].symbols[name]; ok {
			return sym, true
		}
	}
	if fb, ok := st.builtins[name]; ok {
		return fb, true
	}
	return nil, false
}

// Builtin returns the catalog entry for name, bypassing the scope chain.
func (st *SymbolTable) Builtin(name string) (*FunctionBuiltin, bool) {
	fb, ok := st.builtins[name]
	return fb, ok
}

// BuiltinSpecializations returns, per builtin name, the concrete signatures
// accumulated so far in registration order. Builtins with no call sites are
// omitted.
func (st *SymbolTable) BuiltinSpecializations() map[string][]types.Func {
	out := make(map[string][]types.Func)
	for _, name := range st.order {
		fb := st.builtins[name]
		if len(fb.Order) == 0 {
			continue
		}
		specs := make([]types.Func, 0, len(fb.Order))
		for _, mangled := range fb.Order {
			specs = append(specs, fb.Specializations[mangled])
		}
		out[name] = specs
	}
	return out
}

// ScopeName reports the name of the current frame.
func (st *SymbolTable) ScopeName() string {
	return st.frames[st.current].name
}

// Dump renders the whole scope tree for debugging.
func (st *SymbolTable) Dump() string {
	var sb strings.Builder
	sb.WriteString("SYMBOL TABLE\n")
	st.dumpFrame(&sb, 0, 0)
	return sb.String()
}

func (st *SymbolTable) dumpFrame(sb *strings.Builder, id, depth int) {
	indent := strings.Repeat("    ", depth)
	f := &st.frames[id]
	fmt.Fprintf(sb, "%sSCOPE %q (%s)\n", indent, f.name, f.kind)
	for _, name := range sortedKeys(f.symbols) {
		fmt.Fprintf(sb, "%s    %s\n", indent, f.symbols[name])
	}
	for _, child := range f.children {
		st.dumpFrame(sb, child, depth+1)
	}
}

func sortedKeys(m map[string]Symbol) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
