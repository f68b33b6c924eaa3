// Package venom is a just-in-time compiler middle-end for a restricted
// dynamically-typed function subset. Given a function definition and the
// concrete argument values of one call site, it infers every type, records
// the builtin specializations the body needs, lowers the body to versioned
// IR, and caches the result by a fingerprint of source and argument types.
package venom

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/venom-lang/venom/ast"
	"github.com/venom-lang/venom/compiler"
	"github.com/venom-lang/venom/ir"
	"github.com/venom-lang/venom/token"
	"github.com/venom-lang/venom/types"
)

// Artifact is one finished compilation: the lowered module plus everything
// needed to describe its native entry point.
type Artifact struct {
	Fingerprint string
	Name        string
	ArgTypes    []types.Type
	ReturnType  types.Type
	Module      *ir.Module
	Table       *compiler.SymbolTable
	Infos       []*token.CompileError
}

// NativeCode places the artifact's generated machine code into executable
// memory. No code generator is wired in yet, so with the default allocator
// this reports ErrNoBackend and callers fall back to their interpreter.
func (a *Artifact) NativeCode(alloc ExecAllocator) (ExecBuffer, error) {
	if alloc == nil {
		alloc = NoExecAllocator{}
	}
	return alloc.Alloc(nil)
}

// Engine owns the artifact caches. The in-memory cache guarantees each
// fingerprint is compiled at most once per engine; the disk cache persists
// IR text across processes.
type Engine struct {
	cfg  Config
	disk *diskCache

	mu    sync.Mutex
	cache map[string]*Artifact
}

func New(cfg Config) (*Engine, error) {
	e := &Engine{
		cfg:   cfg,
		cache: make(map[string]*Artifact),
	}
	if !cfg.NoDiskCache {
		dir, err := cfg.ResolveCacheDir()
		if err != nil {
			return nil, err
		}
		disk, err := newDiskCache(dir, cfg.KeepArtifacts)
		if err != nil {
			return nil, err
		}
		e.disk = disk
	}
	return e, nil
}

// Fingerprint identifies one (source, argument types) pair.
func Fingerprint(source string, argTypes []types.Type) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte("_"))
	h.Write([]byte(Signature(argTypes)))
	return hex.EncodeToString(h.Sum(nil))
}

// Compile produces the artifact for fn called with args, reusing a cached
// one when the fingerprint matches. Each call builds a fresh symbol table,
// so concurrent compilations of different fingerprints never share scope
// state; the engine lock makes the whole operation at-most-once.
func (e *Engine) Compile(fn *ast.FuncDef, source string, args []any) (*Artifact, error) {
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("function %q takes %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	argTypes, err := TypesOfArgs(args)
	if err != nil {
		return nil, err
	}

	fp := Fingerprint(source, argTypes)

	e.mu.Lock()
	defer e.mu.Unlock()

	if a, ok := e.cache[fp]; ok {
		if e.cfg.Debug {
			fmt.Printf("venom: cache hit %s (%s)\n", fn.Name, fp[:8])
		}
		return a, nil
	}

	// Another process may have compiled this fingerprint already. The
	// in-memory artifact still has to be rebuilt, but the store is skipped.
	diskHit := false
	if e.disk != nil {
		if _, ok := e.disk.load(fp); ok {
			diskHit = true
			if e.cfg.Debug {
				fmt.Printf("venom: disk cache hit %s (%s)\n", fn.Name, fp[:8])
			}
		}
	}

	a, err := e.compile(fn, source, argTypes, fp)
	if err != nil {
		return nil, err
	}
	e.cache[fp] = a

	if e.disk != nil && !diskHit {
		if err := e.disk.store(fp, a.Module.String()); err != nil && e.cfg.Debug {
			fmt.Printf("venom: disk cache write failed: %v\n", err)
		}
	}
	return a, nil
}

func (e *Engine) compile(fn *ast.FuncDef, source string, argTypes []types.Type, fp string) (*Artifact, error) {
	table := compiler.NewSymbolTable("__module__")
	table.PushScope(fn.Name, compiler.FuncScope)
	params := make([]types.Param, len(fn.Params))
	for i, name := range fn.Params {
		table.AddSymbol(&compiler.Parameter{Name: name, Type: argTypes[i]})
		params[i] = types.Param{Name: name, Type: argTypes[i]}
	}

	an := compiler.NewAnalyzer(table, source)
	ret, err := an.AnalyzeFunc(fn)
	if err != nil {
		table.PopScope()
		return nil, fmt.Errorf("analyze %q: %w", fn.Name, err)
	}
	if ret.Kind() == types.InvalidKind {
		table.PopScope()
		return nil, fmt.Errorf("analyze %q: return type could not be determined", fn.Name)
	}
	table.PopScope()

	fd := &compiler.FunctionDef{
		Name:            fn.Name,
		Node:            fn,
		Params:          fn.Params,
		Specializations: make(map[string]types.Func),
	}
	fd.AddSpecialization(types.Func{Name: fn.Name, Params: params, Return: ret})
	table.AddSymbol(fd)

	module, err := ir.NewBuilder(table).Build(fn)
	if err != nil {
		return nil, fmt.Errorf("lower %q: %w", fn.Name, err)
	}

	if e.cfg.Debug {
		fmt.Printf("venom: compiled %s (%s)\n", fn.Name, fp[:8])
	}
	return &Artifact{
		Fingerprint: fp,
		Name:        fn.Name,
		ArgTypes:    argTypes,
		ReturnType:  ret,
		Module:      module,
		Table:       table,
		Infos:       an.Infos,
	}, nil
}

// NormalizeSource strips the common leading indentation from every
// non-blank line, so a function defined inside another block fingerprints
// the same as one defined at top level.
func NormalizeSource(source string) string {
	lines := strings.Split(source, "\n")

	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return source
	}

	for i, line := range lines {
		if len(line) >= margin {
			lines[i] = line[margin:]
		}
	}
	return strings.Join(lines, "\n")
}
