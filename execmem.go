package venom

import "errors"

// ErrNoBackend reports that no native code backend is wired in. The engine
// stops at IR; invoking an artifact requires a code generator and an
// executable-memory allocator behind these interfaces.
var ErrNoBackend = errors.New("no native code backend is available")

// ExecBuffer is a finished machine-code region ready for invocation under
// the native calling convention of the artifact it was generated from.
type ExecBuffer interface {
	Addr() uintptr
	Size() int
	Release() error
}

// ExecAllocator places finished code bytes into executable memory.
type ExecAllocator interface {
	Alloc(code []byte) (ExecBuffer, error)
}

// NoExecAllocator is the default backend stand-in.
type NoExecAllocator struct{}

func (NoExecAllocator) Alloc(code []byte) (ExecBuffer, error) {
	return nil, ErrNoBackend
}
