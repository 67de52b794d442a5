// Package jit ties the reader, compiler, and code buffer together: it
// compiles source text to a Code Buffer, flips the buffer executable, and
// invokes the resulting machine code as a native function taking a heap
// base pointer and returning a tagged value.
package jit

import (
	"fmt"
	"unsafe"

	"github.com/lcox74/lispjit/internal/buffer"
	"github.com/lcox74/lispjit/internal/compiler"
	"github.com/lcox74/lispjit/internal/nativecall"
	"github.com/lcox74/lispjit/internal/reader"
)

// DefaultCodeSize is the default Code Buffer size for a compiled program.
const DefaultCodeSize = 4096

// Program is a compiled, executable entry point. Invoke may be called any
// number of times (the emitted code has no persistent state of its own
// beyond what the caller's heap holds). Close releases the program when it
// is no longer needed; calling Close more than once is safe.
type Program struct {
	buf *buffer.Buffer
}

// Compile reads and compiles src into a fresh executable Code Buffer.
func Compile(src []byte) (*Program, error) {
	return CompileWithSize(src, DefaultCodeSize)
}

// CompileWithSize is Compile with an explicit Code Buffer size, for
// programs too large for DefaultCodeSize.
func CompileWithSize(src []byte, codeSize int) (*Program, error) {
	tree, err := reader.Read(src)
	if err != nil {
		return nil, fmt.Errorf("jit: parse: %w", err)
	}

	buf, err := buffer.New(codeSize)
	if err != nil {
		return nil, fmt.Errorf("jit: allocate code buffer: %w", err)
	}

	ctx := compiler.Context{Writer: buf}
	if err := compiler.CompileProgram(tree, ctx); err != nil {
		_ = buf.Close()
		return nil, fmt.Errorf("jit: compile: %w", err)
	}

	if err := buf.MakeExecutable(); err != nil {
		_ = buf.Close()
		return nil, fmt.Errorf("jit: make executable: %w", err)
	}

	return &Program{buf: buf}, nil
}

// Invoke calls the compiled entry point with heap as the heap base
// pointer (rdi) and returns its tagged result (rax), via the
// internal/nativecall trampoline. Invoke must not be called after Close:
// the code mapping is gone by then.
func (p *Program) Invoke(heap []byte) uint64 {
	if len(heap) == 0 {
		return nativecall.Call(p.buf.Addr(), 0)
	}
	// The uintptr conversion happens inline in the call expression so the
	// compiler keeps heap's backing array alive (and unmoved) for the
	// duration of the call, per the unsafe.Pointer rules for syscall-style
	// argument passing.
	return nativecall.Call(p.buf.Addr(), uintptr(unsafe.Pointer(&heap[0])))
}

// Code returns the emitted machine code bytes, for disassembly or
// inspection. The returned slice aliases the Code Buffer's memory.
func (p *Program) Code() []byte { return p.buf.Bytes() }

// Addr returns the base address the Code Buffer is mapped at, the base a
// disassembly listing should report addresses relative to.
func (p *Program) Addr() uint64 { return uint64(p.buf.Addr()) }

// Close releases the underlying Code Buffer.
func (p *Program) Close() error {
	return p.buf.Close()
}
