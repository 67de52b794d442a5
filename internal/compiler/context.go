// Package compiler implements the expression-directed code generator:
// a post-order walk over a Syntax Tree that emits x86-64 machine code
// into a Code Buffer via the Encoder, threading a compiler context and a
// stack index through every recursive call.
package compiler

import (
	"github.com/lcox74/lispjit/internal/buffer"
	"github.com/lcox74/lispjit/internal/env"
)

// wordSize is the size in bytes of a stack slot and a heap word.
const wordSize = 8

// initialStackIndex is the first free scratch slot, one word below the
// return address the prologue's entry point sits above.
const initialStackIndex = -wordSize

// Context is the triple threaded through every compile call: the shared
// writer, and two scoped environments. WithLocals/WithLabels return a
// shallow copy with one field replaced — the writer is shared, so code
// emitted through a derived context is visible through the parent, but
// each context's view of its environments is independent.
type Context struct {
	Writer *buffer.Buffer
	Labels *env.Env
	Locals *env.Env
}

// WithLocals returns a copy of c with Locals replaced.
func (c Context) WithLocals(locals *env.Env) Context {
	c.Locals = locals
	return c
}

// WithLabels returns a copy of c with Labels replaced.
func (c Context) WithLabels(labels *env.Env) Context {
	c.Labels = labels
	return c
}
