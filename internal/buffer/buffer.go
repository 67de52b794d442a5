// Package buffer implements the Code Buffer: a page of memory that starts
// out writable, accumulates machine code and backpatched displacements,
// and then makes a one-way transition to executable. The transition is
// enforced in Go before any syscall runs, so a caller that tries to keep
// writing after MakeExecutable gets a panic instead of a SIGSEGV.
package buffer

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// state is the Code Buffer's one-way state machine.
type state int

const (
	stateWritable state = iota
	stateExecutable
	stateClosed
)

// Buffer is a single mmap'd region of memory used to assemble and then
// execute machine code.
type Buffer struct {
	mem   []byte
	pos   int
	state state
}

// New maps a fresh, zeroed, anonymous region of at least size bytes,
// readable and writable but not executable.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("buffer: size must be positive, got %d", size)
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("buffer: mmap: %w", err)
	}
	return &Buffer{mem: mem, state: stateWritable}, nil
}

// Pos returns the current write offset, i.e. the length of code emitted
// so far.
func (b *Buffer) Pos() int { return b.pos }

// Cap returns the total mapped size.
func (b *Buffer) Cap() int { return len(b.mem) }

// Bytes returns the code written so far. The slice aliases the buffer's
// backing memory and is only valid for inspection (disassembly), not
// further mutation.
func (b *Buffer) Bytes() []byte { return b.mem[:b.pos] }

func (b *Buffer) requireWritable() {
	if b.state != stateWritable {
		panic("buffer: write attempted after MakeExecutable or Close")
	}
}

// WriteBytes appends raw bytes at the current position and returns the
// offset they were written at.
func (b *Buffer) WriteBytes(p []byte) int {
	b.requireWritable()
	if b.pos+len(p) > len(b.mem) {
		panic("buffer: write exceeds mapped size")
	}
	off := b.pos
	copy(b.mem[off:], p)
	b.pos += len(p)
	return off
}

// PatchRel32 overwrites the 4 bytes at offset with a little-endian int32.
// Used to backpatch forward jump/call targets once they're known.
func (b *Buffer) PatchRel32(offset int, rel32 int32) {
	b.requireWritable()
	if offset < 0 || offset+4 > len(b.mem) {
		panic("buffer: patch offset out of range")
	}
	binary.LittleEndian.PutUint32(b.mem[offset:], uint32(rel32))
}

// Addr returns the base address of the mapped region, valid for the
// lifetime of the Buffer. It is used both to compute PC-relative
// displacements during assembly and to invoke the code once executable.
func (b *Buffer) Addr() uintptr {
	if len(b.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b.mem[0]))
}

// MakeExecutable flips the buffer from writable to executable. This is a
// one-way transition: after it returns, WriteBytes and PatchRel32 panic.
func (b *Buffer) MakeExecutable() error {
	b.requireWritable()
	if err := unix.Mprotect(b.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("buffer: mprotect: %w", err)
	}
	b.state = stateExecutable
	return nil
}

// Close unmaps the buffer. It is idempotent: calling it more than once,
// or on a buffer that was never made executable, is safe.
func (b *Buffer) Close() error {
	if b.state == stateClosed || b.mem == nil {
		b.state = stateClosed
		return nil
	}
	err := unix.Munmap(b.mem)
	b.mem = nil
	b.state = stateClosed
	if err != nil {
		return fmt.Errorf("buffer: munmap: %w", err)
	}
	return nil
}
