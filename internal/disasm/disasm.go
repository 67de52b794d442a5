// Package disasm renders compiled machine code back to readable
// instruction text, purely for inspection: it is never imported by
// internal/compiler or pkg/amd64, keeping the disassembler a one-way
// collaborator rather than a dependency of the code generator.
package disasm

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// Instruction is one decoded machine instruction.
type Instruction struct {
	Addr  uint64
	Bytes []byte
	Text  string
}

// Listing decodes every instruction in code, in order, annotating each
// with its address relative to base.
func Listing(code []byte, base uint64) ([]Instruction, error) {
	var out []Instruction
	off := 0
	for off < len(code) {
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil {
			return out, fmt.Errorf("disasm: decode at offset %d: %w", off, err)
		}
		addr := base + uint64(off)
		text := x86asm.GNUSyntax(inst, addr, nil)
		out = append(out, Instruction{
			Addr:  addr,
			Bytes: append([]byte(nil), code[off:off+inst.Len]...),
			Text:  text,
		})
		off += inst.Len
	}
	return out, nil
}
