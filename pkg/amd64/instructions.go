package amd64

// This file contains x86_64 instruction encoders.
// Each function returns the machine code bytes for a specific instruction.
//
// For details on x86-64 instruction encoding (REX prefixes, ModRM, SIB bytes),
// see: https://wiki.osdev.org/X86-64_Instruction_Encoding
//
// Every encoding here is bit-exact with what the compiler's test suite
// compares against; there is no general-purpose "assembler" underneath,
// just one function per instruction *form* the compiler core actually
// emits.

// Inc encodes: inc r64 (48 ff c0+r)
func Inc(dst Reg) []byte {
	return []byte{0x48, 0xff, 0xc0 + byte(dst)}
}

// Dec encodes: dec r64 (48 ff c8+r)
func Dec(dst Reg) []byte {
	return []byte{0x48, 0xff, 0xc8 + byte(dst)}
}

// MovImm32 encodes: mov r32, imm32 (b8+r imm32)
// Writes to the 32-bit sub-register, which zero-extends into the full r64.
func MovImm32(dst Reg, imm32 int32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xb8 + byte(dst)
	writeLE32(buf[1:], uint32(imm32))
	return buf
}

// MovRegReg encodes: mov dst, src (48 89 modrm), modrm = c0+dst+src*8.
func MovRegReg(dst, src Reg) []byte {
	return []byte{0x48, 0x89, 0xc0 + byte(dst) + byte(src)*8}
}

// AddImm32 encodes: add r64, imm32.
// rax gets the short form (05 imm32, no REX.W); any other register uses
// the general r/m64 form (81 /0 id).
func AddImm32(dst Reg, imm32 int32) []byte {
	if dst == Rax {
		buf := make([]byte, 5)
		buf[0] = 0x05
		writeLE32(buf[1:], uint32(imm32))
		return buf
	}
	buf := make([]byte, 7)
	buf[0] = 0x48
	buf[1] = 0x81
	buf[2] = 0xc0 + byte(dst)
	writeLE32(buf[3:], uint32(imm32))
	return buf
}

// SubImm32 encodes: sub r64, imm32.
// rax gets the short form (2d imm32); any other register uses the 83 /5 ib
// form (83 e8+r imm8) without REX.W, which is a 32-bit subtraction of a
// sign-extended 8-bit immediate: imm32 is truncated to its low 8 bits.
func SubImm32(dst Reg, imm32 int32) []byte {
	if dst == Rax {
		buf := make([]byte, 5)
		buf[0] = 0x2d
		writeLE32(buf[1:], uint32(imm32))
		return buf
	}
	buf := make([]byte, 3)
	buf[0] = 0x83
	buf[1] = 0xe8 + byte(dst)
	buf[2] = byte(int8(imm32))
	return buf
}

// AndImm32 encodes: and r64, imm32 (48 25 imm32 for rax, else 48 81 e0+r imm32).
func AndImm32(dst Reg, imm32 int32) []byte {
	if dst == Rax {
		buf := make([]byte, 6)
		buf[0] = 0x48
		buf[1] = 0x25
		writeLE32(buf[2:], uint32(imm32))
		return buf
	}
	buf := make([]byte, 7)
	buf[0] = 0x48
	buf[1] = 0x81
	buf[2] = 0xe0 + byte(dst)
	writeLE32(buf[3:], uint32(imm32))
	return buf
}

// OrImm32 encodes: or r64, imm32 (48 0d imm32 for rax, else 48 81 c8+r imm32).
func OrImm32(dst Reg, imm32 int32) []byte {
	if dst == Rax {
		buf := make([]byte, 6)
		buf[0] = 0x48
		buf[1] = 0x0d
		writeLE32(buf[2:], uint32(imm32))
		return buf
	}
	buf := make([]byte, 7)
	buf[0] = 0x48
	buf[1] = 0x81
	buf[2] = 0xc8 + byte(dst)
	writeLE32(buf[3:], uint32(imm32))
	return buf
}

// CmpImm32 encodes: cmp r64, imm32 (48 3d imm32 for rax, else 48 81 f8+r imm32).
func CmpImm32(dst Reg, imm32 int32) []byte {
	if dst == Rax {
		buf := make([]byte, 6)
		buf[0] = 0x48
		buf[1] = 0x3d
		writeLE32(buf[2:], uint32(imm32))
		return buf
	}
	buf := make([]byte, 7)
	buf[0] = 0x48
	buf[1] = 0x81
	buf[2] = 0xf8 + byte(dst)
	writeLE32(buf[3:], uint32(imm32))
	return buf
}

// ShlImm8 encodes: shl r64, imm8 (48 c1 e0+r imm8). imm8 must be in [0,64).
func ShlImm8(dst Reg, imm8 uint8) []byte {
	if imm8 >= 64 {
		panic("amd64: shift amount out of range")
	}
	return []byte{0x48, 0xc1, 0xe0 + byte(dst), imm8}
}

// ShrImm8 encodes: shr r64, imm8 (48 c1 e8+r imm8), logical right shift.
func ShrImm8(dst Reg, imm8 uint8) []byte {
	if imm8 >= 64 {
		panic("amd64: shift amount out of range")
	}
	return []byte{0x48, 0xc1, 0xe8 + byte(dst), imm8}
}

// SarImm8 encodes: sar r64, imm8 (48 c1 f8+r imm8), arithmetic right shift.
// Used to untag a fixnum (divide by 4, sign-preserving) before a multiply.
func SarImm8(dst Reg, imm8 uint8) []byte {
	if imm8 >= 64 {
		panic("amd64: shift amount out of range")
	}
	return []byte{0x48, 0xc1, 0xf8 + byte(dst), imm8}
}

// SetzAl encodes: setz al (0f 94 c0).
func SetzAl() []byte {
	return []byte{0x0f, 0x94, 0xc0}
}

// SetlAl encodes: setl al (0f 9c c0).
func SetlAl() []byte {
	return []byte{0x0f, 0x9c, 0xc0}
}

// SetleAl encodes: setle al (0f 9e c0).
func SetleAl() []byte {
	return []byte{0x0f, 0x9e, 0xc0}
}

// SetgAl encodes: setg al (0f 9f c0).
func SetgAl() []byte {
	return []byte{0x0f, 0x9f, 0xc0}
}

// SetgeAl encodes: setge al (0f 9d c0).
func SetgeAl() []byte {
	return []byte{0x0f, 0x9d, 0xc0}
}

// JeRel32 encodes: je rel32 (0f 84 rel32). rel32 is written as a
// placeholder and later overwritten via the Code Buffer's PatchRel32.
func JeRel32(rel32 int32) []byte {
	buf := make([]byte, 6)
	buf[0] = 0x0f
	buf[1] = 0x84
	writeLE32(buf[2:], uint32(rel32))
	return buf
}

// JmpRel32 encodes: jmp rel32 (e9 rel32).
func JmpRel32(rel32 int32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xe9
	writeLE32(buf[1:], uint32(rel32))
	return buf
}

// CallRel32 encodes: call rel32 (e8 rel32). rel32 = target - (site+5).
func CallRel32(rel32 int32) []byte {
	buf := make([]byte, 5)
	buf[0] = 0xe8
	writeLE32(buf[1:], uint32(rel32))
	return buf
}

// Ret encodes: ret (c3).
func Ret() []byte {
	return []byte{0xc3}
}

// TestRegReg encodes: test dst, src (48 85 modrm), modrm = c0+dst+src*8.
// Checks a runtime value against zero without a known-constant
// comparison. The compiler does not emit it; its tag predicates
// mask and then compare with CmpImm32.
func TestRegReg(dst, src Reg) []byte {
	return []byte{0x48, 0x85, 0xc0 + byte(dst) + byte(src)*8}
}

// MovToStack encodes: mov [rsp+d], src (48 89 modrm 24 [disp8]).
// When d is zero the SIB-without-displacement form is used (no trailing
// disp8 byte); otherwise the disp8 form is used, matching the spec's
// "disp8 form when offset != 0" note exactly.
func MovToStack(d int, src Reg) []byte {
	if d > 0 {
		panic("amd64: positive stack offset")
	}
	if d == 0 {
		return []byte{0x48, 0x89, 0x04 + byte(src)*8, 0x24}
	}
	return []byte{0x48, 0x89, 0x44 + byte(src)*8, 0x24, disp8(d)}
}

// MovFromStack encodes: mov dst, [rsp+d] (48 8b modrm 24 [disp8]).
func MovFromStack(dst Reg, d int) []byte {
	if d > 0 {
		panic("amd64: positive stack offset")
	}
	if d == 0 {
		return []byte{0x48, 0x8b, 0x04 + byte(dst)*8, 0x24}
	}
	return []byte{0x48, 0x8b, 0x44 + byte(dst)*8, 0x24, disp8(d)}
}

// AddFromStack encodes: add dst, [rsp+d] (48 03 modrm 24 [disp8]).
func AddFromStack(dst Reg, d int) []byte {
	if d > 0 {
		panic("amd64: positive stack offset")
	}
	if d == 0 {
		return []byte{0x48, 0x03, 0x04 + byte(dst)*8, 0x24}
	}
	return []byte{0x48, 0x03, 0x44 + byte(dst)*8, 0x24, disp8(d)}
}

// SubFromStack encodes: sub dst, [rsp+d] (48 2b modrm 24 [disp8]).
// Shares the same ModR/M+SIB shape as AddFromStack; only the opcode
// (2b instead of 03) differs, per the general r64, r/m64 two-operand form.
func SubFromStack(dst Reg, d int) []byte {
	if d > 0 {
		panic("amd64: positive stack offset")
	}
	if d == 0 {
		return []byte{0x48, 0x2b, 0x04 + byte(dst)*8, 0x24}
	}
	return []byte{0x48, 0x2b, 0x44 + byte(dst)*8, 0x24, disp8(d)}
}

// ImulFromStack encodes: imul dst, [rsp+d] (48 0f af modrm 24 [disp8]).
// Two-operand signed multiply, reg <- reg * r/m64.
func ImulFromStack(dst Reg, d int) []byte {
	if d > 0 {
		panic("amd64: positive stack offset")
	}
	if d == 0 {
		return []byte{0x48, 0x0f, 0xaf, 0x04 + byte(dst)*8, 0x24}
	}
	return []byte{0x48, 0x0f, 0xaf, 0x44 + byte(dst)*8, 0x24, disp8(d)}
}

// CmpFromStack encodes: cmp dst, [rsp+d] (48 3b modrm 24 [disp8]).
func CmpFromStack(dst Reg, d int) []byte {
	if d > 0 {
		panic("amd64: positive stack offset")
	}
	if d == 0 {
		return []byte{0x48, 0x3b, 0x04 + byte(dst)*8, 0x24}
	}
	return []byte{0x48, 0x3b, 0x44 + byte(dst)*8, 0x24, disp8(d)}
}

// MovToBaseDisp encodes: mov [base+d], rax (48 89 40+base d).
// Only rax is ever the source register this compiler spills through
// this form; the field ordering matches the spec's table exactly.
func MovToBaseDisp(base Reg, d int8) []byte {
	return []byte{0x48, 0x89, 0x40 + byte(base), byte(d)}
}

// MovFromBaseDisp encodes: mov rax, [base+d] (48 8b 40+base d).
func MovFromBaseDisp(base Reg, d int8) []byte {
	return []byte{0x48, 0x8b, 0x40 + byte(base), byte(d)}
}

// MovByteToBaseDisp encodes: mov byte [base+disp8], src (40 88 40+base+src*8 disp8).
// Like MovToBaseDisp but stores a single byte; used to write string-literal
// contents at compile time, one immediate byte per element. The bare REX
// prefix (no W) keeps src in [4,7] addressing sil/dil rather than ah/ch.
func MovByteToBaseDisp(base Reg, disp int8, src Reg) []byte {
	return []byte{0x40, 0x88, 0x40 + byte(base) + byte(src)*8, byte(disp)}
}

// AddRegReg encodes: add dst, src (48 01 modrm), modrm = c0+dst+src*8.
// Used by the heap bump allocator for vectors and strings, where the
// bump amount is only known at runtime and so can't use AddImm32.
func AddRegReg(dst, src Reg) []byte {
	return []byte{0x48, 0x01, 0xc0 + byte(dst) + byte(src)*8}
}

// sib packs a scale/index/base byte. scale is the SIB-encoded factor:
// 0 means x1, 3 means x8. Used by the indexed-addressing forms below,
// which generalize the encoder's fixed-offset [base+disp8] forms to
// [base+index*scale+disp8] for vector and string element access.
func sib(scale byte, index, base Reg) byte {
	return scale<<6 | byte(index)<<3 | byte(base)
}

// MovFromIndexedDisp8 encodes: mov dst, [base+index*8+disp8]
// (48 8b modrm sib disp8). Used for vector element reads.
func MovFromIndexedDisp8(dst, base, index Reg, disp int8) []byte {
	return []byte{0x48, 0x8b, 0x44 + byte(dst)*8, sib(3, index, base), byte(disp)}
}

// MovToIndexedDisp8 encodes: mov [base+index*8+disp8], src
// (48 89 modrm sib disp8). Used for vector element writes.
func MovToIndexedDisp8(base, index Reg, disp int8, src Reg) []byte {
	return []byte{0x48, 0x89, 0x44 + byte(src)*8, sib(3, index, base), byte(disp)}
}

// MovzxByteIndexedDisp8 encodes: movzx dst, byte [base+index+disp8]
// (48 0f b6 modrm sib disp8), zero-extending a single byte into a full
// register. Used for string element reads (index scale x1).
func MovzxByteIndexedDisp8(dst, base, index Reg, disp int8) []byte {
	return []byte{0x48, 0x0f, 0xb6, 0x44 + byte(dst)*8, sib(0, index, base), byte(disp)}
}

// MovByteIndexedDisp8 encodes: mov byte [base+index+disp8], src
// (40 88 modrm sib disp8). The bare REX prefix (no W) is required so that
// src in [4,7] addresses sil/dil/bpl/spl rather than the legacy
// ah/ch/dh/bh high-byte registers. Used for string element writes.
func MovByteIndexedDisp8(base, index Reg, disp int8, src Reg) []byte {
	return []byte{0x40, 0x88, 0x44 + byte(src)*8, sib(0, index, base), byte(disp)}
}
