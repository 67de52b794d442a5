package compiler

import (
	"github.com/lcox74/lispjit/internal/ast"
	"github.com/lcox74/lispjit/internal/fault"
	"github.com/lcox74/lispjit/internal/value"
	"github.com/lcox74/lispjit/pkg/amd64"
)

// compileMakeVector allocates n+1 words on the bump allocator: word 0 is
// the (still-tagged) length, matching vector-length's expectation that it
// can read the header straight back without re-tagging. The bump amount
// is computed at runtime since n is a runtime value: bump = 2*taggedN+8,
// because taggedN = n<<2, so 2*taggedN = n<<3 = 8n, and the vector needs
// 8n bytes of elements plus the 8-byte header.
func compileMakeVector(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 1, "compiler: wrong arity for make-vector")
	if err := compileExpr(args[0], si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	ctx.Writer.WriteBytes(amd64.MovToBaseDisp(amd64.Rsi, 0))
	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rax, amd64.Rsi))
	ctx.Writer.WriteBytes(amd64.OrImm32(amd64.Rax, int32(value.TagVector)))

	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rcx, si))
	ctx.Writer.WriteBytes(amd64.ShlImm8(amd64.Rcx, 1))
	ctx.Writer.WriteBytes(amd64.AddImm32(amd64.Rcx, wordSize))
	ctx.Writer.WriteBytes(amd64.AddRegReg(amd64.Rsi, amd64.Rcx))
	return nil
}

// compileVectorRef loads element i of vector v: the untagged base sits
// at ptr-2, the header occupies the first word, so element i is at
// [untagged_base + 8 + 8*i] with i decoded (shifted right 2) to use as
// an SIB index.
func compileVectorRef(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 2, "compiler: wrong arity for vector-ref")
	v, i := args[0], args[1]
	if err := compileExpr(v, si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	if err := compileExpr(i, si-wordSize, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.SarImm8(amd64.Rax, 2))
	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rcx, amd64.Rax))
	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rax, si))
	ctx.Writer.WriteBytes(amd64.SubImm32(amd64.Rax, int32(value.TagVector)))
	ctx.Writer.WriteBytes(amd64.MovFromIndexedDisp8(amd64.Rax, amd64.Rax, amd64.Rcx, wordSize))
	return nil
}

// compileVectorSet stores x into element i of vector v, leaving x as the
// result (the value last assigned) per set!'s convention.
func compileVectorSet(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 3, "compiler: wrong arity for vector-set!")
	v, i, x := args[0], args[1], args[2]
	if err := compileExpr(v, si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	if err := compileExpr(i, si-wordSize, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si-wordSize, amd64.Rax))
	if err := compileExpr(x, si-2*wordSize, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si-2*wordSize, amd64.Rax))

	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rcx, si-wordSize))
	ctx.Writer.WriteBytes(amd64.SarImm8(amd64.Rcx, 2))
	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rax, si))
	ctx.Writer.WriteBytes(amd64.SubImm32(amd64.Rax, int32(value.TagVector)))
	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rdx, si-2*wordSize))
	ctx.Writer.WriteBytes(amd64.MovToIndexedDisp8(amd64.Rax, amd64.Rcx, wordSize, amd64.Rdx))
	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rax, amd64.Rdx))
	return nil
}

// compileMakeString mirrors compileMakeVector but elements are bytes, so
// the bump is n+8 rather than 8n+8: bump = (taggedN>>2)+8.
func compileMakeString(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 1, "compiler: wrong arity for make-string")
	if err := compileExpr(args[0], si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	ctx.Writer.WriteBytes(amd64.MovToBaseDisp(amd64.Rsi, 0))
	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rax, amd64.Rsi))
	ctx.Writer.WriteBytes(amd64.OrImm32(amd64.Rax, int32(value.TagString)))

	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rcx, si))
	ctx.Writer.WriteBytes(amd64.SarImm8(amd64.Rcx, 2))
	ctx.Writer.WriteBytes(amd64.AddImm32(amd64.Rcx, wordSize))
	ctx.Writer.WriteBytes(amd64.AddRegReg(amd64.Rsi, amd64.Rcx))
	return nil
}

// compileStringRef loads byte i of string s and re-tags it as a
// character (this language's only per-element scalar type for strings).
func compileStringRef(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 2, "compiler: wrong arity for string-ref")
	s, i := args[0], args[1]
	if err := compileExpr(s, si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	if err := compileExpr(i, si-wordSize, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.SarImm8(amd64.Rax, 2))
	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rcx, amd64.Rax))
	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rax, si))
	ctx.Writer.WriteBytes(amd64.SubImm32(amd64.Rax, int32(value.TagString)))
	ctx.Writer.WriteBytes(amd64.MovzxByteIndexedDisp8(amd64.Rax, amd64.Rax, amd64.Rcx, wordSize))
	ctx.Writer.WriteBytes(amd64.ShlImm8(amd64.Rax, 8))
	ctx.Writer.WriteBytes(amd64.OrImm32(amd64.Rax, int32(value.CharTag)))
	return nil
}

// compileStringSet stores character c's byte value into element i of
// string s, leaving c (re-tagged) as the result.
func compileStringSet(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 3, "compiler: wrong arity for string-set!")
	s, i, c := args[0], args[1], args[2]
	if err := compileExpr(s, si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	if err := compileExpr(i, si-wordSize, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si-wordSize, amd64.Rax))
	if err := compileExpr(c, si-2*wordSize, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.ShrImm8(amd64.Rax, 8))
	ctx.Writer.WriteBytes(amd64.MovToStack(si-2*wordSize, amd64.Rax))

	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rcx, si-wordSize))
	ctx.Writer.WriteBytes(amd64.SarImm8(amd64.Rcx, 2))
	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rax, si))
	ctx.Writer.WriteBytes(amd64.SubImm32(amd64.Rax, int32(value.TagString)))
	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rdx, si-2*wordSize))
	ctx.Writer.WriteBytes(amd64.MovByteIndexedDisp8(amd64.Rax, amd64.Rcx, wordSize, amd64.Rdx))

	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rax, amd64.Rdx))
	ctx.Writer.WriteBytes(amd64.ShlImm8(amd64.Rax, 8))
	ctx.Writer.WriteBytes(amd64.OrImm32(amd64.Rax, int32(value.CharTag)))
	return nil
}
