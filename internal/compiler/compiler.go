package compiler

import (
	"github.com/lcox74/lispjit/internal/ast"
	"github.com/lcox74/lispjit/internal/env"
	"github.com/lcox74/lispjit/internal/fault"
	"github.com/lcox74/lispjit/internal/value"
	"github.com/lcox74/lispjit/pkg/amd64"
)

// emitWord emits `mov eax, imm32` for any tagged word that fits a 32-bit
// immediate — true of every fixnum, boolean, character, and nil value
// this compiler ever produces as a constant.
func emitWord(ctx Context, word uint64) {
	ctx.Writer.WriteBytes(amd64.MovImm32(amd64.Rax, int32(word)))
}

// CompileProgram compiles a single top-level form: either a `labels`
// form (which installs label bodies before its body) or a bare
// expression (wrapped with the standard entry prologue).
func CompileProgram(root *ast.Node, ctx Context) error {
	if isCall(root, "labels") {
		return compileLabelsForm(root, ctx)
	}
	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rsi, amd64.Rdi))
	if err := compileExpr(root, initialStackIndex, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.Ret())
	return nil
}

func isCall(n *ast.Node, head string) bool {
	return n.Kind == ast.KindCons && !ast.IsNil(n) && n.Car.Kind == ast.KindAtom && n.Car.Atom == head
}

// compileLabelsForm implements spec's top-level `labels` form: a forward
// jump over the label bodies, each label's code emitted in turn and bound
// into the labels environment as it is reached (so a label may call any
// label emitted before it, including itself, but not one emitted after),
// then the entry prologue and the program body.
func compileLabelsForm(root *ast.Node, ctx Context) error {
	parts := ast.Elements(root)
	if len(parts) != 3 {
		panic("compiler: malformed labels form")
	}
	bindings := ast.Elements(parts[1])
	body := parts[2]

	jmpSite := ctx.Writer.Pos()
	ctx.Writer.WriteBytes(amd64.JmpRel32(0))
	endOfJmpSite := ctx.Writer.Pos()

	labels := ctx.Labels
	for _, binding := range bindings {
		fields := ast.Elements(binding)
		if len(fields) != 2 || fields[0].Kind != ast.KindAtom {
			panic("compiler: malformed labels binding")
		}
		name := fields[0].Atom
		labels = env.Extend(labels, name, ctx.Writer.Pos())
		bodyCtx := ctx.WithLabels(labels)
		if err := compileCode(fields[1], bodyCtx); err != nil {
			return err
		}
	}

	target := ctx.Writer.Pos()
	ctx.Writer.PatchRel32(jmpSite+1, int32(target-endOfJmpSite))

	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rsi, amd64.Rdi))
	entryCtx := ctx.WithLabels(labels)
	if err := compileExpr(body, initialStackIndex, entryCtx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.Ret())
	return nil
}

// compileCode compiles a `(code (formals) body)` function body: a fresh
// frame whose formals are bound, left to right, to successively deeper
// stack slots starting at -8, matching the layout labelcall's caller
// writes its arguments into.
func compileCode(node *ast.Node, ctx Context) error {
	parts := ast.Elements(node)
	if len(parts) != 3 || !isAtomNamed(parts[0], "code") {
		panic("compiler: expected (code (formals) body)")
	}
	formals := ast.Elements(parts[1])
	body := parts[2]

	var locals *env.Env
	si := initialStackIndex
	for _, f := range formals {
		if f.Kind != ast.KindAtom {
			panic("compiler: formal must be an atom")
		}
		locals = env.Extend(locals, f.Atom, si)
		si -= wordSize
	}
	bodyCtx := ctx.WithLocals(locals)
	if err := compileExpr(body, si, bodyCtx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.Ret())
	return nil
}

func isAtomNamed(n *ast.Node, name string) bool {
	return n.Kind == ast.KindAtom && n.Atom == name
}

// compileExpr is the post-order walk's single entry point: every call
// leaves its result in rax and does not disturb any stack slot above si.
func compileExpr(node *ast.Node, si int, ctx Context) error {
	switch node.Kind {
	case ast.KindFixnum:
		emitWord(ctx, value.EncodeFixnum(int64(node.Fixnum)))
		return nil
	case ast.KindString:
		return compileStringLiteral(node.Str, ctx)
	case ast.KindAtom:
		return compileVarRef(node, ctx)
	case ast.KindCons:
		if ast.IsNil(node) {
			emitWord(ctx, value.Nil)
			return nil
		}
		return compileCall(node, si, ctx)
	default:
		panic("compiler: unknown syntax tree node kind")
	}
}

func compileVarRef(node *ast.Node, ctx Context) error {
	off, ok := env.Lookup(ctx.Locals, node.Atom)
	if !ok {
		return errorf("Unbound variable: %s (bound: %v)", node.Atom, env.Names(ctx.Locals))
	}
	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rax, off))
	return nil
}

// compileStringLiteral allocates and populates a string object inline.
// Its length is known at compile time, so the heap bump is a constant
// add rather than the runtime computation make-string needs.
func compileStringLiteral(s string, ctx Context) error {
	bytes := []byte(s)
	emitWord(ctx, value.EncodeFixnum(int64(len(bytes))))
	ctx.Writer.WriteBytes(amd64.MovToBaseDisp(amd64.Rsi, 0))
	for i, c := range bytes {
		emitWord(ctx, uint64(c))
		ctx.Writer.WriteBytes(amd64.MovByteToBaseDisp(amd64.Rsi, int8(wordSize+i), amd64.Rax))
	}
	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rax, amd64.Rsi))
	ctx.Writer.WriteBytes(amd64.OrImm32(amd64.Rax, int32(value.TagString)))
	ctx.Writer.WriteBytes(amd64.AddImm32(amd64.Rsi, int32(wordSize+len(bytes))))
	return nil
}

func compileCall(node *ast.Node, si int, ctx Context) error {
	parts := ast.Elements(node)
	if parts[0].Kind != ast.KindAtom {
		panic("compiler: call head must be an atom")
	}
	head := parts[0].Atom
	args := parts[1:]

	switch head {
	case "let":
		return compileLet(args, si, ctx)
	case "if":
		return compileIf(args, si, ctx)
	case "cons":
		return compileCons(args, si, ctx)
	case "car":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.MovFromBaseDisp(amd64.Rax, -1))
		})
	case "cdr":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.MovFromBaseDisp(amd64.Rax, 7))
		})
	case "add1":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.AddImm32(amd64.Rax, int32(value.EncodeFixnum(1))))
		})
	case "sub1":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.SubImm32(amd64.Rax, int32(value.EncodeFixnum(1))))
		})
	case "integer->char":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.ShlImm8(amd64.Rax, 6))
			ctx.Writer.WriteBytes(amd64.OrImm32(amd64.Rax, int32(value.CharTag)))
		})
	case "zero?":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.CmpImm32(amd64.Rax, 0))
			emitBoolFromFlags(ctx, amd64.SetzAl)
		})
	case "not":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.CmpImm32(amd64.Rax, int32(value.BoolTag)))
			emitBoolFromFlags(ctx, amd64.SetzAl)
		})
	case "null?":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.CmpImm32(amd64.Rax, int32(value.Nil)))
			emitBoolFromFlags(ctx, amd64.SetzAl)
		})
	case "pair?":
		return compileTagPredicate(args, si, ctx, 0b111, int32(value.TagPair))
	case "fixnum?":
		return compileTagPredicate(args, si, ctx, 0b11, int32(value.TagFixnum))
	case "vector?":
		return compileTagPredicate(args, si, ctx, 0b111, int32(value.TagVector))
	case "string?":
		return compileTagPredicate(args, si, ctx, 0b111, int32(value.TagString))
	case "boolean?":
		return compileTagPredicate(args, si, ctx, 0x7f, int32(value.BoolTag))
	case "char?":
		return compileTagPredicate(args, si, ctx, 0xff, int32(value.CharTag))
	case "+":
		return compileBinaryOp(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.AddFromStack(amd64.Rax, si))
		})
	case "-":
		return compileBinaryOp(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.SubFromStack(amd64.Rax, si))
		})
	case "*":
		return compileBinaryOp(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.SarImm8(amd64.Rax, 2))
			ctx.Writer.WriteBytes(amd64.ImulFromStack(amd64.Rax, si))
		})
	case "<":
		return compileComparison(args, si, ctx, amd64.SetlAl)
	case "<=":
		return compileComparison(args, si, ctx, amd64.SetleAl)
	case ">":
		return compileComparison(args, si, ctx, amd64.SetgAl)
	case ">=":
		return compileComparison(args, si, ctx, amd64.SetgeAl)
	case "=":
		return compileComparison(args, si, ctx, amd64.SetzAl)
	case "and":
		return compileAnd(args, si, ctx)
	case "or":
		return compileOr(args, si, ctx)
	case "cond":
		return compileCond(args, si, ctx)
	case "when":
		return compileWhen(args, si, ctx, false)
	case "unless":
		return compileWhen(args, si, ctx, true)
	case "begin":
		return compileBegin(args, si, ctx)
	case "set!":
		return compileSet(args, si, ctx)
	case "make-vector":
		return compileMakeVector(args, si, ctx)
	case "vector-length":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.MovFromBaseDisp(amd64.Rax, -2))
		})
	case "vector-ref":
		return compileVectorRef(args, si, ctx)
	case "vector-set!":
		return compileVectorSet(args, si, ctx)
	case "make-string":
		return compileMakeString(args, si, ctx)
	case "string-length":
		return compileUnary(args, si, ctx, func() {
			ctx.Writer.WriteBytes(amd64.MovFromBaseDisp(amd64.Rax, -3))
		})
	case "string-ref":
		return compileStringRef(args, si, ctx)
	case "string-set!":
		return compileStringSet(args, si, ctx)
	case "code":
		panic("compiler: (code ...) may only appear as a labels binding")
	case "labelcall":
		return compileLabelcall(args, si, ctx)
	default:
		panic("compiler: unknown call head " + head)
	}
}

// emitBoolFromFlags finishes the standard comparison-to-boolean sequence:
// the flags are already set by a preceding cmp; this zeroes rax without
// disturbing them, applies the set instruction, then shifts/ors the
// result into the boolean encoding.
func emitBoolFromFlags(ctx Context, setInstr func() []byte) {
	ctx.Writer.WriteBytes(amd64.MovImm32(amd64.Rax, 0))
	ctx.Writer.WriteBytes(setInstr())
	ctx.Writer.WriteBytes(amd64.ShlImm8(amd64.Rax, 7))
	ctx.Writer.WriteBytes(amd64.OrImm32(amd64.Rax, int32(value.BoolTag)))
}

func compileUnary(args []*ast.Node, si int, ctx Context, emit func()) error {
	fault.Require(len(args) == 1, "compiler: wrong arity")
	if err := compileExpr(args[0], si, ctx); err != nil {
		return err
	}
	emit()
	return nil
}

func compileTagPredicate(args []*ast.Node, si int, ctx Context, mask, tag int32) error {
	return compileUnary(args, si, ctx, func() {
		ctx.Writer.WriteBytes(amd64.AndImm32(amd64.Rax, mask))
		ctx.Writer.WriteBytes(amd64.CmpImm32(amd64.Rax, tag))
		emitBoolFromFlags(ctx, amd64.SetzAl)
	})
}

// compileBinaryOp implements the shared "+"-style scheme: the second
// operand is evaluated first and spilled to the current stack slot, then
// the first operand is evaluated one slot deeper, then combine reads the
// spilled operand back off the stack.
func compileBinaryOp(args []*ast.Node, si int, ctx Context, combine func()) error {
	fault.Require(len(args) == 2, "compiler: wrong arity")
	if err := compileExpr(args[1], si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	if err := compileExpr(args[0], si-wordSize, ctx); err != nil {
		return err
	}
	combine()
	return nil
}

func compileComparison(args []*ast.Node, si int, ctx Context, setInstr func() []byte) error {
	return compileBinaryOp(args, si, ctx, func() {
		ctx.Writer.WriteBytes(amd64.CmpFromStack(amd64.Rax, si))
		emitBoolFromFlags(ctx, setInstr)
	})
}

func compileLet(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 2, "compiler: wrong arity for let")
	bindings := ast.Elements(args[0])
	body := args[1]
	return compileLetBindings(bindings, body, si, ctx)
}

func compileLetBindings(bindings []*ast.Node, body *ast.Node, si int, ctx Context) error {
	if len(bindings) == 0 {
		return compileExpr(body, si, ctx)
	}
	fields := ast.Elements(bindings[0])
	if len(fields) != 2 || fields[0].Kind != ast.KindAtom {
		panic("compiler: malformed let binding")
	}
	if err := compileExpr(fields[1], si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	locals := env.Extend(ctx.Locals, fields[0].Atom, si)
	return compileLetBindings(bindings[1:], body, si-wordSize, ctx.WithLocals(locals))
}

func compileIf(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 3, "compiler: wrong arity for if")
	return compileIfRaw(si, ctx,
		func() error { return compileExpr(args[0], si, ctx) },
		func() error { return compileExpr(args[1], si, ctx) },
		func() error { return compileExpr(args[2], si, ctx) })
}

// compileIfRaw is the shared branch-emission primitive every control form
// (if, and, or, cond, when, unless) is built from.
func compileIfRaw(si int, ctx Context, test, then, els func() error) error {
	if err := test(); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.CmpImm32(amd64.Rax, int32(value.False)))
	siteA := ctx.Writer.Pos()
	ctx.Writer.WriteBytes(amd64.JeRel32(0))
	endA := ctx.Writer.Pos()

	if err := then(); err != nil {
		return err
	}
	siteB := ctx.Writer.Pos()
	ctx.Writer.WriteBytes(amd64.JmpRel32(0))
	endB := ctx.Writer.Pos()

	targetA := ctx.Writer.Pos()
	ctx.Writer.PatchRel32(siteA+2, int32(targetA-endA))

	if err := els(); err != nil {
		return err
	}
	targetB := ctx.Writer.Pos()
	ctx.Writer.PatchRel32(siteB+1, int32(targetB-endB))
	return nil
}

func compileCons(args []*ast.Node, si int, ctx Context) error {
	fault.Require(len(args) == 2, "compiler: wrong arity for cons")
	car, cdr := args[0], args[1]
	if err := compileExpr(cdr, si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(si, amd64.Rax))
	if err := compileExpr(car, si-wordSize, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToBaseDisp(amd64.Rsi, 0))
	ctx.Writer.WriteBytes(amd64.MovFromStack(amd64.Rax, si))
	ctx.Writer.WriteBytes(amd64.MovToBaseDisp(amd64.Rsi, wordSize))
	ctx.Writer.WriteBytes(amd64.MovRegReg(amd64.Rax, amd64.Rsi))
	ctx.Writer.WriteBytes(amd64.OrImm32(amd64.Rax, int32(value.TagPair)))
	ctx.Writer.WriteBytes(amd64.AddImm32(amd64.Rsi, 2*wordSize))
	return nil
}

func compileAnd(args []*ast.Node, si int, ctx Context) error {
	if len(args) == 0 {
		emitWord(ctx, value.True)
		return nil
	}
	var rec func(i int) error
	rec = func(i int) error {
		if i == len(args)-1 {
			return compileExpr(args[i], si, ctx)
		}
		return compileIfRaw(si, ctx,
			func() error { return compileExpr(args[i], si, ctx) },
			func() error { return rec(i + 1) },
			func() error { emitWord(ctx, value.False); return nil })
	}
	return rec(0)
}

func compileOr(args []*ast.Node, si int, ctx Context) error {
	if len(args) == 0 {
		emitWord(ctx, value.False)
		return nil
	}
	var rec func(i int) error
	rec = func(i int) error {
		if i == len(args)-1 {
			return compileExpr(args[i], si, ctx)
		}
		return compileIfRaw(si, ctx,
			func() error { return compileExpr(args[i], si, ctx) },
			func() error { return compileExpr(args[i], si, ctx) },
			func() error { return rec(i + 1) })
	}
	return rec(0)
}

func compileCond(args []*ast.Node, si int, ctx Context) error {
	var rec func(i int) error
	rec = func(i int) error {
		if i == len(args) {
			emitWord(ctx, value.Nil)
			return nil
		}
		clause := ast.Elements(args[i])
		if len(clause) != 2 {
			panic("compiler: malformed cond clause")
		}
		if isAtomNamed(clause[0], "else") {
			return compileExpr(clause[1], si, ctx)
		}
		return compileIfRaw(si, ctx,
			func() error { return compileExpr(clause[0], si, ctx) },
			func() error { return compileExpr(clause[1], si, ctx) },
			func() error { return rec(i + 1) })
	}
	return rec(0)
}

func compileWhen(args []*ast.Node, si int, ctx Context, invert bool) error {
	fault.Require(len(args) > 0, "compiler: wrong arity for when/unless")
	test, body := args[0], args[1:]
	truthy := func() error { return compileBegin(body, si, ctx) }
	falsy := func() error { emitWord(ctx, value.Nil); return nil }
	if invert {
		truthy, falsy = falsy, truthy
	}
	return compileIfRaw(si, ctx, func() error { return compileExpr(test, si, ctx) }, truthy, falsy)
}

func compileBegin(args []*ast.Node, si int, ctx Context) error {
	if len(args) == 0 {
		emitWord(ctx, value.Nil)
		return nil
	}
	for _, e := range args {
		if err := compileExpr(e, si, ctx); err != nil {
			return err
		}
	}
	return nil
}

func compileSet(args []*ast.Node, si int, ctx Context) error {
	if len(args) != 2 || args[0].Kind != ast.KindAtom {
		panic("compiler: malformed set!")
	}
	off, ok := env.Lookup(ctx.Locals, args[0].Atom)
	if !ok {
		return errorf("Unbound variable: %s (bound: %v)", args[0].Atom, env.Names(ctx.Locals))
	}
	if err := compileExpr(args[1], si, ctx); err != nil {
		return err
	}
	ctx.Writer.WriteBytes(amd64.MovToStack(off, amd64.Rax))
	return nil
}

func compileLabelcall(args []*ast.Node, si int, ctx Context) error {
	if len(args) == 0 {
		panic("compiler: labelcall requires a label name")
	}
	if args[0].Kind != ast.KindAtom {
		panic("compiler: labelcall name must be an atom")
	}
	target, ok := env.Lookup(ctx.Labels, args[0].Atom)
	if !ok {
		return errorf("Unbound label: %s (bound: %v)", args[0].Atom, env.Names(ctx.Labels))
	}
	cur := si
	for _, a := range args[1:] {
		if err := compileExpr(a, cur, ctx); err != nil {
			return err
		}
		ctx.Writer.WriteBytes(amd64.MovToStack(cur, amd64.Rax))
		cur -= wordSize
	}
	siteStart := ctx.Writer.Pos()
	ctx.Writer.WriteBytes(amd64.CallRel32(0))
	endOfCallSite := ctx.Writer.Pos()
	ctx.Writer.PatchRel32(siteStart+1, int32(target-endOfCallSite))
	return nil
}
