// Package ast defines the Syntax Tree the reader produces and the
// compiler walks: a three-variant tagged union (fixnum, atom, cons) plus
// a string-literal variant supplementing the string primitives in
// SPEC_FULL.md, and a single shared sentinel for the empty list.
package ast

import (
	"fmt"
	"strings"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindFixnum Kind = iota
	KindAtom
	KindString
	KindCons
)

var kindNames = [...]string{
	KindFixnum: "Fixnum",
	KindAtom:   "Atom",
	KindString: "String",
	KindCons:   "Cons",
}

// String returns the variant's name, for debugging and error messages.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Node is one node of the Syntax Tree. Exactly one of the fields below is
// meaningful, selected by Kind; Car/Cdr are only present when Kind is
// KindCons. A cons always has both children present — there is no
// "improper" half-built cons in this tree.
type Node struct {
	Kind Kind

	Fixnum int32
	Atom   string
	Str    string
	Car    *Node
	Cdr    *Node
}

// Nil is the single globally shared instance representing the empty
// list. Every list-terminating cdr and every empty `()` literal points at
// this same node, so identity comparison is a valid emptiness test.
var Nil = &Node{Kind: KindCons, Car: nil, Cdr: nil}

// IsNil reports whether n is the shared empty-list sentinel.
func IsNil(n *Node) bool { return n == Nil }

// NewFixnum builds a fixnum leaf.
func NewFixnum(v int32) *Node { return &Node{Kind: KindFixnum, Fixnum: v} }

// NewAtom builds a symbol leaf.
func NewAtom(name string) *Node { return &Node{Kind: KindAtom, Atom: name} }

// NewString builds a string-literal leaf.
func NewString(s string) *Node { return &Node{Kind: KindString, Str: s} }

// Cons builds a pair node. Passing Nil as cdr is how list construction
// terminates a right-nested chain.
func Cons(car, cdr *Node) *Node { return &Node{Kind: KindCons, Car: car, Cdr: cdr} }

// List builds a right-nested cons chain from the given elements,
// terminated by Nil — the shape every reader-produced list has.
func List(elems ...*Node) *Node {
	result := Nil
	for i := len(elems) - 1; i >= 0; i-- {
		result = Cons(elems[i], result)
	}
	return result
}

// Elements walks a proper list (a chain of Cons nodes ending in Nil) and
// returns its elements as a slice. It panics if n is not a proper list —
// malformed syntax trees are a precondition violation per the spec, not
// a recoverable error.
func Elements(n *Node) []*Node {
	var out []*Node
	for !IsNil(n) {
		if n.Kind != KindCons {
			panic("ast: Elements called on improper list")
		}
		out = append(out, n.Car)
		n = n.Cdr
	}
	return out
}

// Len returns the number of elements in a proper list.
func Len(n *Node) int {
	count := 0
	for !IsNil(n) {
		if n.Kind != KindCons {
			panic("ast: Len called on improper list")
		}
		count++
		n = n.Cdr
	}
	return count
}

// String renders n back to Lisp surface syntax, mainly for debugging and
// the CLI's "tree" subcommand.
func (n *Node) String() string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	switch {
	case n == nil:
		b.WriteString("()")
	case IsNil(n):
		b.WriteString("()")
	case n.Kind == KindFixnum:
		fmt.Fprintf(b, "%d", n.Fixnum)
	case n.Kind == KindAtom:
		b.WriteString(n.Atom)
	case n.Kind == KindString:
		fmt.Fprintf(b, "%q", n.Str)
	case n.Kind == KindCons:
		b.WriteByte('(')
		first := true
		for cur := n; !IsNil(cur); cur = cur.Cdr {
			if cur.Kind != KindCons {
				// improper list tail; render it after a dot
				b.WriteString(" . ")
				writeNode(b, cur)
				break
			}
			if !first {
				b.WriteByte(' ')
			}
			first = false
			writeNode(b, cur.Car)
		}
		b.WriteByte(')')
	}
}
