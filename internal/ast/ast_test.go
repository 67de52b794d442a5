package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListAndElements(t *testing.T) {
	l := List(NewFixnum(1), NewFixnum(2), NewFixnum(3))
	elems := Elements(l)
	assert.Len(t, elems, 3)
	assert.Equal(t, int32(1), elems[0].Fixnum)
	assert.Equal(t, int32(3), elems[2].Fixnum)
	assert.Equal(t, 3, Len(l))
}

func TestEmptyListIsSharedNil(t *testing.T) {
	assert.True(t, IsNil(List()))
	assert.Same(t, Nil, List())
}

func TestElementsOnImproperListPanics(t *testing.T) {
	improper := Cons(NewFixnum(1), NewFixnum(2))
	assert.Panics(t, func() { Elements(improper) })
}

func TestStringRendersSurfaceSyntax(t *testing.T) {
	n := List(NewAtom("+"), NewFixnum(1), NewFixnum(2))
	assert.Equal(t, "(+ 1 2)", n.String())
}

func TestStringRendersNestedLists(t *testing.T) {
	n := List(List(NewAtom("hello"), NewAtom("world")), List(NewAtom("foo"), NewAtom("bar")))
	assert.Equal(t, "((hello world) (foo bar))", n.String())
}
