package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcox74/lispjit/internal/ast"
)

func TestReadFixnum(t *testing.T) {
	n, err := Read([]byte("123"))
	require.NoError(t, err)
	assert.Equal(t, ast.KindFixnum, n.Kind)
	assert.Equal(t, int32(123), n.Fixnum)
}

func TestReadNegativeFixnum(t *testing.T) {
	n, err := Read([]byte("-5"))
	require.NoError(t, err)
	assert.Equal(t, int32(-5), n.Fixnum)
}

func TestReadAtom(t *testing.T) {
	n, err := Read([]byte("foo"))
	require.NoError(t, err)
	assert.Equal(t, ast.KindAtom, n.Kind)
	assert.Equal(t, "foo", n.Atom)
}

func TestReadString(t *testing.T) {
	n, err := Read([]byte(`"hello"`))
	require.NoError(t, err)
	assert.Equal(t, ast.KindString, n.Kind)
	assert.Equal(t, "hello", n.Str)
}

func TestReadEmptyList(t *testing.T) {
	n, err := Read([]byte("()"))
	require.NoError(t, err)
	assert.True(t, ast.IsNil(n))
}

func TestReadListRoundTrip(t *testing.T) {
	n, err := Read([]byte("((hello world) (foo bar))"))
	require.NoError(t, err)

	elems := ast.Elements(n)
	require.Len(t, elems, 2)

	first := ast.Elements(elems[0])
	require.Len(t, first, 2)
	assert.Equal(t, "hello", first[0].Atom)
	assert.Equal(t, "world", first[1].Atom)

	second := ast.Elements(elems[1])
	require.Len(t, second, 2)
	assert.Equal(t, "foo", second[0].Atom)
	assert.Equal(t, "bar", second[1].Atom)
}

func TestReadAllMultipleForms(t *testing.T) {
	forms, err := ReadAll([]byte("1 2 (+ 1 2)"))
	require.NoError(t, err)
	require.Len(t, forms, 3)
	assert.Equal(t, int32(1), forms[0].Fixnum)
	assert.Equal(t, int32(2), forms[1].Fixnum)
}

func TestUnterminatedListIsError(t *testing.T) {
	_, err := Read([]byte("(+ 1 2"))
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
}

func TestUnterminatedStringIsError(t *testing.T) {
	_, err := Read([]byte(`"unterminated`))
	require.Error(t, err)
}

func TestAtomTooLongIsError(t *testing.T) {
	long := make([]byte, maxAtomLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := Read(long)
	require.Error(t, err)
}
