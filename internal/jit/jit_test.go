package jit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcox74/lispjit/internal/value"
)

func TestCompileAndInvokeFixnum(t *testing.T) {
	prog, err := Compile([]byte("(+ 1 2)"))
	require.NoError(t, err)
	defer prog.Close()

	heap := make([]byte, 800)
	result := prog.Invoke(heap)
	assert.Equal(t, int64(3), value.DecodeFixnum(result))
}

func TestCompileAndInvokeLabels(t *testing.T) {
	prog, err := Compile([]byte("(labels ((const (code () 5))) (labelcall const))"))
	require.NoError(t, err)
	defer prog.Close()

	heap := make([]byte, 800)
	result := prog.Invoke(heap)
	assert.Equal(t, int64(5), value.DecodeFixnum(result))
}

func TestInvokeCanRunMoreThanOnce(t *testing.T) {
	prog, err := Compile([]byte("(* 6 7)"))
	require.NoError(t, err)
	defer prog.Close()

	heap1 := make([]byte, 800)
	heap2 := make([]byte, 800)
	assert.Equal(t, prog.Invoke(heap1), prog.Invoke(heap2))
}

func TestCodeAndAddrExposeEmittedBytes(t *testing.T) {
	prog, err := Compile([]byte("123"))
	require.NoError(t, err)
	defer prog.Close()

	assert.NotEmpty(t, prog.Code())
	assert.Equal(t, uint64(prog.buf.Addr()), prog.Addr())
}

func TestCloseIsIdempotent(t *testing.T) {
	prog, err := Compile([]byte("123"))
	require.NoError(t, err)

	require.NoError(t, prog.Close())
	require.NoError(t, prog.Close())
}

func TestCompileParseErrorIsWrapped(t *testing.T) {
	_, err := Compile([]byte("(+ 1 2"))
	require.Error(t, err)
}

func TestCompileCompileErrorIsWrapped(t *testing.T) {
	_, err := Compile([]byte("undefined-variable"))
	require.Error(t, err)
}
