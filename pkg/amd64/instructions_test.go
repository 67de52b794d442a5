package amd64

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovImm32(t *testing.T) {
	assert.Equal(t, []byte{0xb8, 0xec, 0x01, 0x00, 0x00}, MovImm32(Rax, 492))
}

func TestAddImm32RaxShortForm(t *testing.T) {
	assert.Equal(t, []byte{0x05, 0x04, 0x00, 0x00, 0x00}, AddImm32(Rax, 4))
}

func TestAddImm32NonRax(t *testing.T) {
	assert.Equal(t, []byte{0x48, 0x81, 0xc1, 0x04, 0x00, 0x00, 0x00}, AddImm32(Rcx, 4))
}

func TestMovToStackZeroOffset(t *testing.T) {
	assert.Equal(t, []byte{0x48, 0x89, 0x04, 0x24}, MovToStack(0, Rax))
}

func TestMovToStackNegativeOffset(t *testing.T) {
	assert.Equal(t, []byte{0x48, 0x89, 0x44, 0x24, 0xf8}, MovToStack(-8, Rax))
}

func TestMovToStackPositiveOffsetPanics(t *testing.T) {
	assert.Panics(t, func() { MovToStack(8, Rax) })
}

func TestAddFromStack(t *testing.T) {
	assert.Equal(t, []byte{0x48, 0x03, 0x44, 0x24, 0xf8}, AddFromStack(Rax, -8))
}

func TestRet(t *testing.T) {
	assert.Equal(t, []byte{0xc3}, Ret())
}

func TestJeRel32(t *testing.T) {
	assert.Equal(t, []byte{0x0f, 0x84, 0xf2, 0xff, 0xff, 0xff}, JeRel32(-14))
}

func TestCallRel32(t *testing.T) {
	assert.Equal(t, []byte{0xe8, 0xf2, 0xff, 0xff, 0xff}, CallRel32(-14))
}

func TestShrSarShl(t *testing.T) {
	assert.Equal(t, []byte{0x48, 0xc1, 0xe0, 0x02}, ShlImm8(Rax, 2))
	assert.Equal(t, []byte{0x48, 0xc1, 0xe8, 0x02}, ShrImm8(Rax, 2))
	assert.Equal(t, []byte{0x48, 0xc1, 0xf8, 0x02}, SarImm8(Rax, 2))
}

func TestShiftOutOfRangePanics(t *testing.T) {
	assert.Panics(t, func() { ShlImm8(Rax, 64) })
}

func TestMovFromIndexedDisp8(t *testing.T) {
	// mov rax, [rax+rcx*8+8]
	assert.Equal(t, []byte{0x48, 0x8b, 0x44, 0xc8, 0x08}, MovFromIndexedDisp8(Rax, Rax, Rcx, 8))
}

func TestMovzxByteIndexedDisp8(t *testing.T) {
	assert.Equal(t, []byte{0x48, 0x0f, 0xb6, 0x44, 0x08, 0x08}, MovzxByteIndexedDisp8(Rax, Rax, Rcx, 8))
}

func TestRegString(t *testing.T) {
	assert.Equal(t, "rdi", Rdi.String())
	assert.Equal(t, "r?", Reg(99).String())
}
