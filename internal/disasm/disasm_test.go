package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingDecodesMovImmAndRet(t *testing.T) {
	// mov eax, 0x1ec; ret
	code := []byte{0xb8, 0xec, 0x01, 0x00, 0x00, 0xc3}
	insts, err := Listing(code, 0x1000)
	require.NoError(t, err)
	require.Len(t, insts, 2)

	assert.Equal(t, uint64(0x1000), insts[0].Addr)
	assert.Equal(t, code[:5], insts[0].Bytes)
	assert.Contains(t, insts[0].Text, "mov")

	assert.Equal(t, uint64(0x1005), insts[1].Addr)
	assert.Equal(t, code[5:6], insts[1].Bytes)
	assert.Contains(t, insts[1].Text, "ret")
}

func TestListingReturnsErrorOnGarbageTail(t *testing.T) {
	// A single valid ret followed by a byte sequence too short to decode
	// anything meaningful as a full instruction.
	code := []byte{0xc3, 0x0f}
	insts, err := Listing(code, 0)
	require.Error(t, err)
	require.Len(t, insts, 1)
	assert.Contains(t, insts[0].Text, "ret")
}
