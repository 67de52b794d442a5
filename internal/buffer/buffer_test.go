package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBytesAdvancesPosAndReturnsOffset(t *testing.T) {
	b, err := New(64)
	require.NoError(t, err)
	defer b.Close()

	off1 := b.WriteBytes([]byte{0xb8, 0x01, 0x00, 0x00, 0x00})
	assert.Equal(t, 0, off1)
	assert.Equal(t, 5, b.Pos())

	off2 := b.WriteBytes([]byte{0xc3})
	assert.Equal(t, 5, off2)
	assert.Equal(t, 6, b.Pos())

	assert.Equal(t, []byte{0xb8, 0x01, 0x00, 0x00, 0x00, 0xc3}, b.Bytes())
}

func TestWriteBytesPastCapPanics(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)
	defer b.Close()

	assert.Panics(t, func() { b.WriteBytes([]byte{1, 2, 3, 4, 5}) })
}

func TestPatchRel32OverwritesInPlace(t *testing.T) {
	b, err := New(64)
	require.NoError(t, err)
	defer b.Close()

	b.WriteBytes([]byte{0xe9, 0x00, 0x00, 0x00, 0x00})
	b.PatchRel32(1, 123)
	assert.Equal(t, []byte{0xe9, 0x7b, 0x00, 0x00, 0x00}, b.Bytes())
}

func TestPatchRel32OutOfRangePanics(t *testing.T) {
	b, err := New(64)
	require.NoError(t, err)
	defer b.Close()

	assert.Panics(t, func() { b.PatchRel32(-1, 0) })
	assert.Panics(t, func() { b.PatchRel32(100, 0) })
}

func TestMakeExecutableIsOneWay(t *testing.T) {
	b, err := New(4096)
	require.NoError(t, err)
	defer b.Close()

	b.WriteBytes([]byte{0xc3})
	require.NoError(t, b.MakeExecutable())

	assert.Panics(t, func() { b.WriteBytes([]byte{0x90}) })
	assert.Panics(t, func() { b.PatchRel32(0, 0) })
}

func TestCloseIsIdempotent(t *testing.T) {
	b, err := New(64)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	_, err = New(-1)
	require.Error(t, err)
}

func TestAddrIsStableAcrossWrites(t *testing.T) {
	b, err := New(64)
	require.NoError(t, err)
	defer b.Close()

	addr := b.Addr()
	b.WriteBytes([]byte{0x90, 0x90})
	assert.Equal(t, addr, b.Addr())
}
