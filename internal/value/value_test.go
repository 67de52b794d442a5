package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixnumRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 492, -492, 1 << 28, -(1 << 28)} {
		assert.Equal(t, v, DecodeFixnum(EncodeFixnum(v)))
	}
}

func TestFixnumEncoding(t *testing.T) {
	assert.Equal(t, uint64(0x000001ec), EncodeFixnum(123))
}

func TestCharRoundTrip(t *testing.T) {
	for c := byte(0); c < 128; c++ {
		assert.Equal(t, c, DecodeChar(EncodeChar(c)))
	}
}

func TestCharEncoding(t *testing.T) {
	assert.Equal(t, uint64(0x410f), EncodeChar('A'))
}

func TestBoolEncoding(t *testing.T) {
	assert.Equal(t, uint64(0x9f), True)
	assert.Equal(t, uint64(0x1f), False)
	assert.Equal(t, True, EncodeBool(true))
	assert.Equal(t, False, EncodeBool(false))
}

func TestIsPredicates(t *testing.T) {
	assert.True(t, IsFixnum(EncodeFixnum(5)))
	assert.False(t, IsFixnum(True))
	assert.True(t, IsBool(True))
	assert.True(t, IsBool(False))
	assert.True(t, IsChar(EncodeChar('z')))
	assert.True(t, IsNil(Nil))
	assert.True(t, IsPair(Tagged(0x1000, TagPair)))
	assert.True(t, IsVector(Tagged(0x1000, TagVector)))
	assert.True(t, IsString(Tagged(0x1000, TagString)))
}

func TestTaggedHeapAddressRoundTrip(t *testing.T) {
	addr := uint64(0x7f0000001000)
	for _, tag := range []Tag{TagPair, TagVector, TagString} {
		w := Tagged(addr, tag)
		assert.Equal(t, addr, HeapAddress(w, tag))
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "492", Format(EncodeFixnum(492)))
	assert.Equal(t, "#t", Format(True))
	assert.Equal(t, "#f", Format(False))
	assert.Equal(t, "()", Format(Nil))
}

func TestEncodeFixnumOutOfRangePanics(t *testing.T) {
	assert.Panics(t, func() { EncodeFixnum(1 << 40) })
}
