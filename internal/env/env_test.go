package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupOnEmptyEnvIsUnbound(t *testing.T) {
	_, ok := Lookup(nil, "x")
	assert.False(t, ok)
}

func TestExtendThenLookup(t *testing.T) {
	e := Extend(nil, "x", -8)
	v, ok := Lookup(e, "x")
	assert.True(t, ok)
	assert.Equal(t, -8, v)
}

func TestNearerBindingShadowsFarther(t *testing.T) {
	e := Extend(nil, "x", -8)
	e = Extend(e, "x", -16)
	v, ok := Lookup(e, "x")
	assert.True(t, ok)
	assert.Equal(t, -16, v)
}

func TestLookupSkipsPastNonMatchingFrames(t *testing.T) {
	e := Extend(nil, "x", -8)
	e = Extend(e, "y", -16)
	e = Extend(e, "z", -24)

	v, ok := Lookup(e, "x")
	assert.True(t, ok)
	assert.Equal(t, -8, v)
}

func TestNamesOrdersNearestFirst(t *testing.T) {
	e := Extend(nil, "a", 1)
	e = Extend(e, "b", 2)
	e = Extend(e, "c", 3)

	assert.Equal(t, []string{"c", "b", "a"}, Names(e))
}

func TestNamesOnEmptyEnvIsEmpty(t *testing.T) {
	assert.Empty(t, Names(nil))
}
