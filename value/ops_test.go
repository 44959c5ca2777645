package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	v, err := Add(Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)

	v, err = Add(Int(1), Float(2.5))
	require.NoError(t, err)
	assert.Equal(t, Float(3.5), v)

	v, err = Add(Seq([]Value{Int(1)}), Seq([]Value{Int(2)}))
	require.NoError(t, err)
	seq, _ := v.AsSeq()
	assert.Len(t, seq, 2)
}

func TestDivisionByZeroAlwaysErrors(t *testing.T) {
	_, err := Div(Int(1), Int(0))
	assert.Error(t, err)

	_, err = Div(Float(1), Int(0))
	assert.Error(t, err)

	_, err = FloorDiv(Int(1), Int(0))
	assert.Error(t, err)

	_, err = Rem(Int(1), Int(0))
	assert.Error(t, err)
}

func TestFloorDivAndRemSignFollowsDivisor(t *testing.T) {
	v, err := FloorDiv(Int(-7), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(-4), v)

	v, err = Rem(Int(-7), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)
}

func TestPowIntegerBySquaring(t *testing.T) {
	v, err := Pow(Int(2), Int(10))
	require.NoError(t, err)
	assert.Equal(t, Int(1024), v)
}

func TestEqualAcrossIntFloat(t *testing.T) {
	assert.True(t, Equal(Int(3), Float(3.0)))
	assert.False(t, Equal(Int(3), Str("3")))
}

func TestContains(t *testing.T) {
	ok, err := Contains(Str("ell"), Str("hello"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Contains(Int(2), Seq([]Value{Int(1), Int(2), Int(3)}))
	require.NoError(t, err)
	assert.True(t, ok)

	m := NewOrderedMap()
	m.Set("a", Int(1))
	ok, err = Contains(Str("a"), Map(m))
	require.NoError(t, err)
	assert.True(t, ok)
}
