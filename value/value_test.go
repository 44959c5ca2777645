package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	assert.False(t, None().IsTruthy())
	assert.False(t, Bool(false).IsTruthy())
	assert.True(t, Bool(true).IsTruthy())
	assert.False(t, Int(0).IsTruthy())
	assert.True(t, Int(1).IsTruthy())
	assert.False(t, Float(0).IsTruthy())
	assert.False(t, Str("").IsTruthy())
	assert.True(t, Str("x").IsTruthy())
	assert.False(t, Seq(nil).IsTruthy())
	assert.True(t, Seq([]Value{Int(1)}).IsTruthy())
	m := NewOrderedMap()
	assert.False(t, Map(m).IsTruthy())
	m.Set("a", Int(1))
	assert.True(t, Map(m).IsTruthy())
}

func TestStringForm(t *testing.T) {
	assert.Equal(t, "", None().String())
	assert.Equal(t, "True", Bool(true).String())
	assert.Equal(t, "False", Bool(false).String())
	assert.Equal(t, "3", Int(3).String())
	assert.Equal(t, "3.5", Float(3.5).String())
	assert.Equal(t, "hello", Str("hello").String())
}

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	m.Set("m", Int(3))
	require.Equal(t, []string{"z", "a", "m"}, m.Keys())

	m.Set("a", Int(99)) // re-assign, should not move
	require.Equal(t, []string{"z", "a", "m"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, Int(99), v)
}

func TestToJSON(t *testing.T) {
	m := NewOrderedMap()
	m.Set("name", Str("f"))
	seq := Seq([]Value{Map(m)})
	assert.Equal(t, `[{"name": "f"}]`, seq.ToJSON(""))
}

func TestReprContainer(t *testing.T) {
	seq := Seq([]Value{Str("a"), Int(1)})
	assert.Equal(t, "['a', 1]", seq.String())
}
