package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSONPreservesKeyOrder(t *testing.T) {
	v, err := FromJSON([]byte(`{"z": 1, "a": 2, "m": {"nested": true}}`))
	require.NoError(t, err)
	m, ok := v.AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())

	nested, _ := m.Get("m")
	nm, ok := nested.AsMap()
	require.True(t, ok)
	inner, _ := nm.Get("nested")
	assert.Equal(t, Bool(true), inner)
}

func TestFromJSONNumberKinds(t *testing.T) {
	v, err := FromJSON([]byte(`[1, 2.5, -3]`))
	require.NoError(t, err)
	seq, _ := v.AsSeq()
	assert.Equal(t, Int(1), seq[0])
	assert.Equal(t, Float(2.5), seq[1])
	assert.Equal(t, Int(-3), seq[2])
}

func TestToInterfaceRoundTrip(t *testing.T) {
	v, err := FromJSON([]byte(`{"a": [1, "x", null, true]}`))
	require.NoError(t, err)
	out := v.ToInterface()
	m, ok := out.(map[string]interface{})
	require.True(t, ok)
	list, ok := m["a"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(1), list[0])
	assert.Equal(t, "x", list[1])
	assert.Nil(t, list[2])
	assert.Equal(t, true, list[3])
}
