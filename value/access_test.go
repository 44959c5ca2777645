package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAttrPermissive(t *testing.T) {
	m := NewOrderedMap()
	m.Set("name", Str("Ada"))
	v := Map(m)
	assert.Equal(t, Str("Ada"), v.GetAttr("name"))
	assert.Equal(t, None(), v.GetAttr("missing"))
	assert.True(t, v.IsDefinedAttr("name"))
	assert.False(t, v.IsDefinedAttr("missing"))

	assert.Equal(t, None(), Int(1).GetAttr("anything"))
}

func TestGetItemNegativeIndex(t *testing.T) {
	seq := Seq([]Value{Int(10), Int(20), Int(30)})
	assert.Equal(t, Int(30), seq.GetItem(Int(-1)))
	assert.Equal(t, None(), seq.GetItem(Int(99)))
}

func TestSlice(t *testing.T) {
	seq := Seq([]Value{Int(0), Int(1), Int(2), Int(3), Int(4)})
	one := int64(1)
	three := int64(3)
	sliced := seq.Slice(&one, &three, nil)
	got, _ := sliced.AsSeq()
	assert.Equal(t, []Value{Int(1), Int(2)}, got)
}

func TestIterateMapYieldsKeysInInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", Int(1))
	m.Set("a", Int(2))
	elems, ok := Map(m).Iterate()
	assert.True(t, ok)
	assert.Equal(t, []Value{Str("b"), Str("a")}, elems)
}
