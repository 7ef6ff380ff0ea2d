package nbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/dataconverter/internal/core/types"
	tags "github.com/zeusync/dataconverter/internal/nbt"
)

func TestMapAccessors(t *testing.T) {
	m := Wrap(tags.Compound{
		"b":    tags.Byte(3),
		"i":    tags.Int(70000),
		"d":    tags.Double(2.5),
		"s":    tags.String("text"),
		"ints": tags.IntArray{1, 2},
	})

	t.Run("defaulted getters convert numbers", func(t *testing.T) {
		assert.Equal(t, int64(3), m.GetLong("b", 0))
		assert.Equal(t, int16(70000-65536), m.GetShort("i", 0))
		assert.Equal(t, int32(2), m.GetInt("d", 0))
		assert.Equal(t, int32(9), m.GetInt("missing", 9))
		assert.Equal(t, int32(9), m.GetInt("s", 9))
		assert.True(t, m.GetBoolean("b", false))
	})

	t.Run("strict reads", func(t *testing.T) {
		v, err := m.ReadInt("missing")
		require.NoError(t, err)
		assert.Zero(t, v)

		_, err = m.ReadInt("s")
		assert.ErrorIs(t, err, types.ErrTypeMismatch)

		_, err = m.ReadString("i")
		assert.ErrorIs(t, err, types.ErrTypeMismatch)

		ints, err := m.ReadInts("ints")
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 2}, ints)
	})

	t.Run("shorts are unsupported", func(t *testing.T) {
		_, err := m.GetShorts("ints")
		assert.ErrorIs(t, err, types.ErrUnsupportedCapability)
		assert.ErrorIs(t, m.SetShorts("x", []int16{1}), types.ErrUnsupportedCapability)
		assert.True(t, types.IsContractViolation(err))
	})

	t.Run("type queries", func(t *testing.T) {
		assert.True(t, m.HasKeyOfType("b", types.Number))
		assert.True(t, m.HasKeyOfType("b", types.Byte))
		assert.False(t, m.HasKeyOfType("b", types.Int))
		assert.False(t, m.HasKeyOfType("s", types.Number))
		assert.Equal(t, types.None, m.TypeOf("missing"))
		assert.Equal(t, []string{"b", "d", "i", "ints", "s"}, m.Keys())
	})

	t.Run("forced string", func(t *testing.T) {
		assert.Equal(t, "text", m.GetForcedString("s", ""))
		assert.Equal(t, "3b", m.GetForcedString("b", ""))
		assert.Equal(t, "x", m.GetForcedString("missing", "x"))
	})
}

func TestMapSharesStorage(t *testing.T) {
	root := tags.Compound{"inner": tags.Compound{"v": tags.Int(1)}}
	m := Wrap(root)

	m.GetMap("inner").SetInt("v", 2)
	assert.Equal(t, tags.Int(2), root["inner"].(tags.Compound)["v"])

	cp := m.Copy()
	cp.GetMap("inner").SetInt("v", 3)
	assert.Equal(t, tags.Int(2), root["inner"].(tags.Compound)["v"])
}

func TestGetListMatchesElementKind(t *testing.T) {
	m := Wrap(tags.Compound{
		"strings": tags.ListOf(tags.String("a")),
		"empty":   tags.NewList(),
		"ints":    tags.ListOf(tags.Int(1), tags.Int(2)),
	})

	assert.NotNil(t, m.GetList("strings", types.String))
	assert.Nil(t, m.GetList("strings", types.Map))
	assert.NotNil(t, m.GetList("empty", types.Map))
	assert.NotNil(t, m.GetList("ints", types.Number))
	assert.Nil(t, m.GetList("missing", types.String))
	assert.NotNil(t, m.GetListUnchecked("strings"))
}

func TestListIgnoresMismatchedAdds(t *testing.T) {
	l := Util.CreateEmptyList()
	assert.Equal(t, types.None, l.Type())

	l.AddInt(1)
	l.AddString("nope")
	l.AddInt(2)

	require.Equal(t, 2, l.Size())
	assert.Equal(t, types.Int, l.Type())

	v, err := l.GetInt(1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	_, err = l.GetString(0)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	l.SetString(0, "nope")
	v, err = l.GetInt(0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
}

func TestSetGenericConvertsNumbers(t *testing.T) {
	m := Wrap(nil)

	require.NoError(t, m.SetGeneric("small", types.IntegerNumber(types.Number, 5)))
	require.NoError(t, m.SetGeneric("big", types.IntegerNumber(types.Number, 1<<40)))
	require.NoError(t, m.SetGeneric("frac", types.FloatNumber(types.Number, 0.5)))
	require.NoError(t, m.SetGeneric("flag", true))

	assert.Equal(t, tags.Int(5), m.Tag()["small"])
	assert.Equal(t, tags.Long(1<<40), m.Tag()["big"])
	assert.Equal(t, tags.Double(0.5), m.Tag()["frac"])
	assert.Equal(t, tags.Byte(1), m.Tag()["flag"])

	assert.ErrorIs(t, m.SetGeneric("x", struct{}{}), types.ErrForeignValue)
}

func TestParse(t *testing.T) {
	m, err := Parse(`{id:"minecraft:stone",Count:1b}`)
	require.NoError(t, err)
	assert.Equal(t, "minecraft:stone", m.GetString("id", ""))
	assert.Equal(t, int8(1), m.GetByte("Count", 0))

	_, err = Parse(`{id:`)
	assert.Error(t, err)
}
