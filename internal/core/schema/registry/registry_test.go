package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/internal/core/types/native"
)

var v = converter.V

func record(calls *[]string, name string) converter.MapRule {
	return func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		*calls = append(*calls, name)
		return nil, nil
	}
}

func TestDispatchOrderWithinBucket(t *testing.T) {
	var calls []string
	reg := New(log.NewNop())
	sign := reg.RegisterIDType("tile_entity", "id")

	sign.AddStructureConverter(v(10), record(&calls, "structure"))
	sign.AddConverter(v(10), record(&calls, "generic-1"))
	sign.AddConverter(v(10), record(&calls, "generic-2"))
	sign.AddConverterForID("minecraft:sign", v(10), record(&calls, "id"))
	sign.AddConverterForID("minecraft:chest", v(10), record(&calls, "other-id"))
	sign.SetWalker(func(data types.MapType, from, to converter.Version) (types.MapType, error) {
		calls = append(calls, "walk "+from.String()+"->"+to.String())
		return nil, nil
	})
	reg.Freeze()

	data := native.Wrap(map[string]any{"id": "minecraft:sign"})
	_, err := reg.ConvertMap("tile_entity", data, v(5), v(20))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"walk 5->10",
		"id",
		"generic-1",
		"generic-2",
		"structure",
		"walk 10->20",
	}, calls)
}

func TestDispatchSkipsVersionsOutsideRange(t *testing.T) {
	var calls []string
	reg := New(nil)
	typ := reg.RegisterMapType("player")
	typ.AddConverter(v(5), record(&calls, "5"))
	typ.AddConverter(v(6), record(&calls, "6"))
	typ.AddConverter(v(6, 1), record(&calls, "6.1"))
	typ.AddConverter(v(9), record(&calls, "9"))
	reg.Freeze()

	_, err := reg.ConvertMap("player", native.Wrap(nil), v(5), v(6, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"6", "6.1"}, calls)
}

func TestNoOpRange(t *testing.T) {
	var calls []string
	reg := New(nil)
	typ := reg.RegisterMapType("player")
	typ.AddConverter(v(10), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		calls = append(calls, "rule")
		data.SetInt("touched", 1)
		return nil, nil
	})
	typ.SetWalker(func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		calls = append(calls, "walk")
		return nil, nil
	})
	reg.Freeze()

	for _, at := range []converter.Version{v(0), v(10), v(11)} {
		data := native.Wrap(map[string]any{"a": int32(1)})
		before := data.Copy()

		out, err := reg.ConvertMap("player", data, at, at)
		require.NoError(t, err)
		assert.Same(t, data, out)
		assert.True(t, types.Equal(before, out))
	}
	assert.Empty(t, calls)

	out, err := reg.ConvertMap("player", nil, v(0), v(20))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestBucketSplitInvariance(t *testing.T) {
	build := func() *Registry {
		reg := New(nil)
		typ := reg.RegisterMapType("entity")
		typ.AddConverter(v(10), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
			data.SetString("trace", data.GetString("trace", "")+"a")
			data.SetInt("hp", data.GetInt("hp", 0)*2)
			return nil, nil
		})
		typ.AddConverter(v(15), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
			data.SetString("trace", data.GetString("trace", "")+"b")
			data.SetInt("hp", data.GetInt("hp", 0)+1)
			return nil, nil
		})
		reg.Freeze()
		return reg
	}
	reg := build()

	direct := native.Wrap(map[string]any{"hp": int32(3)})
	direct2, err := reg.ConvertMap("entity", direct, v(5), v(20))
	require.NoError(t, err)

	split := native.Wrap(map[string]any{"hp": int32(3)})
	mid, err := reg.ConvertMap("entity", split, v(5), v(10))
	require.NoError(t, err)
	end, err := reg.ConvertMap("entity", mid, v(10), v(20))
	require.NoError(t, err)

	assert.True(t, types.Equal(direct2, end))
	assert.Equal(t, "ab", end.GetString("trace", ""))
	assert.Equal(t, int32(7), end.GetInt("hp", 0))
}

func TestReplacementCarriesForward(t *testing.T) {
	reg := New(nil)
	typ := reg.RegisterMapType("item_stack")
	typ.AddConverter(v(1), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		out := data.TypeUtil().CreateEmptyMap()
		out.SetString("wrapped", data.GetString("id", ""))
		return out, nil
	})
	typ.AddStructureConverter(v(1), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		data.SetBoolean("seen", data.HasKey("wrapped"))
		return nil, nil
	})
	reg.Freeze()

	out, err := reg.ConvertMap("item_stack", native.Wrap(map[string]any{"id": "x"}), v(0), v(1))
	require.NoError(t, err)
	assert.Equal(t, "x", out.GetString("wrapped", ""))
	assert.True(t, out.GetBoolean("seen", false))
}

func TestRuleFailuresAreContained(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := New(log.NewWithCore(core))
	typ := reg.RegisterIDType("tile_entity", "id")
	typ.AddConverterForID("minecraft:sign", v(2), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		return nil, errors.New("boom")
	})
	typ.AddConverter(v(2), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		panic("bad rule")
	})
	typ.AddStructureConverter(v(2), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		data.SetBoolean("reached", true)
		return nil, nil
	})
	reg.Freeze()

	data := native.Wrap(map[string]any{"id": "minecraft:sign"})
	out, err := reg.ConvertMap("tile_entity", data, v(1), v(3))
	require.NoError(t, err)
	assert.True(t, out.GetBoolean("reached", false))

	failures := logs.FilterMessage("rule failed").All()
	require.Len(t, failures, 2)
	fields := failures[0].ContextMap()
	assert.Equal(t, "tile_entity", fields["type"])
	assert.Equal(t, "2", fields["version"])
	assert.Equal(t, "minecraft:sign", fields["id"])
	assert.Contains(t, failures[1].ContextMap()["error"], "bad rule")
}

func TestFailedRuleLeavesValueUntouched(t *testing.T) {
	reg := New(nil)
	typ := reg.RegisterMapType("player")
	typ.AddConverter(v(10), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		data.Remove("Inventory")
		data.SetString("half", "done")
		data.GetMap("abilities").SetBoolean("flying", true)
		return nil, errors.New("boom")
	})
	typ.AddConverter(v(11), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		data.SetString("moved", data.GetListUnchecked("Inventory").GetGeneric(0).(string))
		return nil, nil
	})
	reg.Freeze()

	data, err := native.FromPlain(map[string]any{
		"Inventory": []any{"minecraft:stone"},
		"abilities": map[string]any{"flying": int8(0)},
	})
	require.NoError(t, err)
	out, err := reg.ConvertMap("player", data, v(1), v(11))
	require.NoError(t, err)

	assert.Same(t, data, out)
	assert.False(t, data.HasKey("half"))
	assert.True(t, data.HasKey("Inventory"))
	assert.False(t, data.GetMap("abilities").GetBoolean("flying", true))
	assert.Equal(t, "minecraft:stone", data.GetString("moved", ""))
}

func TestContractViolationRollsBackStep(t *testing.T) {
	reg := New(nil)
	typ := reg.RegisterMapType("player")
	typ.AddConverter(v(2), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		data.Remove("name")
		return nil, types.ErrTypeMismatch
	})
	reg.Freeze()

	data := native.Wrap(map[string]any{"name": "steve"})
	_, err := reg.ConvertMap("player", data, v(1), v(2))
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	assert.Equal(t, "steve", data.GetString("name", ""))
}

func TestContractViolationsEscape(t *testing.T) {
	reg := New(nil)
	typ := reg.RegisterMapType("player")
	typ.AddConverter(v(2), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		_, err := data.ReadInt("name")
		return nil, err
	})
	reg.Freeze()

	_, err := reg.ConvertMap("player", native.Wrap(map[string]any{"name": "steve"}), v(1), v(2))
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestWalkerDispatchesByName(t *testing.T) {
	reg := New(nil)
	item := reg.RegisterIDType("item_stack", "id")
	item.AddConverter(v(10), func(data types.MapType, from, to converter.Version) (types.MapType, error) {
		data.SetString("range", from.String()+"->"+to.String())
		return nil, nil
	})

	player := reg.RegisterMapType("player")
	player.SetWalker(func(data types.MapType, from, to converter.Version) (types.MapType, error) {
		child := data.GetMap("held")
		if child == nil {
			return nil, nil
		}
		out, err := reg.ConvertMap("item_stack", child, from, to)
		if err != nil {
			return nil, err
		}
		data.SetMap("held", out)
		return nil, nil
	})
	player.AddConverter(v(12), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		data.SetString("seen", data.GetMap("held").GetString("range", "missing"))
		return nil, nil
	})
	reg.Freeze()

	data := native.Wrap(nil)
	held := native.Util.CreateEmptyMap()
	held.SetString("id", "minecraft:stone")
	data.SetMap("held", held)

	out, err := reg.ConvertMap("player", data, v(1), v(20))
	require.NoError(t, err)
	assert.Equal(t, "1->12", out.GetString("seen", ""))
	assert.Equal(t, "1->12", out.GetMap("held").GetString("range", ""))
}

func TestWalkerFloor(t *testing.T) {
	var calls []string
	reg := New(nil)
	typ := reg.RegisterIDType("entity", "id")
	walker := func(name string) converter.MapWalker {
		return func(data types.MapType, from, to converter.Version) (types.MapType, error) {
			calls = append(calls, name+" "+from.String()+"->"+to.String())
			return nil, nil
		}
	}
	typ.AddWalker(v(0), walker("old"))
	typ.AddWalker(v(10), walker("new"))
	typ.AddWalkerForID("minecraft:horse", v(10), walker("horse"))
	typ.AddConverter(v(10), record(&calls, "rule"))
	reg.Freeze()

	_, err := reg.ConvertMap("entity", native.Wrap(map[string]any{"id": "minecraft:horse"}), v(5), v(12))
	require.NoError(t, err)
	assert.Equal(t, []string{"old 5->10", "rule", "new 10->12", "horse 10->12"}, calls)
}

func TestDisabledTypeIsIdentity(t *testing.T) {
	reg := New(nil)
	cmd := reg.RegisterValueType("command")
	cmd.AddConverter(v(2), func(data any, _, _ converter.Version) (any, error) {
		return "/rewritten", nil
	})
	require.NoError(t, reg.Disable("command"))
	assert.ErrorIs(t, reg.Disable("missing"), ErrUnknownType)
	reg.Freeze()

	out, err := reg.ConvertValue("command", "/say hi", v(1), v(5))
	require.NoError(t, err)
	assert.Equal(t, "/say hi", out)
	assert.True(t, reg.Info()[0].Disabled)
}

func TestRegistryMisuse(t *testing.T) {
	reg := New(nil)
	typ := reg.RegisterMapType("player")
	reg.RegisterValueType("command")

	assert.Panics(t, func() { reg.RegisterMapType("player") })
	assert.Panics(t, func() {
		typ.AddConverterForID("x", v(1), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
			return nil, nil
		})
	})

	_, err := reg.ConvertMap("player", native.Wrap(nil), v(1), v(2))
	assert.ErrorIs(t, err, ErrNotFrozen)

	reg.Freeze()
	assert.Panics(t, func() { reg.RegisterMapType("late") })

	_, err = reg.ConvertMap("nope", native.Wrap(nil), v(1), v(2))
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = reg.ConvertMap("command", native.Wrap(nil), v(1), v(2))
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestInfo(t *testing.T) {
	reg := New(nil)
	be := reg.RegisterIDType("tile_entity", "id")
	be.AddConverterForID("minecraft:sign", v(3), record(new([]string), "id"))
	be.AddConverter(v(1), record(new([]string), "generic"))
	be.SetWalker(func(data types.MapType, _, _ converter.Version) (types.MapType, error) { return nil, nil })
	reg.RegisterValueType("command")
	reg.Freeze()

	info := reg.Info()
	require.Len(t, info, 2)
	assert.Equal(t, TypeInfo{
		Name:     "tile_entity",
		Kind:     KindID,
		IDField:  "id",
		Rules:    2,
		Walkers:  1,
		IDs:      []string{"minecraft:sign"},
		Versions: []string{"1", "3"},
	}, info[0])
	assert.Equal(t, KindValue, info[1].Kind)
}
