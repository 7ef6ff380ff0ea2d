package datafix_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/internal/core/types/jsontree"
	typesnbt "github.com/zeusync/dataconverter/internal/core/types/nbt"
	"github.com/zeusync/dataconverter/internal/datafix"
	tags "github.com/zeusync/dataconverter/internal/nbt"
)

// appendTarget is a stand-in for a real command grammar: it appends a target
// selector and rejects unbalanced parentheses.
var appendTarget = datafix.CommandUpgraderFunc(func(cmd string, _ bool) (string, error) {
	if strings.Count(cmd, "(") != strings.Count(cmd, ")") {
		return "", fmt.Errorf("%w: unbalanced parenthesis in %q", types.ErrParse, cmd)
	}
	return cmd + " @a", nil
})

func strings4(l types.ListType) []string {
	var out []string
	for i := range l.Size() {
		s, _ := l.GetString(i)
		out = append(out, s)
	}
	return out
}

func TestSignText(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{CommandUpgrader: appendTarget})

	sign := typesnbt.Wrap(tags.Compound{
		"id": tags.String("minecraft:sign"),
		"front_text": tags.Compound{
			"messages": tags.ListOf(
				tags.String(`{"text":"hello","clickEvent":{"action":"run_command","value":"/say hello"}}`),
				tags.String(""),
				tags.String(""),
				tags.String(""),
			),
		},
	})

	out, err := reg.ConvertMap(datafix.TileEntity, sign, datafix.V1_20_4, datafix.Current)
	require.NoError(t, err)

	messages := out.GetMap("front_text").GetList("messages", types.String)
	require.NotNil(t, messages)
	assert.Equal(t, []string{
		`{"clickEvent":{"action":"run_command","value":"/say hello @a"},"text":"hello"}`,
		"", "", "",
	}, strings4(messages))
}

func TestMalformedCommandClickEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := datafix.NewRegistry(log.NewWithCore(core), datafix.Options{CommandUpgrader: appendTarget})

	line := `{"clickEvent":{"action":"run_command","value":"/broken("}}`
	sign := typesnbt.Wrap(tags.Compound{
		"id":         tags.String("minecraft:sign"),
		"front_text": tags.Compound{"messages": tags.ListOf(tags.String(line))},
	})

	out, err := reg.ConvertMap(datafix.TileEntity, sign, datafix.V1_20_4, datafix.Current)
	require.NoError(t, err)

	got, err := out.GetMap("front_text").GetList("messages", types.String).GetString(0)
	require.NoError(t, err)
	assert.JSONEq(t, line, got)

	failures := logs.FilterMessage("rule failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, datafix.Command, failures[0].ContextMap()["type"])
}

func TestCommandConverterDisabled(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{
		DisableCommandConverter: true,
		CommandUpgrader:         appendTarget,
	})

	for _, from := range []string{"1.12.2", "1.20.4", "3818.4"} {
		v, err := datafix.LookupVersion(from)
		require.NoError(t, err)
		out, err := reg.ConvertValue(datafix.Command, "/say hi", v, datafix.Current)
		require.NoError(t, err)
		assert.Equal(t, "/say hi", out, from)
	}

	line := `{"clickEvent":{"action":"run_command","value":"/say hi"}}`
	sign := typesnbt.Wrap(tags.Compound{
		"id":         tags.String("minecraft:sign"),
		"front_text": tags.Compound{"messages": tags.ListOf(tags.String(line))},
	})
	out, err := reg.ConvertMap(datafix.TileEntity, sign, datafix.V1_20_4, datafix.Current)
	require.NoError(t, err)
	got, _ := out.GetMap("front_text").GetList("messages", types.String).GetString(0)
	assert.Equal(t, line, got)
}

func TestCommandUpgraded(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{CommandUpgrader: appendTarget})

	out, err := reg.ConvertValue(datafix.Command, "/say hi", datafix.V1_20_4, datafix.Current)
	require.NoError(t, err)
	assert.Equal(t, "/say hi @a", out)

	out, err = reg.ConvertValue(datafix.Command, "/say hi", datafix.V1_20_5, datafix.Current)
	require.NoError(t, err)
	assert.Equal(t, "/say hi", out)
}

func TestLegacySignLines(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{})

	sign := typesnbt.Wrap(tags.Compound{
		"id":    tags.String("Sign"),
		"Text1": tags.String("hello"),
		"Text2": tags.String("null"),
		"Text3": tags.String(`"quoted"`),
		"Text4": tags.String(`{"text":"x","bold":true}`),
	})

	out, err := reg.ConvertMap(datafix.TileEntity, sign, datafix.V15W32A, datafix.V1_12_2)
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hello"}`, out.GetString("Text1", ""))
	assert.Equal(t, datafix.EmptyComponent, out.GetString("Text2", ""))
	assert.Equal(t, `{"text":"quoted"}`, out.GetString("Text3", ""))
	assert.Equal(t, `{"bold":true,"text":"x"}`, out.GetString("Text4", ""))
}

func TestSignFacesThroughChunk(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{CommandUpgrader: appendTarget})

	chunk, err := jsontree.Parse([]byte(`{
		"Level": {
			"xPos": 1,
			"TileEntities": [{
				"id": "minecraft:sign",
				"Text1": "{\"text\":\"top\",\"clickEvent\":{\"action\":\"run_command\",\"value\":\"/spawn\"}}",
				"Color": "red",
				"GlowingText": true
			}]
		}
	}`))
	require.NoError(t, err)

	out, err := reg.ConvertMap(datafix.Chunk, chunk, datafix.V1_16_5, datafix.Current)
	require.NoError(t, err)

	assert.False(t, out.HasKey("Level"))
	assert.EqualValues(t, 1, out.GetInt("xPos", 0))

	entities := out.GetList("block_entities", types.Map)
	require.NotNil(t, entities)
	sign, err := entities.GetMap(0)
	require.NoError(t, err)

	front := sign.GetMap("front_text")
	require.NotNil(t, front)
	assert.Equal(t, "red", front.GetString("color", ""))
	assert.True(t, front.GetBoolean("has_glowing_text", false))
	assert.Equal(t, []string{
		`{"clickEvent":{"action":"run_command","value":"/spawn @a"},"text":"top"}`,
		datafix.EmptyComponent, datafix.EmptyComponent, datafix.EmptyComponent,
	}, strings4(front.GetList("messages", types.String)))

	back := sign.GetMap("back_text")
	require.NotNil(t, back)
	assert.Len(t, strings4(back.GetList("messages", types.String)), 4)
	assert.False(t, sign.HasKey("Text1"))
}

func TestItemTagBecomesComponents(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{CommandUpgrader: appendTarget})

	item, err := typesnbt.Parse(`{
		id: "written_book",
		Count: 2b,
		tag: {
			display: {Name: 'Journal', Lore: ["one"]},
			title: "Diary",
			author: "Alex",
			pages: ['{"text":"p1","clickEvent":{"action":"run_command","value":"/home"}}', 'plain'],
			CustomFlag: 1b
		}
	}`)
	require.NoError(t, err)

	out, err := reg.ConvertMap(datafix.ItemStack, item, datafix.V1_20_4, datafix.Current)
	require.NoError(t, err)

	assert.Equal(t, "minecraft:written_book", out.GetString("id", ""))
	assert.EqualValues(t, 2, out.GetInt("count", 0))
	assert.False(t, out.HasKey("Count"))
	assert.False(t, out.HasKey("tag"))

	comps := out.GetMap("components")
	require.NotNil(t, comps)
	assert.Equal(t, "Journal", comps.GetString("minecraft:custom_name", ""))
	assert.EqualValues(t, 1, comps.GetMap("minecraft:custom_data").GetByte("CustomFlag", 0))

	book := comps.GetMap("minecraft:written_book_content")
	require.NotNil(t, book)
	assert.Equal(t, "Alex", book.GetString("author", ""))
	assert.Equal(t, "Diary", book.GetMap("title").GetString("raw", ""))

	pages := book.GetList("pages", types.Map)
	require.Equal(t, 2, pages.Size())
	first, _ := pages.GetMap(0)
	assert.Equal(t, `{"clickEvent":{"action":"run_command","value":"/home @a"},"text":"p1"}`, first.GetString("raw", ""))
	second, _ := pages.GetMap(1)
	assert.Equal(t, "plain", second.GetString("raw", ""))
}

func TestHoverItemRebuilt(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{})

	line := `{"text":"look","hoverEvent":{"action":"show_item","value":"{id:\"stone\",Count:5b,tag:{Damage:3}}"}}`
	sign := jsontree.Wrap(map[string]any{"id": "minecraft:sign"})
	front := sign.TypeUtil().CreateEmptyMap()
	lines := sign.TypeUtil().CreateEmptyList()
	lines.AddString(line)
	front.SetList("messages", lines)
	sign.SetMap("front_text", front)

	out, err := reg.ConvertMap(datafix.TileEntity, sign, datafix.V1_20_4, datafix.Current)
	require.NoError(t, err)

	got, err := out.GetMap("front_text").GetList("messages", types.String).GetString(0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"look","hoverEvent":{"action":"show_item","contents":{
		"id":"minecraft:stone",
		"count":5,
		"components":{"minecraft:damage":3}
	}}}`, got)
}

func TestTextWalkStopsAtTarget(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{CommandUpgrader: appendTarget})
	target, err := datafix.LookupVersion("3818.5")
	require.NoError(t, err)

	sign := typesnbt.Wrap(tags.Compound{
		"id": tags.String("minecraft:sign"),
		"front_text": tags.Compound{
			"messages": tags.ListOf(tags.String(`{"text":"go","clickEvent":{"action":"run_command","value":"/warp"}}`)),
		},
	})
	out, err := reg.ConvertMap(datafix.TileEntity, sign, datafix.V1_20_4, target)
	require.NoError(t, err)

	got, err := out.GetMap("front_text").GetList("messages", types.String).GetString(0)
	require.NoError(t, err)
	assert.Equal(t, `{"clickEvent":{"action":"run_command","value":"/warp @a"},"text":"go"}`, got)
}

func TestCommandBlocksThroughChunk(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{CommandUpgrader: appendTarget})

	chunk, err := jsontree.Parse([]byte(`{
		"Level": {
			"TileEntities": [{"id": "minecraft:command_block", "Command": "/say hi"}],
			"Entities": [{"id": "minecraft:command_block_minecart", "Command": "/kill"}]
		}
	}`))
	require.NoError(t, err)

	out, err := reg.ConvertMap(datafix.Chunk, chunk, datafix.V1_16_5, datafix.Current)
	require.NoError(t, err)

	block, err := out.GetList("block_entities", types.Map).GetMap(0)
	require.NoError(t, err)
	assert.Equal(t, "/say hi @a", block.GetString("Command", ""))

	cart, err := out.GetList("entities", types.Map).GetMap(0)
	require.NoError(t, err)
	assert.Equal(t, "/kill @a", cart.GetString("Command", ""))

	// already past the command rule
	again, err := reg.ConvertMap(datafix.Chunk, out, datafix.V1_20_5, datafix.Current)
	require.NoError(t, err)
	block, err = again.GetList("block_entities", types.Map).GetMap(0)
	require.NoError(t, err)
	assert.Equal(t, "/say hi @a", block.GetString("Command", ""))
}

func TestNoOpRange(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{CommandUpgrader: appendTarget})

	item, err := typesnbt.Parse(`{id:"stone",Count:1b,tag:{display:{Name:"x"}}}`)
	require.NoError(t, err)
	before := item.Copy()

	for _, v := range []string{"1.12.2", "3818.3", "current"} {
		ver, err := datafix.LookupVersion(v)
		require.NoError(t, err)
		out, err := reg.ConvertMap(datafix.ItemStack, item, ver, ver)
		require.NoError(t, err)
		assert.True(t, types.Equal(before, out), v)
	}
}

func TestRegistryInfo(t *testing.T) {
	reg := datafix.NewRegistry(nil, datafix.Options{DisableCommandConverter: true})

	names := map[string]bool{}
	for _, info := range reg.Info() {
		names[info.Name] = true
		if info.Name == datafix.Command {
			assert.True(t, info.Disabled)
		}
	}
	for _, name := range []string{
		datafix.Player, datafix.Chunk, datafix.TileEntity, datafix.Entity,
		datafix.ItemStack, datafix.DataComponents, datafix.TextComponent, datafix.Command,
	} {
		assert.True(t, names[name], name)
	}
}
