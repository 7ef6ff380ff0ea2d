package walkers_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/schema/registry"
	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/internal/core/walkers"
)

var errBadCommand = errors.New("unbalanced parenthesis")

func componentRegistry(t *testing.T) (*registry.Registry, *walkers.Components) {
	t.Helper()

	reg := registry.New(nil)
	reg.RegisterValueType("command").AddConverter(converter.V(10), func(data any, _, _ converter.Version) (any, error) {
		cmd := data.(string)
		if strings.Contains(cmd, "(") {
			return nil, errBadCommand
		}
		return strings.ToUpper(cmd), nil
	})
	reg.RegisterIDType("item", "id").AddConverter(converter.V(10), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		data.SetInt("count", data.GetInt("Count", 1))
		data.Remove("Count")
		if tag := data.GetMap("tag"); tag != nil {
			data.SetMap("components", tag)
			data.Remove("tag")
		}
		return nil, nil
	})
	reg.Freeze()

	return reg, walkers.NewComponents(reg, nil, "command", "item")
}

func TestComponentsClickEvents(t *testing.T) {
	_, w := componentRegistry(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "run command",
			in:   `{"text":"hi","clickEvent":{"action":"run_command","value":"/say hi"}}`,
			want: `{"clickEvent":{"action":"run_command","value":"/SAY HI"},"text":"hi"}`,
		},
		{
			name: "suggest with slash",
			in:   `{"clickEvent":{"action":"suggest_command","value":"/tp"}}`,
			want: `{"clickEvent":{"action":"suggest_command","value":"/TP"}}`,
		},
		{
			name: "suggest without slash",
			in:   `{"clickEvent":{"action":"suggest_command","value":"hello"}}`,
			want: `{"clickEvent":{"action":"suggest_command","value":"hello"}}`,
		},
		{
			name: "nested in extra and arrays",
			in:   `[{"extra":[{"clickEvent":{"action":"run_command","value":"/a"}}]},"plain"]`,
			want: `[{"extra":[{"clickEvent":{"action":"run_command","value":"/A"}}]},"plain"]`,
		},
		{
			name: "malformed command is kept",
			in:   `{"clickEvent":{"action":"run_command","value":"/broken("}}`,
			want: `{"clickEvent":{"action":"run_command","value":"/broken("}}`,
		},
		{
			name: "lenient input",
			in:   `{"text":"a", /* note */ "clickEvent":{"action":"run_command","value":"/b",},}`,
			want: `{"clickEvent":{"action":"run_command","value":"/B"},"text":"a"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.Walk(tt.in, converter.V(1), converter.V(20))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComponentsUnparsedTextIsKept(t *testing.T) {
	_, w := componentRegistry(t)

	for _, in := range []string{"", "   ", "hello world", `{"text":`} {
		got, err := w.Walk(in, converter.V(1), converter.V(20))
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}

func TestComponentsHoverItems(t *testing.T) {
	_, w := componentRegistry(t)

	t.Run("contents", func(t *testing.T) {
		in := `{"hoverEvent":{"action":"show_item","contents":{"id":"minecraft:stone","tag":"{display:{Name:\"x\"}}"}}}`
		got, err := w.Walk(in, converter.V(1), converter.V(20))
		require.NoError(t, err)
		assert.JSONEq(t, `{"hoverEvent":{"action":"show_item","contents":{
			"id":"minecraft:stone",
			"components":{"display":{"Name":"x"}}
		}}}`, got)
	})

	t.Run("snbt value with count", func(t *testing.T) {
		in := `{"hoverEvent":{"action":"show_item","value":"{id:\"minecraft:stone\",Count:3b}"}}`
		got, err := w.Walk(in, converter.V(1), converter.V(20))
		require.NoError(t, err)
		assert.JSONEq(t, `{"hoverEvent":{"action":"show_item","contents":{"id":"minecraft:stone","count":3}}}`, got)
	})

	t.Run("snbt value without count", func(t *testing.T) {
		in := `{"hoverEvent":{"action":"show_item","value":"{id:\"minecraft:dirt\"}"}}`
		got, err := w.Walk(in, converter.V(1), converter.V(20))
		require.NoError(t, err)
		assert.JSONEq(t, `{"hoverEvent":{"action":"show_item","contents":{"id":"minecraft:dirt"}}}`, got)
	})

	t.Run("malformed snbt is kept", func(t *testing.T) {
		in := `{"hoverEvent":{"action":"show_item","value":"{id:"}}`
		got, err := w.Walk(in, converter.V(1), converter.V(20))
		require.NoError(t, err)
		assert.JSONEq(t, in, got)
	})

	t.Run("other actions are ignored", func(t *testing.T) {
		in := `{"hoverEvent":{"action":"show_text","value":"{id:\"minecraft:dirt\"}"}}`
		got, err := w.Walk(in, converter.V(1), converter.V(20))
		require.NoError(t, err)
		assert.JSONEq(t, in, got)
	})
}
