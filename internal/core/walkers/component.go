package walkers

import (
	"strings"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/ops"
	"github.com/zeusync/dataconverter/internal/core/types"
	typesnbt "github.com/zeusync/dataconverter/internal/core/types/nbt"
	tags "github.com/zeusync/dataconverter/internal/nbt"
	"github.com/zeusync/dataconverter/pkg/encoding"
)

// Components walks JSON text components. Commands behind click events are
// sent through the Command type and items behind show_item hover events are
// rebuilt through the Item type.
type Components struct {
	conv    Converter
	log     log.Log
	Command string
	Item    string
}

func NewComponents(c Converter, logger log.Log, command, item string) *Components {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Components{
		conv:    c,
		log:     logger.With(log.String("component", "text_walker")),
		Command: command,
		Item:    item,
	}
}

// Walk parses text leniently, walks it and re-encodes it with sorted keys.
// Text that does not parse is returned unchanged. Only contract violations
// are returned as errors.
func (w *Components) Walk(text string, from, to converter.Version) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	tree, err := encoding.DecodeJSON([]byte(text))
	if err != nil {
		return text, nil
	}
	if err = w.WalkTree(tree, from, to); err != nil {
		return text, err
	}
	out, err := encoding.StableJSON(tree)
	if err != nil {
		return text, nil
	}
	return string(out), nil
}

// WalkTree walks an already decoded component in place.
func (w *Components) WalkTree(node any, from, to converter.Version) error {
	switch v := node.(type) {
	case []any:
		for _, child := range v {
			if err := w.WalkTree(child, from, to); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		return w.walkObject(v, from, to)
	default:
		return nil
	}
}

func (w *Components) walkObject(root map[string]any, from, to converter.Version) error {
	if click, ok := root["clickEvent"].(map[string]any); ok {
		if err := w.click(click, from, to); err != nil {
			return err
		}
	}
	if hover, ok := root["hoverEvent"].(map[string]any); ok {
		if err := w.hover(hover, from, to); err != nil {
			return err
		}
	}
	if extra, ok := root["extra"].([]any); ok {
		return w.WalkTree(extra, from, to)
	}
	return nil
}

func (w *Components) click(event map[string]any, from, to converter.Version) error {
	action, ok := event["action"].(string)
	if !ok {
		return nil
	}
	cmd, ok := event["value"].(string)
	if !ok {
		return nil
	}
	if action != "run_command" && (action != "suggest_command" || !strings.HasPrefix(cmd, "/")) {
		return nil
	}

	out, err := w.conv.ConvertValue(w.Command, cmd, from, to)
	if err != nil {
		if types.IsContractViolation(err) {
			return err
		}
		w.log.Error("command conversion failed", log.String("command", cmd), log.Error(err))
		return nil
	}
	if s, ok := out.(string); ok {
		event["value"] = s
	}
	return nil
}

func (w *Components) hover(event map[string]any, from, to converter.Version) error {
	if action, _ := event["action"].(string); action != "show_item" {
		return nil
	}

	if contents, ok := event["contents"].(map[string]any); ok {
		if id, ok := contents["id"].(string); ok {
			item := tags.Compound{"id": tags.String(id), "Count": tags.Int(1)}
			if snbt, ok := contents["tag"].(string); ok {
				if tag, err := tags.ParseCompound(snbt); err == nil {
					item["tag"] = tag
				}
			}
			converted, err := w.item(item, from, to)
			if err != nil {
				return err
			}
			delete(contents, "tag")
			contents["id"] = converted.GetString("id", id)
			if comps := components(converted); comps != nil {
				contents["components"] = comps
			}
		}
	}

	snbt, ok := event["value"].(string)
	if !ok {
		return nil
	}
	item, err := tags.ParseCompound(snbt)
	if err != nil || !item.Has("id", tags.TagString) {
		return nil
	}
	_, explicitCount := item["Count"]
	if !explicitCount {
		item["Count"] = tags.Int(1)
	}
	converted, err := w.item(item, from, to)
	if err != nil {
		return err
	}

	contents := map[string]any{"id": converted.GetString("id", "")}
	if explicitCount {
		contents["count"] = converted.GetInt("count", converted.GetInt("Count", 1))
	}
	if comps := components(converted); comps != nil {
		contents["components"] = comps
	}
	delete(event, "value")
	event["contents"] = contents
	return nil
}

func (w *Components) item(item tags.Compound, from, to converter.Version) (types.MapType, error) {
	in := typesnbt.Wrap(item)
	out, err := w.conv.ConvertMap(w.Item, in, from, to)
	if err != nil {
		if types.IsContractViolation(err) {
			return nil, err
		}
		w.log.Error("item conversion failed", log.String("item", in.String()), log.Error(err))
		return in, nil
	}
	return out, nil
}

// components renders the item's components map as JSON values.
func components(item types.MapType) any {
	comps := item.GetMap("components")
	if comps == nil {
		return nil
	}
	m, err := types.ConvertMap(typesnbt.Util, comps)
	if err != nil {
		return nil
	}
	return ops.ConvertTo(ops.JSON, tags.Tag(m.(*typesnbt.Map).Tag()))
}
