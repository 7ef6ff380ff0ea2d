package datafix

import (
	"strconv"
	"strings"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/types"
)

var (
	v3818 = V24W07A.Major + 1

	// itemComponentsVersion is where item tags become data components.
	itemComponentsVersion = converter.V(v3818, 3)
	// textCommandsVersion runs after every other rule of 3818.5.
	textCommandsVersion = converter.V(v3818, 5)
)

func registerV3818(s *schema) {
	s.itemStack.AddConverter(itemComponentsVersion, convertItemComponents)

	if up := s.opts.CommandUpgrader; up != nil {
		s.command.AddConverter(textCommandsVersion, func(data any, _, _ converter.Version) (any, error) {
			cmd, ok := data.(string)
			if !ok {
				return nil, nil
			}
			return up.UpgradeCommand(cmd, strings.HasPrefix(cmd, "/"))
		})
	} else {
		s.logSkipped(Command, "no command upgrader")
	}

	// Commands inside books and signs are rewritten once here instead of from
	// a walker, so the JSON is not parsed on every later migration.
	s.dataComponents.AddStructureConverter(textCommandsVersion, func(data types.MapType, _, to converter.Version) (types.MapType, error) {
		book := data.GetMap("minecraft:written_book_content")
		if book == nil {
			return nil, nil
		}
		pages := book.GetList("pages", types.Map)
		if pages == nil {
			return nil, nil
		}
		for i := range pages.Size() {
			page, err := pages.GetMap(i)
			if err != nil {
				continue
			}
			if err := s.walkTextAt(page, "raw", to); err != nil {
				return nil, err
			}
			if err := s.walkTextAt(page, "filtered", to); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	signText := func(data types.MapType, _, to converter.Version) (types.MapType, error) {
		for _, face := range []string{"front_text", "back_text"} {
			text := data.GetMap(face)
			if text == nil {
				continue
			}
			for _, key := range []string{"messages", "filtered_messages"} {
				if err := s.walkTextLines(text.GetList(key, types.String), to); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	}
	for _, id := range signIDs {
		s.tileEntity.AddConverterForID(id, textCommandsVersion, signText)
	}
}

func (s *schema) walkTextAt(data types.MapType, key string, to converter.Version) error {
	if !data.HasKeyOfType(key, types.String) {
		return nil
	}
	out, err := s.walkText(data.GetString(key, ""), to)
	if err != nil {
		return err
	}
	data.SetString(key, out)
	return nil
}

// walkTextLines walks at most the four lines a sign face shows.
func (s *schema) walkTextLines(lines types.ListType, to converter.Version) error {
	if lines == nil {
		return nil
	}
	for i := range min(4, lines.Size()) {
		line, err := lines.GetString(i)
		if err != nil {
			continue
		}
		out, err := s.walkText(line, to)
		if err != nil {
			return err
		}
		lines.SetString(i, out)
	}
	return nil
}

// convertItemComponents moves the well-known entries of an item's tag into
// data components. Entries without a component are kept as custom data.
func convertItemComponents(data types.MapType, _, _ converter.Version) (types.MapType, error) {
	EnforceNamespace(data, "id")
	if data.HasKey("Count") {
		data.SetInt("count", data.GetInt("Count", 1))
		data.Remove("Count")
	}

	tag := data.GetMap("tag")
	if tag == nil {
		return nil, nil
	}
	data.Remove("tag")

	components := data.GetMap("components")
	if components == nil {
		components = data.TypeUtil().CreateEmptyMap()
	}
	util := data.TypeUtil()

	if display := tag.GetMap("display"); display != nil {
		if display.HasKeyOfType("Name", types.String) {
			components.SetString("minecraft:custom_name", display.GetString("Name", ""))
			display.Remove("Name")
		}
		if lore := display.GetList("Lore", types.String); lore != nil {
			components.SetList("minecraft:lore", lore)
			display.Remove("Lore")
		}
		if display.IsEmpty() {
			tag.Remove("display")
		}
	}

	if tag.HasKeyOfType("Damage", types.Number) {
		if damage := tag.GetInt("Damage", 0); damage != 0 {
			components.SetInt("minecraft:damage", damage)
		}
		tag.Remove("Damage")
	}
	if tag.HasKey("Unbreakable") {
		if tag.GetBoolean("Unbreakable", false) {
			components.SetMap("minecraft:unbreakable", util.CreateEmptyMap())
		}
		tag.Remove("Unbreakable")
	}

	for from, to := range map[string]string{
		"BlockEntityTag": "minecraft:block_entity_data",
		"EntityTag":      "minecraft:entity_data",
	} {
		if m := tag.GetMap(from); m != nil {
			components.SetMap(to, m)
			tag.Remove(from)
		}
	}

	if data.GetString("id", "") == "minecraft:written_book" {
		convertBookContent(tag, components)
	}

	if !tag.IsEmpty() {
		components.SetMap("minecraft:custom_data", tag)
	}
	if !components.IsEmpty() {
		data.SetMap("components", components)
	}
	return nil, nil
}

func convertBookContent(tag, components types.MapType) {
	util := components.TypeUtil()
	book := util.CreateEmptyMap()

	pages := util.CreateEmptyList()
	if src := tag.GetList("pages", types.String); src != nil {
		filtered := tag.GetMap("filtered_pages")
		for i := range src.Size() {
			raw, err := src.GetString(i)
			if err != nil {
				continue
			}
			page := util.CreateEmptyMap()
			page.SetString("raw", raw)
			if filtered != nil && filtered.HasKeyOfType(strconv.Itoa(i), types.String) {
				page.SetString("filtered", filtered.GetString(strconv.Itoa(i), ""))
			}
			pages.AddMap(page)
		}
	}
	book.SetList("pages", pages)

	title := util.CreateEmptyMap()
	title.SetString("raw", tag.GetString("title", ""))
	if tag.HasKeyOfType("filtered_title", types.String) {
		title.SetString("filtered", tag.GetString("filtered_title", ""))
	}
	book.SetMap("title", title)
	book.SetString("author", tag.GetString("author", ""))
	if g := tag.GetInt("generation", 0); g != 0 {
		book.SetInt("generation", g)
	}
	if tag.GetBoolean("resolved", false) {
		book.SetBoolean("resolved", true)
	}

	for _, key := range []string{"pages", "filtered_pages", "title", "filtered_title", "author", "generation", "resolved"} {
		tag.Remove(key)
	}
	components.SetMap("minecraft:written_book_content", book)
}

func (s *schema) logSkipped(typ, reason string) {
	s.log.Debug("conversion skipped", log.String("type", typ), log.String("reason", reason))
}
