package datafix

import (
	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/types"
)

var filteredLineKeys = []string{"FilteredText1", "FilteredText2", "FilteredText3", "FilteredText4"}

// registerV1_20 moves sign lines into front and back faces.
func registerV1_20(s *schema) {
	for _, id := range signIDs {
		s.tileEntity.AddConverterForID(id, V1_20, convertSignFaces)
	}
}

func convertSignFaces(data types.MapType, _, _ converter.Version) (types.MapType, error) {
	util := data.TypeUtil()

	front := util.CreateEmptyMap()
	front.SetList("messages", signLines(data, signLineKeys))
	if hasAny(data, filteredLineKeys) {
		front.SetList("filtered_messages", signLines(data, filteredLineKeys))
	}
	front.SetString("color", data.GetString("Color", "black"))
	front.SetBoolean("has_glowing_text", data.GetBoolean("GlowingText", false))

	back := util.CreateEmptyMap()
	back.SetList("messages", signLines(util.CreateEmptyMap(), signLineKeys))
	back.SetString("color", "black")
	back.SetBoolean("has_glowing_text", false)

	for _, key := range append(append([]string{"Color", "GlowingText"}, signLineKeys...), filteredLineKeys...) {
		data.Remove(key)
	}
	data.SetMap("front_text", front)
	data.SetMap("back_text", back)
	data.SetBoolean("is_waxed", false)
	return nil, nil
}

func signLines(data types.MapType, keys []string) types.ListType {
	lines := data.TypeUtil().CreateEmptyList()
	for _, key := range keys {
		lines.AddString(data.GetString(key, EmptyComponent))
	}
	return lines
}

func hasAny(data types.MapType, keys []string) bool {
	for _, key := range keys {
		if data.HasKey(key) {
			return true
		}
	}
	return false
}
