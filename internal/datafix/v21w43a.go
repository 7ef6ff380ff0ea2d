package datafix

import (
	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/types"
)

var chunkRenames = map[string]string{
	"TileEntities": "block_entities",
	"Entities":     "entities",
}

// registerV21W43A flattens the chunk Level compound into the root.
func registerV21W43A(s *schema) {
	s.chunk.AddStructureConverter(V21W43A, func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		level := data.GetMap("Level")
		if level == nil {
			return nil, nil
		}
		data.Remove("Level")
		for _, key := range level.Keys() {
			target := key
			if renamed, ok := chunkRenames[key]; ok {
				target = renamed
			}
			if err := data.SetGeneric(target, level.GetGeneric(key)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
}
