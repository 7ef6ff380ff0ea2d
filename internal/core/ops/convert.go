package ops

import (
	"encoding/json"

	tags "github.com/zeusync/dataconverter/internal/nbt"
	"github.com/zeusync/dataconverter/pkg/sequence"
)

// ConvertTo rebuilds a tag tree through out. Lists are decomposed with
// GetStream, so sentinel wrappers do not leak into the target.
func ConvertTo[U any](out Ops[U], t tags.Tag) U {
	switch v := t.(type) {
	case tags.Byte:
		return out.CreateByte(int8(v))
	case tags.Short:
		return out.CreateShort(int16(v))
	case tags.Int:
		return out.CreateInt(int32(v))
	case tags.Long:
		return out.CreateLong(int64(v))
	case tags.Float:
		return out.CreateFloat(float32(v))
	case tags.Double:
		return out.CreateDouble(float64(v))
	case tags.String:
		return out.CreateString(string(v))
	case tags.ByteArray:
		return out.CreateByteList(v)
	case tags.IntArray:
		return out.CreateIntList(v)
	case tags.LongArray:
		return out.CreateLongList(v)
	case *tags.List:
		items, _ := NBT.GetStream(v)
		return out.CreateList(sequence.Map(items, func(e tags.Tag) U { return ConvertTo(out, e) }))
	case tags.Compound:
		entries, _ := NBT.GetMapValues(v)
		// keys of a compound are always strings
		m, _ := out.CreateMap(sequence.Map(entries, func(e Entry[tags.Tag]) Entry[U] {
			return sequence.PairOf(ConvertTo(out, e.Key), ConvertTo(out, e.Value))
		}))
		return m
	default:
		return out.Empty()
	}
}

// ConvertJSON rebuilds a decoded JSON tree through out. Integral numbers
// become ints when they fit and longs otherwise; other numbers become doubles.
func ConvertJSON[U any](out Ops[U], v any) U {
	switch x := v.(type) {
	case json.Number, float64:
		n, _ := JSON.GetNumberValue(x)
		return out.CreateNumeric(n)
	case bool:
		return out.CreateBoolean(x)
	case string:
		return out.CreateString(x)
	case []any:
		return out.CreateList(sequence.Map(sequence.From(x...), func(e any) U { return ConvertJSON(out, e) }))
	case map[string]any:
		entries, _ := JSON.GetMapValues(x)
		m, _ := out.CreateMap(sequence.Map(entries, func(e Entry[any]) Entry[U] {
			return sequence.PairOf(ConvertJSON(out, e.Key), ConvertJSON(out, e.Value))
		}))
		return m
	default:
		return out.Empty()
	}
}
