package nbt

import (
	"encoding/json"
	"strconv"
)

// ToJSON converts a tag tree into the JSON any-tree: map[string]any, []any,
// string and json.Number. Typed arrays become plain arrays of numbers.
func ToJSON(t Tag) any {
	switch v := t.(type) {
	case Compound:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = ToJSON(child)
		}
		return out
	case *List:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = ToJSON(item)
		}
		return out
	case ByteArray:
		out := make([]any, len(v))
		for i, b := range v {
			out[i] = json.Number(strconv.FormatInt(int64(int8(b)), 10))
		}
		return out
	case IntArray:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = json.Number(strconv.FormatInt(int64(x), 10))
		}
		return out
	case LongArray:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = json.Number(strconv.FormatInt(x, 10))
		}
		return out
	case Byte, Short, Int, Long:
		return json.Number(strconv.FormatInt(v.(Number).Int64(), 10))
	case Float:
		return json.Number(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case Double:
		return json.Number(strconv.FormatFloat(float64(v), 'g', -1, 64))
	case String:
		return string(v)
	default:
		return nil
	}
}
