package ops

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"

	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/pkg/sequence"
)

type jsonOps struct{}

// JSON is the algebra over decoded JSON: map[string]any, []any, json.Number,
// string, bool and nil. Arrays are never specialized.
var JSON Ops[any] = jsonOps{}

func (jsonOps) Empty() any { return nil }

func (jsonOps) CreateByte(v int8) any      { return jsonInt(int64(v)) }
func (jsonOps) CreateShort(v int16) any    { return jsonInt(int64(v)) }
func (jsonOps) CreateInt(v int32) any      { return jsonInt(int64(v)) }
func (jsonOps) CreateLong(v int64) any     { return jsonInt(v) }
func (jsonOps) CreateFloat(v float32) any  { return jsonFloat(float64(v), 32) }
func (jsonOps) CreateDouble(v float64) any { return jsonFloat(v, 64) }
func (jsonOps) CreateBoolean(v bool) any   { return v }
func (jsonOps) CreateString(v string) any  { return v }

func (jsonOps) CreateNumeric(n types.NumberValue) any {
	if n.IsFloat() {
		return jsonFloat(n.Float64(), 64)
	}
	return jsonInt(n.Int64())
}

func (jsonOps) CreateByteList(v []byte) any {
	out := make([]any, len(v))
	for i, b := range v {
		out[i] = jsonInt(int64(int8(b)))
	}
	return out
}

func (jsonOps) CreateIntList(v []int32) any {
	out := make([]any, len(v))
	for i, x := range v {
		out[i] = jsonInt(int64(x))
	}
	return out
}

func (jsonOps) CreateLongList(v []int64) any {
	out := make([]any, len(v))
	for i, x := range v {
		out[i] = jsonInt(x)
	}
	return out
}

func (jsonOps) CreateList(items *sequence.Iterator[any]) any {
	out := items.Collect()
	if out == nil {
		out = []any{}
	}
	return out
}

func (jsonOps) CreateMap(entries *sequence.Iterator[Entry[any]]) (any, error) {
	return mergeJSON(map[string]any{}, entries)
}

func (jsonOps) GetNumberValue(v any) (types.NumberValue, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return types.IntegerNumber(types.Number, i), nil
		}
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return types.NumberValue{}, ErrNotNumber
		}
		return types.FloatNumber(types.Number, f), nil
	case float64:
		return types.FloatNumber(types.Number, n), nil
	case bool:
		nv, _ := types.NumberOf(n)
		return nv, nil
	default:
		return types.NumberValue{}, ErrNotNumber
	}
}

func (jsonOps) GetStringValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", ErrNotString
}

func (jsonOps) GetStream(v any) (*sequence.Iterator[any], error) {
	if l, ok := v.([]any); ok {
		return sequence.From(l...), nil
	}
	return nil, ErrNotList
}

func (jsonOps) GetMapValues(v any) (*sequence.Iterator[Entry[any]], error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotMap
	}
	keys := slices.Collect(maps.Keys(m))
	sort.Strings(keys)
	return sequence.Map(sequence.From(keys...), func(k string) Entry[any] {
		return sequence.PairOf[any, any](k, m[k])
	}), nil
}

func (jsonOps) MergeToList(list, value any) (any, error) {
	switch l := list.(type) {
	case nil:
		return []any{value}, nil
	case []any:
		return append(slices.Clip(l), value), nil
	default:
		return list, ErrNotList
	}
}

func (jsonOps) MergeToMap(m, key, value any) (any, error) {
	out, err := jsonMapCopy(m)
	if err != nil {
		return m, err
	}
	k, ok := key.(string)
	if !ok {
		return m, ErrKeyNotString
	}
	out[k] = value
	return out, nil
}

func (jsonOps) MergeMapLike(m any, entries *sequence.Iterator[Entry[any]]) (any, error) {
	out, err := jsonMapCopy(m)
	if err != nil {
		return m, err
	}
	return mergeJSON(out, entries)
}

func (jsonOps) Remove(v any, key string) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := maps.Clone(m)
	delete(out, key)
	return out
}

func jsonInt(v int64) json.Number {
	return json.Number(strconv.FormatInt(v, 10))
}

func jsonFloat(v float64, bits int) json.Number {
	return json.Number(strconv.FormatFloat(v, 'g', -1, bits))
}

func jsonMapCopy(m any) (map[string]any, error) {
	switch x := m.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return maps.Clone(x), nil
	default:
		return nil, ErrNotMap
	}
}

func mergeJSON(out map[string]any, entries *sequence.Iterator[Entry[any]]) (any, error) {
	var bad []any
	for e := range entries.Seq() {
		k, ok := e.Key.(string)
		if !ok {
			bad = append(bad, e.Key)
			continue
		}
		out[k] = e.Value
	}
	if len(bad) > 0 {
		return out, fmt.Errorf("%w: %v", ErrNonStringKeys, bad)
	}
	return out, nil
}
