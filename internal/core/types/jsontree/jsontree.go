// Package jsontree backs types.MapType and types.ListType with a decoded JSON
// tree: map[string]any objects, *Array arrays, json.Number numbers, strings,
// bools and nil. Numbers carry no width and report the Number kind.
package jsontree

import (
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"strconv"

	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/pkg/encoding"
)

// ErrNotObject is returned when a document root is not a JSON object.
var ErrNotObject = errors.New("json root is not an object")

type typeUtil struct{}

// Util creates empty JSON containers.
var Util types.TypeUtil = typeUtil{}

func (typeUtil) CreateEmptyMap() types.MapType   { return Wrap(map[string]any{}) }
func (typeUtil) CreateEmptyList() types.ListType { return WrapList(&Array{}) }

// Array holds JSON array items so lists can be shared and grown in place.
type Array struct {
	Items []any
}

func (a *Array) MarshalJSON() ([]byte, error) {
	if a.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.Items)
}

// FromValue prepares a decoded JSON value for wrapping, replacing every []any
// with *Array in place. Objects are reused, not copied.
func FromValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, child := range x {
			x[k] = FromValue(child)
		}
		return x
	case []any:
		for i, child := range x {
			x[i] = FromValue(child)
		}
		return &Array{Items: x}
	case float64:
		return json.Number(strconv.FormatFloat(x, 'g', -1, 64))
	default:
		return v
	}
}

// Parse decodes lenient JSON text whose root is an object.
func Parse(data []byte) (*Map, error) {
	v, err := encoding.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	m, ok := FromValue(v).(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Wrap(m), nil
}

// Map wraps a JSON object.
type Map struct {
	types.MapBase
	m map[string]any
}

// Wrap views an object as a MapType. Nested arrays must already be *Array.
func Wrap(m map[string]any) *Map {
	if m == nil {
		m = map[string]any{}
	}
	w := &Map{m: m}
	w.MapBase = types.MapBase{Store: w}
	return w
}

// Value returns the wrapped object.
func (m *Map) Value() map[string]any { return m.m }

func (m *Map) TypeUtil() types.TypeUtil { return Util }
func (m *Map) Size() int                { return len(m.m) }
func (m *Map) Clear()                   { clear(m.m) }
func (m *Map) Remove(key string)        { delete(m.m, key) }

func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Map) HasKey(key string) bool {
	_, ok := m.m[key]
	return ok
}

func (m *Map) Copy() types.MapType {
	return Wrap(clone(m.m).(map[string]any))
}

func (m *Map) GetGeneric(key string) any {
	return toGeneric(m.m[key])
}

func (m *Map) SetGeneric(key string, value any) error {
	v, err := fromGeneric(value)
	if err != nil {
		return err
	}
	m.m[key] = v
	return nil
}

// GetForcedString renders non-string values as JSON text.
func (m *Map) GetForcedString(key string, dfl string) string {
	v, ok := m.m[key]
	if !ok {
		return dfl
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := encoding.StableJSON(v)
	if err != nil {
		return dfl
	}
	return string(data)
}

func (m *Map) MarshalJSON() ([]byte, error) {
	return encoding.StableJSON(m.m)
}

// List wraps a JSON array. Its kind is the kind of the first item.
type List struct {
	types.ListBase
	arr *Array
}

func WrapList(a *Array) *List {
	if a == nil {
		a = &Array{}
	}
	l := &List{arr: a}
	l.ListBase = types.ListBase{Store: l}
	return l
}

// Value returns the wrapped array.
func (l *List) Value() *Array { return l.arr }

func (l *List) TypeUtil() types.TypeUtil { return Util }
func (l *List) Size() int                { return len(l.arr.Items) }

func (l *List) Type() types.ObjectType {
	if len(l.arr.Items) == 0 {
		return types.None
	}
	return kindOf(l.arr.Items[0])
}

func (l *List) Remove(index int) {
	l.arr.Items = slices.Delete(l.arr.Items, index, index+1)
}

func (l *List) Copy() types.ListType {
	return WrapList(clone(l.arr).(*Array))
}

func (l *List) GetGeneric(index int) any {
	return toGeneric(l.arr.Items[index])
}

func (l *List) SetGeneric(index int, value any) error {
	v, err := l.accept(value)
	if err != nil {
		return err
	}
	l.arr.Items[index] = v
	return nil
}

func (l *List) AddGeneric(value any) error {
	v, err := l.accept(value)
	if err != nil {
		return err
	}
	l.arr.Items = append(l.arr.Items, v)
	return nil
}

func (l *List) MarshalJSON() ([]byte, error) {
	return l.arr.MarshalJSON()
}

func (l *List) accept(value any) (any, error) {
	v, err := fromGeneric(value)
	if err != nil {
		return nil, err
	}
	if t := l.Type(); t != types.None && t != kindOf(v) {
		return nil, types.ErrTypeMismatch
	}
	return v, nil
}

func kindOf(v any) types.ObjectType {
	switch v.(type) {
	case json.Number:
		return types.Number
	case map[string]any:
		return types.Map
	case *Array:
		return types.List
	default:
		return types.KindOf(v)
	}
}

func toGeneric(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return Wrap(x)
	case *Array:
		return WrapList(x)
	case json.Number:
		return number(x)
	default:
		return v
	}
}

func number(n json.Number) types.NumberValue {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return types.IntegerNumber(types.Number, i)
	}
	f, _ := strconv.ParseFloat(string(n), 64)
	return types.FloatNumber(types.Number, f)
}

func fromGeneric(value any) (any, error) {
	switch v := value.(type) {
	case *Map:
		return v.m, nil
	case *List:
		return v.arr, nil
	case bool, string:
		return v, nil
	case json.Number:
		return v, nil
	case int8, int16, int32, int, int64, float32, float64, types.NumberValue:
		n, _ := types.NumberOf(v)
		return numberText(n), nil
	case []byte:
		return numbers(v, func(b byte) int64 { return int64(int8(b)) }), nil
	case []int16:
		return nil, types.ErrUnsupportedCapability
	case []int32:
		return numbers(v, func(x int32) int64 { return int64(x) }), nil
	case []int64:
		return numbers(v, func(x int64) int64 { return x }), nil
	case types.MapType:
		m, err := types.ConvertMap(Util, v)
		if err != nil {
			return nil, err
		}
		return m.(*Map).m, nil
	case types.ListType:
		l, err := types.ConvertList(Util, v)
		if err != nil {
			return nil, err
		}
		return l.(*List).arr, nil
	default:
		return nil, types.ErrForeignValue
	}
}

func numberText(n types.NumberValue) json.Number {
	if n.IsFloat() {
		bits := 64
		if n.Kind() == types.Float {
			bits = 32
		}
		return json.Number(strconv.FormatFloat(n.Float64(), 'g', -1, bits))
	}
	return json.Number(strconv.FormatInt(n.Int64(), 10))
}

func numbers[T byte | int32 | int64](xs []T, widen func(T) int64) *Array {
	arr := &Array{Items: make([]any, len(xs))}
	for i, x := range xs {
		arr.Items[i] = json.Number(strconv.FormatInt(widen(x), 10))
	}
	return arr
}

func clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			out[k] = clone(child)
		}
		return out
	case *Array:
		out := &Array{Items: make([]any, len(x.Items))}
		for i, child := range x.Items {
			out.Items[i] = clone(child)
		}
		return out
	default:
		return v
	}
}
