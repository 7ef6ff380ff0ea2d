// Package native backs types.MapType and types.ListType with plain Go values:
// map[string]any for maps, *Array for lists and the typed scalars int8, int16,
// int32, int64, float32, float64, string, []byte, []int32 and []int64.
package native

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/zeusync/dataconverter/internal/core/types"
)

type typeUtil struct{}

// Util creates empty native containers.
var Util types.TypeUtil = typeUtil{}

func (typeUtil) CreateEmptyMap() types.MapType   { return Wrap(map[string]any{}) }
func (typeUtil) CreateEmptyList() types.ListType { return WrapList(&Array{}) }

// Array is a homogeneous list. Elem stays types.None until the first insertion.
type Array struct {
	Elem  types.ObjectType
	Items []any
}

// Map wraps a normalized map.
type Map struct {
	types.MapBase
	m map[string]any
}

// Wrap views m as a MapType. m must already hold normalized values; use
// FromPlain for decoder output.
func Wrap(m map[string]any) *Map {
	if m == nil {
		m = map[string]any{}
	}
	w := &Map{m: m}
	w.MapBase = types.MapBase{Store: w}
	return w
}

// FromPlain normalizes a decoded any-tree and wraps it. Integers shrink to
// int32 when they fit, bools become bytes, and []any becomes *Array. Mixed
// numeric lists are widened to the widest element kind.
func FromPlain(m map[string]any) (*Map, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		n, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = n
	}
	return Wrap(out), nil
}

// Value returns the wrapped map.
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

// GetForcedString renders non-string values with fmt.
func (m *Map) GetForcedString(key string, dfl string) string {
	v, ok := m.m[key]
	if !ok {
		return dfl
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(Plain(v))
}

// List wraps an Array.
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
func (l *List) Type() types.ObjectType   { return l.arr.Elem }
func (l *List) Size() int                { return len(l.arr.Items) }

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

func (l *List) accept(value any) (any, error) {
	v, err := fromGeneric(value)
	if err != nil {
		return nil, err
	}
	kind := kindOf(v)
	switch l.arr.Elem {
	case types.None:
		l.arr.Elem = kind
	case kind:
	default:
		return nil, types.ErrTypeMismatch
	}
	return v, nil
}

// Plain converts a normalized value back into an encoder-friendly tree:
// *Array becomes []any and maps are copied.
func Plain(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			out[k] = Plain(child)
		}
		return out
	case *Array:
		out := make([]any, len(x.Items))
		for i, child := range x.Items {
			out[i] = Plain(child)
		}
		return out
	default:
		return v
	}
}

func kindOf(v any) types.ObjectType {
	switch v.(type) {
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
	default:
		return v
	}
}

func fromGeneric(value any) (any, error) {
	switch v := value.(type) {
	case *Map:
		return v.m, nil
	case *List:
		return v.arr, nil
	case bool:
		if v {
			return int8(1), nil
		}
		return int8(0), nil
	case int8, int16, int32, int64, float32, float64, string, []byte, []int32, []int64:
		return v, nil
	case int:
		return int64(v), nil
	case types.NumberValue:
		return fromNumber(v.Concrete()), nil
	case []int16:
		return nil, types.ErrUnsupportedCapability
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

func fromNumber(n types.NumberValue) any {
	switch n.Kind() {
	case types.Byte:
		return n.Int8()
	case types.Short:
		return n.Int16()
	case types.Int:
		return n.Int32()
	case types.Long:
		return n.Int64()
	case types.Float:
		return n.Float32()
	default:
		return n.Float64()
	}
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return int8(1), nil
		}
		return int8(0), nil
	case int:
		return shrink(int64(x)), nil
	case int64:
		return shrink(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d: %w", x, types.ErrForeignValue)
		}
		return shrink(int64(x)), nil
	case int8, int16, int32, float32, float64, string, []byte, []int32, []int64:
		return x, nil
	case intArray:
		return []int32(x), nil
	case longArray:
		return []int64(x), nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			n, err := normalize(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("map key %v: %w", k, types.ErrForeignValue)
			}
			n, err := normalize(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = n
		}
		return out, nil
	case []any:
		return normalizeList(x)
	case *Array:
		return x, nil
	default:
		return nil, fmt.Errorf("%T: %w", v, types.ErrForeignValue)
	}
}

func normalizeList(items []any) (*Array, error) {
	arr := &Array{Items: make([]any, len(items))}
	widest := types.None
	for i, item := range items {
		n, err := normalize(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		arr.Items[i] = n

		kind := kindOf(n)
		switch {
		case widest == types.None || widest == kind:
			widest = kind
		case widest.IsNumber() && kind.IsNumber():
			widest = max(widest, kind)
		default:
			return nil, fmt.Errorf("[%d]: %s in list of %s: %w", i, kind, widest, types.ErrTypeMismatch)
		}
	}
	for i, item := range arr.Items {
		if kindOf(item) != widest {
			n, _ := types.NumberOf(item)
			arr.Items[i] = fromNumber(widen(n, widest))
		}
	}
	arr.Elem = widest
	return arr, nil
}

func widen(n types.NumberValue, kind types.ObjectType) types.NumberValue {
	if kind == types.Float || kind == types.Double {
		return types.FloatNumber(kind, n.Float64())
	}
	return types.IntegerNumber(kind, n.Int64())
}

func shrink(v int64) any {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return int32(v)
	}
	return v
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
		out := &Array{Elem: x.Elem, Items: make([]any, len(x.Items))}
		for i, child := range x.Items {
			out.Items[i] = clone(child)
		}
		return out
	case []byte:
		return slices.Clone(x)
	case []int32:
		return slices.Clone(x)
	case []int64:
		return slices.Clone(x)
	default:
		return v
	}
}
