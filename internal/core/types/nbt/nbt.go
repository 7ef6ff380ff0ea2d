// Package nbt backs types.MapType and types.ListType with binary-format tags.
// Wrappers share storage with the tags they wrap, so a rule mutating a
// wrapped map mutates the underlying compound.
package nbt

import (
	"github.com/zeusync/dataconverter/internal/core/types"
	tags "github.com/zeusync/dataconverter/internal/nbt"
)

type typeUtil struct{}

// Util creates empty tag-backed containers.
var Util types.TypeUtil = typeUtil{}

func (typeUtil) CreateEmptyMap() types.MapType   { return Wrap(tags.Compound{}) }
func (typeUtil) CreateEmptyList() types.ListType { return WrapList(tags.NewList()) }

// Map wraps a compound.
type Map struct {
	types.MapBase
	tag tags.Compound
}

// Wrap views c as a MapType. A nil compound is replaced by an empty one.
func Wrap(c tags.Compound) *Map {
	if c == nil {
		c = tags.Compound{}
	}
	m := &Map{tag: c}
	m.MapBase = types.MapBase{Store: m}
	return m
}

// Parse reads an SNBT compound.
func Parse(snbt string) (*Map, error) {
	c, err := tags.ParseCompound(snbt)
	if err != nil {
		return nil, err
	}
	return Wrap(c), nil
}

// Tag returns the wrapped compound.
func (m *Map) Tag() tags.Compound { return m.tag }

func (m *Map) TypeUtil() types.TypeUtil { return Util }
func (m *Map) Size() int                { return len(m.tag) }
func (m *Map) Keys() []string           { return m.tag.SortedKeys() }
func (m *Map) Clear()                   { clear(m.tag) }
func (m *Map) Remove(key string)        { delete(m.tag, key) }

func (m *Map) HasKey(key string) bool {
	_, ok := m.tag[key]
	return ok
}

func (m *Map) Copy() types.MapType {
	return Wrap(tags.Clone(m.tag).(tags.Compound))
}

func (m *Map) GetGeneric(key string) any {
	t, ok := m.tag[key]
	if !ok {
		return nil
	}
	return toGeneric(t)
}

func (m *Map) SetGeneric(key string, value any) error {
	t, err := fromGeneric(value)
	if err != nil {
		return err
	}
	m.tag[key] = t
	return nil
}

// GetForcedString renders non-string tags as SNBT.
func (m *Map) GetForcedString(key string, dfl string) string {
	t, ok := m.tag[key]
	if !ok {
		return dfl
	}
	if s, ok := t.(tags.String); ok {
		return string(s)
	}
	return tags.Stringify(t)
}

func (m *Map) String() string { return tags.Stringify(m.tag) }

// List wraps a list tag.
type List struct {
	types.ListBase
	tag *tags.List
}

// WrapList views l as a ListType. A nil list is replaced by an empty one.
func WrapList(l *tags.List) *List {
	if l == nil {
		l = tags.NewList()
	}
	w := &List{tag: l}
	w.ListBase = types.ListBase{Store: w}
	return w
}

// Tag returns the wrapped list.
func (l *List) Tag() *tags.List { return l.tag }

func (l *List) TypeUtil() types.TypeUtil { return Util }
func (l *List) Type() types.ObjectType   { return Kind(l.tag.Elem) }
func (l *List) Size() int                { return l.tag.Len() }
func (l *List) Remove(index int)         { l.tag.Remove(index) }

func (l *List) Copy() types.ListType {
	return WrapList(tags.Clone(l.tag).(*tags.List))
}

func (l *List) GetGeneric(index int) any {
	return toGeneric(l.tag.Items[index])
}

func (l *List) SetGeneric(index int, value any) error {
	t, err := fromGeneric(value)
	if err != nil {
		return err
	}
	if !l.tag.Set(index, t) {
		return types.ErrTypeMismatch
	}
	return nil
}

func (l *List) AddGeneric(value any) error {
	t, err := fromGeneric(value)
	if err != nil {
		return err
	}
	if !l.tag.Add(t) {
		return types.ErrTypeMismatch
	}
	return nil
}

func (l *List) String() string { return tags.Stringify(l.tag) }

// Kind maps a tag type onto the backend-independent kind.
func Kind(t tags.TagType) types.ObjectType {
	switch t {
	case tags.TagByte:
		return types.Byte
	case tags.TagShort:
		return types.Short
	case tags.TagInt:
		return types.Int
	case tags.TagLong:
		return types.Long
	case tags.TagFloat:
		return types.Float
	case tags.TagDouble:
		return types.Double
	case tags.TagString:
		return types.String
	case tags.TagByteArray:
		return types.ByteArray
	case tags.TagIntArray:
		return types.IntArray
	case tags.TagLongArray:
		return types.LongArray
	case tags.TagList:
		return types.List
	case tags.TagCompound:
		return types.Map
	case tags.TagEnd:
		return types.None
	default:
		return types.Undefined
	}
}

func toGeneric(t tags.Tag) any {
	switch v := t.(type) {
	case tags.Byte:
		return int8(v)
	case tags.Short:
		return int16(v)
	case tags.Int:
		return int32(v)
	case tags.Long:
		return int64(v)
	case tags.Float:
		return float32(v)
	case tags.Double:
		return float64(v)
	case tags.String:
		return string(v)
	case tags.ByteArray:
		return []byte(v)
	case tags.IntArray:
		return []int32(v)
	case tags.LongArray:
		return []int64(v)
	case tags.Compound:
		return Wrap(v)
	case *tags.List:
		return WrapList(v)
	default:
		return nil
	}
}

// FromGeneric converts a generic value into a tag. Values from other
// backends are copied; tag-backed maps and lists are stored by reference.
func FromGeneric(value any) (tags.Tag, error) {
	return fromGeneric(value)
}

func fromGeneric(value any) (tags.Tag, error) {
	switch v := value.(type) {
	case *Map:
		return v.tag, nil
	case *List:
		return v.tag, nil
	case tags.Tag:
		return v, nil
	case bool:
		if v {
			return tags.Byte(1), nil
		}
		return tags.Byte(0), nil
	case int8:
		return tags.Byte(v), nil
	case int16:
		return tags.Short(v), nil
	case int32:
		return tags.Int(v), nil
	case int:
		return tags.Long(v), nil
	case int64:
		return tags.Long(v), nil
	case float32:
		return tags.Float(v), nil
	case float64:
		return tags.Double(v), nil
	case types.NumberValue:
		return fromNumber(v.Concrete()), nil
	case string:
		return tags.String(v), nil
	case []byte:
		return tags.ByteArray(v), nil
	case []int16:
		return nil, types.ErrUnsupportedCapability
	case []int32:
		return tags.IntArray(v), nil
	case []int64:
		return tags.LongArray(v), nil
	case types.MapType:
		m, err := types.ConvertMap(Util, v)
		if err != nil {
			return nil, err
		}
		return m.(*Map).tag, nil
	case types.ListType:
		l, err := types.ConvertList(Util, v)
		if err != nil {
			return nil, err
		}
		return l.(*List).tag, nil
	default:
		return nil, types.ErrForeignValue
	}
}

func fromNumber(n types.NumberValue) tags.Tag {
	switch n.Kind() {
	case types.Byte:
		return tags.Byte(n.Int8())
	case types.Short:
		return tags.Short(n.Int16())
	case types.Int:
		return tags.Int(n.Int32())
	case types.Long:
		return tags.Long(n.Int64())
	case types.Float:
		return tags.Float(n.Float32())
	default:
		return tags.Double(n.Float64())
	}
}
