package ops

import (
	"fmt"
	"maps"
	"slices"

	"github.com/zeusync/dataconverter/internal/core/types"
	tags "github.com/zeusync/dataconverter/internal/nbt"
	"github.com/zeusync/dataconverter/pkg/sequence"
)

type nbtOps struct{}

// NBT is the algebra over binary-format tags.
var NBT Ops[tags.Tag] = nbtOps{}

func (nbtOps) Empty() tags.Tag { return tags.End{} }

func (nbtOps) CreateByte(v int8) tags.Tag      { return tags.Byte(v) }
func (nbtOps) CreateShort(v int16) tags.Tag    { return tags.Short(v) }
func (nbtOps) CreateInt(v int32) tags.Tag      { return tags.Int(v) }
func (nbtOps) CreateLong(v int64) tags.Tag     { return tags.Long(v) }
func (nbtOps) CreateFloat(v float32) tags.Tag  { return tags.Float(v) }
func (nbtOps) CreateDouble(v float64) tags.Tag { return tags.Double(v) }
func (nbtOps) CreateString(v string) tags.Tag  { return tags.String(v) }

func (nbtOps) CreateBoolean(v bool) tags.Tag {
	if v {
		return tags.Byte(1)
	}
	return tags.Byte(0)
}

func (o nbtOps) CreateNumeric(n types.NumberValue) tags.Tag {
	n = n.Concrete()
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

func (nbtOps) CreateByteList(v []byte) tags.Tag  { return tags.ByteArray(slices.Clone(v)) }
func (nbtOps) CreateIntList(v []int32) tags.Tag  { return tags.IntArray(slices.Clone(v)) }
func (nbtOps) CreateLongList(v []int64) tags.Tag { return tags.LongArray(slices.Clone(v)) }

// CreateList specializes streams that start with a byte, int or long into
// the matching typed array. The first element of another kind ends the
// specialization: the consumed prefix is re-expanded and the build continues
// as a plain list. Streams starting with a compound, and plain lists that
// meet a second element kind, become lists of compounds in which every
// non-compound element is wrapped under the sentinel key.
func (nbtOps) CreateList(items *sequence.Iterator[tags.Tag]) tags.Tag {
	next, stop := items.Pull()
	defer stop()

	first, ok := next()
	if !ok {
		return tags.NewList()
	}
	switch first.(type) {
	case tags.Compound:
		return wrappedList([]tags.Tag{first}, next)
	case tags.Byte:
		return specialized(first, next, func(xs []tags.Byte) tags.Tag {
			out := make(tags.ByteArray, len(xs))
			for i, x := range xs {
				out[i] = byte(x)
			}
			return out
		})
	case tags.Int:
		return specialized(first, next, func(xs []tags.Int) tags.Tag {
			out := make(tags.IntArray, len(xs))
			for i, x := range xs {
				out[i] = int32(x)
			}
			return out
		})
	case tags.Long:
		return specialized(first, next, func(xs []tags.Long) tags.Tag {
			out := make(tags.LongArray, len(xs))
			for i, x := range xs {
				out[i] = int64(x)
			}
			return out
		})
	default:
		return plainList([]tags.Tag{first}, next)
	}
}

func specialized[E tags.Tag](first tags.Tag, next func() (tags.Tag, bool), build func([]E) tags.Tag) tags.Tag {
	acc := []E{first.(E)}
	for {
		t, ok := next()
		if !ok {
			return build(acc)
		}
		e, same := t.(E)
		if !same {
			prefix := make([]tags.Tag, 0, len(acc)+1)
			for _, x := range acc {
				prefix = append(prefix, x)
			}
			return plainList(append(prefix, t), next)
		}
		acc = append(acc, e)
	}
}

func plainList(prefix []tags.Tag, next func() (tags.Tag, bool)) tags.Tag {
	l := tags.NewList()
	for i, t := range prefix {
		if !l.Add(t) {
			return wrappedList(append(slices.Clone(l.Items), prefix[i:]...), next)
		}
	}
	for {
		t, ok := next()
		if !ok {
			return l
		}
		if !l.Add(t) {
			return wrappedList(append(l.Items, t), next)
		}
	}
}

func wrappedList(prefix []tags.Tag, next func() (tags.Tag, bool)) tags.Tag {
	l := &tags.List{Elem: tags.TagCompound, Items: make([]tags.Tag, 0, len(prefix))}
	for _, t := range prefix {
		l.Items = append(l.Items, wrapIfNeeded(t))
	}
	for {
		t, ok := next()
		if !ok {
			return l
		}
		l.Items = append(l.Items, wrapIfNeeded(t))
	}
}

func isWrapper(c tags.Compound) bool {
	_, ok := c[Sentinel]
	return ok && len(c) == 1
}

func wrapIfNeeded(t tags.Tag) tags.Tag {
	if c, ok := t.(tags.Compound); ok && !isWrapper(c) {
		return c
	}
	return tags.Compound{Sentinel: t}
}

func unwrap(t tags.Tag) tags.Tag {
	if c, ok := t.(tags.Compound); ok && isWrapper(c) {
		return c[Sentinel]
	}
	return t
}

func (nbtOps) CreateMap(entries *sequence.Iterator[Entry[tags.Tag]]) (tags.Tag, error) {
	return mergeEntries(tags.Compound{}, entries)
}

func (nbtOps) GetNumberValue(v tags.Tag) (types.NumberValue, error) {
	switch n := v.(type) {
	case tags.Byte:
		return types.IntegerNumber(types.Byte, int64(n)), nil
	case tags.Short:
		return types.IntegerNumber(types.Short, int64(n)), nil
	case tags.Int:
		return types.IntegerNumber(types.Int, int64(n)), nil
	case tags.Long:
		return types.IntegerNumber(types.Long, int64(n)), nil
	case tags.Float:
		return types.FloatNumber(types.Float, float64(n)), nil
	case tags.Double:
		return types.FloatNumber(types.Double, float64(n)), nil
	default:
		return types.NumberValue{}, ErrNotNumber
	}
}

func (nbtOps) GetStringValue(v tags.Tag) (string, error) {
	if s, ok := v.(tags.String); ok {
		return string(s), nil
	}
	return "", ErrNotString
}

// GetStream yields list elements, unwrapping sentinel compounds, and the
// elements of typed arrays as scalar tags.
func (nbtOps) GetStream(v tags.Tag) (*sequence.Iterator[tags.Tag], error) {
	switch l := v.(type) {
	case *tags.List:
		items := sequence.From(l.Items...)
		if l.Elem == tags.TagCompound {
			items = sequence.Map(items, unwrap)
		}
		return items, nil
	case tags.ByteArray:
		return sequence.Map(sequence.From(l...), func(b byte) tags.Tag { return tags.Byte(b) }), nil
	case tags.IntArray:
		return sequence.Map(sequence.From(l...), func(i int32) tags.Tag { return tags.Int(i) }), nil
	case tags.LongArray:
		return sequence.Map(sequence.From(l...), func(i int64) tags.Tag { return tags.Long(i) }), nil
	default:
		return nil, ErrNotList
	}
}

func (o nbtOps) GetMapValues(v tags.Tag) (*sequence.Iterator[Entry[tags.Tag]], error) {
	c, ok := v.(tags.Compound)
	if !ok {
		return nil, ErrNotMap
	}
	return sequence.Map(sequence.From(c.SortedKeys()...), func(k string) Entry[tags.Tag] {
		return sequence.PairOf[tags.Tag, tags.Tag](tags.String(k), c[k])
	}), nil
}

func (nbtOps) MergeToList(list, value tags.Tag) (tags.Tag, error) {
	var l *tags.List
	switch x := list.(type) {
	case tags.End:
		l = tags.NewList()
	case *tags.List:
		l = &tags.List{Elem: x.Elem, Items: slices.Clone(x.Items)}
	default:
		return list, ErrNotList
	}
	if !l.Add(value) {
		return list, ErrListTypeMismatch
	}
	return l, nil
}

func (nbtOps) MergeToMap(m, key, value tags.Tag) (tags.Tag, error) {
	c, err := compoundCopy(m)
	if err != nil {
		return m, err
	}
	k, ok := key.(tags.String)
	if !ok {
		return m, ErrKeyNotString
	}
	c[string(k)] = value
	return c, nil
}

func (nbtOps) MergeMapLike(m tags.Tag, entries *sequence.Iterator[Entry[tags.Tag]]) (tags.Tag, error) {
	c, err := compoundCopy(m)
	if err != nil {
		return m, err
	}
	return mergeEntries(c, entries)
}

func (nbtOps) Remove(v tags.Tag, key string) tags.Tag {
	c, ok := v.(tags.Compound)
	if !ok {
		return v
	}
	out := maps.Clone(c)
	delete(out, key)
	return out
}

func compoundCopy(m tags.Tag) (tags.Compound, error) {
	switch x := m.(type) {
	case tags.End:
		return tags.Compound{}, nil
	case tags.Compound:
		return maps.Clone(x), nil
	default:
		return nil, ErrNotMap
	}
}

func mergeEntries(c tags.Compound, entries *sequence.Iterator[Entry[tags.Tag]]) (tags.Tag, error) {
	var bad []tags.Tag
	for e := range entries.Seq() {
		k, ok := e.Key.(tags.String)
		if !ok {
			bad = append(bad, e.Key)
			continue
		}
		c[string(k)] = e.Value
	}
	if len(bad) > 0 {
		return c, fmt.Errorf("%w: %s", ErrNonStringKeys, describe(bad))
	}
	return c, nil
}

func describe(keys []tags.Tag) string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = tags.Stringify(k)
	}
	return fmt.Sprint(out)
}
