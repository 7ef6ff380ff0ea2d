// Package nbt implements the binary tag tree used by save files: the tag
// types themselves, the big-endian binary codec (optionally gzip or zlib
// compressed) and the stringified form (SNBT).
package nbt

import (
	"fmt"
	"maps"
	"slices"
)

// TagType is the one-byte type id written before every tag in the binary form.
type TagType byte

const (
	TagEnd TagType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

func (t TagType) String() string {
	switch t {
	case TagEnd:
		return "TAG_End"
	case TagByte:
		return "TAG_Byte"
	case TagShort:
		return "TAG_Short"
	case TagInt:
		return "TAG_Int"
	case TagLong:
		return "TAG_Long"
	case TagFloat:
		return "TAG_Float"
	case TagDouble:
		return "TAG_Double"
	case TagByteArray:
		return "TAG_Byte_Array"
	case TagString:
		return "TAG_String"
	case TagList:
		return "TAG_List"
	case TagCompound:
		return "TAG_Compound"
	case TagIntArray:
		return "TAG_Int_Array"
	case TagLongArray:
		return "TAG_Long_Array"
	default:
		return fmt.Sprintf("TAG_Unknown(%d)", byte(t))
	}
}

// Tag is any node of the tree.
type Tag interface {
	Type() TagType
}

// Number is implemented by the six numeric tags.
type Number interface {
	Tag
	Int64() int64
	Float64() float64
}

type (
	End       struct{}
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	String    string
	ByteArray []byte
	IntArray  []int32
	LongArray []int64
	Compound  map[string]Tag
)

// List is a homogeneous list. Elem is TagEnd only while the list is empty.
type List struct {
	Elem  TagType
	Items []Tag
}

func (End) Type() TagType       { return TagEnd }
func (Byte) Type() TagType      { return TagByte }
func (Short) Type() TagType     { return TagShort }
func (Int) Type() TagType       { return TagInt }
func (Long) Type() TagType      { return TagLong }
func (Float) Type() TagType     { return TagFloat }
func (Double) Type() TagType    { return TagDouble }
func (String) Type() TagType    { return TagString }
func (ByteArray) Type() TagType { return TagByteArray }
func (IntArray) Type() TagType  { return TagIntArray }
func (LongArray) Type() TagType { return TagLongArray }
func (Compound) Type() TagType  { return TagCompound }
func (*List) Type() TagType     { return TagList }

func (b Byte) Int64() int64     { return int64(b) }
func (s Short) Int64() int64    { return int64(s) }
func (i Int) Int64() int64      { return int64(i) }
func (l Long) Int64() int64     { return int64(l) }
func (f Float) Int64() int64    { return int64(f) }
func (d Double) Int64() int64   { return int64(d) }
func (b Byte) Float64() float64   { return float64(b) }
func (s Short) Float64() float64  { return float64(s) }
func (i Int) Float64() float64    { return float64(i) }
func (l Long) Float64() float64   { return float64(l) }
func (f Float) Float64() float64  { return float64(f) }
func (d Double) Float64() float64 { return float64(d) }

// NewList returns an empty list.
func NewList() *List {
	return &List{Elem: TagEnd}
}

// ListOf builds a list from tags. Tags whose type differs from the first one
// are dropped, as Add would.
func ListOf(tags ...Tag) *List {
	l := &List{Elem: TagEnd, Items: make([]Tag, 0, len(tags))}
	for _, t := range tags {
		l.Add(t)
	}
	return l
}

// Add appends t when its type agrees with the list element type. The first
// accepted tag fixes the element type. It reports whether t was stored.
func (l *List) Add(t Tag) bool {
	if !l.accepts(t) {
		return false
	}
	l.Items = append(l.Items, t)
	return true
}

// Insert puts t at index i under the same rule as Add.
func (l *List) Insert(i int, t Tag) bool {
	if !l.accepts(t) {
		return false
	}
	l.Items = slices.Insert(l.Items, i, t)
	return true
}

// Set replaces the tag at index i under the same rule as Add.
func (l *List) Set(i int, t Tag) bool {
	if !l.accepts(t) {
		return false
	}
	l.Items[i] = t
	return true
}

// Remove deletes the tag at index i. An emptied list keeps its element type.
func (l *List) Remove(i int) Tag {
	t := l.Items[i]
	l.Items = slices.Delete(l.Items, i, i+1)
	return t
}

func (l *List) Len() int {
	return len(l.Items)
}

func (l *List) accepts(t Tag) bool {
	if t == nil || t.Type() == TagEnd {
		return false
	}
	if l.Elem == TagEnd {
		l.Elem = t.Type()
		return true
	}
	return l.Elem == t.Type()
}

// Clone returns a deep copy of t.
func Clone(t Tag) Tag {
	switch v := t.(type) {
	case Compound:
		out := make(Compound, len(v))
		for k, child := range v {
			out[k] = Clone(child)
		}
		return out
	case *List:
		out := &List{Elem: v.Elem, Items: make([]Tag, len(v.Items))}
		for i, child := range v.Items {
			out.Items[i] = Clone(child)
		}
		return out
	case ByteArray:
		return slices.Clone(v)
	case IntArray:
		return slices.Clone(v)
	case LongArray:
		return slices.Clone(v)
	default:
		return t
	}
}

// Equal reports structural equality of two trees.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case Compound:
		bv := b.(Compound)
		return maps.EqualFunc(av, bv, Equal)
	case *List:
		bv := b.(*List)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case ByteArray:
		return slices.Equal(av, b.(ByteArray))
	case IntArray:
		return slices.Equal(av, b.(IntArray))
	case LongArray:
		return slices.Equal(av, b.(LongArray))
	default:
		return a == b
	}
}

// SortedKeys returns the compound keys in lexical order.
func (c Compound) SortedKeys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Has reports whether key holds a tag of type t.
func (c Compound) Has(key string, t TagType) bool {
	v, ok := c[key]
	return ok && v != nil && v.Type() == t
}
