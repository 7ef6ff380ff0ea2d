// Package types is the backend-independent view of a tag tree. Conversion
// rules are written against MapType and ListType only; each concrete tree
// (binary tags, Go-native values, JSON) supplies its own implementation.
package types

import "fmt"

// ObjectType is the kind of a single node.
type ObjectType uint8

const (
	None ObjectType = iota
	Byte
	Short
	Int
	Long
	Float
	Double
	// Number matches any of the six numeric kinds when used as a query. The
	// JSON backend also reports its untyped numbers as Number.
	Number
	String
	ByteArray
	// ShortArray exists only so callers can ask for it; no backend stores one.
	ShortArray
	IntArray
	LongArray
	List
	Map
	Undefined
)

// IsNumber reports whether t is one of the numeric kinds or the Number wildcard.
func (t ObjectType) IsNumber() bool {
	switch t {
	case Byte, Short, Int, Long, Float, Double, Number:
		return true
	default:
		return false
	}
}

// Matches reports whether a stored kind satisfies a queried kind.
func (t ObjectType) Matches(query ObjectType) bool {
	if t == query {
		return true
	}
	if query == Number && t.IsNumber() {
		return true
	}
	// untyped numbers satisfy any numeric query
	return t == Number && query.IsNumber()
}

func (t ObjectType) String() string {
	switch t {
	case None:
		return "none"
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Number:
		return "number"
	case String:
		return "string"
	case ByteArray:
		return "byte_array"
	case ShortArray:
		return "short_array"
	case IntArray:
		return "int_array"
	case LongArray:
		return "long_array"
	case List:
		return "list"
	case Map:
		return "map"
	case Undefined:
		return "undefined"
	default:
		return fmt.Sprintf("object_type(%d)", uint8(t))
	}
}

// NumberValue is a number read out of a tree, keeping the kind it was stored as.
type NumberValue struct {
	kind  ObjectType
	i     int64
	f     float64
	float bool
}

func IntegerNumber(kind ObjectType, v int64) NumberValue {
	return NumberValue{kind: kind, i: v, f: float64(v)}
}

func FloatNumber(kind ObjectType, v float64) NumberValue {
	return NumberValue{kind: kind, i: int64(v), f: v, float: true}
}

func (n NumberValue) Kind() ObjectType { return n.kind }
func (n NumberValue) IsFloat() bool    { return n.float }
func (n NumberValue) Int8() int8       { return int8(n.i) }
func (n NumberValue) Int16() int16     { return int16(n.i) }
func (n NumberValue) Int32() int32     { return int32(n.i) }
func (n NumberValue) Int64() int64     { return n.i }
func (n NumberValue) Float32() float32 { return float32(n.f) }
func (n NumberValue) Float64() float64 { return n.f }

// TypeUtil creates empty containers for the backend it belongs to.
type TypeUtil interface {
	CreateEmptyMap() MapType
	CreateEmptyList() ListType
}
