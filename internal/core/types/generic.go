package types

import (
	"bytes"
	"slices"
)

// KindOf classifies a value in the form GetGeneric returns.
func KindOf(v any) ObjectType {
	switch x := v.(type) {
	case nil:
		return None
	case bool, int8:
		return Byte
	case int16:
		return Short
	case int32:
		return Int
	case int, int64:
		return Long
	case float32:
		return Float
	case float64:
		return Double
	case NumberValue:
		return x.Kind()
	case string:
		return String
	case []byte:
		return ByteArray
	case []int16:
		return ShortArray
	case []int32:
		return IntArray
	case []int64:
		return LongArray
	case ListType:
		return List
	case MapType:
		return Map
	default:
		return Undefined
	}
}

// NumberOf extracts a numeric value. Booleans read as 1 and 0.
func NumberOf(v any) (NumberValue, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return IntegerNumber(Byte, 1), true
		}
		return IntegerNumber(Byte, 0), true
	case int8:
		return IntegerNumber(Byte, int64(x)), true
	case int16:
		return IntegerNumber(Short, int64(x)), true
	case int32:
		return IntegerNumber(Int, int64(x)), true
	case int:
		return IntegerNumber(Long, int64(x)), true
	case int64:
		return IntegerNumber(Long, x), true
	case float32:
		return FloatNumber(Float, float64(x)), true
	case float64:
		return FloatNumber(Double, x), true
	case NumberValue:
		return x, true
	default:
		return NumberValue{}, false
	}
}

// Concrete narrows an untyped number to the smallest fitting concrete kind:
// Int, Long or Double.
func (n NumberValue) Concrete() NumberValue {
	if n.kind != Number {
		return n
	}
	if n.float {
		return FloatNumber(Double, n.f)
	}
	if n.i >= -1<<31 && n.i < 1<<31 {
		return IntegerNumber(Int, n.i)
	}
	return IntegerNumber(Long, n.i)
}

// ConvertMap rebuilds src inside the backend util belongs to.
func ConvertMap(util TypeUtil, src MapType) (MapType, error) {
	dst := util.CreateEmptyMap()
	for _, key := range src.Keys() {
		if err := dst.SetGeneric(key, src.GetGeneric(key)); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// ConvertList rebuilds src inside the backend util belongs to.
func ConvertList(util TypeUtil, src ListType) (ListType, error) {
	dst := util.CreateEmptyList()
	for i := 0; i < src.Size(); i++ {
		if err := dst.AddGeneric(src.GetGeneric(i)); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// Equal compares two generic values structurally, across backends. Numbers
// compare by value, so an untyped JSON number equals a typed one.
func Equal(a, b any) bool {
	if na, ok := NumberOf(a); ok {
		nb, ok := NumberOf(b)
		if !ok {
			return false
		}
		if na.IsFloat() || nb.IsFloat() {
			return na.Float64() == nb.Float64()
		}
		return na.Int64() == nb.Int64()
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case []int32:
		y, ok := b.([]int32)
		return ok && slices.Equal(x, y)
	case []int64:
		y, ok := b.([]int64)
		return ok && slices.Equal(x, y)
	case MapType:
		y, ok := b.(MapType)
		if !ok || x.Size() != y.Size() {
			return false
		}
		for _, key := range x.Keys() {
			if !y.HasKey(key) || !Equal(x.GetGeneric(key), y.GetGeneric(key)) {
				return false
			}
		}
		return true
	case ListType:
		y, ok := b.(ListType)
		if !ok || x.Size() != y.Size() {
			return false
		}
		for i := 0; i < x.Size(); i++ {
			if !Equal(x.GetGeneric(i), y.GetGeneric(i)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
