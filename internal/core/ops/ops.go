// Package ops builds and decomposes trees through a small algebra of
// constructors and streams, so codecs can produce any backend without knowing
// it. Values are treated as immutable: merge operations return new containers.
package ops

import (
	"errors"

	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/pkg/sequence"
)

var (
	ErrNotMap    = errors.New("value is not a map")
	ErrNotList   = errors.New("value is not a list")
	ErrNotNumber = errors.New("value is not a number")
	ErrNotString = errors.New("value is not a string")

	// ErrKeyNotString is returned when a single merged key is not a string.
	ErrKeyNotString = errors.New("map key is not a string")

	// ErrNonStringKeys accompanies a partial result built while skipping
	// entries whose keys are not strings.
	ErrNonStringKeys = errors.New("map keys are not strings")

	// ErrListTypeMismatch is returned when merging an element of another
	// kind into a typed list.
	ErrListTypeMismatch = errors.New("list element type mismatch")
)

// Sentinel is the key of the single-entry map that wraps non-map elements
// inside a list of maps.
const Sentinel = ""

// Entry is one key/value pair of a map stream.
type Entry[T any] = sequence.Pair[T, T]

// Ops is the algebra over one tree representation T.
type Ops[T any] interface {
	Empty() T

	CreateByte(v int8) T
	CreateShort(v int16) T
	CreateInt(v int32) T
	CreateLong(v int64) T
	CreateFloat(v float32) T
	CreateDouble(v float64) T
	CreateBoolean(v bool) T
	CreateNumeric(n types.NumberValue) T
	CreateString(v string) T

	CreateByteList(v []byte) T
	CreateIntList(v []int32) T
	CreateLongList(v []int64) T
	// CreateList builds a list from a stream of elements, choosing the most
	// compact representation the backend has for it.
	CreateList(items *sequence.Iterator[T]) T
	// CreateMap builds a map from entries. Entries whose keys are not strings
	// are skipped and reported with ErrNonStringKeys next to the result.
	CreateMap(entries *sequence.Iterator[Entry[T]]) (T, error)

	GetNumberValue(v T) (types.NumberValue, error)
	GetStringValue(v T) (string, error)
	// GetStream decomposes a list or typed array into its elements.
	GetStream(v T) (*sequence.Iterator[T], error)
	// GetMapValues decomposes a map into entries in key order.
	GetMapValues(v T) (*sequence.Iterator[Entry[T]], error)

	MergeToList(list, value T) (T, error)
	MergeToMap(m, key, value T) (T, error)
	// MergeMapLike adds entries to m. Non-string keys are collected and
	// reported with ErrNonStringKeys alongside the partial result.
	MergeMapLike(m T, entries *sequence.Iterator[Entry[T]]) (T, error)
	Remove(v T, key string) T
}
