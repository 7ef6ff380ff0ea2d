package types

// ListType is a homogeneous ordered node. The element kind is fixed by the
// first accepted insertion; Add and Set calls of another kind are ignored.
// Getters fail with ErrTypeMismatch when the element is of another kind and
// panic on out-of-range indices like slice indexing does.
type ListType interface {
	TypeUtil() TypeUtil

	// Type is the element kind, None while nothing has been inserted.
	Type() ObjectType
	Size() int
	Copy() ListType
	Remove(index int)

	GetGeneric(index int) any
	// AddGeneric appends any value MapType.SetGeneric accepts.
	AddGeneric(value any) error

	GetNumber(index int) (NumberValue, error)
	GetByte(index int) (int8, error)
	SetByte(index int, v int8)
	AddByte(v int8)
	GetShort(index int) (int16, error)
	SetShort(index int, v int16)
	AddShort(v int16)
	GetInt(index int) (int32, error)
	SetInt(index int, v int32)
	AddInt(v int32)
	GetLong(index int) (int64, error)
	SetLong(index int, v int64)
	AddLong(v int64)
	GetFloat(index int) (float32, error)
	SetFloat(index int, v float32)
	AddFloat(v float32)
	GetDouble(index int) (float64, error)
	SetDouble(index int, v float64)
	AddDouble(v float64)

	GetBytes(index int) ([]byte, error)
	SetBytes(index int, v []byte)
	AddBytes(v []byte)
	GetShorts(index int) ([]int16, error)
	SetShorts(index int, v []int16) error
	AddShorts(v []int16) error
	GetInts(index int) ([]int32, error)
	SetInts(index int, v []int32)
	AddInts(v []int32)
	GetLongs(index int) ([]int64, error)
	SetLongs(index int, v []int64)
	AddLongs(v []int64)

	GetList(index int) (ListType, error)
	SetList(index int, v ListType)
	AddList(v ListType)

	GetMap(index int) (MapType, error)
	SetMap(index int, v MapType)
	AddMap(v MapType)

	GetString(index int) (string, error)
	SetString(index int, v string)
	AddString(v string)
}
