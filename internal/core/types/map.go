package types

// MapType is a string-keyed node. Get* accessors never fail: an absent key
// or a slot of the wrong kind yields the supplied default. Read* accessors
// return the zero value for an absent key and ErrTypeMismatch for a present
// slot of an incompatible kind. Numeric accessors convert between any of the
// numeric kinds. Set* always overwrites.
type MapType interface {
	TypeUtil() TypeUtil

	Size() int
	IsEmpty() bool
	Clear()
	// Keys returns the keys in sorted order.
	Keys() []string
	// Copy returns a deep copy.
	Copy() MapType

	HasKey(key string) bool
	HasKeyOfType(key string, t ObjectType) bool
	TypeOf(key string) ObjectType
	Remove(key string)

	// GetGeneric returns the slot as a Go value: bool, int8, int16, int32,
	// int64, float32, float64, NumberValue (untyped numbers), string, []byte,
	// []int32, []int64, MapType or ListType. Absent keys yield nil.
	GetGeneric(key string) any
	// SetGeneric stores any value GetGeneric can return, plus bool, int and
	// maps or lists belonging to another backend.
	SetGeneric(key string, value any) error

	GetNumber(key string) (NumberValue, bool)

	GetBoolean(key string, dfl bool) bool
	SetBoolean(key string, v bool)
	GetByte(key string, dfl int8) int8
	ReadByte(key string) (int8, error)
	SetByte(key string, v int8)
	GetShort(key string, dfl int16) int16
	ReadShort(key string) (int16, error)
	SetShort(key string, v int16)
	GetInt(key string, dfl int32) int32
	ReadInt(key string) (int32, error)
	SetInt(key string, v int32)
	GetLong(key string, dfl int64) int64
	ReadLong(key string) (int64, error)
	SetLong(key string, v int64)
	GetFloat(key string, dfl float32) float32
	ReadFloat(key string) (float32, error)
	SetFloat(key string, v float32)
	GetDouble(key string, dfl float64) float64
	ReadDouble(key string) (float64, error)
	SetDouble(key string, v float64)

	GetBytes(key string, dfl []byte) []byte
	ReadBytes(key string) ([]byte, error)
	SetBytes(key string, v []byte)
	// GetShorts and SetShorts always fail with ErrUnsupportedCapability.
	GetShorts(key string) ([]int16, error)
	SetShorts(key string, v []int16) error
	GetInts(key string, dfl []int32) []int32
	ReadInts(key string) ([]int32, error)
	SetInts(key string, v []int32)
	GetLongs(key string, dfl []int64) []int64
	ReadLongs(key string) ([]int64, error)
	SetLongs(key string, v []int64)

	// GetList returns the list when its element kind matches elem (an empty
	// list matches anything), otherwise nil.
	GetList(key string, elem ObjectType) ListType
	GetListUnchecked(key string) ListType
	ReadList(key string) (ListType, error)
	SetList(key string, v ListType)

	GetMap(key string) MapType
	ReadMap(key string) (MapType, error)
	SetMap(key string, v MapType)

	GetString(key string, dfl string) string
	ReadString(key string) (string, error)
	SetString(key string, v string)
	// GetForcedString renders any slot as text: strings as-is, anything else
	// in the backend's own textual form.
	GetForcedString(key string, dfl string) string
}
