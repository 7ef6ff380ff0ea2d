package types

// MapStore is the storage surface a backend implements. MapBase derives every
// typed accessor of MapType from it.
type MapStore interface {
	TypeUtil() TypeUtil
	Size() int
	Keys() []string
	HasKey(key string) bool
	GetGeneric(key string) any
	SetGeneric(key string, value any) error
}

// MapBase supplies the typed half of MapType. Backends embed it and point
// Store back at themselves.
type MapBase struct {
	Store MapStore
}

func (b MapBase) IsEmpty() bool { return b.Store.Size() == 0 }

func (b MapBase) TypeOf(key string) ObjectType {
	if !b.Store.HasKey(key) {
		return None
	}
	return KindOf(b.Store.GetGeneric(key))
}

func (b MapBase) HasKeyOfType(key string, t ObjectType) bool {
	return b.Store.HasKey(key) && b.TypeOf(key).Matches(t)
}

func (b MapBase) GetNumber(key string) (NumberValue, bool) {
	return NumberOf(b.Store.GetGeneric(key))
}

func (b MapBase) GetBoolean(key string, dfl bool) bool {
	if n, ok := b.GetNumber(key); ok {
		return n.Int8() != 0
	}
	return dfl
}

func (b MapBase) SetBoolean(key string, v bool) { b.set(key, v) }

func (b MapBase) GetByte(key string, dfl int8) int8 {
	if n, ok := b.GetNumber(key); ok {
		return n.Int8()
	}
	return dfl
}

func (b MapBase) ReadByte(key string) (int8, error) {
	n, err := readNumber(b.Store.GetGeneric(key))
	return n.Int8(), err
}

func (b MapBase) SetByte(key string, v int8) { b.set(key, v) }

func (b MapBase) GetShort(key string, dfl int16) int16 {
	if n, ok := b.GetNumber(key); ok {
		return n.Int16()
	}
	return dfl
}

func (b MapBase) ReadShort(key string) (int16, error) {
	n, err := readNumber(b.Store.GetGeneric(key))
	return n.Int16(), err
}

func (b MapBase) SetShort(key string, v int16) { b.set(key, v) }

func (b MapBase) GetInt(key string, dfl int32) int32 {
	if n, ok := b.GetNumber(key); ok {
		return n.Int32()
	}
	return dfl
}

func (b MapBase) ReadInt(key string) (int32, error) {
	n, err := readNumber(b.Store.GetGeneric(key))
	return n.Int32(), err
}

func (b MapBase) SetInt(key string, v int32) { b.set(key, v) }

func (b MapBase) GetLong(key string, dfl int64) int64 {
	if n, ok := b.GetNumber(key); ok {
		return n.Int64()
	}
	return dfl
}

func (b MapBase) ReadLong(key string) (int64, error) {
	n, err := readNumber(b.Store.GetGeneric(key))
	return n.Int64(), err
}

func (b MapBase) SetLong(key string, v int64) { b.set(key, v) }

func (b MapBase) GetFloat(key string, dfl float32) float32 {
	if n, ok := b.GetNumber(key); ok {
		return n.Float32()
	}
	return dfl
}

func (b MapBase) ReadFloat(key string) (float32, error) {
	n, err := readNumber(b.Store.GetGeneric(key))
	return n.Float32(), err
}

func (b MapBase) SetFloat(key string, v float32) { b.set(key, v) }

func (b MapBase) GetDouble(key string, dfl float64) float64 {
	if n, ok := b.GetNumber(key); ok {
		return n.Float64()
	}
	return dfl
}

func (b MapBase) ReadDouble(key string) (float64, error) {
	n, err := readNumber(b.Store.GetGeneric(key))
	return n.Float64(), err
}

func (b MapBase) SetDouble(key string, v float64) { b.set(key, v) }

func (b MapBase) GetBytes(key string, dfl []byte) []byte {
	if v, ok := b.Store.GetGeneric(key).([]byte); ok {
		return v
	}
	return dfl
}

func (b MapBase) ReadBytes(key string) ([]byte, error) {
	return readAs[[]byte](b.Store.GetGeneric(key))
}

func (b MapBase) SetBytes(key string, v []byte) { b.set(key, v) }

func (b MapBase) GetShorts(string) ([]int16, error) { return nil, ErrUnsupportedCapability }

func (b MapBase) SetShorts(string, []int16) error { return ErrUnsupportedCapability }

func (b MapBase) GetInts(key string, dfl []int32) []int32 {
	if v, ok := b.Store.GetGeneric(key).([]int32); ok {
		return v
	}
	return dfl
}

func (b MapBase) ReadInts(key string) ([]int32, error) {
	return readAs[[]int32](b.Store.GetGeneric(key))
}

func (b MapBase) SetInts(key string, v []int32) { b.set(key, v) }

func (b MapBase) GetLongs(key string, dfl []int64) []int64 {
	if v, ok := b.Store.GetGeneric(key).([]int64); ok {
		return v
	}
	return dfl
}

func (b MapBase) ReadLongs(key string) ([]int64, error) {
	return readAs[[]int64](b.Store.GetGeneric(key))
}

func (b MapBase) SetLongs(key string, v []int64) { b.set(key, v) }

func (b MapBase) GetList(key string, elem ObjectType) ListType {
	l, ok := b.Store.GetGeneric(key).(ListType)
	if !ok {
		return nil
	}
	if t := l.Type(); t == None || t.Matches(elem) {
		return l
	}
	return nil
}

func (b MapBase) GetListUnchecked(key string) ListType {
	l, _ := b.Store.GetGeneric(key).(ListType)
	return l
}

func (b MapBase) ReadList(key string) (ListType, error) {
	return readAs[ListType](b.Store.GetGeneric(key))
}

func (b MapBase) SetList(key string, v ListType) { b.set(key, v) }

func (b MapBase) GetMap(key string) MapType {
	m, _ := b.Store.GetGeneric(key).(MapType)
	return m
}

func (b MapBase) ReadMap(key string) (MapType, error) {
	return readAs[MapType](b.Store.GetGeneric(key))
}

func (b MapBase) SetMap(key string, v MapType) { b.set(key, v) }

func (b MapBase) GetString(key string, dfl string) string {
	if v, ok := b.Store.GetGeneric(key).(string); ok {
		return v
	}
	return dfl
}

func (b MapBase) ReadString(key string) (string, error) {
	return readAs[string](b.Store.GetGeneric(key))
}

func (b MapBase) SetString(key string, v string) { b.set(key, v) }

// set stores a value of a kind every backend accepts.
func (b MapBase) set(key string, v any) {
	_ = b.Store.SetGeneric(key, v)
}

// ListStore is the storage surface a backend implements for lists.
type ListStore interface {
	TypeUtil() TypeUtil
	Type() ObjectType
	Size() int
	GetGeneric(index int) any
	SetGeneric(index int, value any) error
	AddGeneric(value any) error
}

// ListBase supplies the typed half of ListType. Mismatched Add and Set calls
// are dropped.
type ListBase struct {
	Store ListStore
}

func (b ListBase) GetNumber(index int) (NumberValue, error) {
	v := b.Store.GetGeneric(index)
	n, ok := NumberOf(v)
	if !ok {
		return NumberValue{}, ErrTypeMismatch
	}
	return n, nil
}

func (b ListBase) GetByte(index int) (int8, error) {
	n, err := b.GetNumber(index)
	return n.Int8(), err
}

func (b ListBase) SetByte(index int, v int8) { b.set(index, v) }
func (b ListBase) AddByte(v int8)            { b.add(v) }

func (b ListBase) GetShort(index int) (int16, error) {
	n, err := b.GetNumber(index)
	return n.Int16(), err
}

func (b ListBase) SetShort(index int, v int16) { b.set(index, v) }
func (b ListBase) AddShort(v int16)            { b.add(v) }

func (b ListBase) GetInt(index int) (int32, error) {
	n, err := b.GetNumber(index)
	return n.Int32(), err
}

func (b ListBase) SetInt(index int, v int32) { b.set(index, v) }
func (b ListBase) AddInt(v int32)            { b.add(v) }

func (b ListBase) GetLong(index int) (int64, error) {
	n, err := b.GetNumber(index)
	return n.Int64(), err
}

func (b ListBase) SetLong(index int, v int64) { b.set(index, v) }
func (b ListBase) AddLong(v int64)            { b.add(v) }

func (b ListBase) GetFloat(index int) (float32, error) {
	n, err := b.GetNumber(index)
	return n.Float32(), err
}

func (b ListBase) SetFloat(index int, v float32) { b.set(index, v) }
func (b ListBase) AddFloat(v float32)            { b.add(v) }

func (b ListBase) GetDouble(index int) (float64, error) {
	n, err := b.GetNumber(index)
	return n.Float64(), err
}

func (b ListBase) SetDouble(index int, v float64) { b.set(index, v) }
func (b ListBase) AddDouble(v float64)            { b.add(v) }

func (b ListBase) GetBytes(index int) ([]byte, error) {
	return elemAs[[]byte](b.Store.GetGeneric(index))
}

func (b ListBase) SetBytes(index int, v []byte) { b.set(index, v) }
func (b ListBase) AddBytes(v []byte)            { b.add(v) }

func (b ListBase) GetShorts(int) ([]int16, error) { return nil, ErrUnsupportedCapability }
func (b ListBase) SetShorts(int, []int16) error   { return ErrUnsupportedCapability }
func (b ListBase) AddShorts([]int16) error        { return ErrUnsupportedCapability }

func (b ListBase) GetInts(index int) ([]int32, error) {
	return elemAs[[]int32](b.Store.GetGeneric(index))
}

func (b ListBase) SetInts(index int, v []int32) { b.set(index, v) }
func (b ListBase) AddInts(v []int32)            { b.add(v) }

func (b ListBase) GetLongs(index int) ([]int64, error) {
	return elemAs[[]int64](b.Store.GetGeneric(index))
}

func (b ListBase) SetLongs(index int, v []int64) { b.set(index, v) }
func (b ListBase) AddLongs(v []int64)            { b.add(v) }

func (b ListBase) GetList(index int) (ListType, error) {
	return elemAs[ListType](b.Store.GetGeneric(index))
}

func (b ListBase) SetList(index int, v ListType) { b.set(index, v) }
func (b ListBase) AddList(v ListType)            { b.add(v) }

func (b ListBase) GetMap(index int) (MapType, error) {
	return elemAs[MapType](b.Store.GetGeneric(index))
}

func (b ListBase) SetMap(index int, v MapType) { b.set(index, v) }
func (b ListBase) AddMap(v MapType)            { b.add(v) }

func (b ListBase) GetString(index int) (string, error) {
	return elemAs[string](b.Store.GetGeneric(index))
}

func (b ListBase) SetString(index int, v string) { b.set(index, v) }
func (b ListBase) AddString(v string)            { b.add(v) }

func (b ListBase) set(index int, v any) { _ = b.Store.SetGeneric(index, v) }
func (b ListBase) add(v any)            { _ = b.Store.AddGeneric(v) }

func readNumber(v any) (NumberValue, error) {
	if v == nil {
		return NumberValue{}, nil
	}
	n, ok := NumberOf(v)
	if !ok {
		return NumberValue{}, ErrTypeMismatch
	}
	return n, nil
}

// readAs is the strict map read: absent is the zero value, a foreign kind
// is a mismatch.
func readAs[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	x, ok := v.(T)
	if !ok {
		return zero, ErrTypeMismatch
	}
	return x, nil
}

func elemAs[T any](v any) (T, error) {
	x, ok := v.(T)
	if !ok {
		var zero T
		return zero, ErrTypeMismatch
	}
	return x, nil
}
