package native

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/pkg/encoding"
)

// Typed int and long arrays travel under their own tags so they do not come
// back as generic lists.
const (
	tagIntArray  = 40001
	tagLongArray = 40002
)

type (
	intArray  []int32
	longArray []int64
)

// NewCodec returns the CBOR codec that round-trips native trees.
func NewCodec() (*encoding.CBOR, error) {
	tags := cbor.NewTagSet()
	opts := cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired}
	if err := tags.Add(opts, reflect.TypeOf(intArray(nil)), tagIntArray); err != nil {
		return nil, err
	}
	if err := tags.Add(opts, reflect.TypeOf(longArray(nil)), tagLongArray); err != nil {
		return nil, err
	}
	return encoding.NewCBOR(tags)
}

// MarshalCBOR encodes m with codec.
func MarshalCBOR(codec encoding.Codec, m *Map) ([]byte, error) {
	return codec.Marshal(tagged(m.m))
}

// UnmarshalCBOR decodes a map-rooted document.
func UnmarshalCBOR(codec encoding.Codec, data []byte) (*Map, error) {
	v, err := codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("root is %T, not a map", v)
	}
	return FromPlain(root)
}

// Fingerprint hashes the deterministic CBOR form of m. Maps of other
// backends are converted first, so equal trees of one backend always share
// a fingerprint.
func Fingerprint(codec encoding.Codec, m types.MapType) (uint64, error) {
	nm, ok := m.(*Map)
	if !ok {
		converted, err := types.ConvertMap(Util, m)
		if err != nil {
			return 0, err
		}
		nm = converted.(*Map)
	}
	data, err := MarshalCBOR(codec, nm)
	if err != nil {
		return 0, err
	}
	return encoding.Fingerprint(data), nil
}

func tagged(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			out[k] = tagged(child)
		}
		return out
	case *Array:
		out := make([]any, len(x.Items))
		for i, child := range x.Items {
			out[i] = tagged(child)
		}
		return out
	case []int32:
		return intArray(x)
	case []int64:
		return longArray(x)
	default:
		return v
	}
}
