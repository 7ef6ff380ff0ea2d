package encoding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableJSON(t *testing.T) {
	data, err := StableJSON(map[string]any{"b": 1, "a": "<x>", "c": []any{true}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<x>","b":1,"c":[true]}`, string(data))
}

func TestDecodeJSON(t *testing.T) {
	t.Run("lenient", func(t *testing.T) {
		v, err := DecodeJSON([]byte(`{
			// comment
			"text": "hi",
			"n": 12,
		}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"text": "hi", "n": json.Number("12")}, v)
	})

	t.Run("scalar", func(t *testing.T) {
		v, err := DecodeJSON([]byte(`"plain"`))
		require.NoError(t, err)
		assert.Equal(t, "plain", v)
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := DecodeJSON([]byte(`{} {}`))
		assert.ErrorIs(t, err, ErrTrailingData)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeJSON([]byte(`{"a":`))
		assert.Error(t, err)
	})
}

func TestCBORDeterministic(t *testing.T) {
	codec, err := NewCBOR(nil)
	require.NoError(t, err)

	a, err := codec.Marshal(map[string]any{"x": 1, "y": "z", "blob": []byte{1, 2}})
	require.NoError(t, err)
	b, err := codec.Marshal(map[string]any{"blob": []byte{1, 2}, "y": "z", "x": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	v, err := codec.Unmarshal(a)
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "z", m["y"])
	assert.Equal(t, []byte{1, 2}, m["blob"])
}

func TestFingerprintOf(t *testing.T) {
	a, err := FingerprintOf(JSON{}, map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	b, err := FingerprintOf(JSON{}, map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	c, err := FingerprintOf(JSON{}, map[string]any{"a": 1})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, FormatFingerprint(a), 16)
}
