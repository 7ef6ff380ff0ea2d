package encoding

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/zeusync/dataconverter/pkg/generic"
)

var ErrTrailingData = errors.New("trailing data after JSON value")

var buffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

// JSON is the JSON codec. Marshal is deterministic: object keys are sorted and
// HTML characters are left unescaped. Unmarshal keeps numbers as json.Number
// and tolerates comments and trailing commas.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) {
	return StableJSON(v)
}

func (JSON) Unmarshal(data []byte) (any, error) {
	return DecodeJSON(data)
}

// StableJSON encodes v with sorted object keys and without HTML escaping.
func StableJSON(v any) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

// DecodeJSON parses a single lenient JSON value.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}
