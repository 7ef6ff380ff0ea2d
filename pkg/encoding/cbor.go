package encoding

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR is a codec using Core Deterministic Encoding (RFC 8949 §4.2), so the
// same tree always produces the same bytes. Decoding into any yields
// map[string]any for maps.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBOR builds a codec. Types registered in tags round-trip through their
// tag numbers; tags may be nil.
func NewCBOR(tags cbor.TagSet) (*CBOR, error) {
	if tags == nil {
		tags = cbor.NewTagSet()
	}

	enc, err := cbor.CoreDetEncOptions().EncModeWithTags(tags)
	if err != nil {
		return nil, err
	}

	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// byte strings stay []byte when the target is any
		DefaultByteStringType: reflect.TypeOf([]byte(nil)),
	}.DecModeWithTags(tags)
	if err != nil {
		return nil, err
	}

	return &CBOR{enc: enc, dec: dec}, nil
}

func (c *CBOR) Name() string { return "cbor" }

func (c *CBOR) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c *CBOR) Unmarshal(data []byte) (any, error) {
	var v any
	if err := c.dec.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *CBOR) NewEncoder(w io.Writer) *cbor.Encoder {
	return c.enc.NewEncoder(w)
}

func (c *CBOR) NewDecoder(r io.Reader) *cbor.Decoder {
	return c.dec.NewDecoder(r)
}

// Diagnose renders data in CBOR diagnostic notation.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
