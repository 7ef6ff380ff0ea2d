package encoding

// Codec turns any-trees into bytes and back. Decoded maps are always
// map[string]any.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte) (any, error)
}
