package codec

import "encoding/json"

// JSON is the default snapshot codec. Output is plain JSON with the same
// two-level key nesting as the in-memory cache, so a persisted snapshot can
// be inspected and diffed with standard tools.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
