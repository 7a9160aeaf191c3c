// Package codec defines the serialization abstraction for the persisted
// cache snapshot.
//
// The file-backed store persists with JSON so the snapshot stays
// human-inspectable; Msgpack and CBOR are drop-in replacements when the
// snapshot lives somewhere nobody reads by hand (e.g. a Redis blob).
// Whatever the codec, Decode(Encode(v)) must yield a value deep-equal to v.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
