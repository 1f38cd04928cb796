// Package codec defines the serializer used for engine payloads and responses.
package codec

import "encoding/json"

// Codec encodes and decodes engine payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default Codec backed by encoding/json.
type JSON struct{}

// Marshal implements Codec.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements Codec.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// OrDefault returns c, or JSON when c is nil.
func OrDefault(c Codec) Codec {
	if c == nil {
		return JSON{}
	}
	return c
}
