package session

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/bytedance/sonic"
)

// Codec converts a session payload to and from its stored blob form.
// A stored blob must round-trip: Decode(Encode(v)) is equivalent to v for
// every representable payload.
type Codec interface {
	Encode(value map[string]any) ([]byte, error)
	Decode(data []byte) (map[string]any, error)
}

// JSONCodec stores payloads as JSON. It is the default codec.
type JSONCodec struct{}

func (JSONCodec) Encode(value map[string]any) ([]byte, error) {
	data, err := sonic.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("session: encode json: %w", err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) (map[string]any, error) {
	var value map[string]any
	if err := sonic.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("session: decode json: %w", err)
	}
	return value, nil
}

// GobCodec stores payloads in Go's gob encoding. Unlike JSON it preserves
// Go integer types through a round-trip.
type GobCodec struct{}

func init() {
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

func (GobCodec) Encode(value map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return nil, fmt.Errorf("session: encode gob: %w", err)
	}
	return buf.Bytes(), nil
}

func (GobCodec) Decode(data []byte) (map[string]any, error) {
	var value map[string]any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&value); err != nil {
		return nil, fmt.Errorf("session: decode gob: %w", err)
	}
	return value, nil
}

// LookupCodec resolves a codec by its configured name. The empty name selects
// the default JSON codec.
func LookupCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "gob":
		return GobCodec{}, nil
	default:
		return nil, fmt.Errorf("session: unknown codec %q", name)
	}
}
