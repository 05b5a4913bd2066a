package store

import (
	"encoding/json"
	"fmt"
)

// marshalFloats converts a coefficient or sample array to JSON TEXT.
// encoding/json writes the shortest representation that round-trips, so the
// values read back are bit-identical.
func marshalFloats(vs []float64) (string, error) {
	if vs == nil {
		return "[]", nil
	}
	data, err := json.Marshal(vs)
	if err != nil {
		return "", fmt.Errorf("marshal floats: %w", err)
	}
	return string(data), nil
}

// unmarshalFloats parses JSON TEXT written by marshalFloats.
func unmarshalFloats(data string) ([]float64, error) {
	if data == "" {
		return nil, nil
	}
	var vs []float64
	if err := json.Unmarshal([]byte(data), &vs); err != nil {
		return nil, fmt.Errorf("unmarshal floats: %w", err)
	}
	return vs, nil
}
