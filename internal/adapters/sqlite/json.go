package sqlite

import (
	"encoding/json"
	"fmt"
)

// encodeJSON marshals a structured sub-object into its column text.
// nil slices and maps are stored as JSON null, which decodeJSON treats
// the same as empty text: the target keeps its zero value.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(b), nil
}

// decodeJSON unmarshals a JSON column into the target. Empty text decodes
// to the zero value.
func decodeJSON(text string, target any) error {
	if text == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(text), target); err != nil {
		return fmt.Errorf("failed to decode json column: %w", err)
	}
	return nil
}
