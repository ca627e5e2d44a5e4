package models

import (
	"encoding/json"
	"io"
)

func JSONEncoder(w io.Writer) *json.Encoder {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e
}

// Convert converts between two JSON-compatible representations, typically
// a decoded map[string]any into a typed struct.
func Convert(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
