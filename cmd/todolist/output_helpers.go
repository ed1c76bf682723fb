package main

import (
	"encoding/json"
	"io"
)

// encodeJSON writes value as indented JSON. Names like "<b>" stay readable.
func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}
