package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as indented JSON.
//
// HTML escaping is off: property values are often URLs or JDBC strings and
// "a&b" must print as written.
type JSONFormatter struct {
	// Compact disables indentation.
	Compact bool
}

// Format writes data as one JSON document.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !f.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}
