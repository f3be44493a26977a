package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(s string) string {
	return newlines.Replace(s)
}

// Serialize encodes r as JSON, indenting nested values by indent spaces.
// An indent of zero produces compact output.
func Serialize(r *Roster, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode roster: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a serialized roster.
func Decode(data []byte) (*Roster, error) {
	r := New("")
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	for _, id := range r.Order {
		r.reserve(id)
	}
	r.Groups.Each(func(_ string, g *Group) {
		for _, id := range g.GamePieces.Keys() {
			r.reserve(id)
		}
	})
	return r, nil
}
