package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RawState classifies the payload field of a backend response before any
// record-level decoding is attempted.
type RawState int

const (
	// RawMissing means the field was absent, JSON null, or the literal
	// string "undefined" (the backend occasionally stringifies its own
	// missing values).
	RawMissing RawState = iota

	// RawLiteral means the field was a string holding serialized JSON that
	// still needs decoding.
	RawLiteral

	// RawStructured means the backend pre-parsed the model output and the
	// field is already a JSON object.
	RawStructured
)

// Raw is the tagged union resolved once at the response boundary. The
// normalizer is the only consumer; call sites never re-inspect payload shape.
type Raw struct {
	State      RawState
	Literal    string
	Structured json.RawMessage
}

// ResolveRaw classifies a payload field. A nil or null field is Missing; a
// JSON string is Literal (or Missing when it spells "undefined"); a JSON
// object is Structured. Any other shape (number, bool, array) cannot hold a
// record and resolves to Missing.
func ResolveRaw(field json.RawMessage) Raw {
	trimmed := bytes.TrimSpace(field)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Raw{State: RawMissing}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Raw{State: RawMissing}
		}
		if strings.TrimSpace(s) == "" || strings.TrimSpace(s) == "undefined" {
			// Keep the literal so the normalizer can distinguish an absent
			// field from a stringified "undefined" in its counters.
			return Raw{State: RawMissing, Literal: strings.TrimSpace(s)}
		}
		return Raw{State: RawLiteral, Literal: s}
	case '{':
		return Raw{State: RawStructured, Structured: append(json.RawMessage(nil), trimmed...)}
	default:
		return Raw{State: RawMissing}
	}
}

// stripCodeFences removes a markdown code fence wrapper from model output.
// Models frequently wrap JSON in ```json ... ``` blocks.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	} else {
		return content
	}

	if idx := strings.LastIndex(content, "```"); idx != -1 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
