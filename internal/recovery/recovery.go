// Package recovery extracts a JSON object embedded in free-form model output.
//
// Vision models routinely wrap their JSON in commentary or markdown fences
// despite being told not to. The parser tolerates any surrounding prose: it
// scans from the first '{' with brace-depth and string awareness to find the
// matching '}', so fenced or prefixed replies still decode. Raw text is kept
// on every failure so the caller can show it untouched.
package recovery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aircargo-labs/awb-extractor/internal/awb"
)

// Reason classifies why recovery failed.
type Reason string

const (
	// ReasonNoJSONFound means the text contains no candidate JSON object.
	ReasonNoJSONFound Reason = "no_json_found"
	// ReasonMalformedJSON means a candidate span was found but did not decode.
	ReasonMalformedJSON Reason = "malformed_json"
)

// ParseError reports a failed recovery. RawText is the model output exactly
// as received, preserved for display.
type ParseError struct {
	Reason  Reason
	RawText string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recovery: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("recovery: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract locates the JSON object inside raw and decodes it into a Record.
// No schema validation happens here: unexpected keys are preserved and
// expected-but-absent keys are simply absent.
func Extract(raw string) (awb.Record, error) {
	span, ok := jsonSpan(raw)
	if !ok {
		return nil, &ParseError{Reason: ReasonNoJSONFound, RawText: raw}
	}

	var rec awb.Record
	if err := json.Unmarshal([]byte(span), &rec); err != nil {
		return nil, &ParseError{Reason: ReasonMalformedJSON, RawText: raw, Err: err}
	}
	return rec, nil
}

// jsonSpan returns the first balanced {...} span in s. Brace characters
// inside JSON strings are ignored while scanning. If the first object never
// closes, the greedy first-'{' to last-'}' span is returned instead so the
// decoder can report what is wrong with it.
func jsonSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	// Unbalanced object. Fall back to the widest span so the decode error
	// describes the actual malformation.
	end := strings.LastIndexByte(s, '}')
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
