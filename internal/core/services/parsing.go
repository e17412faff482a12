package services

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

// parseStrategy turns model output into raw estimates
type parseStrategy struct {
	name  string
	parse func(text string) []domain.RawEstimate
}

// parseStrategies run in order; the first to yield estimates wins
var parseStrategies = []parseStrategy{
	{name: "direct", parse: parseDirect},
	{name: "array-span", parse: parseArraySpan},
	{name: "objects", parse: parseObjects},
}

var codeFence = regexp.MustCompile("```[a-zA-Z]*")

// ParseFeatures extracts raw estimates from model output.
// Returns the name of the strategy that succeeded, or "" when none did.
func ParseFeatures(text string) ([]domain.RawEstimate, string) {
	cleaned := stripFences(text)
	if cleaned == "" {
		return nil, ""
	}
	for _, s := range parseStrategies {
		if estimates := s.parse(cleaned); len(estimates) > 0 {
			return estimates, s.name
		}
	}
	return nil, ""
}

func stripFences(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// parseDirect accepts a JSON array, {"features": [...]} or an object whose
// first array-valued key holds the features
func parseDirect(text string) []domain.RawEstimate {
	switch {
	case strings.HasPrefix(text, "["):
		return decodeArray([]byte(text))
	case strings.HasPrefix(text, "{"):
		arr := featureArrayOf([]byte(text))
		if arr == nil {
			return nil
		}
		return decodeArray(arr)
	}
	return nil
}

// featureArrayOf walks the top-level keys of an object in source order
func featureArrayOf(data []byte) json.RawMessage {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var first json.RawMessage
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil
		}
		if !bytes.HasPrefix(bytes.TrimSpace(value), []byte("[")) {
			continue
		}
		if strings.EqualFold(key, "features") {
			return value
		}
		if first == nil {
			first = value
		}
	}
	return first
}

// parseArraySpan parses the text between the first '[' and the last ']'
func parseArraySpan(text string) []domain.RawEstimate {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}
	return decodeArray([]byte(text[start : end+1]))
}

// parseObjects scans for balanced {...} spans, ignoring braces inside strings,
// and keeps the innermost ones that decode as estimates. It recovers features
// from truncated or otherwise broken arrays.
func parseObjects(text string) []domain.RawEstimate {
	type span struct{ start, end int }

	var (
		starts   []int
		accepted []span
		out      []domain.RawEstimate
		inString bool
		escaped  bool
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
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
			starts = append(starts, i)
		case '}':
			if len(starts) == 0 {
				continue
			}
			start := starts[len(starts)-1]
			starts = starts[:len(starts)-1]

			enclosing := false
			for _, a := range accepted {
				if a.start > start && a.end < i {
					enclosing = true
					break
				}
			}
			if enclosing {
				continue
			}

			var r domain.RawEstimate
			if err := json.Unmarshal([]byte(text[start:i+1]), &r); err == nil && isEstimate(r) {
				accepted = append(accepted, span{start: start, end: i})
				out = append(out, r)
			}
		}
	}
	return out
}

func decodeArray(data []byte) []domain.RawEstimate {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make([]domain.RawEstimate, 0, len(items))
	for _, item := range items {
		var r domain.RawEstimate
		if err := json.Unmarshal(item, &r); err != nil || !isEstimate(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// isEstimate rejects objects that carry neither a name nor any hours
func isEstimate(r domain.RawEstimate) bool {
	return r.Name != "" || r.MinHours != nil || r.MaxHours != nil || r.Hours != nil
}
