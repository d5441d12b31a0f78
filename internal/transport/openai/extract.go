package openai

import (
	"encoding/json"
	"errors"
	"strings"
)

// extractJSONObject isolates the first well-formed JSON object in a model
// reply. Models wrap JSON in markdown fences or surround it with prose; this
// strips fences, brace-matches the first object, and validates it. It fails
// closed: anything that does not contain one valid object is an error, no
// regex guessing.
func extractJSONObject(s string) ([]byte, error) {
	s = stripFences(s)

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, errors.New("no JSON object found")
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
				candidate := []byte(s[start : i+1])
				if !json.Valid(candidate) {
					return nil, errors.New("brace-matched text is not valid JSON")
				}
				return candidate, nil
			}
		}
	}

	return nil, errors.New("unterminated JSON object")
}

// stripFences removes a leading ```json (or bare ```) fence and its closing
// fence if present.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		// Drop the language tag line (e.g. "json").
		if tag := strings.TrimSpace(trimmed[:nl]); tag == "" || isFenceTag(tag) {
			trimmed = trimmed[nl+1:]
		}
	}
	if end := strings.LastIndex(trimmed, "```"); end >= 0 {
		trimmed = trimmed[:end]
	}
	return trimmed
}

func isFenceTag(tag string) bool {
	for _, r := range tag {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
