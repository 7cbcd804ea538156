package extraction

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be located in a response.
var ErrNoJSON = errors.New("no JSON object found in response")

// LooseJSON extracts the JSON object from a weakly structured model
// response. Models asked for JSON-only output still wrap it in markdown
// code fences or surround it with prose; this strips any fence wrapping
// and slices from the first '{' to the last '}'. The result is the raw
// JSON substring, not a parsed value.
func LooseJSON(text string) (string, error) {
	s := strings.TrimSpace(text)

	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}
