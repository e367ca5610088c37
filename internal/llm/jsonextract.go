package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject returns the substring from the first '{' to the last '}'
// of text. Prose before and after the object is tolerated; when the text
// holds several objects the greedy span covering all of them is returned.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSON
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// ParseJSONObject locates and decodes the JSON object embedded in text.
func ParseJSONObject(text string) (RawPayload, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}
	var out RawPayload
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return out, nil
}
