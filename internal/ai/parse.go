package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFences removes a surrounding markdown code fence from a model
// response, including an optional language tag ("```json"). Text without
// fences is returned trimmed and otherwise unchanged.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line, if any.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return strings.TrimSpace(s)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseCritique parses a critique JSON payload out of a model text response,
// tolerating surrounding code-fence markers.
func ParseCritique(text string) (*Critique, error) {
	cleaned := StripCodeFences(text)

	var c Critique
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return nil, fmt.Errorf("failed to parse critique JSON: %w (response: %s)", err, text)
	}

	if c.Score < 0 {
		c.Score = 0
	}
	if c.Score > 100 {
		c.Score = 100
	}
	return &c, nil
}
