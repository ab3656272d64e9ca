// CLAUDE:SUMMARY Tolerant JSON payload recovery from model output (fences, prose wrapping).
package genai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RecoverJSON extracts the JSON object a model was asked to produce from its
// raw text output. Models routinely wrap the object in markdown fences or
// prose; the recovery rule is: strip fence markers, then take the substring
// from the first '{' to the last '}' inclusive and parse it.
//
// A response with no opening brace yields an empty map, not an error — the
// model legitimately found nothing to extract.
func RecoverJSON(raw string) (map[string]any, error) {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	if start < 0 {
		return map[string]any{}, nil
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return nil, fmt.Errorf("genai: unbalanced JSON payload in model output")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("genai: parse model output: %w", err)
	}
	return fields, nil
}
