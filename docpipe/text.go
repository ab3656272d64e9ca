package docpipe

import (
	"strings"
	"unicode"
)

// extractText extracts content from a plain text upload.
func extractText(data []byte) (string, []Section, error) {
	text := normalizeWhitespace(string(data))
	if text == "" {
		return "", nil, nil
	}

	title := firstLine(text)

	return title, []Section{{
		Text: text,
		Type: "paragraph",
	}}, nil
}

func normalizeWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
