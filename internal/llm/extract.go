package llm

import "strings"

// Model responses usually wrap the JSON we asked for in prose or markdown
// fences. A greedy regex mis-extracts when the surrounding text contains
// unrelated braces, so extraction scans for the first balanced value
// instead, tracking string literals and escapes.

// ExtractJSONObject returns the first balanced top-level JSON object in
// text, or "" and false if none exists.
func ExtractJSONObject(text string) (string, bool) {
	return extractBalanced(text, '{', '}')
}

// ExtractJSONArray returns the first balanced top-level JSON array in
// text, or "" and false if none exists.
func ExtractJSONArray(text string) (string, bool) {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
