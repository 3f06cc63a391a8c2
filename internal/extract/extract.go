// Package extract recovers a JSON array from model output that is not
// guaranteed to be pure JSON, and classifies its element shape.
package extract

import "strings"

// Array recovers the first balanced JSON array substring from text.
//
// The scan is a single left-to-right pass with a bracket depth counter: it
// greedily captures the first balanced bracket group, not the largest one.
// Models that prepend commentary are handled; if a model emits several
// arrays, only the first is captured. Balance here is purely syntactic (the
// counter ignores string context); the downstream parse rejects anything the
// fast capture got wrong.
func Array(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if stripped := stripCodeFences(trimmed); stripped != "" {
		trimmed = stripped
	}

	// Fast path: already looks like an array. Parse failures surface later.
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return trimmed, true
	}

	start := strings.IndexByte(trimmed, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	for i := start; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(trimmed[start : i+1]), true
			}
		}
	}

	// Opening bracket never closed.
	return "", false
}

// stripCodeFences removes a surrounding markdown code fence, returning ""
// when text is not fenced.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return ""
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return ""
	}

	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
