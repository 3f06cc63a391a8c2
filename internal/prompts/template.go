// Package prompts provides placeholder substitution for prompt templates.
package prompts

import "strings"

// Substitute replaces every occurrence of token in template with value.
// The second return reports whether the token was present; callers treat a
// missing token as a template misconfiguration and log it.
func Substitute(template, token, value string) (string, bool) {
	if !strings.Contains(template, token) {
		return template, false
	}
	return strings.ReplaceAll(template, token, value), true
}
