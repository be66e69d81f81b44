// Package textutil canonicalizes extracted document text before it is
// fed into prompts or persisted.
package textutil

import (
	"regexp"
	"strings"
)

var (
	carriageRuns = regexp.MustCompile(`\r+`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses control noise from binary extraction into a
// canonical form: NUL bytes become spaces, CR runs become a single
// newline, runs of three or more newlines collapse to a blank line,
// and surrounding whitespace is trimmed.
func Normalize(text string) string {
	cleaned := strings.ReplaceAll(text, "\x00", " ")
	cleaned = carriageRuns.ReplaceAllString(cleaned, "\n")
	cleaned = blankRuns.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// Clip trims text and truncates it to limit characters, appending a
// truncation marker when anything was cut. Limits are counted in runes
// so multi-byte text is never split mid-character.
func Clip(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= limit {
		return trimmed
	}
	return strings.TrimRight(string(runes[:limit]), " \t\n") + " …"
}
