// Package textutil provides text normalization helpers for contract text.
package textutil

import (
	"regexp"
	"strings"
)

var (
	blankRunsRe   = regexp.MustCompile(`\n{4,}`)
	trailingWSRe  = regexp.MustCompile(`(?m)[ \t]+$`)
	spaceRunsRe   = regexp.MustCompile(`[ \t]+`)
	controlCharRe = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
)

// Clean normalizes line endings and whitespace in extracted contract text.
// At most three consecutive newlines are kept so clause boundaries survive.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRunsRe.ReplaceAllString(text, "\n\n\n")
	text = trailingWSRe.ReplaceAllString(text, "")
	text = spaceRunsRe.ReplaceAllString(text, " ")
	text = controlCharRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Truncate returns at most n runes of s. Contract text is Chinese, so byte
// slicing would split characters; truncation is always rune-based.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// RuneLen reports the rune count of s.
func RuneLen(s string) int {
	return len([]rune(s))
}
