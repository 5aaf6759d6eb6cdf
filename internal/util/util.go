// internal/util/util.go
package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// SplitLines splits text on "\n". An empty string is one empty line.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// FirstLines returns the first n lines of text and whether any were dropped.
func FirstLines(text string, n int) (string, bool) {
	lines := SplitLines(text)
	if n < 0 || len(lines) <= n {
		return text, false
	}
	return strings.Join(lines[:n], "\n"), true
}

// SingleLine collapses whitespace runs, including newlines, into single spaces.
func SingleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// WrapToWidth wraps each line of text at word boundaries so that no line is
// wider than width runes. Words longer than width are split.
func WrapToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range SplitLines(text) {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var cur []rune
		for _, w := range words {
			r := []rune(w)
			for len(r) > width {
				if len(cur) > 0 {
					out = append(out, string(cur))
					cur = nil
				}
				out = append(out, string(r[:width]))
				r = r[width:]
			}
			if len(r) == 0 {
				continue
			}
			switch {
			case len(cur) == 0:
				cur = append(cur, r...)
			case len(cur)+1+len(r) <= width:
				cur = append(cur, ' ')
				cur = append(cur, r...)
			default:
				out = append(out, string(cur))
				cur = append([]rune(nil), r...)
			}
		}
		if len(cur) > 0 {
			out = append(out, string(cur))
		}
	}
	return strings.Join(out, "\n")
}
