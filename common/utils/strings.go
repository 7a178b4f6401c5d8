package utils

import (
	"strings"
	"unicode"
)

// Trim removes leading and trailing control symbols (\r, \t, NUL...).
func Trim(str string) string {
	return strings.TrimFunc(str, func(c rune) bool {
		return unicode.IsControl(c)
	})
}

// Truncate cuts str to at most max runes.
func Truncate(str string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(str)
	if len(runes) <= max {
		return str
	}
	return string(runes[:max])
}

// Lines splits text on \n, dropping control symbols and surrounding blanks from each line.
// Blank lines are skipped.
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(Trim(line))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
