package pdftext

import (
	"regexp"
	"strings"
	"unicode"
)

var reCRLF = regexp.MustCompile(`\r\n?`)

// Normalize unifies line endings, turns no-break and other Unicode spaces
// into plain spaces and trims trailing spaces on each line. Line structure
// and inner spacing are kept: the table locator depends on both.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.Map(func(r rune) rune {
		if r != ' ' && unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}, s)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}
