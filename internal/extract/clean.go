package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// cleanText normalises text pulled out of a content stream. Invalid UTF-8
// becomes U+FFFD and non-breaking spaces become plain spaces. Control
// characters other than newline and tab are dropped, then the result is
// NFC-composed and trimmed.
func cleanText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\u00a0':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}

// splitLines breaks plain text into cleaned, non-blank lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = cleanText(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
