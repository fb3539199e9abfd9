package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for normalization
var (
	parentheticalRegex = regexp.MustCompile(`\([^)]*\)`)
	separatorRunRegex  = regexp.MustCompile(`[\s\-_/]+`)
	bracketCharsRegex  = regexp.MustCompile(`[\[\]{}<>]`)
)

// Normalize canonicalizes food text for comparison.
// Full-width forms are folded with NFKC, then the text is lowercased, parenthetical
// substrings are removed, whitespace/hyphen/underscore/slash runs are dropped and
// bracket characters stripped. Blank input yields "".
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = norm.NFKC.String(text)
	text = strings.ToLower(strings.TrimSpace(text))
	text = parentheticalRegex.ReplaceAllString(text, "")
	text = separatorRunRegex.ReplaceAllString(text, "")
	text = bracketCharsRegex.ReplaceAllString(text, "")
	return text
}
