package markdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const truncateLookback = 10

//nolint:gochecknoglobals // Compiled once, never mutated.
var (
	fenceLineRe  = regexp.MustCompile("(?m)^\\s*(```|~~~).*$")
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	headingRe    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	strongRe     = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	emRe         = regexp.MustCompile(`(^|[\s(])[*_]([^*_\s][^*_]*)[*_]`)
	quoteRe      = regexp.MustCompile(`(?m)^\s{0,3}>\s?`)
	listRe       = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	ruleRe       = regexp.MustCompile(`(?m)^\s*(?:[-*_]\s*){3,}$`)
	htmlTagRe    = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
)

// Strip renders markdown as plain text: markup is removed, link labels and
// code contents are kept, whitespace is collapsed to single spaces.
func Strip(content string) string {
	s := fenceLineRe.ReplaceAllString(content, "")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = imageRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = strongRe.ReplaceAllString(s, "$2")
	s = emRe.ReplaceAllString(s, "$1$2")
	s = quoteRe.ReplaceAllString(s, "")
	s = ruleRe.ReplaceAllString(s, "")
	s = listRe.ReplaceAllString(s, "")
	s = htmlTagRe.ReplaceAllString(s, "")

	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most maxRunes runes plus suffix. The cut backs
// off to the last space or punctuation within the final tenth of the budget
// (at least truncateLookback runes) so that Latin words are not split.
func Truncate(s string, maxRunes int, suffix string) string {
	s = strings.TrimSpace(s)
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	runes := []rune(s)[:maxRunes]

	lookback := max(maxRunes/10, truncateLookback)
	for i := len(runes) - 1; i >= len(runes)-lookback && i > 0; i-- {
		if unicode.IsSpace(runes[i]) || unicode.IsPunct(runes[i]) {
			runes = runes[:i]
			break
		}
	}

	return strings.TrimRightFunc(string(runes), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + suffix
}
