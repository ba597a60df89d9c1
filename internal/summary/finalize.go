package summary

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	boundaryLookbackRunes = 20
	ellipsis              = "..."

	edgeCutset       = "，。、；：!！-,\"'“”‘’《》"
	terminators      = "。！？.!?"
	clauseBoundaries = "，、；,;"
)

// finalize tidies the joined summary and enforces the length cap as a
// safety net. The result always ends with terminal punctuation.
func finalize(s string, maxLength int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, edgeCutset)

	if runes := []rune(s); len(runes) > maxLength {
		s = cutAtBoundary(runes[:maxLength-1])
	}

	if s == "" {
		return ""
	}

	if last, _ := utf8.DecodeLastRuneInString(s); !strings.ContainsRune(terminators, last) {
		s += terminatorFor(s)
	}

	return s
}

// cutAtBoundary shortens runes to the nearest clause boundary within the
// last boundaryLookbackRunes runes, or marks the cut with an ellipsis.
func cutAtBoundary(runes []rune) string {
	runes = []rune(strings.TrimSpace(string(runes)))
	if len(runes) == 0 {
		return ""
	}

	if s, ok := boundaryCut(runes); ok {
		return s
	}

	return string(runes) + ellipsis
}

// clip shortens a sentence to at most limit runes, ellipsis included. It
// prefers a clause boundary near the cut and adds an ellipsis otherwise.
func clip(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}

	if s, ok := boundaryCut(runes[:limit]); ok {
		return s
	}

	return strings.TrimSpace(string(runes[:limit-utf8.RuneCountInString(ellipsis)])) + ellipsis
}

func boundaryCut(runes []rune) (string, bool) {
	if strings.ContainsRune(terminators, runes[len(runes)-1]) {
		return string(runes), true
	}

	for i := len(runes) - 1; i > max(0, len(runes)-boundaryLookbackRunes); i-- {
		switch {
		case runes[i] == '。':
			return string(runes[:i+1]), true
		case strings.ContainsRune(clauseBoundaries, runes[i]):
			return strings.TrimSpace(string(runes[:i])), true
		}
	}

	return "", false
}

func terminatorFor(s string) string {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return "。"
		}
	}

	return "."
}
