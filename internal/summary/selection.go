package summary

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	maxSelectedSentences = 3
	minTruncatedRunes    = 15

	firstSentenceBonus = 10
	lastSentenceBonus  = 8
	edgeBandBonus      = 5
	leadingBandRatio   = 0.2
	trailingBandRatio  = 0.8

	keywordBonus = 3

	idealLengthBonus      = 5
	acceptableLengthBonus = 3

	featureWordBonus = 4
)

//nolint:gochecknoglobals // Immutable lookup lists.
var (
	featureWords = []string{
		"总结", "结论", "因此", "总之", "简言之", "概括",
		"首先", "其次", "最后", "关键", "核心", "主要",
		"实现", "功能", "特点", "优势", "作用", "意义",
	}

	// Matched against the lower-cased sentence.
	englishFeatureWords = []string{
		"in summary", "in conclusion", "to summarize", "in short", "therefore",
		"overall", "firstly", "finally", "the key", "the main", "the core",
	}
)

type candidate struct {
	index int
	text  string
	runes int
	score int
}

func scoreSentences(sentences []string, keywords []string) []candidate {
	candidates := make([]candidate, 0, len(sentences))

	for i, s := range sentences {
		runes := utf8.RuneCountInString(s)

		score := positionBonus(i, len(sentences)) + lengthBonus(runes)

		for _, kw := range keywords {
			if strings.Contains(s, kw) {
				score += keywordBonus
			}
		}

		if hasFeatureWord(s) {
			score += featureWordBonus
		}

		candidates = append(candidates, candidate{
			index: i,
			text:  s,
			runes: runes,
			score: score,
		})
	}

	return candidates
}

func positionBonus(i, n int) int {
	switch {
	case i == 0:
		return firstSentenceBonus
	case i == n-1:
		return lastSentenceBonus
	case float64(i) < float64(n)*leadingBandRatio:
		return edgeBandBonus
	case float64(i) > float64(n)*trailingBandRatio:
		return edgeBandBonus
	default:
		return 0
	}
}

func lengthBonus(runes int) int {
	switch {
	case runes >= 15 && runes <= 50:
		return idealLengthBonus
	case runes >= 10 && runes <= 80:
		return acceptableLengthBonus
	default:
		return 0
	}
}

func hasFeatureWord(s string) bool {
	for _, fw := range featureWords {
		if strings.Contains(s, fw) {
			return true
		}
	}

	lower := strings.ToLower(s)
	for _, fw := range englishFeatureWords {
		if strings.Contains(lower, fw) {
			return true
		}
	}

	return false
}

// selectSentences picks candidates greedily by score within maxLength runes
// (separators included) and returns them in document order.
func selectSentences(candidates []candidate, maxLength int) []candidate {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	var selected []candidate
	total := 0

	for _, c := range ranked {
		sep := 0
		if len(selected) > 0 {
			sep = 1
		}

		if total+sep+c.runes > maxLength {
			remaining := maxLength - total - sep
			if remaining >= minTruncatedRunes {
				c.text = clip(c.text, remaining)
				c.runes = utf8.RuneCountInString(c.text)
				if c.runes > 0 {
					selected = append(selected, c)
				}
			}

			break
		}

		selected = append(selected, c)
		total += sep + c.runes

		if len(selected) >= maxSelectedSentences {
			break
		}
	}

	slices.SortFunc(selected, func(a, b candidate) int {
		return cmp.Compare(a.index, b.index)
	})

	return selected
}
