package summary

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

const maxKeywords = 10

//nolint:gochecknoglobals // Compiled once, never mutated.
var (
	keywordTokenRe = regexp.MustCompile(`[\x{4e00}-\x{9fff}]{2,}|[a-zA-Z]{3,}`)

	stopWords = toSet(
		// Chinese connectives, pronouns and generic nouns.
		"这个", "那个", "可以", "现在", "然后", "因为", "所以", "但是",
		"如果", "虽然", "或者", "而且", "比如", "就是", "什么", "怎么",
		"如何", "一个", "一些", "没有", "不是", "能够", "需要", "应该",
		"已经", "还是", "由于", "通过", "进行", "实现", "完成", "开始",
		"时候", "地方", "问题", "方法", "方式", "结果", "情况", "内容",
		"我们", "你们", "他们", "它们", "自己",
		// English, compared lower-cased.
		"the", "and", "that", "this", "with", "for", "are", "was", "were",
		"you", "your", "our", "its", "they", "them", "their", "but", "not",
		"have", "has", "had", "from", "which", "what", "when", "where", "how",
		"can", "will", "would", "should", "could", "also", "into", "than",
		"then", "there", "these", "those", "been", "being", "about", "just",
		"very", "some", "such", "more", "most", "other", "only", "all", "any",
		"each", "out", "use", "used", "using",
	)
)

// extractKeywords returns the most frequent meaningful tokens of text,
// most frequent first, ties kept in order of first appearance.
func extractKeywords(text string) []string {
	counts := make(map[string]int)
	var order []string

	for _, token := range keywordTokenRe.FindAllString(text, -1) {
		if _, seen := counts[token]; !seen {
			order = append(order, token)
		}
		counts[token]++
	}

	keywords := make([]string, 0, len(order))
	for _, token := range order {
		if _, stop := stopWords[strings.ToLower(token)]; stop {
			continue
		}
		if utf8.RuneCountInString(token) < 2 {
			continue
		}

		keywords = append(keywords, token)
	}

	slices.SortStableFunc(keywords, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})

	return keywords[:min(maxKeywords, len(keywords))]
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}
