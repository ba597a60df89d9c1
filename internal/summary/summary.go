// Package summary builds short extractive summaries of Markdown articles.
//
// Generate is a pure function of its arguments: it keeps no state between
// calls and is safe for concurrent use. An empty result means no summary
// could be produced and the caller is expected to fall back to something
// simpler, such as a prefix of the article body.
package summary

import (
	"strings"
)

// DefaultMaxLength is the summary length cap used by the authoring workflow.
const DefaultMaxLength = 300

// Generate selects up to three representative sentences of content and
// returns them as plain text of at most maxLength runes, plus an optional
// trailing terminator (at most three runes).
func Generate(content string, maxLength int) string {
	if maxLength <= 0 || strings.TrimSpace(content) == "" {
		return ""
	}

	cleaned := clean(content)

	sentences := splitSentences(cleaned)
	if len(sentences) == 0 {
		return ""
	}

	keywords := extractKeywords(cleaned)

	selected := selectSentences(scoreSentences(sentences, keywords), maxLength)

	texts := make([]string, 0, len(selected))
	for _, c := range selected {
		texts = append(texts, c.text)
	}

	if len(texts) == 0 {
		// Budget too small for any sentence; finalize cuts the first one.
		texts = append(texts, sentences[0])
	}

	return finalize(strings.Join(texts, " "), maxLength)
}
