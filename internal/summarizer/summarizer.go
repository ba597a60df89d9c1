package summarizer

import (
	"context"
	"unicode/utf8"

	"inkpad/internal/markdown"
)

const fallbackEllipsis = "..."

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the original markdown to summarise.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
	// MaxLength caps the summary in runes.
	MaxLength int
}

// Summarizer produces a single summary for a given input text. An empty
// summary with a nil error means the text had nothing worth summarising.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

// Fallback is the summary of last resort: the leading plain text of the
// markdown, cut to maxLength runes with an ellipsis.
func Fallback(text string, maxLength int) string {
	plain := markdown.Strip(text)
	if maxLength <= 0 || plain == "" {
		return ""
	}

	if utf8.RuneCountInString(plain) <= maxLength {
		return plain
	}

	budget := maxLength - utf8.RuneCountInString(fallbackEllipsis)
	if budget <= 0 {
		return string([]rune(plain)[:maxLength])
	}

	return markdown.Truncate(plain, budget, fallbackEllipsis)
}
