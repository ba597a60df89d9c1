package summarizer

import (
	"context"

	"inkpad/internal/summary"
)

// Extractive picks the most representative sentences of the text itself.
// It never fails and needs no network.
type Extractive struct{}

func NewExtractive() *Extractive {
	return &Extractive{}
}

func (e *Extractive) Summarize(_ context.Context, input Input) (string, error) {
	maxLength := input.MaxLength
	if maxLength <= 0 {
		maxLength = summary.DefaultMaxLength
	}

	return summary.Generate(input.Text, maxLength), nil
}
