package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Chain tries each summarizer in order and returns the first non-empty
// summary. Failures are logged and skipped; the chain itself never errors
// unless ctx is done.
type Chain struct {
	steps []Summarizer
	log   *slog.Logger
}

func NewChain(log *slog.Logger, steps ...Summarizer) *Chain {
	var nonNil []Summarizer
	for _, s := range steps {
		if s != nil {
			nonNil = append(nonNil, s)
		}
	}

	return &Chain{steps: nonNil, log: log}
}

func (c *Chain) Summarize(ctx context.Context, input Input) (string, error) {
	for i, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("summarize: %w", err)
		}

		out, err := step.Summarize(ctx, input)
		if err != nil {
			c.log.WarnContext(ctx, "Failed to summarize so next summarizer will be used",
				"error", err,
				"step", i,
				"summarizer", fmt.Sprintf("%T", step),
				"textLen", len(input.Text))

			continue
		}

		if out = strings.TrimSpace(out); out != "" {
			return out, nil
		}
	}

	return "", nil
}
