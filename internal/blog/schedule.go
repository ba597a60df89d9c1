package blog

import (
	"context"
	"fmt"

	"inkpad/internal/domain"
)

// PublishDue publishes every draft whose scheduled time has passed and
// announces each of them. It returns the ids that were published.
func (s *Service) PublishDue(ctx context.Context) ([]int64, error) {
	ids, err := s.db.PublishDue(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("publish due posts: %w", err)
	}

	if len(ids) == 0 {
		return ids, nil
	}

	s.log.InfoContext(ctx, "Published scheduled posts",
		"count", len(ids),
		"postIDs", ids)

	for _, id := range ids {
		post, getErr := s.db.GetPost(ctx, id)
		if getErr != nil {
			s.log.ErrorContext(ctx, "Failed to load published post",
				"error", getErr,
				"postID", id)

			continue
		}

		s.announce(ctx, post)
	}

	return ids, nil
}

// ScheduledStats counts scheduled drafts and those due within a day.
func (s *Service) ScheduledStats(ctx context.Context) (domain.ScheduledStats, error) {
	return s.db.ScheduledStats(ctx, s.now(), publishingSoonSpan)
}
