package blog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"inkpad/internal/database"
	"inkpad/internal/domain"
	"inkpad/internal/summarizer"
)

const (
	maxTitleRunes       = 200
	terminatorAllowance = 3
)

// CreatePost saves a new post for authorID. A post scheduled in the future
// is kept as a draft until PublishDue picks it up.
func (s *Service) CreatePost(ctx context.Context, authorID int64, in domain.PostInput) (*domain.Post, error) {
	in, err := s.preparePost(ctx, in)
	if err != nil {
		return nil, err
	}

	id, err := s.db.CreatePost(ctx, authorID, in)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	post, err := s.db.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	s.log.InfoContext(ctx, "Created post",
		"authorID", authorID,
		"postID", post.ID,
		"published", post.Published)

	s.announce(ctx, post)

	return post, nil
}

// UpdatePost replaces a post owned by userID.
func (s *Service) UpdatePost(
	ctx context.Context,
	userID int64,
	postID int64,
	in domain.PostInput,
) (*domain.Post, error) {
	existing, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if in, err = s.preparePost(ctx, in); err != nil {
		return nil, err
	}

	if err = s.db.UpdatePost(ctx, postID, in); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	post, err := s.db.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if !existing.Published {
		s.announce(ctx, post)
	}

	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, userID int64, postID int64) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}

	if err := s.db.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.log.InfoContext(ctx, "Deleted post",
		"postID", postID,
		"userID", userID)

	return nil
}

// ViewPost returns a post for display and counts the view. Drafts are only
// visible to their author and their views are not counted.
func (s *Service) ViewPost(ctx context.Context, viewerID int64, postID int64) (*domain.Post, error) {
	post, err := s.visiblePost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}

	if !post.Published {
		return post, nil
	}

	if err = s.db.IncrementViews(ctx, postID); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	post.Views++

	return post, nil
}

// ListPosts is the public index: published posts, newest first.
func (s *Service) ListPosts(ctx context.Context, page int) (domain.Page[domain.Post], error) {
	return s.db.ListPosts(ctx, database.PostFilter{}, page, s.opts.PageSize)
}

func (s *Service) PostsByCategory(ctx context.Context, categoryID int64, page int) (domain.Page[domain.Post], error) {
	if _, err := s.db.GetCategory(ctx, categoryID); err != nil {
		return domain.Page[domain.Post]{}, fmt.Errorf("get category: %w", err)
	}

	return s.db.ListPosts(ctx, database.PostFilter{CategoryID: categoryID}, page, s.opts.PageSize)
}

func (s *Service) PostsByTag(ctx context.Context, tagID int64, page int) (domain.Page[domain.Post], error) {
	if _, err := s.db.GetTag(ctx, tagID); err != nil {
		return domain.Page[domain.Post]{}, fmt.Errorf("get tag: %w", err)
	}

	return s.db.ListPosts(ctx, database.PostFilter{TagID: tagID}, page, s.opts.PageSize)
}

// Search matches query against title, content and summary of published
// posts. A blank query matches nothing.
func (s *Service) Search(ctx context.Context, query string, page int) (domain.Page[domain.Post], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Page[domain.Post]{Items: []domain.Post{}, Page: max(page, 1), PageSize: s.opts.PageSize}, nil
	}

	return s.db.ListPosts(ctx, database.PostFilter{Query: query}, page, s.opts.PageSize)
}

func (s *Service) HotPosts(ctx context.Context) ([]domain.Post, error) {
	return s.db.HotPosts(ctx, hotPostsLimit)
}

// Dashboard lists one page of the author's posts, drafts included, with
// totals.
func (s *Service) Dashboard(ctx context.Context, userID int64, page int) (domain.Dashboard, error) {
	posts, err := s.db.ListPosts(ctx, database.PostFilter{AuthorID: userID, IncludeDrafts: true}, page, s.opts.PageSize)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("list posts: %w", err)
	}

	postCount, publishedCount, views, err := s.db.AuthorStats(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, err
	}

	scheduled, err := s.ScheduledStats(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}

	return domain.Dashboard{
		Posts:          posts.Items,
		PostCount:      postCount,
		PublishedCount: publishedCount,
		TotalViews:     views,
		Scheduled:      scheduled,
	}, nil
}

// PreviewSummary returns the summary a post with content would get.
func (s *Service) PreviewSummary(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}

	return s.deriveSummary(ctx, summarizer.Input{Text: content}), nil
}

func (s *Service) preparePost(ctx context.Context, in domain.PostInput) (domain.PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)
	in.CoverImage = strings.TrimSpace(in.CoverImage)

	switch {
	case in.Title == "":
		return in, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case utf8.RuneCountInString(in.Title) > maxTitleRunes:
		return in, fmt.Errorf("%w: title is longer than %d characters", domain.ErrInvalidInput, maxTitleRunes)
	case strings.TrimSpace(in.Content) == "":
		return in, fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}

	if in.ScheduledAt != nil {
		at := in.ScheduledAt.UTC()
		in.ScheduledAt = &at

		if at.After(s.now()) {
			in.Published = false
		}
	}

	if in.Summary == "" {
		in.Summary = s.deriveSummary(ctx, summarizer.Input{Text: in.Content, SourceURL: in.SourceURL})
	} else if runes := []rune(in.Summary); len(runes) > s.opts.SummaryMaxLength {
		in.Summary = strings.TrimSpace(string(runes[:s.opts.SummaryMaxLength]))
	}

	return in, nil
}

// deriveSummary runs the configured summarizer and falls back to the
// leading plain text of the input. Summaries may exceed the cap by a
// terminator of up to terminatorAllowance runes.
func (s *Service) deriveSummary(ctx context.Context, input summarizer.Input) string {
	maxLength := s.opts.SummaryMaxLength
	input.MaxLength = maxLength

	out, err := s.summarizer.Summarize(ctx, input)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to summarize post so fallback will be used",
			"error", err,
			"contentLen", len(input.Text),
			"sourceURL", input.SourceURL)

		out = ""
	}

	if out = strings.TrimSpace(out); out == "" {
		return summarizer.Fallback(input.Text, maxLength)
	}

	if utf8.RuneCountInString(out) > maxLength+terminatorAllowance {
		return summarizer.Fallback(out, maxLength)
	}

	return out
}

func (s *Service) ownedPost(ctx context.Context, userID int64, postID int64) (*domain.Post, error) {
	post, err := s.db.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if post.AuthorID != userID {
		return nil, domain.ErrForbidden
	}

	return post, nil
}

func (s *Service) visiblePost(ctx context.Context, viewerID int64, postID int64) (*domain.Post, error) {
	post, err := s.db.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if !post.Published && post.AuthorID != viewerID {
		return nil, fmt.Errorf("get post: %w", domain.ErrNotFound)
	}

	return post, nil
}
