package blog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"inkpad/internal/domain"
)

func (s *Service) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	return s.db.CreateCategory(ctx, name, description)
}

// ListCategories returns every category with its published post count.
func (s *Service) ListCategories(ctx context.Context) ([]domain.CategoryStat, error) {
	return s.db.ListCategories(ctx)
}

// DeleteCategory removes a category; its posts become uncategorised.
func (s *Service) DeleteCategory(ctx context.Context, categoryID int64) error {
	return s.db.DeleteCategory(ctx, categoryID)
}

func (s *Service) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	return s.db.CreateTag(ctx, name)
}

func (s *Service) ListTags(ctx context.Context) ([]domain.TagStat, error) {
	return s.db.ListTags(ctx)
}

func (s *Service) DeleteTag(ctx context.Context, tagID int64) error {
	return s.db.DeleteTag(ctx, tagID)
}

// ListFriendLinks returns the active links in display order.
func (s *Service) ListFriendLinks(ctx context.Context) ([]domain.FriendLink, error) {
	return s.db.ListFriendLinks(ctx, false)
}

func (s *Service) CreateFriendLink(ctx context.Context, link domain.FriendLink) (*domain.FriendLink, error) {
	u, err := url.Parse(strings.TrimSpace(link.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: friend link URL must be an absolute http(s) URL", domain.ErrInvalidInput)
	}

	return s.db.CreateFriendLink(ctx, link)
}

func (s *Service) DeleteFriendLink(ctx context.Context, linkID int64) error {
	return s.db.DeleteFriendLink(ctx, linkID)
}

// AddBookmark saves a post the user can see to their bookmarks.
func (s *Service) AddBookmark(ctx context.Context, userID, postID int64) error {
	if _, err := s.visiblePost(ctx, userID, postID); err != nil {
		return err
	}

	if err := s.db.AddBookmark(ctx, userID, postID); err != nil {
		return fmt.Errorf("add bookmark: %w", err)
	}

	return nil
}

func (s *Service) RemoveBookmark(ctx context.Context, userID, postID int64) error {
	if err := s.db.RemoveBookmark(ctx, userID, postID); err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}

	return nil
}

// ToggleBookmark adds or removes a bookmark and reports whether the post is
// bookmarked afterwards.
func (s *Service) ToggleBookmark(ctx context.Context, userID, postID int64) (bool, error) {
	bookmarked, err := s.db.IsBookmarked(ctx, userID, postID)
	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}

	if bookmarked {
		return false, s.RemoveBookmark(ctx, userID, postID)
	}

	return true, s.AddBookmark(ctx, userID, postID)
}

func (s *Service) ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	return s.db.ListBookmarks(ctx, userID)
}
