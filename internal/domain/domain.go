package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type TagStat struct {
	Tag
	PostCount int64 `json:"postCount"`
}

type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Summary     string     `json:"summary"`
	AuthorID    int64      `json:"authorId"`
	AuthorName  string     `json:"authorName"`
	CategoryID  *int64     `json:"categoryId"`
	Category    string     `json:"category"`
	Tags        []Tag      `json:"tags"`
	Views       int64      `json:"views"`
	Published   bool       `json:"published"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	CoverImage  string     `json:"coverImage"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PostInput is what an author submits when creating or updating a post.
// Tags are names; unknown ones are created on save.
type PostInput struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Summary     string     `json:"summary"`
	CategoryID  *int64     `json:"categoryId"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"published"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	CoverImage  string     `json:"coverImage"`
	// SourceURL is where imported content came from. It guides summarizing
	// and is not stored.
	SourceURL   string     `json:"sourceUrl"`
}

type FriendLink struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Logo        string    `json:"logo"`
	SortOrder   int64     `json:"sortOrder"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Bookmark struct {
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryStat struct {
	Category
	PostCount int64 `json:"postCount"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (p Page[T]) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Total
}

// ScheduledStats counts unpublished posts that carry a publish time.
type ScheduledStats struct {
	Total          int64 `json:"total"`
	PublishingSoon int64 `json:"publishingSoon"`
}

// Dashboard aggregates an author's own posts and totals.
type Dashboard struct {
	Posts          []Post         `json:"posts"`
	PostCount      int64          `json:"postCount"`
	PublishedCount int64          `json:"publishedCount"`
	TotalViews     int64          `json:"totalViews"`
	Scheduled      ScheduledStats `json:"scheduled"`
}
