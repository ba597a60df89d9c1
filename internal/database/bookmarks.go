package database

import (
	"context"
	"fmt"

	"inkpad/internal/domain"
)

func (d *Database) AddBookmark(ctx context.Context, userID int64, postID int64) error {
	query := "insert into bookmarks (user_id, post_id, created_at) values (?, ?, ?)"

	if _, err := d.db.ExecContext(ctx, query, userID, postID, toUnix(d.now())); err != nil {
		return fmt.Errorf("insert bookmark: %w", mapError(err))
	}

	return nil
}

func (d *Database) RemoveBookmark(ctx context.Context, userID int64, postID int64) error {
	res, err := d.db.ExecContext(ctx,
		"delete from bookmarks where user_id = ? and post_id = ?", userID, postID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	return requireAffected(res)
}

func (d *Database) IsBookmarked(ctx context.Context, userID int64, postID int64) (bool, error) {
	var exists bool

	err := d.db.QueryRowContext(ctx,
		"select exists (select 1 from bookmarks where user_id = ? and post_id = ?)",
		userID, postID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}

	return exists, nil
}

// ListBookmarks returns a user's bookmarks, most recent first.
func (d *Database) ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	query := `select b.user_id, b.post_id, p.title, b.created_at
	from bookmarks as b
	join posts as p on p.id = b.post_id
	where b.user_id = ?
	order by b.created_at desc, b.post_id desc`

	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer d.closeRows(ctx, rows, "ListBookmarks")

	var bookmarks []domain.Bookmark
	for rows.Next() {
		var (
			b         domain.Bookmark
			createdAt int64
		)
		if err = rows.Scan(&b.UserID, &b.PostID, &b.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		b.CreatedAt = fromUnix(createdAt)
		bookmarks = append(bookmarks, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return bookmarks, nil
}
