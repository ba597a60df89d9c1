package database

import (
	"context"
	"fmt"
	"strings"

	"inkpad/internal/domain"
)

func (d *Database) CreateFriendLink(ctx context.Context, link domain.FriendLink) (*domain.FriendLink, error) {
	link.Name = strings.TrimSpace(link.Name)
	link.URL = strings.TrimSpace(link.URL)
	if link.Name == "" || link.URL == "" {
		return nil, fmt.Errorf("%w: friend link name and URL are required", domain.ErrInvalidInput)
	}

	now := toUnix(d.now())
	query := `insert into friend_links (name, url, description, logo, sort_order, active, created_at)
	values (?, ?, ?, ?, ?, ?, ?)`

	res, err := d.db.ExecContext(ctx, query,
		link.Name, link.URL, link.Description, link.Logo, link.SortOrder, link.Active, now)
	if err != nil {
		return nil, fmt.Errorf("insert friend link: %w", mapError(err))
	}

	if link.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("read friend link id: %w", err)
	}
	link.CreatedAt = fromUnix(now)

	return &link, nil
}

// ListFriendLinks returns links by sort order; inactive ones only when
// includeInactive is set.
func (d *Database) ListFriendLinks(ctx context.Context, includeInactive bool) ([]domain.FriendLink, error) {
	query := `select id, name, url, description, logo, sort_order, active, created_at
	from friend_links`
	if !includeInactive {
		query += " where active = 1"
	}
	query += " order by sort_order, id"

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer d.closeRows(ctx, rows, "ListFriendLinks")

	var links []domain.FriendLink
	for rows.Next() {
		var (
			l         domain.FriendLink
			createdAt int64
		)
		if err = rows.Scan(&l.ID, &l.Name, &l.URL, &l.Description, &l.Logo,
			&l.SortOrder, &l.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		l.CreatedAt = fromUnix(createdAt)
		links = append(links, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return links, nil
}

func (d *Database) DeleteFriendLink(ctx context.Context, linkID int64) error {
	res, err := d.db.ExecContext(ctx, "delete from friend_links where id = ?", linkID)
	if err != nil {
		return fmt.Errorf("delete friend link: %w", err)
	}

	return requireAffected(res)
}
