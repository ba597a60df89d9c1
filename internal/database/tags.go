package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"inkpad/internal/domain"
)

func (d *Database) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is empty", domain.ErrInvalidInput)
	}

	now := toUnix(d.now())

	res, err := d.db.ExecContext(ctx, "insert into tags (name, created_at) values (?, ?)", name, now)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", mapError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read tag id: %w", err)
	}

	return &domain.Tag{ID: id, Name: name, CreatedAt: fromUnix(now)}, nil
}

func (d *Database) GetTag(ctx context.Context, tagID int64) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt int64
	)

	err := d.db.QueryRowContext(ctx, "select id, name, created_at from tags where id = ?", tagID).
		Scan(&t.ID, &t.Name, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", mapError(err))
	}

	t.CreatedAt = fromUnix(createdAt)

	return &t, nil
}

// ListTags returns every tag with its published post count, ordered by name.
func (d *Database) ListTags(ctx context.Context) ([]domain.TagStat, error) {
	query := `select t.id, t.name, t.created_at, count(p.id)
	from tags as t
	left join post_tags as pt on pt.tag_id = t.id
	left join posts as p on p.id = pt.post_id and p.published = 1
	group by t.id
	order by t.name`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer d.closeRows(ctx, rows, "ListTags")

	var stats []domain.TagStat
	for rows.Next() {
		var (
			s         domain.TagStat
			createdAt int64
		)
		if err = rows.Scan(&s.ID, &s.Name, &createdAt, &s.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		s.CreatedAt = fromUnix(createdAt)
		stats = append(stats, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return stats, nil
}

func (d *Database) DeleteTag(ctx context.Context, tagID int64) error {
	res, err := d.db.ExecContext(ctx, "delete from tags where id = ?", tagID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	return requireAffected(res)
}

// ensureTags returns the ids of the named tags, creating missing ones.
// Names are trimmed and deduplicated; blanks are skipped.
func ensureTags(ctx context.Context, tx *sql.Tx, names []string, now int64) ([]int64, error) {
	seen := make(map[string]struct{}, len(names))
	ids := make([]int64, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		if _, err := tx.ExecContext(ctx,
			"insert into tags (name, created_at) values (?, ?) on conflict (name) do nothing",
			name, now); err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}

		var id int64
		if err := tx.QueryRowContext(ctx, "select id from tags where name = ?", name).Scan(&id); err != nil {
			return nil, fmt.Errorf("select tag %q: %w", name, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}
