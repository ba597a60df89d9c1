package database

import (
	"context"
	"fmt"
	"strings"

	"inkpad/internal/domain"
)

func (d *Database) CreateCategory(
	ctx context.Context,
	name string,
	description string,
) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is empty", domain.ErrInvalidInput)
	}

	now := toUnix(d.now())
	query := "insert into categories (name, description, created_at) values (?, ?, ?)"

	res, err := d.db.ExecContext(ctx, query, name, strings.TrimSpace(description), now)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", mapError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read category id: %w", err)
	}

	return &domain.Category{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   fromUnix(now),
	}, nil
}

func (d *Database) GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error) {
	query := "select id, name, description, created_at from categories where id = ?"

	var (
		c         domain.Category
		createdAt int64
	)

	err := d.db.QueryRowContext(ctx, query, categoryID).
		Scan(&c.ID, &c.Name, &c.Description, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", mapError(err))
	}

	c.CreatedAt = fromUnix(createdAt)

	return &c, nil
}

// ListCategories returns every category with the number of published posts
// it holds, ordered by name.
func (d *Database) ListCategories(ctx context.Context) ([]domain.CategoryStat, error) {
	query := `select c.id, c.name, c.description, c.created_at, count(p.id)
	from categories as c
	left join posts as p on p.category_id = c.id and p.published = 1
	group by c.id
	order by c.name`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer d.closeRows(ctx, rows, "ListCategories")

	var stats []domain.CategoryStat
	for rows.Next() {
		var (
			s         domain.CategoryStat
			createdAt int64
		)
		if err = rows.Scan(&s.ID, &s.Name, &s.Description, &createdAt, &s.PostCount); err != nil {
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

// DeleteCategory removes a category; its posts become uncategorised.
func (d *Database) DeleteCategory(ctx context.Context, categoryID int64) error {
	res, err := d.db.ExecContext(ctx, "delete from categories where id = ?", categoryID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	return requireAffected(res)
}
