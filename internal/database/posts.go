package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"inkpad/internal/domain"
)

const (
	DefaultPageSize = 10

	postSelect = `select p.id, p.title, p.content, p.summary, p.author_id, u.username,
	p.category_id, coalesce(c.name, ''), p.views, p.published, p.scheduled_at,
	p.cover_image, p.created_at, p.updated_at
	from posts as p
	join users as u on u.id = p.author_id
	left join categories as c on c.id = p.category_id`
)

// PostFilter narrows ListPosts. Zero values mean "no constraint".
type PostFilter struct {
	CategoryID    int64
	TagID         int64
	AuthorID      int64
	Query         string
	IncludeDrafts bool
}

func (f PostFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !f.IncludeDrafts {
		conds = append(conds, "p.published = 1")
	}
	if f.CategoryID > 0 {
		conds = append(conds, "p.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.TagID > 0 {
		conds = append(conds,
			"exists (select 1 from post_tags as pt where pt.post_id = p.id and pt.tag_id = ?)")
		args = append(args, f.TagID)
	}
	if f.AuthorID > 0 {
		conds = append(conds, "p.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		conds = append(conds, `(p.title like ? escape '\' or p.content like ? escape '\' or p.summary like ? escape '\')`)
		pattern := likePattern(q)
		args = append(args, pattern, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " where " + strings.Join(conds, " and "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var (
		p                    domain.Post
		categoryID           sql.NullInt64
		scheduledAt          sql.NullInt64
		createdAt, updatedAt int64
	)

	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Summary, &p.AuthorID, &p.AuthorName,
		&categoryID, &p.Category, &p.Views, &p.Published, &scheduledAt,
		&p.CoverImage, &createdAt, &updatedAt)
	if err != nil {
		return domain.Post{}, err
	}

	p.CategoryID = idPtr(categoryID)
	p.ScheduledAt = timePtr(scheduledAt)
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)

	return p, nil
}

func (d *Database) GetPost(ctx context.Context, postID int64) (*domain.Post, error) {
	p, err := scanPost(d.db.QueryRowContext(ctx, postSelect+" where p.id = ?", postID))
	if err != nil {
		return nil, fmt.Errorf("get post: %w", mapError(err))
	}

	posts := []domain.Post{p}
	if err = d.loadTags(ctx, posts); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

// ListPosts returns one page of posts matching filter, newest first.
func (d *Database) ListPosts(
	ctx context.Context,
	filter PostFilter,
	page int,
	pageSize int,
) (domain.Page[domain.Post], error) {
	page = max(page, 1)
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	where, args := filter.where()

	var total int64
	if err := d.db.QueryRowContext(ctx, "select count(*) from posts as p"+where, args...).
		Scan(&total); err != nil {
		return domain.Page[domain.Post]{}, fmt.Errorf("count posts: %w", err)
	}

	query := postSelect + where + " order by p.created_at desc, p.id desc limit ? offset ?"
	args = append(args, pageSize, (page-1)*pageSize)

	posts, err := d.queryPosts(ctx, "ListPosts", query, args...)
	if err != nil {
		return domain.Page[domain.Post]{}, err
	}

	return domain.Page[domain.Post]{
		Items:    posts,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// HotPosts returns the most viewed published posts.
func (d *Database) HotPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	query := postSelect + " where p.published = 1 order by p.views desc, p.created_at desc, p.id desc limit ?"

	return d.queryPosts(ctx, "HotPosts", query, limit)
}

func (d *Database) queryPosts(ctx context.Context, operation string, query string, args ...any) ([]domain.Post, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	posts, err := func() ([]domain.Post, error) {
		defer d.closeRows(ctx, rows, operation)

		var posts []domain.Post
		for rows.Next() {
			p, scanErr := scanPost(rows)
			if scanErr != nil {
				return nil, fmt.Errorf("failed to scan row: %w", scanErr)
			}

			posts = append(posts, p)
		}

		if iterErr := rows.Err(); iterErr != nil {
			return nil, fmt.Errorf("failed to iterate rows: %w", iterErr)
		}

		return posts, nil
	}()
	if err != nil {
		return nil, err
	}

	if err = d.loadTags(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// loadTags fills Tags for every post in place. Rows must already be closed:
// the pool holds a single connection.
func (d *Database) loadTags(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	index := make(map[int64]int, len(posts))
	placeholders := make([]string, 0, len(posts))
	args := make([]any, 0, len(posts))

	for i, p := range posts {
		index[p.ID] = i
		placeholders = append(placeholders, "?")
		args = append(args, p.ID)
	}

	query := `select pt.post_id, t.id, t.name, t.created_at
	from post_tags as pt
	join tags as t on t.id = pt.tag_id
	where pt.post_id in (` + strings.Join(placeholders, ", ") + `)
	order by t.name`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer d.closeRows(ctx, rows, "loadTags")

	for rows.Next() {
		var (
			postID    int64
			tag       domain.Tag
			createdAt int64
		)
		if err = rows.Scan(&postID, &tag.ID, &tag.Name, &createdAt); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		tag.CreatedAt = fromUnix(createdAt)
		i := index[postID]
		posts[i].Tags = append(posts[i].Tags, tag)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate rows: %w", err)
	}

	return nil
}

// CreatePost stores a post and links its tags in one transaction.
func (d *Database) CreatePost(ctx context.Context, authorID int64, in domain.PostInput) (int64, error) {
	var postID int64

	err := d.withTx(ctx, "CreatePost", func(tx *sql.Tx) error {
		now := toUnix(d.now())

		res, err := tx.ExecContext(ctx, `insert into posts
		(title, content, summary, author_id, category_id, published, scheduled_at, cover_image, created_at, updated_at)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.Title, in.Content, in.Summary, authorID, nullID(in.CategoryID),
			in.Published, nullUnix(in.ScheduledAt), in.CoverImage, now, now)
		if err != nil {
			return fmt.Errorf("insert post: %w", mapError(err))
		}

		if postID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("read post id: %w", err)
		}

		return linkTags(ctx, tx, postID, in.Tags, now)
	})
	if err != nil {
		return 0, err
	}

	return postID, nil
}

// UpdatePost replaces a post's editable fields and its tag set.
func (d *Database) UpdatePost(ctx context.Context, postID int64, in domain.PostInput) error {
	return d.withTx(ctx, "UpdatePost", func(tx *sql.Tx) error {
		now := toUnix(d.now())

		res, err := tx.ExecContext(ctx, `update posts
		set title = ?, content = ?, summary = ?, category_id = ?, published = ?,
		scheduled_at = ?, cover_image = ?, updated_at = ?
		where id = ?`,
			in.Title, in.Content, in.Summary, nullID(in.CategoryID), in.Published,
			nullUnix(in.ScheduledAt), in.CoverImage, now, postID)
		if err != nil {
			return fmt.Errorf("update post: %w", mapError(err))
		}
		if err = requireAffected(res); err != nil {
			return err
		}

		if _, err = tx.ExecContext(ctx, "delete from post_tags where post_id = ?", postID); err != nil {
			return fmt.Errorf("unlink tags: %w", err)
		}

		return linkTags(ctx, tx, postID, in.Tags, now)
	})
}

func linkTags(ctx context.Context, tx *sql.Tx, postID int64, names []string, now int64) error {
	tagIDs, err := ensureTags(ctx, tx, names, now)
	if err != nil {
		return err
	}

	for _, tagID := range tagIDs {
		if _, err = tx.ExecContext(ctx,
			"insert into post_tags (post_id, tag_id) values (?, ?)", postID, tagID); err != nil {
			return fmt.Errorf("link tag: %w", err)
		}
	}

	return nil
}

func (d *Database) DeletePost(ctx context.Context, postID int64) error {
	res, err := d.db.ExecContext(ctx, "delete from posts where id = ?", postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	return requireAffected(res)
}

func (d *Database) IncrementViews(ctx context.Context, postID int64) error {
	res, err := d.db.ExecContext(ctx, "update posts set views = views + 1 where id = ?", postID)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	return requireAffected(res)
}

// AuthorStats returns post, published and view totals for one author.
func (d *Database) AuthorStats(ctx context.Context, authorID int64) (postCount, publishedCount, views int64, err error) {
	query := `select count(*), coalesce(sum(published), 0), coalesce(sum(views), 0)
	from posts where author_id = ?`

	if err = d.db.QueryRowContext(ctx, query, authorID).Scan(&postCount, &publishedCount, &views); err != nil {
		return 0, 0, 0, fmt.Errorf("author stats: %w", err)
	}

	return postCount, publishedCount, views, nil
}

// PublishDue marks every unpublished post whose scheduled time has passed as
// published and returns their ids.
func (d *Database) PublishDue(ctx context.Context, now time.Time) ([]int64, error) {
	query := `update posts
	set published = 1, updated_at = ?
	where published = 0 and scheduled_at is not null and scheduled_at <= ?
	returning id`

	rows, err := d.db.QueryContext(ctx, query, toUnix(now), toUnix(now))
	if err != nil {
		return nil, fmt.Errorf("publish due posts: %w", err)
	}
	defer d.closeRows(ctx, rows, "PublishDue")

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return ids, nil
}

// ScheduledStats counts scheduled drafts and those due within window of now.
func (d *Database) ScheduledStats(
	ctx context.Context,
	now time.Time,
	window time.Duration,
) (domain.ScheduledStats, error) {
	query := `select
	count(*),
	coalesce(sum(case when scheduled_at <= ? then 1 else 0 end), 0)
	from posts
	where published = 0 and scheduled_at is not null`

	var stats domain.ScheduledStats
	if err := d.db.QueryRowContext(ctx, query, toUnix(now.Add(window))).
		Scan(&stats.Total, &stats.PublishingSoon); err != nil {
		return domain.ScheduledStats{}, fmt.Errorf("scheduled stats: %w", err)
	}

	return stats, nil
}
