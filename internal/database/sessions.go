package database

import (
	"context"
	"fmt"
	"time"

	"inkpad/internal/domain"
)

func (d *Database) CreateSession(ctx context.Context, session domain.Session) error {
	query := "insert into sessions (token, user_id, expires_at) values (?, ?, ?)"

	_, err := d.db.ExecContext(ctx, query, session.Token, session.UserID, toUnix(session.ExpiresAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", mapError(err))
	}

	return nil
}

// ResolveSession returns the user owning a non-expired session token.
func (d *Database) ResolveSession(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	query := `select u.id, u.username, u.email, u.password_hash, u.created_at
	from sessions as s
	join users as u on u.id = s.user_id
	where s.token = ? and s.expires_at > ?`

	var (
		u         domain.User
		createdAt int64
	)

	err := d.db.QueryRowContext(ctx, query, token, toUnix(now)).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", mapError(err))
	}

	u.CreatedAt = fromUnix(createdAt)

	return &u, nil
}

func (d *Database) DeleteSession(ctx context.Context, token string) error {
	if _, err := d.db.ExecContext(ctx, "delete from sessions where token = ?", token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// PurgeSessions removes expired sessions and returns how many were removed.
func (d *Database) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, "delete from sessions where expires_at <= ?", toUnix(now))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}

	return n, nil
}
