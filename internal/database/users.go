package database

import (
	"context"
	"fmt"
	"strings"

	"inkpad/internal/domain"
)

const userColumns = "id, username, email, password_hash, created_at"

func (d *Database) CreateUser(
	ctx context.Context,
	username string,
	email string,
	passwordHash string,
) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || passwordHash == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}

	now := d.now()
	query := `insert into users (username, email, password_hash, created_at)
	values (?, ?, ?, ?)`

	res, err := d.db.ExecContext(ctx, query, username, email, passwordHash, toUnix(now))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read user id: %w", err)
	}

	return &domain.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    fromUnix(toUnix(now)),
	}, nil
}

func (d *Database) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	query := "select " + userColumns + " from users where id = ?"

	return d.getUser(ctx, query, userID)
}

func (d *Database) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := "select " + userColumns + " from users where username = ?"

	return d.getUser(ctx, query, strings.TrimSpace(username))
}

func (d *Database) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)

	err := d.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", mapError(err))
	}

	u.CreatedAt = fromUnix(createdAt)

	return &u, nil
}

func (d *Database) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if passwordHash == "" {
		return fmt.Errorf("%w: password hash is empty", domain.ErrInvalidInput)
	}

	res, err := d.db.ExecContext(ctx,
		"update users set password_hash = ? where id = ?",
		passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return requireAffected(res)
}
