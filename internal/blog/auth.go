package blog

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"inkpad/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameRunes = 3
	maxUsernameRunes = 20
	minPasswordRunes = 6
)

// LoginBlockedError is returned while a client address is locked out.
type LoginBlockedError struct {
	RetryAfter time.Duration
}

func (e *LoginBlockedError) Error() string {
	return fmt.Sprintf("%s: retry in %s", domain.ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *LoginBlockedError) Unwrap() error {
	return domain.ErrRateLimited
}

// Register creates an account. Username and email must be unique.
func (s *Service) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if n := utf8.RuneCountInString(username); n < minUsernameRunes || n > maxUsernameRunes {
		return nil, fmt.Errorf("%w: username must be %d-%d characters", domain.ErrInvalidInput,
			minUsernameRunes, maxUsernameRunes)
	}

	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: email address is invalid", domain.ErrInvalidInput)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.db.CreateUser(ctx, username, email, hash)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "Registered user",
		"userID", user.ID,
		"username", user.Username)

	return user, nil
}

// Login checks credentials for a client address and opens a session.
func (s *Service) Login(ctx context.Context, ip, username, password string) (domain.Session, *domain.User, error) {
	if s.limiter != nil {
		if st := s.limiter.Check(ip); !st.Allowed {
			return domain.Session{}, nil, &LoginBlockedError{RetryAfter: st.RetryAfter}
		}
	}

	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, nil, fmt.Errorf("get user: %w", err)
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.Session{}, nil, s.loginFailed(ctx, ip, username)
	}

	if s.limiter != nil {
		s.limiter.Succeed(ip)
	}

	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().UTC().Add(s.opts.SessionTTL),
	}

	if err = s.db.CreateSession(ctx, session); err != nil {
		return domain.Session{}, nil, fmt.Errorf("create session: %w", err)
	}

	s.log.InfoContext(ctx, "User logged in",
		"ip", ip,
		"userID", user.ID)

	return session, user, nil
}

func (s *Service) loginFailed(ctx context.Context, ip, username string) error {
	s.log.WarnContext(ctx, "Failed login",
		"ip", ip,
		"username", username)

	if s.limiter == nil {
		return domain.ErrUnauthorized
	}

	if st := s.limiter.Fail(ip); !st.Allowed {
		return &LoginBlockedError{RetryAfter: st.RetryAfter}
	}

	return domain.ErrUnauthorized
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.db.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.db.ResolveSession(ctx, token, s.now())
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	return user, nil
}

// SetPassword replaces the password of username.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err = s.db.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.InfoContext(ctx, "Password changed",
		"userID", user.ID)

	return nil
}

// PurgeSessions removes expired sessions.
func (s *Service) PurgeSessions(ctx context.Context) (int64, error) {
	return s.db.PurgeSessions(ctx, s.now())
}

func hashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordRunes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}
