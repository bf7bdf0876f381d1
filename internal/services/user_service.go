package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"fintrack/internal/models"
)

// ErrDuplicateEmail is returned when creating a user whose email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrUserNotFound is returned when no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")

// UserStore defines the credential-store contract consumed by AuthService.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	// FindByResetTokenHash matches only users whose reset token is still
	// unexpired at the time of the call.
	FindByResetTokenHash(ctx context.Context, hash string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error
	// CompleteReset sets a new password hash and clears both reset fields
	// in a single write, making the reset secret single-use.
	CompleteReset(ctx context.Context, id, passwordHash string) error
}

// UserService provides persistence for user records.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, name, email, password_hash, reset_token_hash, reset_token_expiry, created_at"

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.ResetTokenHash, &user.ResetTokenExpiry, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// FindByID retrieves a single user by their ID.
func (s *UserService) FindByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// FindByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// FindByResetTokenHash retrieves the user holding the given reset-token hash,
// provided the token has not yet expired.
func (s *UserService) FindByResetTokenHash(ctx context.Context, hash string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE reset_token_hash = ? AND reset_token_expiry > ?",
		hash, time.Now().UTC())
	return scanUser(row)
}

// Create inserts a new user record, enforcing email uniqueness.
func (s *UserService) Create(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// UpdatePassword replaces a user's password hash.
func (s *UserService) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return err
	}
	return checkUpdated(res)
}

// SetResetToken stores the hash and expiry of an outstanding reset secret.
func (s *UserService) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET reset_token_hash = ?, reset_token_expiry = ? WHERE id = ?",
		tokenHash, expiry.UTC(), id)
	if err != nil {
		return err
	}
	return checkUpdated(res)
}

// CompleteReset sets the new password hash and clears the reset fields.
func (s *UserService) CompleteReset(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, reset_token_hash = NULL, reset_token_expiry = NULL WHERE id = ?",
		passwordHash, id)
	if err != nil {
		return err
	}
	return checkUpdated(res)
}

// ClearExpiredResetTokens removes reset fields whose expiry has passed,
// returning the number of records touched. Used by the background reaper.
func (s *UserService) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET reset_token_hash = NULL, reset_token_expiry = NULL WHERE reset_token_expiry IS NOT NULL AND reset_token_expiry <= ?",
		time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func checkUpdated(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
