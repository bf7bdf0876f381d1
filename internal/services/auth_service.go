package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"fintrack/internal/apperror"
	"fintrack/internal/auth"
	"fintrack/internal/mail"
	"fintrack/internal/models"
)

// ResetTokenTTL is how long a password-reset secret stays redeemable.
const ResetTokenTTL = 10 * time.Minute

// AuthServiceProvider defines the interface for authentication services.
type AuthServiceProvider interface {
	Register(ctx context.Context, name, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, secret, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	GetUser(ctx context.Context, userID string) (models.UserSummary, error)
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// AuthService orchestrates registration, login and the password-reset
// lifecycle over the credential store, token issuer and mail sender.
// It holds no per-request state; every operation touches at most one
// user record.
type AuthService struct {
	users         UserStore
	issuer        *auth.TokenIssuer
	hasher        *PasswordHasher
	mailer        mail.Sender
	resetLinkBase string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, issuer *auth.TokenIssuer, hasher *PasswordHasher, mailer mail.Sender, resetLinkBase string) *AuthService {
	return &AuthService{
		users:         users,
		issuer:        issuer,
		hasher:        hasher,
		mailer:        mailer,
		resetLinkBase: strings.TrimSuffix(resetLinkBase, "/"),
	}
}

// normalizeEmail lowercases and trims the login key so lookups and the
// uniqueness constraint agree regardless of how the client cased the address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account and issues a bearer token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return AuthResult{}, apperror.Validation("name is required")
	case email == "" || !strings.Contains(email, "@"):
		return AuthResult{}, apperror.Validation("a valid email is required")
	case password == "":
		return AuthResult{}, apperror.Validation("password is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthResult{}, apperror.Conflict("user already exists")
	} else if !errors.Is(err, ErrUserNotFound) {
		return AuthResult{}, apperror.StoreUnavailable(err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return AuthResult{}, apperror.Internal(err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return AuthResult{}, apperror.Conflict("user already exists")
		}
		return AuthResult{}, apperror.StoreUnavailable(err)
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return AuthResult{}, apperror.Internal(err)
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	return AuthResult{Token: token, User: user.Summary()}, nil
}

// Login verifies credentials and mints a fresh 24h token. Tokens are not
// tracked, so every login opens a new validity window.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Login reports an unknown account as a 400, matching the other
			// credential failures on this endpoint.
			return AuthResult{}, apperror.New(http.StatusBadRequest, apperror.CodeNotFound, "user does not exist")
		}
		return AuthResult{}, apperror.StoreUnavailable(err)
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, password)
	if err != nil {
		return AuthResult{}, apperror.Internal(err)
	}
	if !ok {
		return AuthResult{}, apperror.WrongPassword("wrong password")
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return AuthResult{}, apperror.Internal(err)
	}
	return AuthResult{Token: token, User: user.Summary()}, nil
}

// RequestPasswordReset generates a one-time reset secret, stores its hash and
// a 10-minute expiry on the user record, then emails a link embedding the
// plaintext secret. The record is written before the mail attempt, so a mail
// failure leaves an outstanding (harmless) token rather than a half-written
// state needing rollback.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.NotFound("user does not exist")
		}
		return apperror.StoreUnavailable(err)
	}

	secret, err := newResetSecret()
	if err != nil {
		return apperror.Internal(err)
	}

	expiry := time.Now().Add(ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hashResetSecret(secret), expiry); err != nil {
		return apperror.StoreUnavailable(err)
	}

	resetURL := s.resetLinkBase + "/" + secret
	if err := s.mailer.SendPasswordReset(user.Email, resetURL); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to send password reset email")
		return apperror.NotificationFailed(err)
	}
	return nil
}

// CompletePasswordReset redeems a reset secret for a new password. The reset
// fields are cleared in the same write that sets the new hash, so a second
// attempt with the same secret finds no match.
func (s *AuthService) CompletePasswordReset(ctx context.Context, secret, newPassword string) error {
	if secret == "" {
		return apperror.Validation("reset token is required")
	}
	if newPassword == "" {
		return apperror.Validation("new password is required")
	}

	user, err := s.users.FindByResetTokenHash(ctx, hashResetSecret(secret))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.InvalidResetToken("reset token is invalid or has expired")
		}
		return apperror.StoreUnavailable(err)
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.users.CompleteReset(ctx, user.ID, hash); err != nil {
		return apperror.StoreUnavailable(err)
	}

	log.Info().Str("user_id", user.ID).Msg("Password reset completed")
	return nil
}

// ChangePassword verifies the current password before setting a new one.
// The caller is already authenticated; userID comes from the request context.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return apperror.Validation("new password is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.NotFound("user does not exist")
		}
		return apperror.StoreUnavailable(err)
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, currentPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		return apperror.WrongPassword("current password is incorrect")
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperror.StoreUnavailable(err)
	}
	return nil
}

// GetUser returns the client-facing view of an authenticated user.
func (s *AuthService) GetUser(ctx context.Context, userID string) (models.UserSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.UserSummary{}, apperror.NotFound("user does not exist")
		}
		return models.UserSummary{}, apperror.StoreUnavailable(err)
	}
	return user.Summary(), nil
}

// newResetSecret returns a 256-bit random secret, URL-safe encoded so it can
// ride in a link path segment.
func newResetSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashResetSecret digests a reset secret for storage and lookup. SHA-256 is
// deterministic, which the by-hash lookup needs; the secret itself already
// carries 256 bits of entropy, so no work factor applies.
func hashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
