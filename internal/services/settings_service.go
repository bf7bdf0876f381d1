package services

import (
	"context"
	"database/sql"
	"errors"

	"fintrack/internal/apperror"
	"fintrack/internal/models"
)

// SettingsServiceProvider defines the interface for settings services.
type SettingsServiceProvider interface {
	Get(ctx context.Context, userID string) (models.Settings, error)
	Upsert(ctx context.Context, settings models.Settings) (models.Settings, error)
}

// SettingsService provides per-user settings storage. A user with no stored
// settings reads back the zero value; the record is created lazily on first
// write.
type SettingsService struct {
	db *sql.DB
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(db *sql.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get retrieves the user's settings, or an empty record if none exist yet.
func (s *SettingsService) Get(ctx context.Context, userID string) (models.Settings, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT user_id, name, currency, notifications FROM user_settings WHERE user_id = ?", userID)

	var settings models.Settings
	err := row.Scan(&settings.UserID, &settings.Name, &settings.Currency, &settings.Notifications)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Settings{UserID: userID}, nil
		}
		return models.Settings{}, apperror.StoreUnavailable(err)
	}
	return settings, nil
}

// Upsert creates or replaces the user's settings record.
func (s *SettingsService) Upsert(ctx context.Context, settings models.Settings) (models.Settings, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, name, currency, notifications, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency,
			notifications = excluded.notifications,
			updated_at = CURRENT_TIMESTAMP`,
		settings.UserID, settings.Name, settings.Currency, settings.Notifications)
	if err != nil {
		return models.Settings{}, apperror.StoreUnavailable(err)
	}
	return settings, nil
}
