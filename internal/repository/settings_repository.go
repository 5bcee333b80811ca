package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/agenciakit/captionflow/internal/models"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	Upsert(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	query := `SELECT id, user_id, webhook_url, COALESCE(webhook_secret, ''), created_at, updated_at FROM settings WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var settings models.Settings
	err := row.Scan(&settings.ID, &settings.UserID, &settings.WebhookURL, &settings.WebhookSecret, &settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &settings, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *models.Settings) error {
	query := `
		INSERT INTO settings (user_id, webhook_url, webhook_secret)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET webhook_url = EXCLUDED.webhook_url,
			webhook_secret = EXCLUDED.webhook_secret,
			updated_at = $4
	`
	_, err := r.db.ExecContext(ctx, query, settings.UserID, settings.WebhookURL, settings.WebhookSecret, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
