package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/lib/pq"
)

type SocialMediaRepository interface {
	ListByClientID(ctx context.Context, clientID string) ([]models.SocialMedia, error)
	ListByClientIDs(ctx context.Context, clientIDs []string) ([]models.SocialMedia, error)
	DeleteByClientID(ctx context.Context, clientID string) error
	InsertMany(ctx context.Context, entries []models.SocialMedia) error
}

type socialMediaRepository struct {
	db *sql.DB
}

func NewSocialMediaRepository(db *sql.DB) SocialMediaRepository {
	return &socialMediaRepository{db: db}
}

const socialMediaColumns = `id, client_id, platform, username, created_at`

func (r *socialMediaRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.SocialMedia, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []models.SocialMedia
	for rows.Next() {
		var entry models.SocialMedia
		err := rows.Scan(&entry.ID, &entry.ClientID, &entry.Platform, &entry.Username, &entry.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *socialMediaRepository) ListByClientID(ctx context.Context, clientID string) ([]models.SocialMedia, error) {
	query := `SELECT ` + socialMediaColumns + ` FROM social_media WHERE client_id = $1 ORDER BY created_at`
	return r.queryMany(ctx, query, clientID)
}

func (r *socialMediaRepository) ListByClientIDs(ctx context.Context, clientIDs []string) ([]models.SocialMedia, error) {
	query := `SELECT ` + socialMediaColumns + ` FROM social_media WHERE client_id = ANY($1)`
	return r.queryMany(ctx, query, pq.Array(clientIDs))
}

func (r *socialMediaRepository) DeleteByClientID(ctx context.Context, clientID string) error {
	query := `DELETE FROM social_media WHERE client_id = $1`
	_, err := r.db.ExecContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialMediaRepository) InsertMany(ctx context.Context, entries []models.SocialMedia) error {
	query := `INSERT INTO social_media (id, client_id, platform, username) VALUES ($1, $2, $3, $4)`
	for _, entry := range entries {
		_, err := r.db.ExecContext(ctx, query, entry.ID, entry.ClientID, entry.Platform, entry.Username)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
	}
	return nil
}
