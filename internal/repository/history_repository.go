package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/agenciakit/captionflow/internal/models"
)

type HistoryRepository interface {
	Create(ctx context.Context, history *models.PublishHistory) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.PublishHistory, error)
}

type historyRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, history *models.PublishHistory) (int64, error) {
	query := `
		INSERT INTO publish_history (user_id, caption_id, error_message)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, history.UserID, history.CaptionID, history.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *historyRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.PublishHistory, error) {
	query := `SELECT id, user_id, caption_id, COALESCE(error_message, ''), created_at FROM publish_history WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PublishHistory
	for rows.Next() {
		var entry models.PublishHistory
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.CaptionID, &entry.ErrorMessage, &entry.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
