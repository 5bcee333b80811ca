package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/transfer"
)

type CaptionRepository interface {
	List(ctx context.Context, userID int64, filter *transfer.CaptionFilter) ([]*models.Caption, error)
	ListByClientID(ctx context.Context, clientID string) ([]*models.Caption, error)
	ListScheduled(ctx context.Context) ([]*models.Caption, error)
	ListDueScheduled(ctx context.Context, before time.Time) ([]*models.Caption, error)
	GetByID(ctx context.Context, id string) (*models.Caption, bool, error)
	Create(ctx context.Context, caption *models.Caption) error
	Update(ctx context.Context, caption *models.Caption) error
	UpdateStatus(ctx context.Context, status string, id string) error
	Remove(ctx context.Context, id string) error
	RemoveByClientID(ctx context.Context, clientID string) error
	CheckByUserID(ctx context.Context, captionID string, userID int64) (bool, error)
}

type captionRepository struct {
	db *sql.DB
}

func NewCaptionRepository(db *sql.DB) CaptionRepository {
	return &captionRepository{db: db}
}

const captionColumns = `c.id, c.user_id, c.client_id, COALESCE(c.title, ''), c.content, c.platform, c.status, c.scheduled_for, COALESCE(c.image_url, ''), c.created_at, c.updated_at`

func scanCaption(row interface{ Scan(...any) error }, withClientName bool) (*models.Caption, error) {
	var caption models.Caption
	dest := []any{
		&caption.ID,
		&caption.UserID,
		&caption.ClientID,
		&caption.Title,
		&caption.Content,
		&caption.Platform,
		&caption.Status,
		&caption.ScheduledFor,
		&caption.ImageURL,
		&caption.CreatedAt,
		&caption.UpdatedAt,
	}
	if withClientName {
		dest = append(dest, &caption.ClientName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &caption, nil
}

func (r *captionRepository) queryMany(ctx context.Context, withClientName bool, query string, args ...any) ([]*models.Caption, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var captions []*models.Caption
	for rows.Next() {
		caption, err := scanCaption(rows, withClientName)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		captions = append(captions, caption)
	}
	return captions, nil
}

func (r *captionRepository) List(ctx context.Context, userID int64, filter *transfer.CaptionFilter) ([]*models.Caption, error) {
	conditions := []string{"c.user_id = $1"}
	args := []any{userID}

	if filter != nil {
		if filter.ClientID != "" {
			args = append(args, filter.ClientID)
			conditions = append(conditions, fmt.Sprintf("c.client_id = $%d", len(args)))
		}
		if filter.Platform != "" {
			args = append(args, filter.Platform)
			conditions = append(conditions, fmt.Sprintf("c.platform = $%d", len(args)))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
		}
	}

	query := fmt.Sprintf(`
		SELECT %s, COALESCE(cl.name, '')
		FROM captions c
		LEFT JOIN clients cl ON cl.id = c.client_id
		WHERE %s
		ORDER BY c.created_at DESC
	`, captionColumns, strings.Join(conditions, " AND "))

	return r.queryMany(ctx, true, query, args...)
}

func (r *captionRepository) ListByClientID(ctx context.Context, clientID string) ([]*models.Caption, error) {
	query := `SELECT ` + captionColumns + ` FROM captions c WHERE c.client_id = $1 ORDER BY c.created_at DESC`
	return r.queryMany(ctx, false, query, clientID)
}

func (r *captionRepository) ListScheduled(ctx context.Context) ([]*models.Caption, error) {
	query := `
		SELECT ` + captionColumns + `, COALESCE(cl.name, '')
		FROM captions c
		LEFT JOIN clients cl ON cl.id = c.client_id
		WHERE c.status = $1 AND c.scheduled_for IS NOT NULL
		ORDER BY c.scheduled_for
	`
	return r.queryMany(ctx, true, query, models.CaptionStatusScheduled)
}

func (r *captionRepository) ListDueScheduled(ctx context.Context, before time.Time) ([]*models.Caption, error) {
	query := `
		SELECT ` + captionColumns + `, COALESCE(cl.name, '')
		FROM captions c
		LEFT JOIN clients cl ON cl.id = c.client_id
		WHERE c.status = $1 AND c.scheduled_for IS NOT NULL AND c.scheduled_for <= $2
		ORDER BY c.scheduled_for
	`
	return r.queryMany(ctx, true, query, models.CaptionStatusScheduled, before)
}

func (r *captionRepository) GetByID(ctx context.Context, id string) (*models.Caption, bool, error) {
	query := `SELECT ` + captionColumns + ` FROM captions c WHERE c.id = $1`

	caption, err := scanCaption(r.db.QueryRowContext(ctx, query, id), false)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return caption, true, nil
}

func (r *captionRepository) Create(ctx context.Context, caption *models.Caption) error {
	query := `
		INSERT INTO captions (id, user_id, client_id, title, content, platform, status, scheduled_for, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		caption.ID,
		caption.UserID,
		caption.ClientID,
		caption.Title,
		caption.Content,
		caption.Platform,
		caption.Status,
		caption.ScheduledFor,
		caption.ImageURL,
		caption.CreatedAt,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *captionRepository) Update(ctx context.Context, caption *models.Caption) error {
	query := `
		UPDATE captions
		SET title = $1,
			content = $2,
			platform = $3,
			status = $4,
			scheduled_for = $5,
			image_url = $6,
			updated_at = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		caption.Title,
		caption.Content,
		caption.Platform,
		caption.Status,
		caption.ScheduledFor,
		caption.ImageURL,
		time.Now(),
		caption.ID,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *captionRepository) UpdateStatus(ctx context.Context, status string, id string) error {
	query := `
		UPDATE captions
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *captionRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM captions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *captionRepository) RemoveByClientID(ctx context.Context, clientID string) error {
	query := `DELETE FROM captions WHERE client_id = $1`
	_, err := r.db.ExecContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *captionRepository) CheckByUserID(ctx context.Context, captionID string, userID int64) (bool, error) {
	query := "SELECT 1 FROM captions WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, captionID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}
