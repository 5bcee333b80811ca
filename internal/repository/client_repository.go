package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/normalize"
	"github.com/agenciakit/captionflow/internal/transfer"
)

type ClientRepository interface {
	List(ctx context.Context, userID int64) ([]*models.Client, error)
	GetByID(ctx context.Context, id string) (*models.Client, bool, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, id string, fields *transfer.ClientUpdate) error
	Remove(ctx context.Context, id string) error
	CheckByUserID(ctx context.Context, clientID string, userID int64) (bool, error)
	UpdateRecentCaptions(ctx context.Context, id string, captions []models.RecentCaption) error
}

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, user_id, name, industry, COALESCE(avatar_url, ''), COALESCE(initials, ''), COALESCE(description, ''), COALESCE(recent_captions, '[]'), created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (*models.Client, error) {
	var client models.Client
	var recentRaw []byte
	err := row.Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&client.Industry,
		&client.AvatarURL,
		&client.Initials,
		&client.Description,
		&recentRaw,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	client.RecentCaptions = normalize.RecentCaptions(recentRaw)
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, userID int64) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*models.Client, bool, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return client, true, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (id, user_id, name, industry, avatar_url, initials, description, recent_captions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '[]')
	`
	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.UserID,
		client.Name,
		client.Industry,
		client.AvatarURL,
		client.Initials,
		client.Description,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *clientRepository) Update(ctx context.Context, id string, fields *transfer.ClientUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Industry != nil {
		add("industry", *fields.Industry)
	}
	if fields.AvatarURL != nil {
		add("avatar_url", *fields.AvatarURL)
	}
	if fields.Description != nil {
		add("description", *fields.Description)
	}
	if len(sets) == 0 {
		return nil
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE clients SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *clientRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM clients WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *clientRepository) CheckByUserID(ctx context.Context, clientID string, userID int64) (bool, error) {
	query := "SELECT 1 FROM clients WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, clientID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *clientRepository) UpdateRecentCaptions(ctx context.Context, id string, captions []models.RecentCaption) error {
	data, err := json.Marshal(captions)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `UPDATE clients SET recent_captions = $1, updated_at = $2 WHERE id = $3`
	_, err = r.db.ExecContext(ctx, query, data, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
