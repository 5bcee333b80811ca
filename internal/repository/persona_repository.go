package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/normalize"
	"github.com/lib/pq"
)

type PersonaRepository interface {
	GetByClientID(ctx context.Context, clientID string) (*models.Persona, bool, error)
	ListByClientIDs(ctx context.Context, clientIDs []string) ([]*models.Persona, error)
	Upsert(ctx context.Context, persona *models.Persona) error
	DeleteByClientID(ctx context.Context, clientID string) error
}

type personaRepository struct {
	db *sql.DB
}

func NewPersonaRepository(db *sql.DB) PersonaRepository {
	return &personaRepository{db: db}
}

const personaColumns = `id, client_id, COALESCE(tone_of_voice, ''), COALESCE(target_audience, ''), COALESCE("values", ''), COALESCE(keywords, '[]'), created_at, updated_at`

func scanPersona(row interface{ Scan(...any) error }) (*models.Persona, error) {
	var persona models.Persona
	var keywordsRaw []byte
	err := row.Scan(
		&persona.ID,
		&persona.ClientID,
		&persona.ToneOfVoice,
		&persona.TargetAudience,
		&persona.Values,
		&keywordsRaw,
		&persona.CreatedAt,
		&persona.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	persona.Keywords = normalize.KeywordsRaw(keywordsRaw)
	return &persona, nil
}

func (r *personaRepository) GetByClientID(ctx context.Context, clientID string) (*models.Persona, bool, error) {
	query := `SELECT ` + personaColumns + ` FROM personas WHERE client_id = $1`

	persona, err := scanPersona(r.db.QueryRowContext(ctx, query, clientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return persona, true, nil
}

func (r *personaRepository) ListByClientIDs(ctx context.Context, clientIDs []string) ([]*models.Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas WHERE client_id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(clientIDs))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var personas []*models.Persona
	for rows.Next() {
		persona, err := scanPersona(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		personas = append(personas, persona)
	}
	return personas, nil
}

func (r *personaRepository) Upsert(ctx context.Context, persona *models.Persona) error {
	keywords, err := json.Marshal(persona.Keywords)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		INSERT INTO personas (id, client_id, tone_of_voice, target_audience, "values", keywords)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET tone_of_voice = EXCLUDED.tone_of_voice,
			target_audience = EXCLUDED.target_audience,
			"values" = EXCLUDED."values",
			keywords = EXCLUDED.keywords,
			updated_at = $7
	`
	_, err = r.db.ExecContext(ctx, query,
		persona.ID,
		persona.ClientID,
		persona.ToneOfVoice,
		persona.TargetAudience,
		persona.Values,
		keywords,
		time.Now(),
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *personaRepository) DeleteByClientID(ctx context.Context, clientID string) error {
	query := `DELETE FROM personas WHERE client_id = $1`
	_, err := r.db.ExecContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
