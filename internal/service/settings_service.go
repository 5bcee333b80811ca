package service

import (
	"context"
	"crypto/sha256"
	"log/slog"

	config "github.com/agenciakit/captionflow/configs"
	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/repository"
	"github.com/agenciakit/captionflow/internal/transfer"
	"github.com/agenciakit/captionflow/pkg/utils"
)

type SettingsService interface {
	Get(ctx context.Context, userID int64) (*models.Settings, error)
	Update(ctx context.Context, userID int64, fields *transfer.SettingsUpdate) error
	Webhook(ctx context.Context, userID int64) (url string, secret string)
}

type settingsService struct {
	cfg config.Config
	s   repository.SettingsRepository
}

func NewSettingsService(cfg config.Config, s repository.SettingsRepository) SettingsService {
	return &settingsService{
		cfg: cfg,
		s:   s,
	}
}

func (s *settingsService) encryptionKey() []byte {
	key := sha256.Sum256([]byte(s.cfg.SecretKey))
	return key[:]
}

// Get returns the user's settings with the webhook secret decrypted.
// Users without a settings row get an empty record.
func (s *settingsService) Get(ctx context.Context, userID int64) (*models.Settings, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	settings, isExist, err := s.s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return &models.Settings{UserID: userID}, nil
	}

	if settings.WebhookSecret != "" {
		secret, err := utils.Decrypt(settings.WebhookSecret, s.encryptionKey())
		if err != nil {
			slog.Info(err.Error())
			settings.WebhookSecret = ""
		} else {
			settings.WebhookSecret = secret
		}
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, userID int64, fields *transfer.SettingsUpdate) error {
	if userID == 0 {
		return ErrNotAuthenticated
	}

	if err := fields.Validate(); err != nil {
		slog.Info(err.Error())
		return err
	}

	settings := &models.Settings{
		UserID:     userID,
		WebhookURL: fields.WebhookURL,
	}

	if fields.WebhookSecret != "" {
		encrypted, err := utils.Encrypt([]byte(fields.WebhookSecret), s.encryptionKey())
		if err != nil {
			return err
		}
		settings.WebhookSecret = encrypted
	}

	return s.s.Upsert(ctx, settings)
}

// Webhook resolves the generation webhook for a user, falling back to
// the instance-wide URL when the user has not configured one.
func (s *settingsService) Webhook(ctx context.Context, userID int64) (string, string) {
	settings, err := s.Get(ctx, userID)
	if err != nil || settings == nil || settings.WebhookURL == "" {
		return s.cfg.WebhookURL, ""
	}
	return settings.WebhookURL, settings.WebhookSecret
}
