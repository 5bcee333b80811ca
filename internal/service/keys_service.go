package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/repository"
	"github.com/agenciakit/captionflow/pkg/utils"
)

const (
	apiKeyLength      = 32
	maxApiKeysPerUser = 5
)

type ApiKeyService interface {
	GetUserID(ctx context.Context, apiKey string) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	Create(ctx context.Context, userID int64) (*models.ApiKey, error)
	Remove(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{k: k}
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	userID, isExist, err := s.k.GetByKey(ctx, apiKey)
	if err != nil {
		return 0, err
	}
	if !isExist {
		return 0, ErrNoPermission
	}
	return userID, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	return s.k.GetByUserID(ctx, userID)
}

func (s *apiKeyService) Create(ctx context.Context, userID int64) (*models.ApiKey, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	existing, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxApiKeysPerUser {
		return nil, errors.New("api key limit reached")
	}

	key, err := utils.GenerateRandomKey(apiKeyLength)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	apiKey := &models.ApiKey{
		UserID: userID,
		ApiKey: key,
	}

	id, err := s.k.Create(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	apiKey.ID = id
	return apiKey, nil
}

func (s *apiKeyService) Remove(ctx context.Context, userID, keyID int64) error {
	if userID == 0 {
		return ErrNotAuthenticated
	}

	isOwner, err := s.k.CheckByUserID(ctx, keyID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrNoPermission
	}

	return s.k.Remove(ctx, keyID)
}
