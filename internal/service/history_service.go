package service

import (
	"context"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/repository"
)

type HistoryService interface {
	List(ctx context.Context, userID int64) ([]*models.PublishHistory, error)
}

type historyService struct {
	ph repository.HistoryRepository
}

func NewHistoryService(ph repository.HistoryRepository) HistoryService {
	return &historyService{ph: ph}
}

func (s *historyService) List(ctx context.Context, userID int64) ([]*models.PublishHistory, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	return s.ph.ListByUserID(ctx, userID)
}
