package state

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/service"
	"github.com/agenciakit/captionflow/internal/transfer"
)

// CaptionsStore caches the filtered caption list view. Load failures
// degrade to an empty list plus a notification, never an error.
type CaptionsStore struct {
	svc      service.CaptionService
	notifier Notifier

	gen atomic.Uint64

	mu       sync.Mutex
	captions []*models.Caption
	loading  bool
	lastErr  error
}

func NewCaptionsStore(svc service.CaptionService, notifier Notifier) *CaptionsStore {
	return &CaptionsStore{svc: svc, notifier: notifier}
}

func (s *CaptionsStore) Load(ctx context.Context, userID int64, filter *transfer.CaptionFilter) []*models.Caption {
	gen := s.gen.Add(1)

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	captions, err := s.svc.List(ctx, userID, filter)

	s.mu.Lock()
	if s.gen.Load() == gen {
		s.loading = false
		s.lastErr = err
		if err == nil {
			s.captions = captions
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Error(fmt.Sprintf("could not load captions: %s", err))
		return []*models.Caption{}
	}
	return captions
}

func (s *CaptionsStore) snapshot() ([]*models.Caption, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	captions := make([]*models.Caption, len(s.captions))
	copy(captions, s.captions)
	return captions, s.loading, s.lastErr
}
