package state

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agenciakit/captionflow/internal/mirror"
	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/service"
	"github.com/agenciakit/captionflow/internal/transfer"
)

// ScheduledStore drives the scheduling view. It is the only writer of
// the caption mirror outside the background jobs: the mirror is synced
// exactly when a schedule call succeeds, never on failure.
type ScheduledStore struct {
	captions service.CaptionService
	clients  service.ClientService
	mirror   *mirror.Store
	notifier Notifier

	gen atomic.Uint64

	mu        sync.Mutex
	scheduled []*models.Caption
	loading   bool
	lastErr   error
}

func NewScheduledStore(captions service.CaptionService, clients service.ClientService, m *mirror.Store, notifier Notifier) *ScheduledStore {
	return &ScheduledStore{
		captions: captions,
		clients:  clients,
		mirror:   m,
		notifier: notifier,
	}
}

// Load refreshes the scheduled view. A failed load degrades to an
// empty list plus a notification, the same as the other stores.
func (s *ScheduledStore) Load(ctx context.Context, userID int64) []*models.Caption {
	gen := s.gen.Add(1)

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	captions, err := s.captions.List(ctx, userID, &transfer.CaptionFilter{Status: models.CaptionStatusScheduled})

	s.mu.Lock()
	if s.gen.Load() == gen {
		s.loading = false
		s.lastErr = err
		if err == nil {
			s.scheduled = captions
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Error(fmt.Sprintf("could not load scheduled captions: %s", err))
		return []*models.Caption{}
	}
	return captions
}

func (s *ScheduledStore) snapshot() ([]*models.Caption, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	captions := make([]*models.Caption, len(s.scheduled))
	copy(captions, s.scheduled)
	return captions, s.loading, s.lastErr
}

// Schedule moves the caption to the scheduled state and mirrors it.
// Returns the updated caption and the delay until it is due.
func (s *ScheduledStore) Schedule(ctx context.Context, userID int64, captionID string, req *transfer.ScheduleRequest) (*models.Caption, time.Duration, error) {
	caption, delay, err := s.captions.Schedule(ctx, userID, captionID, req)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("could not schedule caption %s: %s", captionID, err))
		return nil, 0, err
	}

	if err := s.mirror.Sync(ctx, userID, caption, s.clientName(ctx, userID, caption)); err != nil {
		// Postgres already holds the truth; the mirror catches up on
		// the next rebuild.
		s.notifier.Error(fmt.Sprintf("caption %s scheduled but not mirrored: %s", captionID, err))
	}

	s.notifier.Success(fmt.Sprintf("caption %s scheduled for %s", caption.ID, caption.ScheduledFor.Format(time.RFC3339)))
	return caption, delay, nil
}

// Unschedule reverts a scheduled caption to draft and drops it from the
// mirror.
func (s *ScheduledStore) Unschedule(ctx context.Context, userID int64, captionID string) (*models.Caption, error) {
	draft := models.CaptionStatusDraft
	empty := ""
	caption, err := s.captions.Update(ctx, userID, captionID, &transfer.CaptionUpdate{
		Status:       &draft,
		ScheduledFor: &empty,
	})
	if err != nil {
		s.notifier.Error(fmt.Sprintf("could not unschedule caption %s: %s", captionID, err))
		return nil, err
	}

	if err := s.mirror.Remove(ctx, userID, captionID); err != nil {
		s.notifier.Error(fmt.Sprintf("caption %s unscheduled but still mirrored: %s", captionID, err))
	}
	return caption, nil
}

func (s *ScheduledStore) clientName(ctx context.Context, userID int64, caption *models.Caption) string {
	if caption.ClientName != "" {
		return caption.ClientName
	}

	client, err := s.clients.Get(ctx, userID, caption.ClientID)
	if err == nil && client != nil {
		return client.Name
	}

	names, err := s.mirror.ClientNames(ctx, userID)
	if err == nil {
		return names[caption.ClientID]
	}
	return ""
}
