package state

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/service"
)

// ClientsStore caches the client list for the dashboard. Concurrent
// loads may overlap; only the newest load is allowed to publish its
// result. A failed load never reaches the caller as an error: it is
// kept as the store's last error, reported through the notifier, and
// the caller gets an empty list.
type ClientsStore struct {
	svc      service.ClientService
	notifier Notifier

	gen atomic.Uint64

	mu      sync.Mutex
	clients []*models.Client
	loading bool
	lastErr error
}

func NewClientsStore(svc service.ClientService, notifier Notifier) *ClientsStore {
	return &ClientsStore{svc: svc, notifier: notifier}
}

func (s *ClientsStore) Load(ctx context.Context, userID int64) []*models.Client {
	gen := s.gen.Add(1)

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	clients, err := s.svc.List(ctx, userID)

	s.mu.Lock()
	if s.gen.Load() == gen {
		s.loading = false
		s.lastErr = err
		if err == nil {
			s.clients = clients
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.Error(fmt.Sprintf("could not load clients: %s", err))
		return []*models.Client{}
	}
	return clients
}

func (s *ClientsStore) snapshot() ([]*models.Client, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := make([]*models.Client, len(s.clients))
	copy(clients, s.clients)
	return clients, s.loading, s.lastErr
}
