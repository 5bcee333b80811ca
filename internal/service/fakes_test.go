package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/transfer"
)

// recorder keeps the order of repository calls across fakes, so tests
// can assert on cascade ordering.
type recorder struct {
	ops []string
}

func (r *recorder) note(op string) {
	if r != nil {
		r.ops = append(r.ops, op)
	}
}

type fakeClientRepo struct {
	rec     *recorder
	clients map[string]*models.Client
	recent  map[string][]models.RecentCaption
	listErr error
}

func newFakeClientRepo(clients ...*models.Client) *fakeClientRepo {
	repo := &fakeClientRepo{
		clients: make(map[string]*models.Client),
		recent:  make(map[string][]models.RecentCaption),
	}
	for _, client := range clients {
		repo.clients[client.ID] = client
	}
	return repo
}

func (f *fakeClientRepo) List(_ context.Context, userID int64) ([]*models.Client, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Client
	for _, client := range f.clients {
		if client.UserID == userID {
			out = append(out, client)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id string) (*models.Client, bool, error) {
	client, ok := f.clients[id]
	return client, ok, nil
}

func (f *fakeClientRepo) Create(_ context.Context, client *models.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Update(_ context.Context, id string, fields *transfer.ClientUpdate) error {
	client, ok := f.clients[id]
	if !ok {
		return errors.New("not found")
	}
	if fields.Name != nil {
		client.Name = *fields.Name
	}
	if fields.Industry != nil {
		client.Industry = *fields.Industry
	}
	return nil
}

func (f *fakeClientRepo) Remove(_ context.Context, id string) error {
	f.rec.note("client.remove")
	delete(f.clients, id)
	return nil
}

func (f *fakeClientRepo) CheckByUserID(_ context.Context, clientID string, userID int64) (bool, error) {
	client, ok := f.clients[clientID]
	return ok && client.UserID == userID, nil
}

func (f *fakeClientRepo) UpdateRecentCaptions(_ context.Context, id string, captions []models.RecentCaption) error {
	f.recent[id] = captions
	return nil
}

type fakeCaptionRepo struct {
	rec          *recorder
	captions     map[string]*models.Caption
	createErr    error
	removeErr    error
	removeByErr  error
	listByErr    error
	createdCount int
}

func newFakeCaptionRepo(captions ...*models.Caption) *fakeCaptionRepo {
	repo := &fakeCaptionRepo{captions: make(map[string]*models.Caption)}
	for _, caption := range captions {
		repo.captions[caption.ID] = caption
	}
	return repo
}

func (f *fakeCaptionRepo) List(_ context.Context, userID int64, filter *transfer.CaptionFilter) ([]*models.Caption, error) {
	var out []*models.Caption
	for _, caption := range f.captions {
		if caption.UserID != userID {
			continue
		}
		if filter != nil {
			if filter.ClientID != "" && caption.ClientID != filter.ClientID {
				continue
			}
			if filter.Platform != "" && caption.Platform != filter.Platform {
				continue
			}
			if filter.Status != "" && caption.Status != filter.Status {
				continue
			}
		}
		out = append(out, caption)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCaptionRepo) ListByClientID(_ context.Context, clientID string) ([]*models.Caption, error) {
	if f.listByErr != nil {
		return nil, f.listByErr
	}
	var out []*models.Caption
	for _, caption := range f.captions {
		if caption.ClientID == clientID {
			out = append(out, caption)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCaptionRepo) ListScheduled(_ context.Context) ([]*models.Caption, error) {
	var out []*models.Caption
	for _, caption := range f.captions {
		if caption.Status == models.CaptionStatusScheduled && caption.ScheduledFor != nil {
			out = append(out, caption)
		}
	}
	return out, nil
}

func (f *fakeCaptionRepo) ListDueScheduled(_ context.Context, before time.Time) ([]*models.Caption, error) {
	var out []*models.Caption
	for _, caption := range f.captions {
		if caption.Status == models.CaptionStatusScheduled && caption.ScheduledFor != nil && !caption.ScheduledFor.After(before) {
			out = append(out, caption)
		}
	}
	return out, nil
}

func (f *fakeCaptionRepo) GetByID(_ context.Context, id string) (*models.Caption, bool, error) {
	caption, ok := f.captions[id]
	if !ok {
		return nil, false, nil
	}
	copied := *caption
	return &copied, true, nil
}

func (f *fakeCaptionRepo) Create(_ context.Context, caption *models.Caption) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.captions[caption.ID] = caption
	f.createdCount++
	return nil
}

func (f *fakeCaptionRepo) Update(_ context.Context, caption *models.Caption) error {
	f.captions[caption.ID] = caption
	return nil
}

func (f *fakeCaptionRepo) UpdateStatus(_ context.Context, status string, id string) error {
	if caption, ok := f.captions[id]; ok {
		caption.Status = status
	}
	return nil
}

func (f *fakeCaptionRepo) Remove(_ context.Context, id string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.captions, id)
	return nil
}

func (f *fakeCaptionRepo) RemoveByClientID(_ context.Context, clientID string) error {
	f.rec.note("captions.removeByClient")
	if f.removeByErr != nil {
		return f.removeByErr
	}
	for id, caption := range f.captions {
		if caption.ClientID == clientID {
			delete(f.captions, id)
		}
	}
	return nil
}

func (f *fakeCaptionRepo) CheckByUserID(_ context.Context, captionID string, userID int64) (bool, error) {
	caption, ok := f.captions[captionID]
	return ok && caption.UserID == userID, nil
}

type fakePersonaRepo struct {
	rec      *recorder
	personas map[string]*models.Persona
}

func newFakePersonaRepo(personas ...*models.Persona) *fakePersonaRepo {
	repo := &fakePersonaRepo{personas: make(map[string]*models.Persona)}
	for _, persona := range personas {
		repo.personas[persona.ClientID] = persona
	}
	return repo
}

func (f *fakePersonaRepo) GetByClientID(_ context.Context, clientID string) (*models.Persona, bool, error) {
	persona, ok := f.personas[clientID]
	return persona, ok, nil
}

func (f *fakePersonaRepo) ListByClientIDs(_ context.Context, clientIDs []string) ([]*models.Persona, error) {
	var out []*models.Persona
	for _, id := range clientIDs {
		if persona, ok := f.personas[id]; ok {
			out = append(out, persona)
		}
	}
	return out, nil
}

func (f *fakePersonaRepo) Upsert(_ context.Context, persona *models.Persona) error {
	f.personas[persona.ClientID] = persona
	return nil
}

func (f *fakePersonaRepo) DeleteByClientID(_ context.Context, clientID string) error {
	f.rec.note("persona.deleteByClient")
	delete(f.personas, clientID)
	return nil
}

type fakeSocialRepo struct {
	rec       *recorder
	entries   map[string][]models.SocialMedia
	deleteErr error
}

func newFakeSocialRepo() *fakeSocialRepo {
	return &fakeSocialRepo{entries: make(map[string][]models.SocialMedia)}
}

func (f *fakeSocialRepo) ListByClientID(_ context.Context, clientID string) ([]models.SocialMedia, error) {
	return f.entries[clientID], nil
}

func (f *fakeSocialRepo) ListByClientIDs(_ context.Context, clientIDs []string) ([]models.SocialMedia, error) {
	var out []models.SocialMedia
	for _, id := range clientIDs {
		out = append(out, f.entries[id]...)
	}
	return out, nil
}

func (f *fakeSocialRepo) DeleteByClientID(_ context.Context, clientID string) error {
	f.rec.note("social.deleteByClient")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.entries, clientID)
	return nil
}

func (f *fakeSocialRepo) InsertMany(_ context.Context, entries []models.SocialMedia) error {
	for _, entry := range entries {
		f.entries[entry.ClientID] = append(f.entries[entry.ClientID], entry)
	}
	return nil
}

type fakeSettingsService struct {
	webhookURL    string
	webhookSecret string
}

func (f *fakeSettingsService) Get(_ context.Context, userID int64) (*models.Settings, error) {
	return &models.Settings{UserID: userID, WebhookURL: f.webhookURL, WebhookSecret: f.webhookSecret}, nil
}

func (f *fakeSettingsService) Update(context.Context, int64, *transfer.SettingsUpdate) error {
	return nil
}

func (f *fakeSettingsService) Webhook(context.Context, int64) (string, string) {
	return f.webhookURL, f.webhookSecret
}

type memKV struct {
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	return m.data[key], nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}
