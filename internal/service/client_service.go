package service

import (
	"context"
	"log/slog"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/agenciakit/captionflow/internal/mirror"
	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/normalize"
	"github.com/agenciakit/captionflow/internal/repository"
	"github.com/agenciakit/captionflow/internal/transfer"
)

type ClientService interface {
	List(ctx context.Context, userID int64) ([]*models.Client, error)
	Get(ctx context.Context, userID int64, clientID string) (*models.Client, error)
	Create(ctx context.Context, userID int64, fields *transfer.ClientCreation) (*models.Client, error)
	Update(ctx context.Context, userID int64, clientID string, fields *transfer.ClientUpdate) error
	Delete(ctx context.Context, userID int64, clientID string) error
	UpsertPersona(ctx context.Context, userID int64, clientID string, fields *transfer.PersonaUpdate) (*models.Persona, error)
	ReplaceSocialMedia(ctx context.Context, userID int64, clientID string, fields *transfer.SocialMediaUpdate) ([]models.SocialMedia, error)
}

type clientService struct {
	c  repository.ClientRepository
	p  repository.PersonaRepository
	sm repository.SocialMediaRepository
	cp repository.CaptionRepository
	m  *mirror.Store
}

func NewClientService(
	c repository.ClientRepository,
	p repository.PersonaRepository,
	sm repository.SocialMediaRepository,
	cp repository.CaptionRepository,
	m *mirror.Store,
) ClientService {
	return &clientService{
		c:  c,
		p:  p,
		sm: sm,
		cp: cp,
		m:  m,
	}
}

// List returns the user's clients with persona and social media stitched
// in. Stitch failures degrade to the flat client rows; a failed client
// query degrades further to the mirrored summaries, then to an empty
// list, so the dashboard never errors out entirely.
func (s *clientService) List(ctx context.Context, userID int64) ([]*models.Client, error) {
	clients, err := s.c.List(ctx, userID)
	if err != nil {
		return s.listFromMirror(ctx, userID), nil
	}
	if len(clients) == 0 {
		return []*models.Client{}, nil
	}

	ids := make([]string, 0, len(clients))
	for _, client := range clients {
		ids = append(ids, client.ID)
	}

	personas, perr := s.p.ListByClientIDs(ctx, ids)
	socials, serr := s.sm.ListByClientIDs(ctx, ids)
	if perr != nil || serr != nil {
		return clients, nil
	}

	personaByClient := make(map[string]*models.Persona, len(personas))
	for _, persona := range personas {
		personaByClient[persona.ClientID] = persona
	}
	socialByClient := make(map[string][]models.SocialMedia)
	for _, social := range socials {
		socialByClient[social.ClientID] = append(socialByClient[social.ClientID], social)
	}

	for _, client := range clients {
		client.Persona = personaByClient[client.ID]
		client.SocialMedia = socialByClient[client.ID]
	}
	return clients, nil
}

func (s *clientService) listFromMirror(ctx context.Context, userID int64) []*models.Client {
	mirrored, err := s.m.Clients(ctx, userID)
	if err != nil {
		return []*models.Client{}
	}

	clients := make([]*models.Client, 0, len(mirrored))
	for _, entry := range mirrored {
		clients = append(clients, &models.Client{
			ID:       entry.ID,
			Name:     entry.Name,
			Industry: entry.Industry,
			Initials: deriveInitials(entry.Name),
		})
	}
	return clients
}

// Get returns nil without an error when the client does not exist or
// belongs to another user.
func (s *clientService) Get(ctx context.Context, userID int64, clientID string) (*models.Client, error) {
	isOwner, err := s.c.CheckByUserID(ctx, clientID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, nil
	}

	client, isExist, err := s.c.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, nil
	}

	persona, isExist, err := s.p.GetByClientID(ctx, clientID)
	if err == nil && isExist {
		client.Persona = persona
	}

	socials, err := s.sm.ListByClientID(ctx, clientID)
	if err == nil {
		client.SocialMedia = socials
	}

	captions, err := s.cp.ListByClientID(ctx, clientID)
	if err == nil {
		client.Captions = captions
	}

	return client, nil
}

func (s *clientService) Create(ctx context.Context, userID int64, fields *transfer.ClientCreation) (*models.Client, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	if err := fields.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := &models.Client{
		ID:          id,
		UserID:      userID,
		Name:        fields.Name,
		Industry:    fields.Industry,
		AvatarURL:   fields.AvatarURL,
		Initials:    deriveInitials(fields.Name),
		Description: fields.Description,
	}

	if err := s.c.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Update(ctx context.Context, userID int64, clientID string, fields *transfer.ClientUpdate) error {
	isOwner, err := s.c.CheckByUserID(ctx, clientID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrNoPermission
	}

	return s.c.Update(ctx, clientID, fields)
}

// Delete removes a client and its dependents. Dependent cleanup is
// best-effort so a partial failure never leaves the client row behind
// with its children already gone and unreachable.
func (s *clientService) Delete(ctx context.Context, userID int64, clientID string) error {
	isOwner, err := s.c.CheckByUserID(ctx, clientID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrNoPermission
	}

	if err := s.sm.DeleteByClientID(ctx, clientID); err != nil {
		slog.Info(err.Error())
	}
	if err := s.p.DeleteByClientID(ctx, clientID); err != nil {
		slog.Info(err.Error())
	}
	if err := s.cp.RemoveByClientID(ctx, clientID); err != nil {
		slog.Info(err.Error())
	}

	return s.c.Remove(ctx, clientID)
}

func (s *clientService) UpsertPersona(ctx context.Context, userID int64, clientID string, fields *transfer.PersonaUpdate) (*models.Persona, error) {
	isOwner, err := s.c.CheckByUserID(ctx, clientID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNoPermission
	}

	persona, isExist, err := s.p.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		id, err := gonanoid.New()
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		persona = &models.Persona{ID: id, ClientID: clientID}
	}

	persona.ToneOfVoice = fields.ToneOfVoice
	persona.TargetAudience = fields.TargetAudience
	persona.Values = fields.Values
	persona.Keywords = normalize.Keywords(fields.Keywords)

	if err := s.p.Upsert(ctx, persona); err != nil {
		return nil, err
	}
	return persona, nil
}

// ReplaceSocialMedia swaps the client's handle list wholesale, keeping
// the first handle per platform.
func (s *clientService) ReplaceSocialMedia(ctx context.Context, userID int64, clientID string, fields *transfer.SocialMediaUpdate) ([]models.SocialMedia, error) {
	isOwner, err := s.c.CheckByUserID(ctx, clientID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNoPermission
	}

	for _, entry := range fields.Entries {
		if err := entry.Validate(); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
	}

	if err := s.sm.DeleteByClientID(ctx, clientID); err != nil {
		return nil, err
	}

	entries := make([]models.SocialMedia, 0, len(fields.Entries))
	for _, input := range fields.Entries {
		id, err := gonanoid.New()
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, models.SocialMedia{
			ID:       id,
			ClientID: clientID,
			Platform: input.Platform,
			Username: input.Username,
		})
	}
	entries = normalize.DedupeByPlatform(entries)

	if len(entries) == 0 {
		return []models.SocialMedia{}, nil
	}

	if err := s.sm.InsertMany(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func deriveInitials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}

	initials := firstRuneUpper(fields[0])
	if len(fields) > 1 {
		initials += firstRuneUpper(fields[len(fields)-1])
	}
	return initials
}

func firstRuneUpper(s string) string {
	for _, r := range s {
		return strings.ToUpper(string(r))
	}
	return ""
}
