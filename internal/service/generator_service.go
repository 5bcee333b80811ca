package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/normalize"
	"github.com/agenciakit/captionflow/internal/repository"
	"github.com/agenciakit/captionflow/internal/transfer"
)

const (
	generationTimeout     = 30 * time.Second
	defaultToneOfVoice    = "professional"
	defaultTargetAudience = "general audience"
)

type GeneratorService interface {
	Generate(ctx context.Context, userID int64, req *transfer.GenerationRequest) ([]*models.Caption, error)
}

type generatorService struct {
	c    repository.ClientRepository
	p    repository.PersonaRepository
	st   SettingsService
	http *resty.Client
}

func NewGeneratorService(c repository.ClientRepository, p repository.PersonaRepository, st SettingsService) GeneratorService {
	return &generatorService{
		c:    c,
		p:    p,
		st:   st,
		http: resty.New().SetTimeout(generationTimeout),
	}
}

// Generate asks the configured webhook for caption drafts. The drafts
// are returned unsaved; the caller decides which ones to keep.
func (s *generatorService) Generate(ctx context.Context, userID int64, req *transfer.GenerationRequest) ([]*models.Caption, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	isOwner, err := s.c.CheckByUserID(ctx, req.ClientID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNoPermission
	}

	client, isExist, err := s.c.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrNoPermission
	}

	payload := s.buildPayload(ctx, client, req)

	webhookURL, secret := s.st.Webhook(ctx, userID)
	if webhookURL == "" {
		return nil, errors.New("no generation webhook configured")
	}

	texts := s.callWebhook(ctx, webhookURL, secret, payload)
	if len(texts) == 0 {
		texts = []string{fallbackCaption(client.Name)}
	}

	return s.toDrafts(userID, req, texts)
}

func (s *generatorService) buildPayload(ctx context.Context, client *models.Client, req *transfer.GenerationRequest) *transfer.GenerationPayload {
	payload := &transfer.GenerationPayload{
		Prompt:     req.Prompt,
		Platform:   req.Platform,
		Client:     client.ID,
		ClientName: client.Name,
		ClientDetails: transfer.ClientDetails{
			Name:     client.Name,
			Industry: client.Industry,
		},
		Persona: transfer.GenerationPersona{
			ToneOfVoice:    defaultToneOfVoice,
			TargetAudience: defaultTargetAudience,
			Keywords:       []string{},
		},
	}

	persona, isExist, err := s.p.GetByClientID(ctx, client.ID)
	if err != nil || !isExist {
		return payload
	}

	if persona.ToneOfVoice != "" {
		payload.Persona.ToneOfVoice = persona.ToneOfVoice
	}
	if persona.TargetAudience != "" {
		payload.Persona.TargetAudience = persona.TargetAudience
	}
	payload.Persona.Values = persona.Values
	if len(persona.Keywords) > 0 {
		payload.Persona.Keywords = persona.Keywords
	}
	return payload
}

// callWebhook posts the payload and squeezes caption texts out of
// whatever shape the automation platform answered with. Any failure
// returns no texts; the caller substitutes the fallback draft.
func (s *generatorService) callWebhook(ctx context.Context, url, secret string, payload *transfer.GenerationPayload) []string {
	request := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if secret != "" {
		request.SetHeader("X-Webhook-Secret", secret)
	}

	resp, err := request.Post(url)
	if err != nil {
		slog.Info(err.Error())
		return nil
	}
	if resp.IsError() {
		slog.Info(fmt.Sprintf("generation webhook returned %d", resp.StatusCode()))
		return nil
	}

	return parseWebhookBody(resp.Body())
}

func parseWebhookBody(body []byte) []string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || looksLikeHTML(trimmed) {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		// Not JSON at all; treat the whole body as one caption.
		return []string{trimmed}
	}

	switch v := decoded.(type) {
	case []any:
		texts := make([]string, 0, len(v))
		for _, item := range v {
			if text, ok := normalize.ExtractCaption(item); ok {
				texts = append(texts, text)
			}
		}
		return texts
	case map[string]any:
		if captions, ok := v["captions"].([]any); ok {
			texts := make([]string, 0, len(captions))
			for _, item := range captions {
				if text, ok := normalize.ExtractCaption(item); ok {
					texts = append(texts, text)
				}
			}
			if len(texts) > 0 {
				return texts
			}
		}
		if text, ok := normalize.ExtractCaption(v); ok {
			return []string{text}
		}
		return nil
	default:
		if text, ok := normalize.ExtractCaption(decoded); ok {
			return []string{text}
		}
		return nil
	}
}

// looksLikeHTML treats any markup-shaped body as an error page. JSON
// and plain text never start with "<".
func looksLikeHTML(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), "<")
}

func fallbackCaption(clientName string) string {
	return fmt.Sprintf("Something exciting is coming from %s. Stay tuned!", clientName)
}

func (s *generatorService) toDrafts(userID int64, req *transfer.GenerationRequest, texts []string) ([]*models.Caption, error) {
	drafts := make([]*models.Caption, 0, len(texts))
	for _, text := range texts {
		id, err := gonanoid.New()
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		drafts = append(drafts, &models.Caption{
			ID:        id,
			UserID:    userID,
			ClientID:  req.ClientID,
			Title:     DeriveTitle(text),
			Content:   text,
			Platform:  req.Platform,
			Status:    models.CaptionStatusDraft,
			CreatedAt: time.Now(),
		})
	}
	return drafts, nil
}
