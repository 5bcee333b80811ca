package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/repository"
	"github.com/agenciakit/captionflow/internal/transfer"
)

const captionTitleLimit = 50

type CaptionService interface {
	List(ctx context.Context, userID int64, filter *transfer.CaptionFilter) ([]*models.Caption, error)
	Get(ctx context.Context, userID int64, captionID string) (*models.Caption, error)
	CreateSecurely(ctx context.Context, userID int64, fields *transfer.CaptionCreation) (*models.Caption, error)
	Update(ctx context.Context, userID int64, captionID string, fields *transfer.CaptionUpdate) (*models.Caption, error)
	Schedule(ctx context.Context, userID int64, captionID string, req *transfer.ScheduleRequest) (*models.Caption, time.Duration, error)
	Remove(ctx context.Context, userID int64, captionID string) error
	Publish(ctx context.Context, captionID string) (*models.Caption, error)
	MarkFailed(ctx context.Context, captionID string) (*models.Caption, error)
}

type captionService struct {
	cp repository.CaptionRepository
	c  repository.ClientRepository
}

func NewCaptionService(cp repository.CaptionRepository, c repository.ClientRepository) CaptionService {
	return &captionService{
		cp: cp,
		c:  c,
	}
}

func (s *captionService) List(ctx context.Context, userID int64, filter *transfer.CaptionFilter) ([]*models.Caption, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	return s.cp.List(ctx, userID, filter)
}

func (s *captionService) Get(ctx context.Context, userID int64, captionID string) (*models.Caption, error) {
	caption, isExist, err := s.cp.GetByID(ctx, captionID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, nil
	}
	if caption.UserID != userID {
		return nil, ErrNoPermission
	}
	return caption, nil
}

// CreateSecurely inserts a caption after verifying the session owns the
// target client. A client owned by someone else looks the same as a
// missing one from the caller's side.
func (s *captionService) CreateSecurely(ctx context.Context, userID int64, fields *transfer.CaptionCreation) (*models.Caption, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	if err := fields.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	isOwner, err := s.c.CheckByUserID(ctx, fields.ClientID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNoPermission
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	status := fields.Status
	if status == "" {
		status = models.CaptionStatusDraft
	}

	title := fields.Title
	if title == "" {
		title = DeriveTitle(fields.Content)
	}

	caption := &models.Caption{
		ID:        id,
		UserID:    userID,
		ClientID:  fields.ClientID,
		Title:     title,
		Content:   fields.Content,
		Platform:  fields.Platform,
		Status:    status,
		ImageURL:  fields.ImageURL,
		CreatedAt: time.Now(),
	}

	if fields.ScheduledFor != "" {
		at, err := time.Parse(time.RFC3339, fields.ScheduledFor)
		if err != nil {
			slog.Info(err.Error())
			return nil, errors.New("scheduled_for must be an RFC 3339 timestamp")
		}
		caption.ScheduledFor = &at
	}

	if err := s.cp.Create(ctx, caption); err != nil {
		return nil, translateCaptionWriteError(err)
	}

	s.refreshRecentCaptions(ctx, fields.ClientID)

	return caption, nil
}

// refreshRecentCaptions keeps the denormalized preview on the client row
// current. Failures are logged and swallowed; the caption itself is
// already persisted.
func (s *captionService) refreshRecentCaptions(ctx context.Context, clientID string) {
	captions, err := s.cp.ListByClientID(ctx, clientID)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	recent := make([]models.RecentCaption, 0, models.RecentCaptionLimit)
	for _, caption := range captions {
		if len(recent) == models.RecentCaptionLimit {
			break
		}
		recent = append(recent, models.RecentCaption{
			ID:        caption.ID,
			Content:   caption.Content,
			Platform:  caption.Platform,
			CreatedAt: caption.CreatedAt.Format(time.RFC3339),
		})
	}

	if err := s.c.UpdateRecentCaptions(ctx, clientID, recent); err != nil {
		slog.Info(err.Error())
	}
}

func (s *captionService) Update(ctx context.Context, userID int64, captionID string, fields *transfer.CaptionUpdate) (*models.Caption, error) {
	caption, err := s.ownedCaption(ctx, userID, captionID)
	if err != nil {
		return nil, err
	}

	if fields.Title != nil {
		caption.Title = *fields.Title
	}
	if fields.Content != nil {
		caption.Content = *fields.Content
		if fields.Title == nil && caption.Title == "" {
			caption.Title = DeriveTitle(caption.Content)
		}
	}
	if fields.Platform != nil {
		if !models.IsValidPlatform(*fields.Platform) {
			return nil, errors.New("unknown platform")
		}
		caption.Platform = *fields.Platform
	}
	if fields.Status != nil {
		if !models.CanTransition(caption.Status, *fields.Status) {
			return nil, ErrInvalidTransition
		}
		caption.Status = *fields.Status
	}
	if fields.ScheduledFor != nil {
		if *fields.ScheduledFor == "" {
			caption.ScheduledFor = nil
		} else {
			at, err := time.Parse(time.RFC3339, *fields.ScheduledFor)
			if err != nil {
				slog.Info(err.Error())
				return nil, errors.New("scheduled_for must be an RFC 3339 timestamp")
			}
			caption.ScheduledFor = &at
		}
	}
	if fields.ImageURL != nil {
		caption.ImageURL = *fields.ImageURL
	}

	if err := s.cp.Update(ctx, caption); err != nil {
		return nil, translateCaptionWriteError(err)
	}
	return caption, nil
}

// Schedule moves a caption into the scheduled state and returns how long
// until it is due, for the task queue.
func (s *captionService) Schedule(ctx context.Context, userID int64, captionID string, req *transfer.ScheduleRequest) (*models.Caption, time.Duration, error) {
	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	at, err := time.Parse(time.RFC3339, req.ScheduledFor)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, errors.New("scheduled_for must be an RFC 3339 timestamp")
	}

	caption, err := s.ownedCaption(ctx, userID, captionID)
	if err != nil {
		return nil, 0, err
	}

	if !models.CanTransition(caption.Status, models.CaptionStatusScheduled) {
		return nil, 0, ErrInvalidTransition
	}

	caption.Status = models.CaptionStatusScheduled
	caption.ScheduledFor = &at

	if err := s.cp.Update(ctx, caption); err != nil {
		return nil, 0, translateCaptionWriteError(err)
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	return caption, delay, nil
}

func (s *captionService) Remove(ctx context.Context, userID int64, captionID string) error {
	if _, err := s.ownedCaption(ctx, userID, captionID); err != nil {
		return err
	}
	return s.cp.Remove(ctx, captionID)
}

// Publish is called by the worker when a scheduled caption comes due.
func (s *captionService) Publish(ctx context.Context, captionID string) (*models.Caption, error) {
	caption, isExist, err := s.cp.GetByID(ctx, captionID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, errors.New("caption not found")
	}

	if !models.CanTransition(caption.Status, models.CaptionStatusPublished) {
		return nil, ErrInvalidTransition
	}

	if err := s.cp.UpdateStatus(ctx, models.CaptionStatusPublished, captionID); err != nil {
		return nil, err
	}
	caption.Status = models.CaptionStatusPublished
	return caption, nil
}

func (s *captionService) MarkFailed(ctx context.Context, captionID string) (*models.Caption, error) {
	caption, isExist, err := s.cp.GetByID(ctx, captionID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, errors.New("caption not found")
	}

	if !models.CanTransition(caption.Status, models.CaptionStatusFailed) {
		return nil, ErrInvalidTransition
	}

	if err := s.cp.UpdateStatus(ctx, models.CaptionStatusFailed, captionID); err != nil {
		return nil, err
	}
	caption.Status = models.CaptionStatusFailed
	return caption, nil
}

func (s *captionService) ownedCaption(ctx context.Context, userID int64, captionID string) (*models.Caption, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	isOwner, err := s.cp.CheckByUserID(ctx, captionID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, ErrNoPermission
	}

	caption, isExist, err := s.cp.GetByID(ctx, captionID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrNoPermission
	}
	return caption, nil
}

// DeriveTitle builds a short title from caption content, truncated on a
// rune boundary.
func DeriveTitle(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= captionTitleLimit {
		return string(runes)
	}
	return string(runes[:captionTitleLimit]) + "..."
}

// translateCaptionWriteError maps Postgres failures onto messages the
// API can show. Row-level security denials are reported as permission
// errors.
func translateCaptionWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23503":
		return errors.New("caption references a client that does not exist")
	case "23505":
		return errors.New("a caption with this id already exists")
	case "42P01":
		return errors.New("caption storage is not provisioned")
	}

	if strings.Contains(strings.ToLower(pqErr.Message), "row-level security") {
		return ErrNoPermission
	}
	return err
}
