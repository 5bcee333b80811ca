package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/transfer"
)

func TestCreateSecurelyRejectsAnonymous(t *testing.T) {
	svc := NewCaptionService(newFakeCaptionRepo(), newFakeClientRepo())

	_, err := svc.CreateSecurely(context.Background(), 0, &transfer.CaptionCreation{
		ClientID: "client-1",
		Content:  "hello",
		Platform: models.PlatformInstagram,
	})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCreateSecurelyRejectsForeignClient(t *testing.T) {
	captions := newFakeCaptionRepo()
	clients := newFakeClientRepo(&models.Client{ID: "client-1", UserID: 2, Name: "Café Aroma"})
	svc := NewCaptionService(captions, clients)

	_, err := svc.CreateSecurely(context.Background(), 1, &transfer.CaptionCreation{
		ClientID: "client-1",
		Content:  "hello",
		Platform: models.PlatformInstagram,
	})
	assert.ErrorIs(t, err, ErrNoPermission)
	assert.Zero(t, captions.createdCount)
}

func TestCreateSecurelyDerivesTitle(t *testing.T) {
	captions := newFakeCaptionRepo()
	clients := newFakeClientRepo(&models.Client{ID: "client-1", UserID: 1, Name: "Café Aroma"})
	svc := NewCaptionService(captions, clients)

	long := strings.Repeat("caption text ", 10)
	caption, err := svc.CreateSecurely(context.Background(), 1, &transfer.CaptionCreation{
		ClientID: "client-1",
		Content:  long,
		Platform: models.PlatformInstagram,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(caption.Title, "..."))
	assert.Len(t, []rune(caption.Title), captionTitleLimit+3)
	assert.Equal(t, models.CaptionStatusDraft, caption.Status)
	assert.NotEmpty(t, caption.ID)
}

func TestCreateSecurelyUpdatesRecentCaptions(t *testing.T) {
	captions := newFakeCaptionRepo()
	clients := newFakeClientRepo(&models.Client{ID: "client-1", UserID: 1, Name: "Café Aroma"})
	svc := NewCaptionService(captions, clients)

	for i := 0; i < models.RecentCaptionLimit+2; i++ {
		_, err := svc.CreateSecurely(context.Background(), 1, &transfer.CaptionCreation{
			ClientID: "client-1",
			Content:  "content",
			Platform: models.PlatformInstagram,
		})
		require.NoError(t, err)
	}

	assert.Len(t, clients.recent["client-1"], models.RecentCaptionLimit)
}

func TestCreateSecurelyTranslatesConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		code pq.ErrorCode
		want string
	}{
		{"foreign key", "23503", "does not exist"},
		{"duplicate", "23505", "already exists"},
		{"missing table", "42P01", "not provisioned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captions := newFakeCaptionRepo()
			captions.createErr = &pq.Error{Code: tt.code}
			clients := newFakeClientRepo(&models.Client{ID: "client-1", UserID: 1})
			svc := NewCaptionService(captions, clients)

			_, err := svc.CreateSecurely(context.Background(), 1, &transfer.CaptionCreation{
				ClientID: "client-1",
				Content:  "hello",
				Platform: models.PlatformInstagram,
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCreateSecurelyMapsRLSDenialToPermission(t *testing.T) {
	captions := newFakeCaptionRepo()
	captions.createErr = &pq.Error{Code: "42501", Message: "new row violates row-level security policy"}
	clients := newFakeClientRepo(&models.Client{ID: "client-1", UserID: 1})
	svc := NewCaptionService(captions, clients)

	_, err := svc.CreateSecurely(context.Background(), 1, &transfer.CaptionCreation{
		ClientID: "client-1",
		Content:  "hello",
		Platform: models.PlatformInstagram,
	})
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestUpdateEnforcesStatusTransitions(t *testing.T) {
	caption := &models.Caption{ID: "cap-1", UserID: 1, ClientID: "client-1", Status: models.CaptionStatusPublished}
	svc := NewCaptionService(newFakeCaptionRepo(caption), newFakeClientRepo())

	draft := models.CaptionStatusDraft
	_, err := svc.Update(context.Background(), 1, "cap-1", &transfer.CaptionUpdate{Status: &draft})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateRejectsForeignCaption(t *testing.T) {
	caption := &models.Caption{ID: "cap-1", UserID: 2, Status: models.CaptionStatusDraft}
	svc := NewCaptionService(newFakeCaptionRepo(caption), newFakeClientRepo())

	content := "new content"
	_, err := svc.Update(context.Background(), 1, "cap-1", &transfer.CaptionUpdate{Content: &content})
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestScheduleSetsStatusAndDelay(t *testing.T) {
	caption := &models.Caption{ID: "cap-1", UserID: 1, ClientID: "client-1", Status: models.CaptionStatusDraft}
	captions := newFakeCaptionRepo(caption)
	svc := NewCaptionService(captions, newFakeClientRepo())

	at := time.Now().Add(2 * time.Hour)
	scheduled, delay, err := svc.Schedule(context.Background(), 1, "cap-1", &transfer.ScheduleRequest{
		ScheduledFor: at.Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CaptionStatusScheduled, scheduled.Status)
	require.NotNil(t, scheduled.ScheduledFor)
	assert.Greater(t, delay, time.Hour)
	assert.Equal(t, models.CaptionStatusScheduled, captions.captions["cap-1"].Status)
}

func TestSchedulePastTimeYieldsZeroDelay(t *testing.T) {
	caption := &models.Caption{ID: "cap-1", UserID: 1, Status: models.CaptionStatusDraft}
	svc := NewCaptionService(newFakeCaptionRepo(caption), newFakeClientRepo())

	at := time.Now().Add(-time.Hour)
	_, delay, err := svc.Schedule(context.Background(), 1, "cap-1", &transfer.ScheduleRequest{
		ScheduledFor: at.Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), delay)
}

func TestPublishFromScheduled(t *testing.T) {
	caption := &models.Caption{ID: "cap-1", UserID: 1, Status: models.CaptionStatusScheduled}
	captions := newFakeCaptionRepo(caption)
	svc := NewCaptionService(captions, newFakeClientRepo())

	published, err := svc.Publish(context.Background(), "cap-1")
	require.NoError(t, err)
	assert.Equal(t, models.CaptionStatusPublished, published.Status)
	assert.Equal(t, models.CaptionStatusPublished, captions.captions["cap-1"].Status)
}

func TestPublishRejectsTerminalState(t *testing.T) {
	caption := &models.Caption{ID: "cap-1", UserID: 1, Status: models.CaptionStatusFailed}
	svc := NewCaptionService(newFakeCaptionRepo(caption), newFakeClientRepo())

	_, err := svc.Publish(context.Background(), "cap-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeriveTitleKeepsShortContent(t *testing.T) {
	assert.Equal(t, "short caption", DeriveTitle("  short caption  "))
}
