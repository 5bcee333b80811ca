package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/transfer"
)

func TestCaptionsLoadPublishesResult(t *testing.T) {
	svc := &stubCaptionService{
		listFn: func(context.Context, int64, *transfer.CaptionFilter) ([]*models.Caption, error) {
			return []*models.Caption{{ID: "cap-1"}}, nil
		},
	}

	notifier := &recordingNotifier{}
	store := NewCaptionsStore(svc, notifier)

	got := store.Load(context.Background(), 1, nil)
	require.Len(t, got, 1)
	assert.Empty(t, notifier.errors)

	cached, loading, err := store.snapshot()
	require.NoError(t, err)
	assert.False(t, loading)
	require.Len(t, cached, 1)
	assert.Equal(t, "cap-1", cached[0].ID)
}

func TestCaptionsLoadDegradesToEmptyList(t *testing.T) {
	svc := &stubCaptionService{
		listFn: func(context.Context, int64, *transfer.CaptionFilter) ([]*models.Caption, error) {
			return nil, errors.New("db unavailable")
		},
	}

	notifier := &recordingNotifier{}
	store := NewCaptionsStore(svc, notifier)

	got := store.Load(context.Background(), 1, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.Len(t, notifier.errors, 1)

	_, _, err := store.snapshot()
	require.Error(t, err)
}
