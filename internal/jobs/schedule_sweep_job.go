package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/agenciakit/captionflow/internal/mirror"
	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/queue"
	"github.com/agenciakit/captionflow/internal/repository"
)

type ScheduleSweepJob struct {
	cp     repository.CaptionRepository
	m      *mirror.Store
	client *asynq.Client
}

func NewScheduleSweepJob(cp repository.CaptionRepository, m *mirror.Store, client *asynq.Client) *ScheduleSweepJob {
	return &ScheduleSweepJob{
		cp:     cp,
		m:      m,
		client: client,
	}
}

// Sweep re-enqueues scheduled captions whose due time has passed
// without a publish, then rebuilds the mirror from the database. Missed
// captions show up after a restart where pending asynq tasks were lost.
func (j *ScheduleSweepJob) Sweep() {
	ctx := context.Background()

	due, err := j.cp.ListDueScheduled(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10)

	for _, caption := range due {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(captionID string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			err := queue.EnqueueCaption(j.client, queue.PublishCaptionPayload{CaptionID: captionID}, 0)
			if err != nil {
				slog.Info(err.Error())
			}
		}(caption.ID)
	}

	wg.Wait()

	j.rebuildMirror(ctx)
}

func (j *ScheduleSweepJob) rebuildMirror(ctx context.Context) {
	scheduled, err := j.cp.ListScheduled(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	byUser := make(map[int64][]*models.Caption)
	for _, caption := range scheduled {
		byUser[caption.UserID] = append(byUser[caption.UserID], caption)
	}

	for userID, captions := range byUser {
		if err := j.m.Rebuild(ctx, userID, captions); err != nil {
			slog.Info(err.Error())
		}
	}
}
