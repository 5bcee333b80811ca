package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/agenciakit/captionflow/internal/models"
)

func (j *Queue) HandlePublishCaptionTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishCaptionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.PublishCaption(ctx, payload.CaptionID)
}

// PublishCaption flips a due caption to published, records the outcome,
// and refreshes the mirror. A caption that was unscheduled or removed
// between enqueue and execution is skipped silently.
func (j *Queue) PublishCaption(ctx context.Context, captionID string) error {
	caption, isExist, err := j.cp.GetByID(ctx, captionID)
	if err != nil {
		return err
	}
	if !isExist {
		slog.Info("caption removed before publishing", "caption_id", captionID)
		return nil
	}
	if caption.Status != models.CaptionStatusScheduled {
		slog.Info("caption no longer scheduled", "caption_id", captionID, "status", caption.Status)
		return nil
	}

	history := models.PublishHistory{
		UserID:    caption.UserID,
		CaptionID: caption.ID,
	}

	published, err := j.cs.Publish(ctx, captionID)
	if err != nil {
		history.ErrorMessage = err.Error()
		if _, herr := j.ph.Create(ctx, &history); herr != nil {
			slog.Info(herr.Error())
		}

		if _, ferr := j.cs.MarkFailed(ctx, captionID); ferr != nil {
			slog.Info(ferr.Error())
		}
		return err
	}

	if _, err := j.ph.Create(ctx, &history); err != nil {
		slog.Info(err.Error())
	}

	j.refreshMirror(ctx, published.UserID, published.ID)
	return nil
}

func (j *Queue) refreshMirror(ctx context.Context, userID int64, captionID string) {
	// Published captions leave the scheduling view.
	if err := j.m.Remove(ctx, userID, captionID); err != nil {
		slog.Info(err.Error())
	}
}
