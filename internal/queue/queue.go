package queue

import (
	"github.com/agenciakit/captionflow/internal/mirror"
	"github.com/agenciakit/captionflow/internal/repository"
	"github.com/agenciakit/captionflow/internal/service"
)

type Queue struct {
	cs service.CaptionService
	cp repository.CaptionRepository
	ph repository.HistoryRepository
	m  *mirror.Store
}

func NewQueue(
	cs service.CaptionService,
	cp repository.CaptionRepository,
	ph repository.HistoryRepository,
	m *mirror.Store) *Queue {
	return &Queue{
		cs: cs,
		cp: cp,
		ph: ph,
		m:  m,
	}
}

const TaskTypePublishCaption = "publish:caption"

type PublishCaptionPayload struct {
	CaptionID string `json:"caption_id"`
}
