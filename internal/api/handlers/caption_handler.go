package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/h2non/filetype"
	"github.com/hibiken/asynq"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/agenciakit/captionflow/internal/queue"
	"github.com/agenciakit/captionflow/internal/service"
	"github.com/agenciakit/captionflow/internal/state"
	"github.com/agenciakit/captionflow/internal/transfer"
)

type CaptionHandler struct {
	s           service.CaptionService
	r2          *service.R2Service
	store       *state.CaptionsStore
	scheduled   *state.ScheduledStore
	AsynqClient *asynq.Client
}

func NewCaptionHandler(
	service service.CaptionService,
	r2 *service.R2Service,
	store *state.CaptionsStore,
	scheduled *state.ScheduledStore,
	asynqClient *asynq.Client) *CaptionHandler {
	return &CaptionHandler{
		s:           service,
		r2:          r2,
		store:       store,
		scheduled:   scheduled,
		AsynqClient: asynqClient,
	}
}

func (h *CaptionHandler) ListCaptions(c *fiber.Ctx) error {
	userID := GetUserID(c)

	filter := &transfer.CaptionFilter{
		ClientID: c.Query("client_id"),
		Platform: c.Query("platform"),
		Status:   c.Query("status"),
	}

	captions := h.store.Load(c.Context(), userID, filter)

	return c.Status(fiber.StatusOK).JSON(captions)
}

func (h *CaptionHandler) ListScheduled(c *fiber.Ctx) error {
	userID := GetUserID(c)

	captions := h.scheduled.Load(c.Context(), userID)

	return c.Status(fiber.StatusOK).JSON(captions)
}

func (h *CaptionHandler) CreateCaption(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.CaptionCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	caption, err := h.s.CreateSecurely(c.Context(), userID, &req)
	if err != nil {
		return captionWriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(caption)
}

func (h *CaptionHandler) UpdateCaption(c *fiber.Ctx) error {
	userID := GetUserID(c)
	captionID := c.Params("id")

	var req transfer.CaptionUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	caption, err := h.s.Update(c.Context(), userID, captionID, &req)
	if err != nil {
		return captionWriteError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(caption)
}

func (h *CaptionHandler) ScheduleCaption(c *fiber.Ctx) error {
	userID := GetUserID(c)
	captionID := c.Params("id")

	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	caption, delay, err := h.scheduled.Schedule(c.Context(), userID, captionID, &req)
	if err != nil {
		return captionWriteError(c, err)
	}

	err = queue.EnqueueCaption(h.AsynqClient, queue.PublishCaptionPayload{CaptionID: caption.ID}, delay)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"error": "Caption scheduled but publishing could not be queued",
		})
	}

	return c.Status(fiber.StatusOK).JSON(caption)
}

func (h *CaptionHandler) UnscheduleCaption(c *fiber.Ctx) error {
	userID := GetUserID(c)
	captionID := c.Params("id")

	caption, err := h.scheduled.Unschedule(c.Context(), userID, captionID)
	if err != nil {
		return captionWriteError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(caption)
}

func (h *CaptionHandler) RemoveCaption(c *fiber.Ctx) error {
	userID := GetUserID(c)
	captionID := c.Params("id")

	if err := h.s.Remove(c.Context(), userID, captionID); err != nil {
		return captionWriteError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *CaptionHandler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}

	kind, err := filetype.Match(buf)
	if err != nil || !isSupportedImage(kind.Extension) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only jpg and png images are supported",
		})
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	key := fmt.Sprintf("captions/%s.%s", id, kind.Extension)
	url, err := h.r2.UploadToR2(c.Context(), key, buf, kind.MIME.Value)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to upload image",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"image_url": url,
	})
}

func isSupportedImage(extension string) bool {
	switch extension {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}

func captionWriteError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrNoPermission):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}
