package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/service"
	"github.com/agenciakit/captionflow/internal/transfer"
)

type GeneratorHandler struct {
	s service.GeneratorService
}

func NewGeneratorHandler(service service.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{s: service}
}

func (h *GeneratorHandler) GenerateCaptions(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	// The generator page links from a client card with ?client=.
	if req.ClientID == "" {
		req.ClientID = c.Query("client")
	}
	if req.Platform == "" {
		req.Platform = models.PlatformInstagram
	}

	drafts, err := h.s.Generate(c.Context(), userID, &req)
	if err != nil {
		return captionWriteError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(drafts)
}
