package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agenciakit/captionflow/internal/service"
)

type ApiKeysHandler struct {
	s service.ApiKeyService
}

func NewApiKeysHandler(service service.ApiKeyService) *ApiKeysHandler {
	return &ApiKeysHandler{s: service}
}

func (h *ApiKeysHandler) ListKeys(c *fiber.Ctx) error {
	userID := GetUserID(c)

	keys, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list api keys",
		})
	}

	return c.Status(fiber.StatusOK).JSON(keys)
}

func (h *ApiKeysHandler) CreateKey(c *fiber.Ctx) error {
	userID := GetUserID(c)

	key, err := h.s.Create(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to create api key",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(key)
}

func (h *ApiKeysHandler) RemoveKey(c *fiber.Ctx) error {
	userID := GetUserID(c)
	keyID := int64(c.QueryInt("id", 0))

	if err := h.s.Remove(c.Context(), userID, keyID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to remove api key",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
