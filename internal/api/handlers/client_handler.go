package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/agenciakit/captionflow/internal/service"
	"github.com/agenciakit/captionflow/internal/state"
	"github.com/agenciakit/captionflow/internal/transfer"
)

type ClientHandler struct {
	s     service.ClientService
	store *state.ClientsStore
}

func NewClientHandler(service service.ClientService, store *state.ClientsStore) *ClientHandler {
	return &ClientHandler{s: service, store: store}
}

func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	userID := GetUserID(c)

	clients := h.store.Load(c.Context(), userID)

	return c.Status(fiber.StatusOK).JSON(clients)
}

func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	userID := GetUserID(c)
	clientID := c.Params("id")

	client, err := h.s.Get(c.Context(), userID, clientID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to load client",
		})
	}
	if client == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Client not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(client)
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ClientCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	client, err := h.s.Create(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	userID := GetUserID(c)
	clientID := c.Params("id")

	var req transfer.ClientUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.Update(c.Context(), userID, clientID, &req); err != nil {
		return clientWriteError(c, err, "Unable to update client")
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ClientHandler) RemoveClient(c *fiber.Ctx) error {
	userID := GetUserID(c)
	clientID := c.Params("id")

	if err := h.s.Delete(c.Context(), userID, clientID); err != nil {
		return clientWriteError(c, err, "Unable to remove client")
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ClientHandler) UpdatePersona(c *fiber.Ctx) error {
	userID := GetUserID(c)
	clientID := c.Params("id")

	var req transfer.PersonaUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	persona, err := h.s.UpsertPersona(c.Context(), userID, clientID, &req)
	if err != nil {
		return clientWriteError(c, err, "Unable to update persona")
	}

	return c.Status(fiber.StatusOK).JSON(persona)
}

func (h *ClientHandler) UpdateSocialMedia(c *fiber.Ctx) error {
	userID := GetUserID(c)
	clientID := c.Params("id")

	var req transfer.SocialMediaUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	entries, err := h.s.ReplaceSocialMedia(c.Context(), userID, clientID, &req)
	if err != nil {
		return clientWriteError(c, err, "Unable to update social media")
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}

func clientWriteError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, service.ErrNoPermission) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fallback,
	})
}
