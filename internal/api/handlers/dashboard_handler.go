package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/state"
)

type DashboardHandler struct {
	clients  *state.ClientsStore
	captions *state.CaptionsStore
}

func NewDashboardHandler(clients *state.ClientsStore, captions *state.CaptionsStore) *DashboardHandler {
	return &DashboardHandler{clients: clients, captions: captions}
}

// Summary serves the dashboard from the view stores, so an unreachable
// database degrades to zero counts instead of an error.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	userID := GetUserID(c)

	clients := h.clients.Load(c.Context(), userID)
	captions := h.captions.Load(c.Context(), userID, nil)

	statusCounts := map[string]int{
		models.CaptionStatusDraft:     0,
		models.CaptionStatusScheduled: 0,
		models.CaptionStatusPublished: 0,
		models.CaptionStatusFailed:    0,
	}
	var upcoming []*models.Caption
	for _, caption := range captions {
		statusCounts[caption.Status]++
		if caption.Status == models.CaptionStatusScheduled && caption.ScheduledFor != nil {
			upcoming = append(upcoming, caption)
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledFor.Before(*upcoming[j].ScheduledFor)
	})
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"clients":  len(clients),
		"captions": len(captions),
		"statuses": statusCounts,
		"upcoming": upcoming,
	})
}
