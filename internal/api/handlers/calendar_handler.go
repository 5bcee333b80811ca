package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agenciakit/captionflow/internal/mirror"
	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/service"
	"github.com/agenciakit/captionflow/internal/transfer"
)

const calendarTitleLimit = 30

type CalendarHandler struct {
	s service.CaptionService
	m *mirror.Store
}

func NewCalendarHandler(service service.CaptionService, m *mirror.Store) *CalendarHandler {
	return &CalendarHandler{s: service, m: m}
}

// ListEvents projects scheduled captions onto calendar events, merged
// with the mirrored schedule. The database rows win on conflicting ids;
// when the database is unreachable the mirror is served alone.
func (h *CalendarHandler) ListEvents(c *fiber.Ctx) error {
	userID := GetUserID(c)

	captions, err := h.s.List(c.Context(), userID, &transfer.CaptionFilter{
		Status: models.CaptionStatusScheduled,
	})
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(h.eventsFromMirror(c, userID))
	}

	events := make([]models.CalendarEvent, 0, len(captions))
	seen := make(map[string]bool, len(captions))
	for _, caption := range captions {
		if caption.ScheduledFor == nil {
			continue
		}
		seen[caption.ID] = true
		events = append(events, models.CalendarEvent{
			ID:       caption.ID,
			Title:    eventTitle(caption.Title, caption.Content),
			Date:     caption.ScheduledFor.Format("2006-01-02"),
			Platform: caption.Platform,
			Client:   caption.ClientName,
		})
	}

	for _, event := range h.eventsFromMirror(c, userID) {
		if !seen[event.ID] {
			events = append(events, event)
		}
	}

	return c.Status(fiber.StatusOK).JSON(events)
}

func (h *CalendarHandler) eventsFromMirror(c *fiber.Ctx, userID int64) []models.CalendarEvent {
	entries, err := h.m.Entries(c.Context(), userID)
	if err != nil {
		return []models.CalendarEvent{}
	}

	events := make([]models.CalendarEvent, 0, len(entries))
	for _, entry := range entries {
		at, err := time.Parse(time.RFC3339, entry.ScheduledFor)
		if err != nil {
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:       entry.ID,
			Title:    eventTitle("", entry.Text),
			Date:     at.Format("2006-01-02"),
			Platform: entry.Platform,
			Client:   entry.ClientName,
		})
	}
	return events
}

func eventTitle(title, content string) string {
	if title != "" {
		return title
	}
	runes := []rune(content)
	if len(runes) <= calendarTitleLimit {
		return content
	}
	return string(runes[:calendarTitleLimit]) + "..."
}
