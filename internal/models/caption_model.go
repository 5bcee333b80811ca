package models

import "time"

type Caption struct {
	ID           string     `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	ClientID     string     `db:"client_id" json:"client_id"`
	Title        string     `db:"title" json:"title"`
	Content      string     `db:"content" json:"content"`
	Platform     string     `db:"platform" json:"platform"`
	Status       string     `db:"status" json:"status"`
	ScheduledFor *time.Time `db:"scheduled_for" json:"scheduled_for,omitempty"`
	ImageURL     string     `db:"image_url" json:"image_url,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	// Joined from the clients table on list queries.
	ClientName string `db:"client_name" json:"client_name,omitempty"`
}

const (
	CaptionStatusDraft     = "draft"
	CaptionStatusScheduled = "scheduled"
	CaptionStatusPublished = "published"
	CaptionStatusFailed    = "failed"
)

const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformLinkedin  = "linkedin"
)

func IsValidPlatform(platform string) bool {
	switch platform {
	case PlatformInstagram, PlatformFacebook, PlatformLinkedin:
		return true
	}
	return false
}

// validTransitions is the caption lifecycle. Status changes are validated
// here instead of being arbitrary field writes; published is terminal.
var validTransitions = map[string][]string{
	CaptionStatusDraft:     {CaptionStatusScheduled, CaptionStatusPublished},
	CaptionStatusScheduled: {CaptionStatusPublished, CaptionStatusFailed, CaptionStatusDraft},
	CaptionStatusFailed:    {CaptionStatusScheduled, CaptionStatusDraft},
	CaptionStatusPublished: {},
}

func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CalendarEvent is a read-only projection of a scheduled caption.
type CalendarEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Platform string `json:"platform"`
	Client   string `json:"client"`
}
