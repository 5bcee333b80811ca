package models

import "time"

type Client struct {
	ID             string          `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	Name           string          `db:"name" json:"name"`
	Industry       string          `db:"industry" json:"industry"`
	AvatarURL      string          `db:"avatar_url" json:"avatar_url,omitempty"`
	Initials       string          `db:"initials" json:"initials,omitempty"`
	Description    string          `db:"description" json:"description,omitempty"`
	RecentCaptions []RecentCaption `db:"recent_captions" json:"recent_captions"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`

	Persona     *Persona      `json:"persona,omitempty"`
	SocialMedia []SocialMedia `json:"social_media,omitempty"`
	Captions    []*Caption    `json:"captions,omitempty"`
}

// RecentCaption is the embedded shape kept on the client row itself,
// most-recent-first, capped at RecentCaptionLimit entries.
type RecentCaption struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"created_at"`
}

const RecentCaptionLimit = 5

type Persona struct {
	ID             string    `db:"id" json:"id"`
	ClientID       string    `db:"client_id" json:"client_id"`
	ToneOfVoice    string    `db:"tone_of_voice" json:"tone_of_voice"`
	TargetAudience string    `db:"target_audience" json:"target_audience"`
	Values         string    `db:"values" json:"values"`
	Keywords       []string  `db:"keywords" json:"keywords"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type SocialMedia struct {
	ID        string    `db:"id" json:"id"`
	ClientID  string    `db:"client_id" json:"client_id"`
	Platform  string    `db:"platform" json:"platform"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
