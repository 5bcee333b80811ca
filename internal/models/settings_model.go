package models

import "time"

// Settings holds the per-user caption generation configuration. The
// webhook secret is stored encrypted and never serialized.
type Settings struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	WebhookURL    string    `db:"webhook_url" json:"webhook_url"`
	WebhookSecret string    `db:"webhook_secret" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
