package models

import "time"

// PublishHistory records one publish attempt for a scheduled caption.
type PublishHistory struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	CaptionID    string    `db:"caption_id" json:"caption_id"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
