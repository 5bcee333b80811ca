package transfer

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CaptionCreation struct {
	ClientID     string `json:"client_id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Platform     string `json:"platform"`
	Status       string `json:"status"`
	ScheduledFor string `json:"scheduled_for"`
	ImageURL     string `json:"image_url"`
}

func (c CaptionCreation) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.Content, validation.Required),
		validation.Field(&c.Platform, validation.Required, validation.In("instagram", "facebook", "linkedin")),
		validation.Field(&c.Status, validation.In("draft", "scheduled", "published", "failed")),
	)
}

// CaptionUpdate carries a partial update; nil fields are left untouched.
type CaptionUpdate struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	Platform     *string `json:"platform"`
	Status       *string `json:"status"`
	ScheduledFor *string `json:"scheduled_for"`
	ImageURL     *string `json:"image_url"`
}

type CaptionFilter struct {
	ClientID string `json:"client_id"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
}

type ScheduleRequest struct {
	ScheduledFor string `json:"scheduled_for"`
}

func (s ScheduleRequest) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ScheduledFor, validation.Required),
	)
}

type GenerationRequest struct {
	ClientID string `json:"client_id"`
	Platform string `json:"platform"`
	Prompt   string `json:"prompt"`
}

func (g GenerationRequest) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.ClientID, validation.Required),
		validation.Field(&g.Platform, validation.Required, validation.In("instagram", "facebook", "linkedin")),
		validation.Field(&g.Prompt, validation.Required),
	)
}

// GenerationPayload is the JSON body sent to the generation webhook.
type GenerationPayload struct {
	Prompt        string            `json:"prompt"`
	Platform      string            `json:"platform"`
	Client        string            `json:"client"`
	ClientName    string            `json:"clientName"`
	ClientDetails ClientDetails     `json:"clientDetails"`
	Persona       GenerationPersona `json:"persona"`
}

type ClientDetails struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

type GenerationPersona struct {
	ToneOfVoice    string   `json:"tone_of_voice"`
	Keywords       []string `json:"keywords"`
	TargetAudience string   `json:"target_audience"`
	Values         string   `json:"values"`
}

type SettingsUpdate struct {
	WebhookURL    string `json:"webhook_url"`
	WebhookSecret string `json:"webhook_secret"`
}

func (s SettingsUpdate) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.WebhookURL, validation.Required),
	)
}
