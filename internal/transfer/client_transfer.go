package transfer

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ClientCreation struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	AvatarURL   string `json:"avatar_url"`
	Description string `json:"description"`
}

func (c ClientCreation) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&c.Industry, validation.Required, validation.Length(1, 120)),
	)
}

// ClientUpdate carries a partial update; nil fields are left untouched.
type ClientUpdate struct {
	Name        *string `json:"name"`
	Industry    *string `json:"industry"`
	AvatarURL   *string `json:"avatar_url"`
	Description *string `json:"description"`
}

// PersonaUpdate accepts keywords in any of the legacy representations
// (array, JSON string, comma-separated string); they are normalized
// before the write.
type PersonaUpdate struct {
	ToneOfVoice    string `json:"tone_of_voice"`
	TargetAudience string `json:"target_audience"`
	Values         string `json:"values"`
	Keywords       any    `json:"keywords"`
}

type SocialMediaInput struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
}

func (s SocialMediaInput) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Platform, validation.Required),
		validation.Field(&s.Username, validation.Required),
	)
}

type SocialMediaUpdate struct {
	Entries []SocialMediaInput `json:"entries"`
}
