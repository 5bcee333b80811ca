package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(CaptionStatusDraft, CaptionStatusScheduled))
	assert.True(t, CanTransition(CaptionStatusDraft, CaptionStatusPublished))
	assert.True(t, CanTransition(CaptionStatusScheduled, CaptionStatusPublished))
	assert.True(t, CanTransition(CaptionStatusScheduled, CaptionStatusFailed))
	assert.True(t, CanTransition(CaptionStatusScheduled, CaptionStatusDraft))
	assert.True(t, CanTransition(CaptionStatusFailed, CaptionStatusScheduled))

	// published is terminal
	assert.False(t, CanTransition(CaptionStatusPublished, CaptionStatusDraft))
	assert.False(t, CanTransition(CaptionStatusPublished, CaptionStatusScheduled))
	assert.False(t, CanTransition(CaptionStatusPublished, CaptionStatusFailed))

	// no skipping into failed from draft
	assert.False(t, CanTransition(CaptionStatusDraft, CaptionStatusFailed))

	// self transitions are no-ops
	assert.True(t, CanTransition(CaptionStatusDraft, CaptionStatusDraft))
}

func TestIsValidPlatform(t *testing.T) {
	assert.True(t, IsValidPlatform(PlatformInstagram))
	assert.True(t, IsValidPlatform(PlatformFacebook))
	assert.True(t, IsValidPlatform(PlatformLinkedin))
	assert.False(t, IsValidPlatform("tiktok"))
	assert.False(t, IsValidPlatform(""))
}
