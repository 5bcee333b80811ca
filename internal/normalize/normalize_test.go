package normalize

import (
	"testing"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestToArray(t *testing.T) {
	assert.Empty(t, ToArray(nil))
	assert.Equal(t, []any{"a", "b"}, ToArray([]any{"a", "b"}))

	// JSON-encoded string representations
	assert.Equal(t, []any{"a"}, ToArray(`["a"]`))
	assert.Equal(t, []any{map[string]any{"id": "1"}}, ToArray(`{"id":"1"}`))
	assert.Empty(t, ToArray("not json"))

	// Single object with identity-like fields wraps to one element
	obj := map[string]any{"id": "1", "content": "hello"}
	assert.Equal(t, []any{obj}, ToArray(obj))
	withContent := map[string]any{"content": "hello"}
	assert.Equal(t, []any{withContent}, ToArray(withContent))

	// Index-keyed object falls back to its values
	values := ToArray(map[string]any{"0": "a", "1": "b"})
	assert.Len(t, values, 2)

	// Bare scalars are not lists
	assert.Empty(t, ToArray(42.0))
	assert.Empty(t, ToArray(true))
}

func TestToArrayIdempotent(t *testing.T) {
	inputs := []any{nil, []any{"x"}, `["x"]`, map[string]any{"id": "1"}}
	for _, input := range inputs {
		once := ToArray(input)
		assert.Equal(t, once, ToArray(any(once)))
	}
}

func TestKeywords(t *testing.T) {
	assert.Empty(t, Keywords(nil))
	assert.Equal(t, []string{"a", "b"}, Keywords([]any{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, Keywords(`["a","b"]`))
	assert.Equal(t, []string{"quality", "service"}, Keywords("quality, service"))
	assert.Equal(t, []string{"solo"}, Keywords("solo"))
	assert.Empty(t, Keywords("   "))
	assert.Empty(t, Keywords(12.5))
}

func TestKeywordsRaw(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, KeywordsRaw([]byte(`["a","b"]`)))
	// Legacy double-encoded representation
	assert.Equal(t, []string{"a", "b"}, KeywordsRaw([]byte(`"[\"a\",\"b\"]"`)))
	assert.Empty(t, KeywordsRaw(nil))
	assert.Empty(t, KeywordsRaw([]byte(`null`)))
}

func TestRecentCaptions(t *testing.T) {
	captions := RecentCaptions([]byte(`[{"id":"c1","content":"hi","platform":"instagram"}]`))
	assert.Len(t, captions, 1)
	assert.Equal(t, "c1", captions[0].ID)

	// Single object coerces to a one-element list
	captions = RecentCaptions([]byte(`{"id":"c2","content":"solo"}`))
	assert.Len(t, captions, 1)

	// Bare scalar and empty object have no identity-like fields
	assert.Empty(t, RecentCaptions([]byte(`42`)))
	assert.Empty(t, RecentCaptions([]byte(`{}`)))
	assert.Empty(t, RecentCaptions(nil))
}

func TestExtractCaption(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  string
		found bool
	}{
		{"output", map[string]any{"output": "Hello"}, "Hello", true},
		{"caption", map[string]any{"caption": "Hi"}, "Hi", true},
		{"json.output", map[string]any{"json": map[string]any{"output": "Nested"}}, "Nested", true},
		{"data.output", map[string]any{"data": map[string]any{"output": "Deep"}}, "Deep", true},
		{"data.caption", map[string]any{"data": map[string]any{"caption": "Hi"}}, "Hi", true},
		{"result", map[string]any{"result": "Res"}, "Res", true},
		{"plain string", "raw text", "raw text", true},
		{"unknown object", map[string]any{"foo": "bar"}, "", false},
		{"nil", nil, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := ExtractCaption(tc.input)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractCaptionOrder(t *testing.T) {
	// output wins over caption and result when several shapes coexist
	got, found := ExtractCaption(map[string]any{
		"output":  "first",
		"caption": "second",
		"result":  "third",
	})
	assert.True(t, found)
	assert.Equal(t, "first", got)
}

func TestDedupeByPlatform(t *testing.T) {
	entries := []models.SocialMedia{
		{Platform: "instagram", Username: "@first"},
		{Platform: "Instagram", Username: "@second"},
		{Platform: "facebook", Username: "@page"},
		{Platform: "FACEBOOK", Username: "@dup"},
	}

	unique := DedupeByPlatform(entries)
	assert.Len(t, unique, 2)
	assert.Equal(t, "@first", unique[0].Username)
	assert.Equal(t, "@page", unique[1].Username)

	// Applying the rule twice changes nothing
	assert.Equal(t, unique, DedupeByPlatform(unique))
}

func TestDedupeByPlatformEmpty(t *testing.T) {
	assert.Empty(t, DedupeByPlatform(nil))
}
