package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/transfer"
)

func generationFixture() (*fakeClientRepo, *fakePersonaRepo) {
	clients := newFakeClientRepo(&models.Client{ID: "client-1", UserID: 1, Name: "Café Aroma", Industry: "Gastronomia"})
	personas := newFakePersonaRepo(&models.Persona{
		ID:             "p-1",
		ClientID:       "client-1",
		ToneOfVoice:    "warm",
		TargetAudience: "coffee lovers",
		Keywords:       []string{"coffee", "brunch"},
	})
	return clients, personas
}

func generationRequest() *transfer.GenerationRequest {
	return &transfer.GenerationRequest{
		ClientID: "client-1",
		Platform: models.PlatformInstagram,
		Prompt:   "new seasonal menu",
	}
}

func TestGenerateSendsPersonaPayload(t *testing.T) {
	var received transfer.GenerationPayload
	var gotSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Webhook-Secret")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(map[string]any{"output": "Fresh drinks await you!"})
	}))
	defer server.Close()

	clients, personas := generationFixture()
	svc := NewGeneratorService(clients, personas, &fakeSettingsService{webhookURL: server.URL, webhookSecret: "s3cret"})

	drafts, err := svc.Generate(context.Background(), 1, generationRequest())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Fresh drinks await you!", drafts[0].Content)
	assert.Equal(t, models.CaptionStatusDraft, drafts[0].Status)

	assert.Equal(t, "s3cret", gotSecret)
	assert.Equal(t, "new seasonal menu", received.Prompt)
	assert.Equal(t, "Café Aroma", received.ClientName)
	assert.Equal(t, "Gastronomia", received.ClientDetails.Industry)
	assert.Equal(t, "warm", received.Persona.ToneOfVoice)
	assert.Equal(t, []string{"coffee", "brunch"}, received.Persona.Keywords)
}

func TestGenerateParsesCaptionArrays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"captions": []any{
			"First caption",
			map[string]any{"caption": "Second caption"},
		}})
	}))
	defer server.Close()

	clients, personas := generationFixture()
	svc := NewGeneratorService(clients, personas, &fakeSettingsService{webhookURL: server.URL})

	drafts, err := svc.Generate(context.Background(), 1, generationRequest())
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "First caption", drafts[0].Content)
	assert.Equal(t, "Second caption", drafts[1].Content)
}

func TestGenerateTreatsPlainTextAsCaption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Just a plain caption from the webhook"))
	}))
	defer server.Close()

	clients, personas := generationFixture()
	svc := NewGeneratorService(clients, personas, &fakeSettingsService{webhookURL: server.URL})

	drafts, err := svc.Generate(context.Background(), 1, generationRequest())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Just a plain caption from the webhook", drafts[0].Content)
}

func TestGenerateFallsBackOnHTMLResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>error page</body></html>"))
	}))
	defer server.Close()

	clients, personas := generationFixture()
	svc := NewGeneratorService(clients, personas, &fakeSettingsService{webhookURL: server.URL})

	drafts, err := svc.Generate(context.Background(), 1, generationRequest())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Contains(t, drafts[0].Content, "Café Aroma")
}

func TestGenerateFallsBackOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	clients, personas := generationFixture()
	svc := NewGeneratorService(clients, personas, &fakeSettingsService{webhookURL: server.URL})

	drafts, err := svc.Generate(context.Background(), 1, generationRequest())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Contains(t, drafts[0].Content, "Café Aroma")
}

func TestGenerateRejectsForeignClient(t *testing.T) {
	clients := newFakeClientRepo(&models.Client{ID: "client-1", UserID: 2, Name: "Café Aroma"})
	svc := NewGeneratorService(clients, newFakePersonaRepo(), &fakeSettingsService{webhookURL: "http://unused"})

	_, err := svc.Generate(context.Background(), 1, generationRequest())
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestParseWebhookBodyShapeOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"output field", `{"output":"a"}`, []string{"a"}},
		{"caption field", `{"caption":"b"}`, []string{"b"}},
		{"nested json output", `{"json":{"output":"c"}}`, []string{"c"}},
		{"nested data output", `{"data":{"output":"d"}}`, []string{"d"}},
		{"result field", `{"result":"e"}`, []string{"e"}},
		{"string array", `["x","y"]`, []string{"x", "y"}},
		{"bare string", `"z"`, []string{"z"}},
		{"empty body", ``, nil},
		{"unusable object", `{"unrelated":1}`, nil},
		{"full html page", `<!DOCTYPE html><html><body>error</body></html>`, nil},
		{"markup fragment", `<div>error</div>`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseWebhookBody([]byte(tt.body)))
		})
	}
}
