// Package mirror keeps a denormalized copy of scheduled captions and
// client summaries in Redis so list views stay readable when Postgres
// is unavailable. Every key is scoped to one user; a user's reads can
// never surface another user's entries. The schedule pipeline is the
// only writer; the copy can always be rebuilt from the database.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agenciakit/captionflow/internal/models"
)

func captionsKey(userID int64) string {
	return fmt.Sprintf("captions:%d", userID)
}

func clientsKey(userID int64) string {
	return fmt.Sprintf("clients:%d", userID)
}

// KV is the small slice of Redis the mirror needs. Get returns "" with
// a nil error when the key does not exist.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type redisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) KV {
	return &redisKV{client: client}
}

func (r *redisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		slog.Info(err.Error())
		return "", err
	}
	return val, nil
}

func (r *redisKV) Set(ctx context.Context, key, value string) error {
	err := r.client.Set(ctx, key, value, 0).Err()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Entry is the wire shape of one mirrored caption.
type Entry struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Client       string `json:"client"`
	ClientName   string `json:"clientName"`
	Platform     string `json:"platform"`
	ScheduledFor string `json:"scheduledFor"`
	ImageURL     string `json:"imageUrl,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// ClientEntry is the wire shape of one mirrored client summary.
type ClientEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) Entries(ctx context.Context, userID int64) ([]Entry, error) {
	raw, err := s.kv.Get(ctx, captionsKey(userID))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Info(err.Error())
		return []Entry{}, nil
	}
	return entries, nil
}

// Sync records a scheduled caption in the user's mirror, replacing an
// existing entry with the same id or appending a new one. Captions
// without a scheduled time are not mirrored.
func (s *Store) Sync(ctx context.Context, userID int64, caption *models.Caption, clientName string) error {
	if caption.ScheduledFor == nil {
		return nil
	}

	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return err
	}

	entry := entryFromCaption(caption, clientName)
	found := false
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, entry)
	}

	return s.writeEntries(ctx, userID, entries)
}

// Remove drops a caption from the user's mirror. Missing ids are not an
// error.
func (s *Store) Remove(ctx context.Context, userID int64, captionID string) error {
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, entry := range entries {
		if entry.ID != captionID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}

	return s.writeEntries(ctx, userID, kept)
}

// Rebuild replaces one user's mirror wholesale from the database view
// of that user's scheduled captions.
func (s *Store) Rebuild(ctx context.Context, userID int64, captions []*models.Caption) error {
	entries := make([]Entry, 0, len(captions))
	for _, caption := range captions {
		if caption.ScheduledFor == nil {
			continue
		}
		entries = append(entries, entryFromCaption(caption, caption.ClientName))
	}
	return s.writeEntries(ctx, userID, entries)
}

func (s *Store) writeEntries(ctx context.Context, userID int64, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return s.kv.Set(ctx, captionsKey(userID), string(data))
}

// ClientNames returns a lookup of client id to display name from the
// user's mirrored client list.
func (s *Store) ClientNames(ctx context.Context, userID int64) (map[string]string, error) {
	clients, err := s.Clients(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(clients))
	for _, client := range clients {
		names[client.ID] = client.Name
	}
	return names, nil
}

func (s *Store) Clients(ctx context.Context, userID int64) ([]ClientEntry, error) {
	raw, err := s.kv.Get(ctx, clientsKey(userID))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []ClientEntry{}, nil
	}

	var clients []ClientEntry
	if err := json.Unmarshal([]byte(raw), &clients); err != nil {
		slog.Info(err.Error())
		return []ClientEntry{}, nil
	}
	return clients, nil
}

func (s *Store) WriteClients(ctx context.Context, userID int64, clients []ClientEntry) error {
	data, err := json.Marshal(clients)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return s.kv.Set(ctx, clientsKey(userID), string(data))
}

// SeedClients writes a starter client list when the user's mirror is
// empty, so a fresh account has something to show before the first
// sync.
func (s *Store) SeedClients(ctx context.Context, userID int64) error {
	existing, err := s.Clients(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	return s.WriteClients(ctx, userID, []ClientEntry{
		{ID: "1", Name: "Café Aroma", Industry: "Gastronomia"},
		{ID: "2", Name: "Moda Bella", Industry: "Moda"},
		{ID: "3", Name: "Tech Solutions", Industry: "Tecnologia"},
		{ID: "4", Name: "Fitness Club", Industry: "Saúde e Bem-estar"},
	})
}

func entryFromCaption(caption *models.Caption, clientName string) Entry {
	entry := Entry{
		ID:         caption.ID,
		Text:       caption.Content,
		Client:     caption.ClientID,
		ClientName: clientName,
		Platform:   caption.Platform,
		ImageURL:   caption.ImageURL,
		CreatedAt:  caption.CreatedAt.Format(time.RFC3339),
	}
	if caption.ScheduledFor != nil {
		entry.ScheduledFor = caption.ScheduledFor.Format(time.RFC3339)
	}
	return entry
}
