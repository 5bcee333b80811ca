// Package normalize coerces the loosely shaped values arriving from the
// database jsonb columns and the generation webhook into canonical Go
// containers. Everything downstream of a network or storage read goes
// through here exactly once, so the rest of the code only ever sees one
// shape.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/agenciakit/captionflow/internal/models"
)

// ToArray coerces a decoded JSON value into a list. Inputs observed in
// the wild: null, a real array, a JSON-encoded string, a single object,
// or an object keyed by numeric indexes. Anything unrecognizable becomes
// an empty list, never an error.
func ToArray(v any) []any {
	switch val := v.(type) {
	case nil:
		return []any{}
	case []any:
		return val
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(val), &parsed); err != nil {
			return []any{}
		}
		if arr, ok := parsed.([]any); ok {
			return arr
		}
		return []any{parsed}
	case map[string]any:
		if _, ok := val["id"]; ok {
			return []any{val}
		}
		if _, ok := val["content"]; ok {
			return []any{val}
		}
		values := make([]any, 0, len(val))
		for _, item := range val {
			values = append(values, item)
		}
		return values
	default:
		return []any{}
	}
}

// ToArrayRaw decodes a jsonb column and applies ToArray. A column that
// does not even hold valid JSON yields an empty list.
func ToArrayRaw(raw []byte) []any {
	if len(raw) == 0 {
		return []any{}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return []any{}
	}
	return ToArray(v)
}

// Keywords normalizes a persona keyword set. Accepted representations:
// a string array, a JSON-encoded array, a plain comma-separated string,
// or null. The result is always a flat []string.
func Keywords(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		return val
	case []any:
		return stringify(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return []string{}
		}
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			if arr, ok := parsed.([]any); ok {
				return stringify(arr)
			}
			if s, ok := parsed.(string); ok {
				return []string{s}
			}
		}
		parts := strings.Split(trimmed, ",")
		keywords := make([]string, 0, len(parts))
		for _, part := range parts {
			if p := strings.TrimSpace(part); p != "" {
				keywords = append(keywords, p)
			}
		}
		return keywords
	default:
		return []string{}
	}
}

// KeywordsRaw normalizes the keywords jsonb column.
func KeywordsRaw(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Keywords(string(raw))
	}
	return Keywords(v)
}

func stringify(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// RecentCaptions normalizes the recent_captions jsonb column kept on the
// client row. Entries without identity-like fields are dropped.
func RecentCaptions(raw []byte) []models.RecentCaption {
	items := ToArrayRaw(raw)
	captions := make([]models.RecentCaption, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if entry["id"] == nil && entry["content"] == nil {
			continue
		}
		var rc models.RecentCaption
		if data, err := json.Marshal(entry); err == nil {
			if err := json.Unmarshal(data, &rc); err == nil {
				captions = append(captions, rc)
			}
		}
	}
	return captions
}

// ExtractCaption probes the known webhook response shapes in order and
// returns the first match. Callers treat a miss as "apply the fallback
// caption", not as an error.
func ExtractCaption(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	data, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	if s, ok := data["output"].(string); ok {
		return s, true
	}
	if s, ok := data["caption"].(string); ok {
		return s, true
	}
	if nested, ok := data["json"].(map[string]any); ok {
		if s, ok := nested["output"].(string); ok {
			return s, true
		}
	}
	if nested, ok := data["data"].(map[string]any); ok {
		if s, ok := nested["output"].(string); ok {
			return s, true
		}
		if s, ok := nested["caption"].(string); ok {
			return s, true
		}
	}
	if s, ok := data["result"].(string); ok {
		return s, true
	}
	return "", false
}

// DedupeByPlatform collapses a social media list to at most one entry
// per platform, case-insensitively, keeping the first occurrence.
func DedupeByPlatform(entries []models.SocialMedia) []models.SocialMedia {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]models.SocialMedia, 0, len(entries))
	for _, entry := range entries {
		key := strings.ToLower(entry.Platform)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, entry)
	}
	return unique
}
