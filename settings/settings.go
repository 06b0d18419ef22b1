// Package settings keeps the small mutable service settings document in
// redis, so operators can flip switches without a restart.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "persona-service:settings"

// Document is the service-wide settings payload.
type Document struct {
	DefaultModel string    `json:"default_model"`
	AutoSave     bool      `json:"auto_save"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Defaults is what Get returns before anything has been saved.
func Defaults() Document {
	return Document{DefaultModel: "", AutoSave: true}
}

// Store reads and writes the settings document. A nil redis client
// degrades to defaults on every read and rejects writes.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Get loads the settings document, falling back to defaults when the
// key is absent or redis is not configured.
func (s *Store) Get(ctx context.Context) (Document, error) {
	if s.rdb == nil {
		return Defaults(), nil
	}
	raw, err := s.rdb.Get(ctx, settingsKey).Result()
	if err == redis.Nil {
		return Defaults(), nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("could not load settings: %w", err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Document{}, fmt.Errorf("could not decode settings document: %w", err)
	}
	return doc, nil
}

// Save stores the document and stamps UpdatedAt.
func (s *Store) Save(ctx context.Context, doc Document) (Document, error) {
	if s.rdb == nil {
		return Document{}, fmt.Errorf("settings storage requires redis")
	}
	doc.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(doc)
	if err != nil {
		return Document{}, fmt.Errorf("could not encode settings document: %w", err)
	}
	if err := s.rdb.Set(ctx, settingsKey, payload, 0).Err(); err != nil {
		return Document{}, fmt.Errorf("could not save settings: %w", err)
	}
	return doc, nil
}
