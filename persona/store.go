package persona

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when no profile file exists for an id.
var ErrNotFound = errors.New("persona not found")

// Store loads persona profiles from a directory of <id>.json files and
// caches them after the first successful load. Save replaces the file
// and the cache entry together so readers never observe a torn profile.
type Store struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*Profile
}

// NewStore creates the profile directory if needed and returns a store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create persona directory %s: %w", dir, err)
	}
	return &Store{dir: dir, cache: make(map[string]*Profile)}, nil
}

// Load returns the profile for id, reading it from disk on first use.
// Callers must treat the returned profile as read-only.
func (s *Store) Load(id string) (*Profile, error) {
	s.mu.RLock()
	p, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("persona %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("could not read persona %q: %w", id, err)
	}

	p = &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("could not parse persona %q: %w", id, err)
	}

	s.mu.Lock()
	// Another loader may have won the race; keep whichever is cached so
	// concurrent readers all see the same instance.
	if cached, ok := s.cache[id]; ok {
		p = cached
	} else {
		s.cache[id] = p
	}
	s.mu.Unlock()
	return p, nil
}

// Save validates the profile, writes it to disk and replaces the cache
// entry. The file write goes through a temp file and rename so a crash
// never leaves a half-written profile behind.
func (s *Store) Save(id string, p *Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid persona %q: %w", id, err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal persona %q: %w", id, err)
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file for persona %q: %w", id, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not write persona %q: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not close persona file %q: %w", id, err)
	}
	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not replace persona %q: %w", id, err)
	}

	replacement := *p
	s.mu.Lock()
	s.cache[id] = &replacement
	s.mu.Unlock()
	return nil
}

// List scans the profile directory and returns a summary per persona,
// sorted by id. Unreadable files are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not read persona directory: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		p, err := s.Load(id)
		if err != nil {
			continue
		}
		out = append(out, Summary{
			ID:          id,
			DisplayName: p.Name,
			Language:    p.Language,
			Country:     p.Country,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Loaded reports how many profiles are currently cached.
func (s *Store) Loaded() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
