package proc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/podcast"
)

// EpisodeStore persists the last successfully fetched episode list.
// Save replaces the previous contents wholesale, there is no merging.
type EpisodeStore interface {
	Load() ([]podcast.Episode, error)
	Save(episodes []podcast.Episode) error
}

// NewStore creates a store for the configured backend.
func NewStore(backend, path string) (EpisodeStore, error) {
	switch backend {
	case "", "json":
		return &FileStore{Path: path}, nil
	case "bolt":
		return NewBoltStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	case "memory":
		return &MemoryStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// FileStore keeps episodes as a pretty-printed JSON array in a single file.
type FileStore struct {
	Path string
}

// Load episodes from the cache file, a missing file is an empty list.
func (f *FileStore) Load() ([]podcast.Episode, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []podcast.Episode{}, nil
		}
		return nil, fmt.Errorf("can't read cache %s: %w", f.Path, err)
	}

	var episodes []podcast.Episode
	if err := json.Unmarshal(data, &episodes); err != nil {
		return nil, fmt.Errorf("can't parse cache %s: %w", f.Path, err)
	}
	return episodes, nil
}

// Save episodes to the cache file, overwriting the previous contents.
func (f *FileStore) Save(episodes []podcast.Episode) error {
	data, err := json.MarshalIndent(episodes, "", "  ")
	if err != nil {
		return fmt.Errorf("can't marshal episodes: %w", err)
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("can't create cache dir %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(f.Path, data, 0o644); err != nil { // nolint:gosec
		return fmt.Errorf("can't write cache %s: %w", f.Path, err)
	}
	return nil
}

// MemoryStore holds episodes in process memory, mostly for tests.
type MemoryStore struct {
	Episodes []podcast.Episode
	Saves    int
}

// Load returns the stored episodes.
func (m *MemoryStore) Load() ([]podcast.Episode, error) {
	return m.Episodes, nil
}

// Save replaces the stored episodes and counts the call.
func (m *MemoryStore) Save(episodes []podcast.Episode) error {
	m.Episodes = episodes
	m.Saves++
	return nil
}
