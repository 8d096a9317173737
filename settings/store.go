// Package settings persists the two user preferences the core consumes:
// theme (light/dark/system) and whether feedback should vibrate.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"flashdeck/models"
)

// Store is a mutex-guarded settings store backed by a JSON file. Reads serve
// the in-memory copy; writes persist before they are visible.
type Store struct {
	mu       sync.RWMutex
	path     string
	settings models.Settings
}

// NewStore loads settings from path, falling back to defaults when the file
// does not exist yet.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, settings: models.DefaultSettings()}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var loaded models.Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if loaded.Theme == "" {
		loaded.Theme = "system"
	}
	s.settings = loaded
	return s, nil
}

// Get returns the current settings.
func (s *Store) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// ShouldVibrate reports whether feedback events should request haptics.
func (s *Store) ShouldVibrate() bool {
	return s.Get().ShouldVibrate
}

// Update replaces the settings and persists them. The old settings stay in
// effect if the write fails.
func (s *Store) Update(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	s.settings = settings
	return nil
}
