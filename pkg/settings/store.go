package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Store holds the settings for the lifetime of the process. Every change
// is written through to disk and bumps Version, which invalidates any
// client built from an older snapshot.
type Store struct {
	mu       sync.RWMutex
	path     string
	settings Settings
	version  uint64
	logger   zerolog.Logger
}

// Load reads the settings file at path once. A missing file yields empty
// defaults; an empty path keeps the settings in memory only.
func Load(path string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		version: 1,
		logger:  logger.With().Str("settings_file", path).Logger(),
	}

	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug().Msg("settings file not found, using defaults")
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &s.settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	s.logger.Debug().Msg("settings loaded")
	return s, nil
}

// NewMemoryStore returns a store seeded with initial that is never persisted
func NewMemoryStore(initial Settings) *Store {
	return &Store{
		settings: initial,
		version:  1,
		logger:   zerolog.Nop(),
	}
}

// Path returns the backing file, empty for in-memory stores
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Version returns the current settings version
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns the settings together with their version
func (s *Store) Snapshot() (Settings, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.version
}

// Set normalizes value, stores it and persists the settings immediately.
// Nothing is validated here; readiness is checked when uploading.
func (s *Store) Set(field Field, value string) error {
	value = Normalize(field, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settings.set(field, value); err != nil {
		return err
	}
	s.version++

	s.logger.Debug().Str("field", string(field)).Msg("setting changed")
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	// Credentials live in this file
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set settings file permissions: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	s.logger.Debug().Uint64("version", s.version).Msg("settings saved")
	return nil
}
