package config

// settings.go manages the persisted export settings document.
//
// Unlike the environment-driven Config, export settings are mutable at
// runtime through the settings-update operation and must survive restarts,
// so they live in a small JSON document that is rewritten synchronously on
// every change. The env-level ExportConfig only seeds the document on first
// run; after that the document is authoritative.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/extra-life-tools/donation-queue/internal/core"
)

// SettingsFile is a file-backed core.SettingsStore. All access is
// serialized; Update writes through to disk before returning.
type SettingsFile struct {
	path string

	mu       sync.RWMutex
	settings core.ExportSettings
}

// OpenSettings loads the settings document at path, seeding it from seed if
// it does not exist yet. A malformed or unreadable document is a
// core.ConfigError; the caller decides whether to abort or fall back.
func OpenSettings(path string, seed core.ExportSettings) (*SettingsFile, error) {
	sf := &SettingsFile{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := seed.Validate(); err != nil {
			return nil, &core.ConfigError{Path: path, Err: err}
		}
		sf.settings = seed
		if err := sf.write(seed); err != nil {
			return nil, err
		}
		return sf, nil
	case err != nil:
		return nil, &core.ConfigError{Path: path, Err: err}
	}

	var s core.ExportSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &core.ConfigError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := s.Validate(); err != nil {
		return nil, &core.ConfigError{Path: path, Err: err}
	}

	sf.settings = s
	return sf, nil
}

// Get returns the current export settings.
func (sf *SettingsFile) Get() core.ExportSettings {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.settings
}

// Update validates s, persists it, and makes it current. The in-memory
// settings only change once the document is safely on disk.
func (sf *SettingsFile) Update(s core.ExportSettings) error {
	if err := s.Validate(); err != nil {
		return &core.ConfigError{Path: sf.path, Err: err}
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	if err := sf.write(s); err != nil {
		return err
	}
	sf.settings = s
	return nil
}

// write marshals s and replaces the document on disk. The temp-file rename
// keeps a crash mid-write from corrupting the previous document.
func (sf *SettingsFile) write(s core.ExportSettings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return &core.ConfigError{Path: sf.path, Err: err}
	}

	if dir := filepath.Dir(sf.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &core.ConfigError{Path: sf.path, Err: err}
		}
	}

	tmp := sf.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &core.ConfigError{Path: sf.path, Err: err}
	}
	if err := os.Rename(tmp, sf.path); err != nil {
		return &core.ConfigError{Path: sf.path, Err: err}
	}
	return nil
}
