// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath returns ~/.hubfetch/hubfetch.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".hubfetch", "hubfetch.yaml"), nil
}

// Store reads and writes the settings file at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store for the given path. Tests point this at a
// temp directory; production code uses DefaultPath.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings.
//
// A missing or corrupt file is not an error: the tool falls back to
// zero-value Settings and the next interactive run rewrites the file.
func (s *Store) Load() Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Settings{}
	}
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Settings{}
	}
	return doc.Settings
}

// Save overwrites the settings file, creating its directory on demand.
func (s *Store) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(file{Settings: settings})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
