// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultPrefsPath is where the theme preference lives by default.
const DefaultPrefsPath = "~/.config/catalog/prefs.toml"

type prefsFile struct {
	Theme string `toml:"theme"`
}

// FileStore keeps the preference in a TOML file:
//
//	theme = "dark"
type FileStore struct {
	path string
}

// NewFileStore returns a store for path; "~" expands to the home directory
// and an empty path means DefaultPrefsPath.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load treats a missing file, an empty theme or an unknown value as
// "nothing stored". Unreadable or malformed files are errors.
func (s *FileStore) Load() (Theme, bool, error) {
	resolved, err := resolvePath(s.path)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read prefs: %w", err)
	}

	var p prefsFile
	if err := toml.Unmarshal(data, &p); err != nil {
		return "", false, fmt.Errorf("parse prefs %s: %w", resolved, err)
	}
	t, ok := Parse(p.Theme)
	return t, ok, nil
}

// Save writes the preference, creating parent directories.
func (s *FileStore) Save(t Theme) error {
	resolved, err := resolvePath(s.path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(prefsFile{Theme: string(t)})
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	// Write then rename so a crash never leaves a truncated file.
	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = DefaultPrefsPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
