// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package store reads the catalog's item collection from a JSON file.
//
// The file holds a single JSON array of items and is only ever written by
// other processes. A parsed Snapshot is reused for as long as the file's
// modification time and size are unchanged, which keeps id lookups O(1)
// across requests.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/metrics"
	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/validation"
)

var (
	// ErrNotFound means no item has the requested id.
	ErrNotFound = errors.New("item not found")

	// ErrDataUnavailable means the data file is missing, unreadable or corrupt.
	ErrDataUnavailable = errors.New("item data unavailable")
)

// Version is the change signal of the data file.
type Version struct {
	ModTime time.Time
	Size    int64
}

// IsZero reports whether v was never observed.
func (v Version) IsZero() bool {
	return v.ModTime.IsZero() && v.Size == 0
}

// Equal compares modification time and size.
func (v Version) Equal(o Version) bool {
	return v.ModTime.Equal(o.ModTime) && v.Size == o.Size
}

func (v Version) String() string {
	return fmt.Sprintf("%s/%d", v.ModTime.UTC().Format(time.RFC3339Nano), v.Size)
}

// Snapshot is one parsed, validated and indexed read of the data file.
// It must be treated as read-only.
type Snapshot struct {
	Items   []models.Item
	Version Version
	byID    map[int]int
}

// NewSnapshot indexes items. The caller must not modify items afterwards.
func NewSnapshot(items []models.Item, v Version) *Snapshot {
	byID := make(map[int]int, len(items))
	for i := range items {
		byID[items[i].ID] = i
	}
	return &Snapshot{Items: items, Version: v, byID: byID}
}

// Lookup returns the item with the given id.
func (s *Snapshot) Lookup(id int) (models.Item, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Item{}, false
	}
	return s.Items[i], true
}

// FileStore serves snapshots of a JSON file.
type FileStore struct {
	path string

	mu     sync.Mutex
	cached *Snapshot
}

// NewFileStore returns a store for path. The file is not read until the
// first Snapshot call.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the data file path.
func (s *FileStore) Path() string {
	return s.path
}

// Stat returns the current version signal of the file.
func (s *FileStore) Stat() (Version, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return Version{ModTime: fi.ModTime(), Size: fi.Size()}, nil
}

// Snapshot returns the current collection. Every failure wraps
// ErrDataUnavailable.
func (s *FileStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	v, err := s.Stat()
	if err != nil {
		metrics.RecordStoreLoad(time.Since(start), 0, false, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.cached.Version.Equal(v) {
		metrics.RecordStoreLoad(0, len(s.cached.Items), true, nil)
		return s.cached, nil
	}

	items, err := s.read()
	metrics.RecordStoreLoad(time.Since(start), len(items), false, err)
	if err != nil {
		s.cached = nil
		return nil, err
	}

	s.cached = NewSnapshot(items, v)
	logging.Ctx(ctx).Debug().
		Str("path", s.path).
		Int("items", len(items)).
		Str("version", v.String()).
		Msg("Loaded item data")
	return s.cached, nil
}

// Reset drops the cached snapshot so the next call re-reads the file.
func (s *FileStore) Reset() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *FileStore) read() ([]models.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON array of items.
func Parse(data []byte) ([]models.Item, error) {
	var items []models.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrDataUnavailable, err)
	}
	if items == nil {
		// "null" is not a collection
		return nil, fmt.Errorf("%w: parse: expected a JSON array", ErrDataUnavailable)
	}
	if err := validation.ValidateItems(items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return items, nil
}
