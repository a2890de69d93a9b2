// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package services

import (
	"context"
	"fmt"
)

// Watcher blocks delivering change notifications until ctx is done.
// *stats.Cache satisfies it.
type Watcher interface {
	Watch(ctx context.Context) error
}

// WatcherService supervises a Watcher. If the watcher exits early with an
// error (for example the watched directory vanished) suture restarts it
// with backoff.
type WatcherService struct {
	watcher Watcher
	name    string
}

// NewWatcherService wraps w under the given name.
func NewWatcherService(w Watcher, name string) *WatcherService {
	if name == "" {
		name = "watcher"
	}
	return &WatcherService{watcher: w, name: name}
}

// Serve implements suture.Service.
func (s *WatcherService) Serve(ctx context.Context) error {
	err := s.watcher.Watch(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", s.name, err)
	}
	return fmt.Errorf("%s stopped unexpectedly", s.name)
}

func (s *WatcherService) String() string {
	return s.name
}
