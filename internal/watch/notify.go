// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/metrics"
)

// defaultSettle coalesces the burst of events a single save produces.
const defaultSettle = 50 * time.Millisecond

// Notifier watches the file's parent directory with fsnotify.
type Notifier struct {
	Path string

	// Rescan is a safety net for filesystems that drop events. Zero disables it.
	Rescan time.Duration

	// Settle is the quiet period after the last event before onChange fires.
	Settle time.Duration
}

// NewNotifier returns a Notifier for path.
func NewNotifier(path string, rescan time.Duration) *Notifier {
	return &Notifier{Path: path, Rescan: rescan, Settle: defaultSettle}
}

func (n *Notifier) Name() string { return "notify" }

func (n *Notifier) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	target := filepath.Clean(n.Path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	var rescan <-chan time.Time
	if n.Rescan > 0 {
		t := time.NewTicker(n.Rescan)
		defer t.Stop()
		rescan = t.C
	}

	settle := time.NewTimer(time.Hour)
	settle.Stop()
	defer settle.Stop()

	last := statSignature(target)
	fire := func(source string) {
		last = statSignature(target)
		metrics.RecordWatchEvent(source)
		onChange()
	}
	// resync: anything written before the directory watch was added
	onChange()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
				!ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Remove) {
				continue
			}
			logging.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("fsnotify event")
			settle.Reset(n.Settle)

		case <-settle.C:
			fire(n.Name())

		case <-rescan:
			if cur := statSignature(target); !cur.equal(last) {
				fire("poll")
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn().Err(err).Str("path", target).Msg("fsnotify error")
		}
	}
}
