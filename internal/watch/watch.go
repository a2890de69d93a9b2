// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package watch delivers change notifications for a single file.
//
// Two sources are provided: Poller compares modification time and size on a
// fixed interval, and Notifier uses fsnotify on the file's directory so that
// atomic rename-over writes are seen. Both call the callback once as soon as
// the watch is established, so a write that landed before Watch started is
// not lost, and at least once after every committed write; callers must
// tolerate spurious calls.
package watch

import (
	"context"
	"os"
	"time"

	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/metrics"
)

// Source reports changes to a file until ctx is done.
type Source interface {
	// Watch blocks, calling onChange once the watch is in place and then
	// after each detected change. It returns nil when ctx is cancelled.
	Watch(ctx context.Context, onChange func()) error

	// Name identifies the source in logs and metrics.
	Name() string
}

// signature is the comparable part of a stat result. A missing file has the
// zero signature with exists=false.
type signature struct {
	exists  bool
	modTime time.Time
	size    int64
}

func statSignature(path string) signature {
	fi, err := os.Stat(path)
	if err != nil {
		return signature{}
	}
	return signature{exists: true, modTime: fi.ModTime(), size: fi.Size()}
}

func (s signature) equal(o signature) bool {
	return s.exists == o.exists && s.modTime.Equal(o.modTime) && s.size == o.size
}

// Poller checks the file every Interval.
type Poller struct {
	Path     string
	Interval time.Duration
}

// NewPoller returns a Poller. Intervals below 10ms are raised to 10ms.
func NewPoller(path string, interval time.Duration) *Poller {
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return &Poller{Path: path, Interval: interval}
}

func (p *Poller) Name() string { return "poll" }

func (p *Poller) Watch(ctx context.Context, onChange func()) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	last := statSignature(p.Path)
	// resync: anything written before the baseline was taken
	onChange()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cur := statSignature(p.Path)
			if cur.equal(last) {
				continue
			}
			last = cur
			metrics.RecordWatchEvent(p.Name())
			logging.Debug().Str("path", p.Path).Bool("exists", cur.exists).Msg("Data file changed")
			onChange()
		}
	}
}

// New returns the source for mode: "poll" gives a Poller, anything else a
// Notifier that rescans every interval.
func New(mode, path string, interval time.Duration) Source {
	if mode == "poll" {
		return NewPoller(path, interval)
	}
	return NewNotifier(path, interval)
}
