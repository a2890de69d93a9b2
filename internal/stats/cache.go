// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package stats memoizes the collection-wide item statistics.
//
// The cache holds one cell. A change source invalidates it by triggering a
// recompute whenever the data file's version signal moves; a failed
// recompute empties the cell instead of leaving a stale value. Reads of an
// empty cell recompute on demand, coalescing concurrent callers.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/metrics"
	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/store"
	"github.com/tomtom215/catalog/internal/watch"
)

// Recompute triggers, used as metric labels.
const (
	TriggerStartup = "startup"
	TriggerChange  = "change"
	TriggerDemand  = "demand"
)

// Source is the item collection plus its version signal.
type Source interface {
	Snapshot(ctx context.Context) (*store.Snapshot, error)
	Stat() (store.Version, error)
}

// Cache serves models.Stats from memory.
type Cache struct {
	src     Source
	changes watch.Source
	logger  zerolog.Logger

	cell  atomic.Pointer[models.Stats]
	group singleflight.Group

	mu      sync.Mutex
	gen     uint64
	version store.Version
}

// New builds the cache and computes the initial value. A failure here is
// logged and leaves the cell empty; the first Get retries.
// changes may be nil, in which case Watch only waits for cancellation.
func New(ctx context.Context, src Source, changes watch.Source) *Cache {
	c := &Cache{
		src:     src,
		changes: changes,
		logger:  logging.WithComponent("stats"),
	}
	if v, err := src.Stat(); err == nil {
		c.version = v
	}
	if _, err := c.recompute(ctx, TriggerStartup); err != nil {
		c.logger.Warn().Err(err).Msg("Initial stats computation failed")
	}
	return c
}

// Get returns the cached stats, recomputing if the cell is empty. The error
// wraps store.ErrDataUnavailable when the data cannot be read.
func (c *Cache) Get(ctx context.Context) (models.Stats, error) {
	if st := c.cell.Load(); st != nil {
		metrics.RecordStatsRead(true)
		return *st, nil
	}
	metrics.RecordStatsRead(false)

	v, err, _ := c.group.Do("stats", func() (interface{}, error) {
		// shared by every waiter, so one caller's cancellation must not fail the rest
		return c.recompute(context.WithoutCancel(ctx), TriggerDemand)
	})
	if err != nil {
		if !errors.Is(err, store.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %w", store.ErrDataUnavailable, err)
		}
		return models.Stats{}, err
	}
	return v.(models.Stats), nil
}

// Valid reports whether the cell currently holds a value.
func (c *Cache) Valid() bool {
	return c.cell.Load() != nil
}

// Version returns the last observed version signal.
func (c *Cache) Version() store.Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Invalidate empties the cell. Any recompute already running will not
// repopulate it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.cell.Store(nil)
	c.mu.Unlock()
}

// Watch subscribes to the change source until ctx is done. Sources call
// back once when the subscription starts, so a write between New (or a
// previous Watch) and this call still triggers a recompute.
func (c *Cache) Watch(ctx context.Context) error {
	if c.changes == nil {
		<-ctx.Done()
		return nil
	}
	c.logger.Info().Str("source", c.changes.Name()).Msg("Watching item data for changes")
	return c.changes.Watch(ctx, func() { c.HandleChange(ctx) })
}

// HandleChange recomputes when the version signal differs from the last
// one observed. It never returns an error; failures empty the cell.
func (c *Cache) HandleChange(ctx context.Context) {
	v, statErr := c.src.Stat()

	c.mu.Lock()
	if v.Equal(c.version) && statErr == nil {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.version = v
	c.mu.Unlock()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	st, err := c.recompute(ctx, TriggerChange)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Stats invalidated after data change")
		return
	}
	logging.Ctx(ctx).Info().
		Int("total", st.Total).
		Float64("average_price", st.AveragePrice).
		Msg("Stats recomputed after data change")
}

// recompute reads the collection and publishes the result, unless the cache
// was invalidated while it ran; the value is returned either way.
func (c *Cache) recompute(ctx context.Context, trigger string) (models.Stats, error) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	snap, err := c.src.Snapshot(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	current := gen == c.gen

	metrics.RecordStatsRecompute(trigger, err)
	if err != nil {
		if current {
			c.cell.Store(nil)
		}
		return models.Stats{}, err
	}

	st := models.ComputeStats(snap.Items)
	if current {
		c.cell.Store(&st)
		c.version = snap.Version
	}
	return st, nil
}

func (c *Cache) String() string {
	return "stats-cache"
}
