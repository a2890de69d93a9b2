// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package controller holds the client-side list state: the current page of
// items, the loading flag, the last load error and the selection set.
//
// Only the most recent FetchItems call may update state. Starting a fetch
// cancels the previous one, and a completion whose sequence number is no
// longer current is dropped, so a slow early response never overwrites a
// later one.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/catalog/internal/client"
	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/query"
)

// DefaultDebounce is the quiet period SearchDebounced waits for.
const DefaultDebounce = 300 * time.Millisecond

// ErrLoadFailed is returned by FetchItem for any failure other than a
// missing item or a cancelled request.
var ErrLoadFailed = errors.New("error loading item")

// Fetcher is the subset of the API client the controller needs.
type Fetcher interface {
	ListItems(ctx context.Context, q query.Query) ([]models.Item, error)
	GetItem(ctx context.Context, id int) (models.Item, error)
}

// State is a copy of the controller state.
type State struct {
	Items    []models.Item
	Loading  bool
	Selected []models.Item
	Query    query.Query
	Err      error
}

// IsSelected reports whether id is in the selection.
func (s State) IsSelected(id int) bool {
	for _, it := range s.Selected {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Options configures a Controller.
type Options struct {
	// Debounce for SearchDebounced; zero means DefaultDebounce, negative
	// disables debouncing.
	Debounce time.Duration

	// OnChange receives the latest state after every change. Calls are
	// serialized and never made while internal locks are held.
	OnChange func(State)
}

// Controller is safe for concurrent use.
type Controller struct {
	fetcher  Fetcher
	debounce time.Duration
	onChange func(State)
	logger   zerolog.Logger

	root       context.Context
	cancelRoot context.CancelFunc
	wg         sync.WaitGroup
	notifyMu   sync.Mutex

	mu        sync.Mutex
	closed    bool
	seq       uint64
	cancelReq context.CancelFunc
	timer     *time.Timer
	pending   uint64 // bumped by every fetch or schedule; stale timers see a mismatch
	items     []models.Item
	selected  []models.Item
	loading   bool
	query     query.Query
	err       error
}

// New returns a Controller with an empty item list.
func New(fetcher Fetcher, opts Options) *Controller {
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	root, cancel := context.WithCancel(context.Background())
	return &Controller{
		fetcher:    fetcher,
		debounce:   debounce,
		onChange:   opts.OnChange,
		logger:     logging.WithComponent("controller"),
		root:       root,
		cancelRoot: cancel,
		items:      []models.Item{},
		selected:   []models.Item{},
	}
}

// FetchItems cancels any in-flight fetch and any pending SearchDebounced,
// then starts a new fetch. Loading is true when FetchItems returns.
func (c *Controller) FetchItems(q query.Query) {
	c.fetch(q, 0, false)
}

// fetch starts q. A debounced fetch only runs if no fetch or newer
// schedule happened since it was scheduled as generation gen.
func (c *Controller) fetch(q query.Query, gen uint64, debounced bool) {
	c.mu.Lock()
	if c.closed || (debounced && gen != c.pending) {
		c.mu.Unlock()
		return
	}
	c.pending++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancelReq != nil {
		c.cancelReq()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(logging.ContextWithNewCorrelationID(c.root))
	c.cancelReq = cancel
	c.loading = true
	c.query = q
	c.wg.Add(1)
	c.mu.Unlock()

	c.notify()
	go c.run(ctx, cancel, seq, q)
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, seq uint64, q query.Query) {
	defer c.wg.Done()
	defer cancel()

	items, err := c.fetcher.ListItems(ctx, q)

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		logging.Ctx(ctx).Debug().Uint64("seq", seq).Msg("Discarding superseded fetch")
		return
	}
	c.cancelReq = nil
	c.loading = false
	switch {
	case err == nil:
		c.items = items
		c.err = nil
	case errors.Is(err, client.ErrRequestCancelled), errors.Is(err, context.Canceled):
		// Not an error; keep the previous items.
	default:
		c.err = err
		logging.Ctx(ctx).Warn().Err(err).Str("q", q.Q).Msg("Failed to load items")
	}
	c.mu.Unlock()

	c.notify()
}

// SearchDebounced schedules FetchItems(q) after the debounce period.
// Each call replaces the pending one; a direct FetchItems drops it.
func (c *Controller) SearchDebounced(q query.Query) {
	if c.debounce < 0 {
		c.FetchItems(q)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending++
	gen := c.pending
	c.timer = time.AfterFunc(c.debounce, func() { c.fetch(q, gen, true) })
}

// FetchItem loads one item for the detail view. The error is
// client.ErrNotFound, client.ErrRequestCancelled or wraps ErrLoadFailed.
func (c *Controller) FetchItem(ctx context.Context, id int) (models.Item, error) {
	item, err := c.fetcher.GetItem(ctx, id)
	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, client.ErrNotFound), errors.Is(err, client.ErrRequestCancelled):
		return models.Item{}, err
	default:
		c.logger.Warn().Err(err).Int("id", id).Msg("Failed to load item")
		return models.Item{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
}

// AddSelected appends item unless its id is already selected.
func (c *Controller) AddSelected(item models.Item) {
	c.mu.Lock()
	for _, it := range c.selected {
		if it.ID == item.ID {
			c.mu.Unlock()
			return
		}
	}
	c.selected = append(c.selected, item)
	c.mu.Unlock()
	c.notify()
}

// RemoveSelected drops id from the selection if present.
func (c *Controller) RemoveSelected(id int) {
	c.mu.Lock()
	idx := -1
	for i, it := range c.selected {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.selected = append(c.selected[:idx:idx], c.selected[idx+1:]...)
	c.mu.Unlock()
	c.notify()
}

// ClearSelected empties the selection.
func (c *Controller) ClearSelected() {
	c.mu.Lock()
	c.selected = []models.Item{}
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Items:    append([]models.Item(nil), c.items...),
		Loading:  c.loading,
		Selected: append([]models.Item(nil), c.selected...),
		Query:    c.query,
		Err:      c.err,
	}
}

// Close cancels the in-flight fetch and any pending debounce, then waits
// for fetch goroutines to exit. No OnChange calls follow Close.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.cancelRoot()
	c.wg.Wait()
}

// notify delivers the latest state. Holding notifyMu while reading the
// snapshot keeps deliveries in order.
func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.onChange(c.Snapshot())
}
