// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/store"
	"github.com/tomtom215/catalog/internal/watch"
)

// fakeSource serves a settable collection and counts reads.
type fakeSource struct {
	mu      sync.Mutex
	items   []models.Item
	version store.Version
	err     error
	block   chan struct{}
	reads   atomic.Int32
}

func newFakeSource(items []models.Item) *fakeSource {
	return &fakeSource{items: items, version: store.Version{ModTime: time.Unix(1000, 0), Size: 1}}
}

func (f *fakeSource) set(items []models.Item, err error, bump bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items, f.err = items, err
	if bump {
		f.version = store.Version{ModTime: f.version.ModTime.Add(time.Second), Size: f.version.Size}
	}
}

func (f *fakeSource) Snapshot(context.Context) (*store.Snapshot, error) {
	f.reads.Add(1)
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return store.NewSnapshot(f.items, f.version), nil
}

func (f *fakeSource) Stat() (store.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, nil
}

var errCorrupt = fmt.Errorf("%w: parse: unexpected EOF", store.ErrDataUnavailable)

func abc() []models.Item {
	return []models.Item{
		{ID: 1, Name: "Apple", Price: 1.5},
		{ID: 2, Name: "Banana", Price: 2.0},
		{ID: 3, Name: "Carrot", Price: 0.5},
	}
}

func TestInitialComputation(t *testing.T) {
	t.Parallel()

	c := New(context.Background(), newFakeSource(abc()), nil)
	st, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if st.Total != 3 || math.Abs(st.AveragePrice-4.0/3.0) > 1e-9 {
		t.Errorf("Get() = %+v, want total 3 average 1.333", st)
	}
}

func TestEmptyCollection(t *testing.T) {
	t.Parallel()

	c := New(context.Background(), newFakeSource([]models.Item{}), nil)
	st, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if st != (models.Stats{}) {
		t.Errorf("Get() = %+v, want zero stats", st)
	}
}

func TestHitDoesNoIO(t *testing.T) {
	t.Parallel()

	src := newFakeSource(abc())
	c := New(context.Background(), src, nil)
	before := src.reads.Load()

	for i := 0; i < 5; i++ {
		if _, err := c.Get(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if got := src.reads.Load() - before; got != 0 {
		t.Errorf("reads during hits = %d, want 0", got)
	}
}

func TestChangeRecomputesOnce(t *testing.T) {
	t.Parallel()

	src := newFakeSource(abc())
	c := New(context.Background(), src, nil)

	src.set([]models.Item{{ID: 9, Name: "Fig", Price: 3}}, nil, true)
	before := src.reads.Load()
	c.HandleChange(context.Background())
	c.HandleChange(context.Background()) // same version, ignored

	if got := src.reads.Load() - before; got != 1 {
		t.Errorf("recomputes = %d, want 1", got)
	}
	st, _ := c.Get(context.Background())
	if st.Total != 1 || st.AveragePrice != 3 {
		t.Errorf("Get() = %+v after change", st)
	}
	if !c.Version().Equal(store.Version{ModTime: time.Unix(1001, 0), Size: 1}) {
		t.Errorf("Version() = %v", c.Version())
	}
}

func TestUnchangedVersionSkipsRecompute(t *testing.T) {
	t.Parallel()

	src := newFakeSource(abc())
	c := New(context.Background(), src, nil)

	src.set([]models.Item{}, nil, false)
	c.HandleChange(context.Background())

	st, _ := c.Get(context.Background())
	if st.Total != 3 {
		t.Errorf("Get() = %+v, want the original stats", st)
	}
}

func TestFailedRecomputeInvalidates(t *testing.T) {
	t.Parallel()

	src := newFakeSource(abc())
	c := New(context.Background(), src, nil)

	src.set(nil, errCorrupt, true)
	c.HandleChange(context.Background())

	if c.Valid() {
		t.Fatal("cell should be empty after a failed recompute")
	}
	_, err := c.Get(context.Background())
	if !errors.Is(err, store.ErrDataUnavailable) {
		t.Errorf("Get() error = %v, want ErrDataUnavailable", err)
	}

	// data repaired without a change notification: the read path recovers
	src.set(abc()[:1], nil, false)
	st, err := c.Get(context.Background())
	if err != nil || st.Total != 1 {
		t.Errorf("Get() = %+v, %v after repair", st, err)
	}
	if !c.Valid() {
		t.Error("on-demand recompute should repopulate the cell")
	}
}

func TestInitialFailureRecoversOnDemand(t *testing.T) {
	t.Parallel()

	src := newFakeSource(abc())
	src.err = errCorrupt
	c := New(context.Background(), src, nil)
	if c.Valid() {
		t.Fatal("cell should be empty after failed startup")
	}

	src.set(abc(), nil, false)
	st, err := c.Get(context.Background())
	if err != nil || st.Total != 3 {
		t.Errorf("Get() = %+v, %v", st, err)
	}
}

func TestNonDataErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	src := newFakeSource(abc())
	src.err = errors.New("permission denied")
	c := New(context.Background(), src, nil)

	_, err := c.Get(context.Background())
	if !errors.Is(err, store.ErrDataUnavailable) {
		t.Errorf("Get() error = %v, want ErrDataUnavailable", err)
	}
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	t.Parallel()

	src := newFakeSource(abc())
	src.err = errCorrupt
	c := New(context.Background(), src, nil)

	release := make(chan struct{})
	src.mu.Lock()
	src.err = nil
	src.block = release
	src.mu.Unlock()
	before := src.reads.Load()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background())
			errs <- err
		}()
	}

	// wait until the single recompute is in flight, then let it finish
	deadline := time.Now().Add(5 * time.Second)
	for src.reads.Load() == before && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Get() error = %v", err)
		}
	}
	if got := src.reads.Load() - before; got != 1 {
		t.Errorf("reads = %d, want 1 coalesced recompute", got)
	}
}

func TestInvalidateDuringRecomputeDiscardsResult(t *testing.T) {
	t.Parallel()

	src := newFakeSource(abc())
	src.err = errCorrupt
	c := New(context.Background(), src, nil)

	release := make(chan struct{})
	src.mu.Lock()
	src.err = nil
	src.block = release
	src.mu.Unlock()
	before := src.reads.Load()

	done := make(chan models.Stats, 1)
	go func() {
		st, _ := c.Get(context.Background())
		done <- st
	}()
	for src.reads.Load() == before {
		time.Sleep(time.Millisecond)
	}
	c.Invalidate()
	close(release)

	if st := <-done; st.Total != 3 {
		t.Errorf("caller should still get its result, got %+v", st)
	}
	if c.Valid() {
		t.Error("superseded recompute must not repopulate the cell")
	}
}

// End to end with a real file and poller.
func TestWatchRecomputesOnFileChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "items.json")
	base := time.Now().Add(-time.Hour)
	write := func(content string, mtime time.Time) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	write(`[{"id":1,"name":"Apple","price":1.5},{"id":2,"name":"Banana","price":2.0}]`, base)

	fs := store.NewFileStore(path)
	c := New(context.Background(), fs, watch.NewPoller(path, 10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Watch(ctx) }()

	st, err := c.Get(context.Background())
	if err != nil || st.Total != 2 {
		t.Fatalf("Get() = %+v, %v", st, err)
	}

	time.Sleep(50 * time.Millisecond)
	write(`[{"id":1,"name":"Apple","price":1.5}]`, base.Add(time.Minute))
	waitFor(t, func() bool {
		st, err := c.Get(context.Background())
		return err == nil && st.Total == 1
	})

	write(`[{"id":1,`, base.Add(2*time.Minute))
	waitFor(t, func() bool { return !c.Valid() })
}

func TestWatchCatchesWriteBeforeSubscribe(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "items.json")
	base := time.Now().Add(-time.Hour)
	writeItems := func(content string, mtime time.Time) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	writeItems(`[{"id":1,"name":"Apple","price":1}]`, base)

	c := New(context.Background(), store.NewFileStore(path), watch.NewPoller(path, 20*time.Millisecond))
	if st, err := c.Get(context.Background()); err != nil || st.Total != 1 {
		t.Fatalf("Get() = %+v, %v", st, err)
	}

	// written while nothing is subscribed yet
	writeItems(`[{"id":1,"name":"Apple","price":1},{"id":2,"name":"Banana","price":3}]`, base.Add(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Watch(ctx) }()

	waitFor(t, func() bool {
		st, err := c.Get(context.Background())
		return err == nil && st.Total == 2 && st.AveragePrice == 2
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatchWithoutSource(t *testing.T) {
	t.Parallel()

	c := New(context.Background(), newFakeSource(abc()), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Watch(ctx); err != nil {
		t.Errorf("Watch() = %v, want nil", err)
	}
}
