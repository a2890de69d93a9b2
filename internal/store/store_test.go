// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const fixture = `[
  {"id":1,"name":"Apple","price":1.5},
  {"id":2,"name":"Banana","price":2.0,"category":"fruit"},
  {"id":3,"name":"Carrot","price":0.5,"description":"orange"}
]`

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotLoadsAndIndexes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "items.json")
	writeFile(t, path, fixture, time.Now())

	s := NewFileStore(path)
	snap, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(snap.Items))
	}
	if snap.Items[0].Name != "Apple" || snap.Items[2].Name != "Carrot" {
		t.Errorf("order not preserved: %+v", snap.Items)
	}

	item, ok := snap.Lookup(2)
	if !ok || item.Name != "Banana" || item.Category != "fruit" {
		t.Errorf("Lookup(2) = %+v, %v", item, ok)
	}
	if _, ok := snap.Lookup(999); ok {
		t.Error("Lookup(999) should miss")
	}
}

func TestSnapshotReusedUntilFileChanges(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "items.json")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, path, fixture, base)

	s := NewFileStore(path)
	first, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("unchanged file should reuse the snapshot")
	}

	writeFile(t, path, `[{"id":7,"name":"Date","price":4}]`, base.Add(time.Minute))
	third, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if third == first || len(third.Items) != 1 || third.Items[0].ID != 7 {
		t.Errorf("changed file not re-read: %+v", third.Items)
	}
}

func TestSnapshotErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		create  bool
	}{
		{"missing file", "", false},
		{"malformed json", `[{"id":1,`, true},
		{"not an array", `{"id":1}`, true},
		{"null", `null`, true},
		{"negative price", `[{"id":1,"name":"A","price":-1}]`, true},
		{"duplicate ids", `[{"id":1,"name":"A","price":1},{"id":1,"name":"B","price":1}]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "items.json")
			if tt.create {
				writeFile(t, path, tt.content, time.Now())
			}
			_, err := NewFileStore(path).Snapshot(context.Background())
			if !errors.Is(err, ErrDataUnavailable) {
				t.Errorf("Snapshot() error = %v, want ErrDataUnavailable", err)
			}
		})
	}
}

func TestSnapshotEmptyArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "items.json")
	writeFile(t, path, `[]`, time.Now())

	snap, err := NewFileStore(path).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(snap.Items))
	}
}

func TestSnapshotCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileStore("unused").Snapshot(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Snapshot() error = %v, want context.Canceled", err)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := Version{ModTime: now, Size: 10}
	if !a.Equal(Version{ModTime: now, Size: 10}) {
		t.Error("identical versions should be equal")
	}
	if a.Equal(Version{ModTime: now, Size: 11}) {
		t.Error("size change should differ")
	}
	if !(Version{}).IsZero() || a.IsZero() {
		t.Error("IsZero mismatch")
	}
}
