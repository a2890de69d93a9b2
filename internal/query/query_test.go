// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/store"
)

type staticSource struct {
	snap *store.Snapshot
	err  error
}

func (s staticSource) Snapshot(context.Context) (*store.Snapshot, error) {
	return s.snap, s.err
}

func fixture() []models.Item {
	return []models.Item{
		{ID: 1, Name: "Apple", Price: 1.5},
		{ID: 2, Name: "Banana", Price: 2.0},
		{ID: 3, Name: "Carrot", Price: 0.5},
	}
}

func newEngine(items []models.Item) *Engine {
	return NewEngine(staticSource{snap: store.NewSnapshot(items, store.Version{})})
}

func ids(items []models.Item) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprint(it.ID)
	}
	return strings.Join(parts, ",")
}

func TestListItems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"no params returns all in order", Query{}, "1,2,3"},
		{"substring match", Query{Q: "ban"}, "2"},
		{"case insensitive", Query{Q: "APP"}, "1"},
		{"match in middle", Query{Q: "rro"}, "3"},
		{"no match", Query{Q: "zzz"}, ""},
		{"limit", Query{Limit: Int(2)}, "1,2"},
		{"offset", Query{Offset: Int(1)}, "2,3"},
		{"offset and limit", Query{Offset: Int(1), Limit: Int(1)}, "2"},
		{"offset at length", Query{Offset: Int(3)}, ""},
		{"offset past length", Query{Offset: Int(50)}, ""},
		{"negative offset clamps", Query{Offset: Int(-4)}, "1,2,3"},
		{"negative limit clamps", Query{Limit: Int(-1)}, ""},
		{"zero limit", Query{Limit: Int(0)}, ""},
		{"limit beyond length", Query{Limit: Int(10)}, "1,2,3"},
		{"filter before paginate", Query{Q: "a", Offset: Int(1), Limit: Int(1)}, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := newEngine(fixture()).ListItems(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("ListItems() error = %v", err)
			}
			if got == nil {
				t.Fatal("ListItems() returned nil slice")
			}
			if ids(got) != tt.want {
				t.Errorf("ListItems(%+v) = [%s], want [%s]", tt.query, ids(got), tt.want)
			}
		})
	}
}

func TestFilterDoesNotMutate(t *testing.T) {
	t.Parallel()

	items := fixture()
	_ = Filter(items, "carrot")
	if ids(items) != "1,2,3" || items[0].Name != "Apple" {
		t.Errorf("source mutated: %+v", items)
	}
}

func TestFilterEveryResultMatches(t *testing.T) {
	t.Parallel()

	items := fixture()
	for _, q := range []string{"a", "A", "an", "o", "e", ""} {
		for _, it := range Filter(items, q) {
			if !strings.Contains(strings.ToLower(it.Name), strings.ToLower(q)) {
				t.Errorf("Filter(%q) returned %q", q, it.Name)
			}
		}
	}
	if len(Filter(items, "")) != len(items) {
		t.Error("empty query should return the whole collection")
	}
}

func TestGetItem(t *testing.T) {
	t.Parallel()

	e := newEngine(fixture())
	item, err := e.GetItem(context.Background(), 2)
	if err != nil || item.Name != "Banana" {
		t.Errorf("GetItem(2) = %+v, %v", item, err)
	}

	_, err = e.GetItem(context.Background(), 999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetItem(999) error = %v, want ErrNotFound", err)
	}
}

func TestDataUnavailablePropagates(t *testing.T) {
	t.Parallel()

	boom := fmt.Errorf("%w: disk gone", store.ErrDataUnavailable)
	e := NewEngine(staticSource{err: boom})

	if _, err := e.ListItems(context.Background(), Query{}); !errors.Is(err, store.ErrDataUnavailable) {
		t.Errorf("ListItems() error = %v, want ErrDataUnavailable", err)
	}
	_, err := e.GetItem(context.Background(), 1)
	if !errors.Is(err, store.ErrDataUnavailable) || errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetItem() error = %v, want ErrDataUnavailable only", err)
	}
}

func TestEmptyCollection(t *testing.T) {
	t.Parallel()

	got, err := newEngine([]models.Item{}).ListItems(context.Background(), Query{})
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("ListItems() = %v, %v, want empty non-nil", got, err)
	}
}
