// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package query filters and paginates the item collection.
//
// Name matching is a case-insensitive substring test. Results always keep
// the collection's original order.
package query

import (
	"context"
	"strings"

	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/store"
)

// Query selects a page of items. Nil Limit means "all remaining".
type Query struct {
	Q      string
	Limit  *int
	Offset *int
}

// Source provides the current item collection.
type Source interface {
	Snapshot(ctx context.Context) (*store.Snapshot, error)
}

// Engine answers list and lookup requests against a Source.
type Engine struct {
	src Source
}

// NewEngine returns an Engine reading from src.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// ListItems returns the page of items matching q. Store failures wrap
// store.ErrDataUnavailable.
func (e *Engine) ListItems(ctx context.Context, q Query) ([]models.Item, error) {
	snap, err := e.src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Paginate(Filter(snap.Items, q.Q), q.Offset, q.Limit), nil
}

// GetItem returns the item with id or store.ErrNotFound.
func (e *Engine) GetItem(ctx context.Context, id int) (models.Item, error) {
	snap, err := e.src.Snapshot(ctx)
	if err != nil {
		return models.Item{}, err
	}
	item, ok := snap.Lookup(id)
	if !ok {
		return models.Item{}, store.ErrNotFound
	}
	return item, nil
}

// Filter returns the items whose name contains q, ignoring case. An empty q
// returns items unchanged. items is never modified.
func Filter(items []models.Item, q string) []models.Item {
	if q == "" {
		return items
	}
	needle := strings.ToLower(q)
	out := make([]models.Item, 0, len(items))
	for i := range items {
		if strings.Contains(strings.ToLower(items[i].Name), needle) {
			out = append(out, items[i])
		}
	}
	return out
}

// Paginate returns items[offset:offset+limit] with both bounds clamped.
// Negative values count as zero; a nil limit takes everything after offset.
func Paginate(items []models.Item, offset, limit *int) []models.Item {
	start := 0
	if offset != nil && *offset > 0 {
		start = *offset
	}
	if start >= len(items) {
		return []models.Item{}
	}

	end := len(items)
	if limit != nil {
		n := *limit
		if n < 0 {
			n = 0
		}
		if n < end-start {
			end = start + n
		}
	}
	return items[start:end]
}

// Int returns a pointer to v, for building a Query.
func Int(v int) *int {
	return &v
}
