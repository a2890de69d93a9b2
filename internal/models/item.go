// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package models holds the catalog's wire and domain types.
package models

// Item is one catalog record. IDs are unique and stable across reloads of
// the data file.
type Item struct {
	ID          int     `json:"id" validate:"gte=0"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// Stats is derived from the whole collection and never persisted.
type Stats struct {
	Total        int     `json:"total"`
	AveragePrice float64 `json:"averagePrice"`
}

// ComputeStats returns the count and mean price of items. The mean of an
// empty collection is 0.
func ComputeStats(items []Item) Stats {
	if len(items) == 0 {
		return Stats{}
	}
	var sum float64
	for i := range items {
		sum += items[i].Price
	}
	return Stats{Total: len(items), AveragePrice: sum / float64(len(items))}
}
