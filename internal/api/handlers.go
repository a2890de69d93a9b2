// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/query"
	"github.com/tomtom215/catalog/internal/store"
	"github.com/tomtom215/catalog/internal/validation"
)

// ItemService answers item queries.
type ItemService interface {
	ListItems(ctx context.Context, q query.Query) ([]models.Item, error)
	GetItem(ctx context.Context, id int) (models.Item, error)
}

// StatsService serves the memoized statistics.
type StatsService interface {
	Get(ctx context.Context) (models.Stats, error)
	Valid() bool
}

// DataSource is what the readiness check inspects.
type DataSource interface {
	Path() string
	Snapshot(ctx context.Context) (*store.Snapshot, error)
}

// Handler serves the catalog HTTP API.
type Handler struct {
	items       ItemService
	stats       StatsService
	data        DataSource
	cacheMaxAge int
}

// NewHandler wires the handler. cacheMaxAge is the Cache-Control max-age in
// seconds for successful responses; zero sends no-cache.
func NewHandler(items ItemService, stats StatsService, data DataSource, cacheMaxAge int) *Handler {
	return &Handler{items: items, stats: stats, data: data, cacheMaxAge: cacheMaxAge}
}

// listParams holds the raw query string so non-integer values are reported
// as validation errors instead of being silently dropped. q is free text
// with no length limit; an unmatched q is an empty page, not an error.
type listParams struct {
	Q      string `query:"q"`
	Limit  string `query:"limit" validate:"omitempty,integer"`
	Offset string `query:"offset" validate:"omitempty,integer"`
}

// toQuery converts validated params. Surrounding spaces are ignored, the
// same way the integer rule ignores them.
func (p listParams) toQuery() (query.Query, error) {
	q := query.Query{Q: p.Q}
	if p.Limit != "" {
		n, err := strconv.Atoi(strings.TrimSpace(p.Limit))
		if err != nil {
			return query.Query{}, fmt.Errorf("limit: %w", err)
		}
		q.Limit = query.Int(max(n, 0))
	}
	if p.Offset != "" {
		n, err := strconv.Atoi(strings.TrimSpace(p.Offset))
		if err != nil {
			return query.Query{}, fmt.Errorf("offset: %w", err)
		}
		q.Offset = query.Int(max(n, 0))
	}
	return q, nil
}

// ListItems handles GET /api/items.
//
// @Summary List items
// @Description Case-insensitive substring match on name, then offset and limit in file order. Negative values count as 0.
// @Tags Items
// @Accept json
// @Produce json
// @Param q query string false "Name filter"
// @Param limit query integer false "Page size; omitted returns all remaining"
// @Param offset query integer false "Items to skip"
// @Success 200 {array} models.Item
// @Failure 400 {object} models.ErrorResponse "limit or offset is not an integer"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	params := listParams{Q: v.Get("q"), Limit: v.Get("limit"), Offset: v.Get("offset")}
	if verr := validation.ValidateStruct(&params); verr != nil {
		respondAPIError(w, r, http.StatusBadRequest, verr.ToAPIError())
		return
	}

	q, err := params.toQuery()
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "limit and offset must be integers", nil)
		return
	}

	items, err := h.items.ListItems(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, items)
}

// GetItem handles GET /api/items/{id}. Ids that are not integers cannot
// match any item, so they get the same 404 as unknown ids.
//
// @Summary Get an item
// @Tags Items
// @Produce json
// @Param id path integer true "Item id"
// @Success 200 {object} models.Item
// @Failure 404 {object} object "Unknown id; the body is {}"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/items/{id} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w, r)
		return
	}

	item, err := h.items.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, item)
}

// Stats handles GET /api/stats.
//
// @Summary Get catalog statistics
// @Description Item count and mean price, recomputed only after the data file changes.
// @Tags Stats
// @Produce json
// @Success 200 {object} models.Stats
// @Failure 500 {object} models.ErrorResponse
// @Router /api/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, st)
}

// HealthLive always reports ok while the process serves requests.
//
// @Summary Liveness check
// @Tags Core
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Router /api/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, models.HealthStatus{Status: "ok", StatsWarm: h.stats.Valid()})
}

// HealthReady reports 503 while the data file cannot be read.
//
// @Summary Readiness check
// @Tags Core
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Failure 503 {object} models.HealthStatus
// @Router /api/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{Status: "ok", DataPath: h.data.Path(), StatsWarm: h.stats.Valid()}
	snap, err := h.data.Snapshot(r.Context())
	if err != nil {
		status.Status = "unavailable"
		status.Error = "item data unavailable"
		h.respondJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	status.Items = len(snap.Items)
	h.respondJSON(w, r, http.StatusOK, status)
}
