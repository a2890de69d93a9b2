// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/store"
)

// emptyObject is the body of the item 404.
var emptyObject = []byte("{}")

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// generateETag hashes data with FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondJSON writes v with an ETag. A matching If-None-Match on a 200
// response yields 304 with no body.
func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")
	if h.cacheMaxAge > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(h.cacheMaxAge))
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}

	if status == http.StatusOK {
		etag := generateETag(data)
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	writeBody(w, r, status, data)
}

// respondError writes the error envelope. err, when set, is logged and never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	reqID := logging.RequestIDFromContext(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", sanitizeLogValue(code)).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	data, mErr := json.Marshal(models.ErrorResponse{Error: models.APIError{
		Code:      code,
		Message:   message,
		RequestID: reqID,
	}})
	if mErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	writeBody(w, r, status, data)
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr models.APIError) {
	apiErr.RequestID = logging.RequestIDFromContext(r.Context())
	data, err := json.Marshal(models.ErrorResponse{Error: apiErr})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	writeBody(w, r, status, data)
}

// respondNotFound writes the item 404: an empty JSON object.
func respondNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeBody(w, r, http.StatusNotFound, emptyObject)
}

// writeServiceError maps store sentinels to responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondNotFound(w, r)
	case errors.Is(err, store.ErrDataUnavailable):
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDataUnavailable, "Item data is unavailable", err)
	case errors.Is(err, r.Context().Err()) && r.Context().Err() != nil:
		// Client went away; nothing useful to write.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Request cancelled")
	default:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", err)
	}
}

func writeBody(w http.ResponseWriter, r *http.Request, status int, data []byte) {
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write response")
	}
}
