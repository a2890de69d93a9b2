// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/catalog/internal/logging"
)

// AccessLog logs one line per request at debug level, or at warn level when
// the request took longer than slow. A zero slow disables the warning.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			elapsed := time.Since(start)

			ev := logging.Ctx(r.Context()).Debug()
			msg := "Request served"
			if slow > 0 && elapsed > slow {
				ev = logging.Ctx(r.Context()).Warn().Dur("threshold", slow)
				msg = "Slow request detected"
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", sw.status).
				Dur("duration", elapsed).
				Msg(msg)
		})
	}
}
