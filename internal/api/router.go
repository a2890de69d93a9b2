// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package api serves the read-only catalog HTTP API on a chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/catalog/internal/middleware"
	"github.com/tomtom215/catalog/internal/models"
)

// slowRequestThreshold is when the access log escalates to a warning.
const slowRequestThreshold = time.Second

// chiMiddleware adapts http.HandlerFunc middleware to chi's signature.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router owns the handler and its middleware.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter returns a Router. cfg may be nil for defaults.
func NewRouter(handler *Handler, cfg *ChiMiddlewareConfig) *Router {
	return &Router{handler: handler, chiMiddleware: NewChiMiddleware(cfg)}
}

// Setup builds the route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(slowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chimiddleware.Compress(5, "application/json"))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/items", router.handler.ListItems)
		r.Get("/items/{id}", router.handler.GetItem)
		r.Get("/stats", router.handler.Stats)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Serves whatever spec the docs package registered; without that import
	// doc.json is a 500.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, models.ErrCodeValidation, "Method not allowed", nil)
	})

	return r
}
