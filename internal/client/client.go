// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package client talks to the catalog HTTP API.
//
// Requests are paced by a token bucket and guarded by a circuit breaker.
// Every failure maps onto one of three sentinels so callers can react
// without parsing messages: ErrNotFound, ErrRequestCancelled and ErrNetwork.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/query"
)

var (
	// ErrNotFound means the server answered 404.
	ErrNotFound = errors.New("not found")

	// ErrRequestCancelled means the caller's context ended first. It is
	// expected when a newer request supersedes an older one.
	ErrRequestCancelled = errors.New("request cancelled")

	// ErrNetwork covers transport failures, non-2xx answers, undecodable
	// bodies and an open circuit breaker.
	ErrNetwork = errors.New("network error")
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // zero disables pacing
	BreakerFailures   uint32
	BreakerTimeout    time.Duration
	HTTPClient        *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker
	logger  zerolog.Logger
}

// New validates the base URL and builds a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL scheme must be http or https, got %q", base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := max(int(opts.RequestsPerSecond), 1)
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		base:    base,
		http:    hc,
		limiter: limiter,
		breaker: newBreaker("catalog-api", opts.BreakerFailures, opts.BreakerTimeout),
		logger:  logging.WithComponent("client"),
	}, nil
}

// ListItems fetches GET /api/items. Nil Limit or Offset are omitted.
func (c *Client) ListItems(ctx context.Context, q query.Query) ([]models.Item, error) {
	params := url.Values{}
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	if q.Limit != nil {
		params.Set("limit", strconv.Itoa(*q.Limit))
	}
	if q.Offset != nil {
		params.Set("offset", strconv.Itoa(*q.Offset))
	}

	var items []models.Item
	if err := c.getJSON(ctx, "/api/items", params, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

// GetItem fetches GET /api/items/{id}.
func (c *Client) GetItem(ctx context.Context, id int) (models.Item, error) {
	var item models.Item
	if err := c.getJSON(ctx, "/api/items/"+strconv.Itoa(id), nil, &item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Stats fetches GET /api/stats.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	if err := c.getJSON(ctx, "/api/stats", nil, &st); err != nil {
		return models.Stats{}, err
	}
	return st, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return cancelled(ctx, err)
	}

	u := c.base.JoinPath(path)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	start := time.Now()
	body, err := c.breaker.execute(func() ([]byte, error) {
		return c.do(ctx, u.String())
	})
	c.logger.Debug().
		Str("url", u.String()).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("API request")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrNetwork, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx, err)
		}
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s", ErrNetwork, statusMessage(resp.StatusCode, body))
	}
	return body, nil
}

// statusMessage prefers the server's error envelope message.
func statusMessage(code int, body []byte) string {
	var env models.ErrorResponse
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return fmt.Sprintf("status %d: %s (%s)", code, env.Error.Message, env.Error.Code)
	}
	return fmt.Sprintf("status %d", code)
}

func cancelled(ctx context.Context, err error) error {
	return fmt.Errorf("%w: %w", ErrRequestCancelled, errors.Join(ctx.Err(), err))
}
