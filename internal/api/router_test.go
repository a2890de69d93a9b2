// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

package api

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	_ "github.com/tomtom215/catalog/docs"
	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/query"
	"github.com/tomtom215/catalog/internal/stats"
	"github.com/tomtom215/catalog/internal/store"
)

const scenario = `[
  {"id":1,"name":"Apple","price":1.5},
  {"id":2,"name":"Banana","price":2.0},
  {"id":3,"name":"Carrot","price":0.5}
]`

type testServer struct {
	handler http.Handler
	path    string
	cache   *stats.Cache
}

func newTestServer(t *testing.T, content string, cfg *ChiMiddlewareConfig) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
		cfg.CORSAllowedOrigins = []string{"*"}
		cfg.RateLimitDisabled = true
	}

	fs := store.NewFileStore(path)
	cache := stats.New(context.Background(), fs, nil)
	h := NewHandler(query.NewEngine(fs), cache, fs, 0)
	return &testServer{handler: NewRouter(h, cfg).Setup(), path: path, cache: cache}
}

func (s *testServer) get(t *testing.T, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func itemIDs(items []models.Item) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestListItems(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	tests := []struct {
		target string
		want   []int
	}{
		{"/api/items", []int{1, 2, 3}},
		{"/api/items?q=ban", []int{2}},
		{"/api/items?q=BAN", []int{2}},
		{"/api/items?q=a", []int{1, 2, 3}},
		{"/api/items?q=zzz", []int{}},
		{"/api/items?limit=2", []int{1, 2}},
		{"/api/items?offset=1", []int{2, 3}},
		{"/api/items?offset=1&limit=1", []int{2}},
		{"/api/items?offset=10", []int{}},
		{"/api/items?limit=0", []int{}},
		{"/api/items?limit=-4", []int{}},
		{"/api/items?offset=-2&limit=1", []int{1}},
		{"/api/items?limit=%202", []int{1, 2}},
		{"/api/items?offset=2%20&limit=%091%20", []int{3}},
	}
	for _, tt := range tests {
		rec := srv.get(t, tt.target)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", tt.target, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: Content-Type = %q", tt.target, ct)
		}
		got := itemIDs(decode[[]models.Item](t, rec))
		if len(got) != len(tt.want) {
			t.Errorf("%s: ids = %v, want %v", tt.target, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: ids = %v, want %v", tt.target, got, tt.want)
				break
			}
		}
	}
}

func TestListItems_EmptyResultIsArray(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	rec := srv.get(t, "/api/items?q=nothing")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestListItems_InvalidPagination(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	for _, target := range []string{
		"/api/items?limit=abc",
		"/api/items?offset=1.5",
		"/api/items?limit=%20%20",
		"/api/items?offset=%201%202",
	} {
		rec := srv.get(t, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
			continue
		}
		resp := decode[models.ErrorResponse](t, rec)
		if resp.Error.Code != models.ErrCodeValidation {
			t.Errorf("%s: code = %q, want %q", target, resp.Error.Code, models.ErrCodeValidation)
		}
		if resp.Error.RequestID == "" || resp.Error.RequestID != rec.Header().Get("X-Request-Id") {
			t.Errorf("%s: request_id = %q, header = %q", target, resp.Error.RequestID, rec.Header().Get("X-Request-Id"))
		}
	}
}

func TestListItems_LongQueryIsNotRejected(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	rec := srv.get(t, "/api/items?q="+strings.Repeat("a", 300))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestListParamsToQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		params     listParams
		wantLimit  *int
		wantOffset *int
	}{
		{listParams{}, nil, nil},
		{listParams{Limit: " 2", Offset: "3 "}, query.Int(2), query.Int(3)},
		{listParams{Limit: "-1", Offset: "-5"}, query.Int(0), query.Int(0)},
	}
	for _, tt := range tests {
		q, err := tt.params.toQuery()
		if err != nil {
			t.Errorf("%+v: toQuery() error = %v", tt.params, err)
			continue
		}
		if !sameInt(q.Limit, tt.wantLimit) || !sameInt(q.Offset, tt.wantOffset) {
			t.Errorf("%+v: limit=%v offset=%v", tt.params, q.Limit, q.Offset)
		}
	}

	if _, err := (listParams{Limit: "two"}).toQuery(); err == nil {
		t.Error("toQuery() should fail for a non-integer limit")
	}
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestGetItem(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	rec := srv.get(t, "/api/items/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	item := decode[models.Item](t, rec)
	if item.ID != 2 || item.Name != "Banana" || item.Price != 2.0 {
		t.Errorf("item = %+v, want Banana", item)
	}

	for _, target := range []string{"/api/items/999", "/api/items/abc", "/api/items/-1"} {
		rec := srv.get(t, target)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "{}" {
			t.Errorf("%s: body = %q, want {}", target, body)
		}
	}
}

func TestStats(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	rec := srv.get(t, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	st := decode[models.Stats](t, rec)
	if st.Total != 3 {
		t.Errorf("total = %d, want 3", st.Total)
	}
	if math.Abs(st.AveragePrice-4.0/3.0) > 1e-9 {
		t.Errorf("averagePrice = %v, want 1.333...", st.AveragePrice)
	}
	if !strings.Contains(rec.Body.String(), `"averagePrice"`) {
		t.Errorf("body = %q, want averagePrice key", rec.Body.String())
	}
}

func TestStats_FollowsFileChange(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	if st := decode[models.Stats](t, srv.get(t, "/api/stats")); st.Total != 3 {
		t.Fatalf("initial total = %d, want 3", st.Total)
	}

	if err := os.WriteFile(srv.path, []byte(`[{"id":7,"name":"Date","price":4}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(srv.path, later, later); err != nil {
		t.Fatal(err)
	}
	srv.cache.HandleChange(context.Background())

	st := decode[models.Stats](t, srv.get(t, "/api/stats"))
	if st.Total != 1 || st.AveragePrice != 4 {
		t.Errorf("stats after change = %+v, want {1 4}", st)
	}
}

func TestDataUnavailable(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "", nil)

	for _, target := range []string{"/api/stats", "/api/items"} {
		rec := srv.get(t, target)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", target, rec.Code)
			continue
		}
		resp := decode[models.ErrorResponse](t, rec)
		if resp.Error.Code != models.ErrCodeDataUnavailable {
			t.Errorf("%s: code = %q", target, resp.Error.Code)
		}
	}

	if rec := srv.get(t, "/api/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
	if rec := srv.get(t, "/api/health/live"); rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	rec := srv.get(t, "/api/health/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	h := decode[models.HealthStatus](t, rec)
	if h.Status != "ok" || h.Items != 3 || !h.StatsWarm {
		t.Errorf("health = %+v", h)
	}
}

func TestETagNotModified(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	first := srv.get(t, "/api/items")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	if cc := first.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}

	second := srv.get(t, "/api/items", "If-None-Match", etag)
	if second.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", second.Code)
	}
	if second.Body.Len() != 0 {
		t.Errorf("304 body = %q, want empty", second.Body.String())
	}
}

func TestRequestIDPropagated(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	rec := srv.get(t, "/api/items", "X-Request-Id", "req-123")
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q, want req-123", got)
	}
	rec = srv.get(t, "/api/items")
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected generated X-Request-Id")
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	rec := srv.get(t, "/api/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decode[models.ErrorResponse](t, rec); resp.Error.Code != models.ErrCodeNotFound {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestSwaggerDocServed(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	rec := srv.get(t, "/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var doc struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	for _, path := range []string{"/api/items", "/api/items/{id}", "/api/stats"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("doc.json has no %s", path)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, scenario, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
	req.Header.Set("Origin", "http://ui.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	srv := newTestServer(t, scenario, cfg)

	for i := 0; i < 2; i++ {
		if rec := srv.get(t, "/api/items"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
	rec := srv.get(t, "/api/items")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if resp := decode[models.ErrorResponse](t, rec); resp.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("code = %q", resp.Error.Code)
	}

	// Health checks sit outside the limited group.
	if rec := srv.get(t, "/api/health/live"); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	if generateETag([]byte("x")) != generateETag([]byte("x")) {
		t.Error("ETag should be deterministic")
	}
	if generateETag([]byte("x")) == generateETag([]byte("y")) {
		t.Error("different data should give different ETags")
	}
}
