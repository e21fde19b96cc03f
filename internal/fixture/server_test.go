// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fixture

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/estate-search/internal/listing"
	"github.com/pdiddy/estate-search/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type listEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Properties  []types.PropertySummary `json:"properties"`
		Total       int                     `json:"total"`
		TotalPages  int                     `json:"totalPages"`
		CurrentPage int                     `json:"currentPage"`
	} `json:"data"`
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := NewRouter(openTestStore(t), types.FixtureConfig{}, nil)
	w := get(t, router, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","listings":4}`, w.Body.String())
}

func TestListPropertiesRoute(t *testing.T) {
	router := NewRouter(openTestStore(t), types.FixtureConfig{}, nil)
	w := get(t, router, "/api/properties?purpose=buy&page=1&limit=2")
	require.Equal(t, http.StatusOK, w.Code)

	var env listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 3, env.Data.Total)
	assert.Equal(t, 2, env.Data.TotalPages)
	assert.Equal(t, 1, env.Data.CurrentPage)
	assert.Equal(t, []string{"p-101", "p-103"}, ids(env.Data.Properties))
}

func TestListPropertiesByLocationRoute(t *testing.T) {
	router := NewRouter(openTestStore(t), types.FixtureConfig{}, nil)
	w := get(t, router, "/api/properties/location/sector-77-noida?location=delhi")
	require.Equal(t, http.StatusOK, w.Code)

	var env listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, []string{"p-101", "p-102"}, ids(env.Data.Properties))
}

func TestListPropertiesEmptyHasOnePage(t *testing.T) {
	router := NewRouter(openTestStore(t), types.FixtureConfig{}, nil)
	w := get(t, router, "/api/properties?location=mumbai")
	require.Equal(t, http.StatusOK, w.Code)

	var env listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Zero(t, env.Data.Total)
	assert.Equal(t, 1, env.Data.TotalPages)
	assert.Empty(t, env.Data.Properties)
}

func TestSearchRoute(t *testing.T) {
	router := NewRouter(openTestStore(t), types.FixtureConfig{}, nil)

	w := get(t, router, "/api/properties/search?q=noida")
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Success    bool                    `json:"success"`
		Properties []types.PropertySummary `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, []string{"p-101", "p-102"}, ids(env.Properties))

	w = get(t, router, "/api/properties/search")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPropertyRoute(t *testing.T) {
	router := NewRouter(openTestStore(t), types.FixtureConfig{}, nil)

	w := get(t, router, "/api/properties/id/p-104")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plotArea":200`)

	w = get(t, router, "/api/properties/id/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	router := NewRouter(openTestStore(t), types.FixtureConfig{AllowedOrigins: []string{"http://localhost:3000"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := NewRouter(openTestStore(t), types.FixtureConfig{}, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/api/properties/id/nope", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(404), entries[0].ContextMap()["status"])
}

func TestListingClientAgainstFixture(t *testing.T) {
	srv := httptest.NewServer(NewRouter(openTestStore(t), types.FixtureConfig{}, nil))
	t.Cleanup(srv.Close)

	c := listing.NewClient(types.ListingConfig{BaseURL: srv.URL + "/api", PageSize: 2}, nil, nil)
	ctx := context.Background()

	page, err := c.ListProperties(ctx, types.SearchIntent{Purpose: types.PurposeBuy, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, []string{"p-104"}, ids(page.Items))
	assert.False(t, page.HasNext())

	got, err := c.Search(ctx, "dwarka")
	require.NoError(t, err)
	assert.Equal(t, []string{"p-103", "p-104"}, ids(got))
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
