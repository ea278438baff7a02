package admin_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschubert/fetchcache/internal/cacheentry"
	"github.com/benjaminschubert/fetchcache/internal/config"
	"github.com/benjaminschubert/fetchcache/internal/handlers/admin"
	"github.com/benjaminschubert/fetchcache/internal/handlers/testutils"
	"github.com/benjaminschubert/fetchcache/internal/httpcaching"
	"github.com/benjaminschubert/fetchcache/internal/kvstore"
	"github.com/benjaminschubert/fetchcache/internal/middleware"
)

func noEnv(string) (string, bool) {
	return "", false
}

func setup(t *testing.T) (*httptest.Server, kvstore.Store) {
	t.Helper()

	logger := testutils.TestLogger(t)
	_, store := testutils.NewClient(t, logger)

	conf, err := config.Default(noEnv)
	require.NoError(t, err)

	handler := &http.ServeMux{}
	require.NoError(t, admin.RegisterHandler(handler, store, cacheentry.JSON{}, conf))

	server := httptest.NewServer(
		middleware.ApplyAllMiddlewares(handler, "admin", logger, prometheus.NewPedanticRegistry()),
	)
	t.Cleanup(server.Close)

	return server, store
}

func storeEntry(t *testing.T, store kvstore.Store, key string) {
	t.Helper()

	policy := httpcaching.New(
		httpcaching.Request{Method: http.MethodGet},
		httpcaching.Response{
			Status:  http.StatusOK,
			Headers: httpcaching.NewHeaders("Cache-Control", "max-age=3600"),
		},
		time.Now(),
		httpcaching.DefaultOptions(),
		nil,
	)

	value, err := cacheentry.JSON{}.Encode(cacheentry.Entry{Policy: policy.State(), Body: "hello"})
	require.NoError(t, err)
	require.NoError(t, store.Set(t.Context(), key, value, time.Hour))
}

func request(t *testing.T, server *httptest.Server, method, path string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, server.URL+path, nil)
	require.NoError(t, err)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	return resp, string(data)
}

func TestShowsConfiguration(t *testing.T) {
	t.Parallel()

	server, _ := setup(t)

	resp, body := request(t, server, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "backend: badger")
	assert.Contains(t, body, "localhost:3130")
}

func TestCanInspectEntries(t *testing.T) {
	t.Parallel()

	server, store := setup(t)
	key := "http://example.com/a"
	storeEntry(t, store, key)

	resp, body := request(t, server, http.MethodGet, "/cache?key="+url.QueryEscape(key))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	info := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.Equal(t, key, info["key"])
	assert.InDelta(t, 200, info["status"], 0)
	assert.Equal(t, false, info["stale"])
	assert.InDelta(t, 5, info["bodySize"], 0)
	assert.Equal(t, map[string]any{"cache-control": "max-age=3600"}, info["responseHeaders"])

	resp, _ = request(t, server, http.MethodGet, "/cache?key=unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = request(t, server, http.MethodGet, "/cache")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportsMalformedEntries(t *testing.T) {
	t.Parallel()

	server, store := setup(t)
	require.NoError(t, store.Set(t.Context(), "broken", "{", time.Hour))

	resp, _ := request(t, server, http.MethodGet, "/cache?key=broken")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCanDeleteEntries(t *testing.T) {
	t.Parallel()

	server, store := setup(t)
	key := "http://example.com/a"
	storeEntry(t, store, key)

	resp, _ := request(t, server, http.MethodDelete, "/cache?key="+url.QueryEscape(key))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, found, err := store.Get(t.Context(), key)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting is idempotent
	resp, _ = request(t, server, http.MethodDelete, "/cache?key="+url.QueryEscape(key))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
