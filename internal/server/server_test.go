package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschubert/fetchcache/internal/cacheentry"
	"github.com/benjaminschubert/fetchcache/internal/config"
	"github.com/benjaminschubert/fetchcache/internal/kvstore"
	"github.com/benjaminschubert/fetchcache/internal/testutils"
)

func noEnv(string) (string, bool) {
	return "", false
}

func newStore(t *testing.T) kvstore.Backend {
	t.Helper()

	store, err := kvstore.NewMemory(1024*1024, testutils.TestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestServerInitialization(t *testing.T) {
	t.Parallel()

	logger := testutils.TestLogger(t)

	conf, err := config.Default(noEnv)
	require.NoError(t, err)
	conf.Proxies = append(conf.Proxies, config.Proxy{AllowedUpstreams: []string{"example.com"}, Port: 3143})

	srv, err := New(conf, nil, newStore(t), cacheentry.JSON{}, logger, prometheus.NewPedanticRegistry())
	require.NoError(t, err)

	addresses := make([]string, 0, len(srv.servers))
	for _, s := range srv.servers {
		addresses = append(addresses, s.server.Addr)
	}
	require.Equal(t, []string{"localhost:3142", "localhost:3143", "localhost:3130"}, addresses)
}

func TestServerWithoutAdminInterface(t *testing.T) {
	t.Parallel()

	conf, err := config.Default(noEnv)
	require.NoError(t, err)
	conf.AdminInterface = ""

	srv, err := New(conf, nil, newStore(t), cacheentry.JSON{}, testutils.TestLogger(t), prometheus.NewPedanticRegistry())
	require.NoError(t, err)
	require.Len(t, srv.servers, 1)
}

func TestAdminInterfaceExposesMetrics(t *testing.T) {
	t.Parallel()

	conf, err := config.Default(noEnv)
	require.NoError(t, err)
	conf.Proxies = nil

	srv, err := New(conf, nil, newStore(t), cacheentry.JSON{}, testutils.TestLogger(t), prometheus.NewPedanticRegistry())
	require.NoError(t, err)
	require.Len(t, srv.servers, 1)

	server := httptest.NewServer(srv.servers[0].server.Handler)
	t.Cleanup(server.Close)

	get := func(path string) (int, string) {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL+path, nil)
		require.NoError(t, err)
		resp, err := server.Client().Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		return resp.StatusCode, string(body)
	}

	status, _ := get("/")
	require.Equal(t, http.StatusOK, status)

	status, _ = get("/unknown")
	require.Equal(t, http.StatusNotImplemented, status)

	status, body := get("/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `fetchcache_http_requests_total{cache="N/A",method="GET",service="admin",status="200"} 1`)
	assert.Contains(t, body, `fetchcache_http_requests_total{cache="N/A",method="GET",service="admin",status="501"} 1`)
}
