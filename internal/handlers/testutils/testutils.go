package testutils

import (
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschubert/fetchcache/internal/httpclient"
	"github.com/benjaminschubert/fetchcache/internal/kvstore"
	"github.com/benjaminschubert/fetchcache/internal/middleware"
	tst "github.com/benjaminschubert/fetchcache/internal/testutils"
	"github.com/benjaminschubert/fetchcache/internal/units"
)

var TestLogger = tst.TestLogger

// NewClient returns a client backed by an in-memory store, along with the
// store.
func NewClient(t *testing.T, logger *zerolog.Logger) (*httpclient.Client, kvstore.Backend) {
	t.Helper()

	store, err := kvstore.NewMemory(units.Bytes(10*1024*1024), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	opts := httpclient.DefaultOptions()
	opts.Notify = middleware.SetCacheState

	client := httpclient.New(&http.Client{Timeout: time.Minute}, store, opts, logger)
	return client, store
}
