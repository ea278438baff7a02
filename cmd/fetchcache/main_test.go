package main

import (
	"io/fs"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschubert/fetchcache/internal/cacheentry"
	"github.com/benjaminschubert/fetchcache/internal/config"
)

func TestCanGetVersion(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, getVersion())
}

func TestCanLoadSpecifiedConfig(t *testing.T) {
	t.Parallel()

	conf := t.TempDir() + "/fetchcache.yaml"
	require.NoError(t, os.WriteFile(conf, []byte("host: 1.1.1.1\nlog:\n  level: debug"), 0o600))

	c, usingDefaults, err := loadConfig(func(s string) (string, bool) {
		switch s {
		case "FETCHCACHE_CONFIG_PATH":
			return conf, true
		default:
			return "", false
		}
	})

	require.NoError(t, err)
	assert.False(t, usingDefaults)
	assert.Equal(t, "1.1.1.1", c.Host)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestFailsIfSpecifiedConfigDoesNotExist(t *testing.T) {
	t.Parallel()

	_, _, err := loadConfig(func(s string) (string, bool) {
		switch s {
		case "FETCHCACHE_CONFIG_PATH":
			return t.TempDir() + "/fetchcache.yaml", true
		default:
			return "", false
		}
	})
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestClientOptionsFollowConfiguration(t *testing.T) {
	t.Parallel()

	conf, err := config.Default(func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	conf.Cache.Codec = "msgpack"
	conf.Cache.StoreReadErrorsAsMiss = true
	conf.Policy.Shared = false

	opts, err := clientOptions(conf, prometheus.NewPedanticRegistry())
	require.NoError(t, err)
	assert.Equal(t, cacheentry.MessagePack{}, opts.Codec)
	assert.True(t, opts.StoreReadErrorsAsMiss)
	assert.False(t, opts.Policy.Shared)
	assert.Equal(t, conf.Policy.ImmutableMinTTL, opts.Policy.ImmutableMinTimeToLive)
}

func TestClientOptionsRejectUnknownCodec(t *testing.T) {
	t.Parallel()

	conf, err := config.Default(func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	conf.Cache.Codec = "xml"

	_, err = clientOptions(conf, nil)
	require.ErrorIs(t, err, cacheentry.ErrUnknownCodec)
}
