package main

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/benjaminschubert/fetchcache/internal/cacheentry"
	"github.com/benjaminschubert/fetchcache/internal/config"
	"github.com/benjaminschubert/fetchcache/internal/httpcaching"
	"github.com/benjaminschubert/fetchcache/internal/httpclient"
	"github.com/benjaminschubert/fetchcache/internal/kvstore"
	"github.com/benjaminschubert/fetchcache/internal/logging"
	"github.com/benjaminschubert/fetchcache/internal/middleware"
	"github.com/benjaminschubert/fetchcache/internal/server"
)

func getVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(unknown)"
	}
	return info.Main.Version
}

// loadConfig reads the configuration file, falling back to the defaults when
// no path was given and the default file does not exist.
func loadConfig(lookupEnv func(string) (string, bool)) (*config.Config, bool, error) {
	configPath, configPathSet := lookupEnv("FETCHCACHE_CONFIG_PATH")
	if !configPathSet {
		configPath = "./fetchcache.yaml"
	}

	conf, err := config.Parse(configPath, lookupEnv)
	if err != nil {
		if !configPathSet && errors.Is(err, fs.ErrNotExist) {
			conf, err = config.Default(lookupEnv)
			return conf, true, err
		}
		return nil, false, err
	}

	return conf, false, nil
}

func clientOptions(
	conf *config.Config,
	registry prometheus.Registerer,
) (httpclient.Options, error) {
	codec, err := cacheentry.ByName(conf.Cache.Codec)
	if err != nil {
		return httpclient.Options{}, err
	}

	return httpclient.Options{
		Policy: httpcaching.Options{
			Shared:                 conf.Policy.Shared,
			CacheHeuristic:         conf.Policy.CacheHeuristic,
			ImmutableMinTimeToLive: conf.Policy.ImmutableMinTTL,
			IgnoreCargoCult:        conf.Policy.IgnoreCargoCult,
		},
		Codec:                 codec,
		Clock:                 time.Now,
		StoreReadErrorsAsMiss: conf.Cache.StoreReadErrorsAsMiss,
		Registerer:            registry,
		Notify:                middleware.SetCacheState,
	}, nil
}

func main() {
	panicLogger, err := logging.CreateLogger(zerolog.WarnLevel, "json", os.Stderr)
	if err != nil {
		panic("BUG: invalid default logger")
	}

	conf, usingDefaults, err := loadConfig(os.LookupEnv)
	if err != nil {
		panicLogger.Fatal().Err(err).Msg("Unable to start server: invalid configuration")
	}

	logLevel, err := zerolog.ParseLevel(conf.Log.Level)
	if err != nil {
		panicLogger.Fatal().Err(err).Msg("Unable to start server: invalid configuration")
	}
	logger, err := logging.CreateLogger(logLevel, conf.Log.Format, os.Stderr)
	if err != nil {
		panicLogger.Fatal().Err(err).Msg("Unable to initialize logger")
	}

	logger.Info().Str("version", getVersion()).Msg("Starting fetchcache")
	if usingDefaults {
		logger.Info().
			Msg("fetchcache.yaml not found and FETCHCACHE_CONFIG_PATH not set: Using default configuration")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts, err := clientOptions(conf, registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to start server: invalid configuration")
	}

	store, err := kvstore.Open(conf.Cache, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to start server: can't open the cache store")
	}
	defer func() {
		logger.Info().Msg("Closing up the cache")
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Couldn't close the cache properly")
		}
	}()

	transport := &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          20,
			MaxConnsPerHost:       20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	client := httpclient.New(transport, store, opts, &logger)

	srv, err := server.New(conf, client, store, opts.Codec, &logger, registry)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to start server")
		return
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error().Err(err).Msg("An error occurred while shutting down the server")
		return
	}

	logger.Info().Msg("Server shut down")
}
