package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschubert/fetchcache/internal/units"
)

const (
	BackendBadger = "badger"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var ErrInvalidOverride = errors.New("invalid environment override")

type Proxy struct {
	AllowedUpstreams []string `yaml:"allowed_upstreams"`
	Port             uint16
}

type Log struct {
	Level  string
	Format string
}

type Cache struct {
	Backend               string
	Path                  string
	MaxSize               units.Bytes     `yaml:"max_size"`
	RedisURL              SerializableURL `yaml:"redis_url"`
	KeyPrefix             string          `yaml:"key_prefix"`
	HashKeys              bool            `yaml:"hash_keys"`
	Codec                 string
	StoreReadErrorsAsMiss bool `yaml:"store_read_errors_as_miss"`
}

type Policy struct {
	Shared          bool
	CacheHeuristic  float64       `yaml:"cache_heuristic"`
	ImmutableMinTTL time.Duration `yaml:"immutable_min_ttl"`
	IgnoreCargoCult bool          `yaml:"ignore_cargo_cult"`
}

type Config struct {
	Host           string
	Cache          Cache
	Policy         Policy
	AdminInterface string `yaml:"admin_interface"`
	EnableMetrics  bool   `yaml:"metrics"`
	Log            Log
	Proxies        []Proxy
}

func getBaseConfig(lookupEnv func(string) (string, bool)) *Config {
	defaultCachePath, ok := lookupEnv("FETCHCACHE_DEFAULT_CACHE_PATH")
	if !ok {
		defaultCachePath = "_cache/"
	}

	return &Config{
		Host: "localhost",
		Cache: Cache{
			Backend:   BackendBadger,
			Path:      defaultCachePath,
			MaxSize:   units.Bytes(256 * 1024 * 1024),
			KeyPrefix: "fetchcache:",
			Codec:     "json",
		},
		Policy: Policy{
			Shared:          true,
			CacheHeuristic:  0.1,
			ImmutableMinTTL: 24 * time.Hour,
		},
		AdminInterface: "localhost:3130",
		EnableMetrics:  true,
		Log:            Log{zerolog.LevelInfoValue, "json"},
	}
}

func Parse(configPath string, lookupEnv func(string) (string, bool)) (*Config, error) {
	c := getBaseConfig(lookupEnv)

	fp, err := os.Open(configPath) //nolint:gosec
	if err != nil {
		return c, err
	}
	defer fp.Close() //nolint:errcheck

	decoder := yaml.NewDecoder(fp)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return c, fmt.Errorf("unable to parse configuration at %s: %w", configPath, err)
	}

	return c, applyOverrides(c, lookupEnv)
}

func Default(lookupEnv func(string) (string, bool)) (*Config, error) {
	conf := getBaseConfig(lookupEnv)
	conf.Proxies = []Proxy{{
		[]string{
			// Debian
			"deb.debian.org",
			// Ubuntu
			"archive.ubuntu.com", "security.ubuntu.com",
		},
		3142,
	}}

	return conf, applyOverrides(conf, lookupEnv)
}

func applyOverrides(conf *Config, lookupEnv func(string) (string, bool)) error {
	if val, ok := lookupEnv("FETCHCACHE_LOG_LEVEL"); ok {
		conf.Log.Level = val
	}

	if val, ok := lookupEnv("FETCHCACHE_LOG_FORMAT"); ok {
		conf.Log.Format = val
	}

	if val, ok := lookupEnv("FETCHCACHE_CACHE_BACKEND"); ok {
		conf.Cache.Backend = val
	}

	if val, ok := lookupEnv("FETCHCACHE_CACHE_PATH"); ok {
		conf.Cache.Path = val
	}

	if val, ok := lookupEnv("FETCHCACHE_CACHE_CODEC"); ok {
		conf.Cache.Codec = val
	}

	if val, ok := lookupEnv("FETCHCACHE_REDIS_URL"); ok {
		parsed, err := url.Parse(val)
		if err != nil {
			return fmt.Errorf("%w FETCHCACHE_REDIS_URL: %w", ErrInvalidOverride, err)
		}
		conf.Cache.RedisURL = SerializableURL{parsed}
	}

	if val, ok := lookupEnv("FETCHCACHE_HOST"); ok {
		conf.Host = val
	}

	if val, ok := lookupEnv("FETCHCACHE_ADMIN_INTERFACE"); ok {
		conf.AdminInterface = val
	}

	return nil
}
