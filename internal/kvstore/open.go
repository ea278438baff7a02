package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/benjaminschubert/fetchcache/internal/config"
)

const redisConnectTimeout = 10 * time.Second

var ErrInvalidBackend = errors.New("invalid cache backend")

// Open builds the backend described by the configuration.
func Open(conf config.Cache, logger *zerolog.Logger) (Backend, error) {
	var backend Backend
	var err error

	switch conf.Backend {
	case config.BackendBadger:
		backend, err = NewBadger(conf.Path, logger)
	case config.BackendMemory:
		backend, err = NewMemory(conf.MaxSize, logger)
	case config.BackendRedis:
		if !conf.RedisURL.IsSet() {
			return nil, fmt.Errorf("%w: redis requires a redis_url", ErrInvalidBackend)
		}

		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		defer cancel()
		backend, err = NewRedis(ctx, conf.RedisURL.URL.String(), conf.KeyPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, conf.Backend)
	}

	if err != nil {
		return nil, err
	}

	logger.Debug().Str("backend", conf.Backend).Bool("hashKeys", conf.HashKeys).Msg("cache store opened")

	if conf.HashKeys {
		return NewHashed(backend), nil
	}
	return backend, nil
}
