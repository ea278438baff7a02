package kvstore

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog"

	"github.com/benjaminschubert/fetchcache/internal/units"
)

// Memory keeps entries in process, evicting them once their total size
// exceeds the configured maximum.
type Memory struct {
	cache  *ristretto.Cache[string, string]
	logger *zerolog.Logger
	closed atomic.Bool
}

var _ Backend = (*Memory)(nil)

func NewMemory(maxSize units.Bytes, logger *zerolog.Logger) (*Memory, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		// Ten times the number of entries expected, assuming entries of 1KB
		NumCounters:        max(int64(maxSize)/100, 10_000),
		MaxCost:            int64(maxSize),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create in-memory cache: %w", err)
	}

	memLogger := logger.With().Str("component", "memory").Logger()
	return &Memory{cache: cache, logger: &memLogger}, nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := m.check(ctx); err != nil {
		return "", false, err
	}

	value, found := m.cache.Get(key)
	return value, found, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := m.check(ctx); err != nil {
		return err
	}

	if !m.cache.SetWithTTL(key, value, int64(len(value)), max(0, ttl)) {
		m.logger.Debug().Str("key", key).Int("size", len(value)).Msg("entry dropped by the in-memory cache")
	}

	// Sets are applied asynchronously
	m.cache.Wait()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := m.check(ctx); err != nil {
		return err
	}

	m.cache.Del(key)
	m.cache.Wait()
	return nil
}

func (m *Memory) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		m.cache.Close()
	}
	return nil
}

func (m *Memory) check(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}
