package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/benjaminschubert/fetchcache/internal/logging"
)

const (
	badgerGCInterval     = 15 * time.Minute
	badgerGCDiscardRatio = 0.5
)

// Badger persists entries on disk.
type Badger struct {
	db         *badger.DB
	logger     *zerolog.Logger
	stopSignal chan struct{}
	stopWait   sync.WaitGroup
	closeOnce  sync.Once
}

var _ Backend = (*Badger)(nil)

// NewBadger opens the database at path, creating it if needed. An empty path
// keeps everything in memory.
func NewBadger(path string, logger *zerolog.Logger) (*Badger, error) {
	// Ensure the db logger is not too chatty
	dbLogger := logging.ComponentLogger(logger, "database", zerolog.WarnLevel)

	opts := badger.DefaultOptions(path).WithLogger(logging.NewLoggerAdapter(dbLogger))
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("unable to open the database, it might be corrupted: %w", err)
	}

	store := &Badger{db: db, logger: dbLogger, stopSignal: make(chan struct{})}

	if path != "" {
		store.stopWait.Add(1)
		go store.collectGarbage()
	}

	return store, nil
}

func (b *Badger) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var value []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("unexpected error extracting value: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("unable to load key: %w", err)
	}

	return string(value), true, nil
}

func (b *Badger) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("unable to save entry in database: %w", err)
	}
	return nil
}

func (b *Badger) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("unable to delete entry from database: %w", err)
	}
	return nil
}

func (b *Badger) Close() error {
	var err error

	b.closeOnce.Do(func() {
		close(b.stopSignal)
		b.stopWait.Wait()

		if closeErr := b.db.Close(); closeErr != nil {
			err = fmt.Errorf("unable to close the database, it might be corrupted: %w", closeErr)
		}
	})

	return err
}

// Expired entries are only reclaimed from the value log by garbage
// collection
func (b *Badger) collectGarbage() {
	defer b.stopWait.Done()

	ticker := time.NewTicker(badgerGCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.runGarbageCollection(xid.New().String())
		case <-b.stopSignal:
			return
		}
	}
}

func (b *Badger) runGarbageCollection(logID string) {
	logger := b.logger.With().Str("id", logID).Logger()

	for rewrites := 0; ; rewrites++ {
		err := b.db.RunValueLogGC(badgerGCDiscardRatio)
		if err == nil {
			continue
		}

		if errors.Is(err, badger.ErrNoRewrite) {
			logger.Debug().Int("rewrites", rewrites).Msg("database garbage collection done")
		} else {
			logger.Error().Err(err).Msg("an error happened trying to vacuum the database")
		}
		return
	}
}
