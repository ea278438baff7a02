// Package kvstore contains the key-value stores cache entries are persisted
// in. Stores only see opaque strings and enforce expiry themselves.
package kvstore

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("store is closed")

type Store interface {
	// Get returns the value stored under key, and whether it was found.
	// Expired values are never returned.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value. A ttl <= 0
	// means the value never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend is a Store holding resources that must be released.
type Backend interface {
	Store
	Close() error
}
