package kvstore

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Hashed maps every key to its BLAKE3 digest before handing it to the wrapped
// backend, for backends limiting the length or the characters of keys.
type Hashed struct {
	backend Backend
}

var _ Backend = (*Hashed)(nil)

func NewHashed(backend Backend) *Hashed {
	return &Hashed{backend}
}

// HashKey returns the key under which the wrapped backend stores key.
func HashKey(key string) string {
	digest := blake3.Sum256([]byte(key))
	return hex.EncodeToString(digest[:])
}

func (h *Hashed) Get(ctx context.Context, key string) (string, bool, error) {
	return h.backend.Get(ctx, HashKey(key))
}

func (h *Hashed) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return h.backend.Set(ctx, HashKey(key), value, ttl)
}

func (h *Hashed) Delete(ctx context.Context, key string) error {
	return h.backend.Delete(ctx, HashKey(key))
}

func (h *Hashed) Close() error {
	return h.backend.Close()
}
