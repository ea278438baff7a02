// Package cacheentry defines the record persisted for every cached response,
// and the codecs turning it into the opaque string handed to the store.
package cacheentry

import (
	"errors"
	"fmt"

	"github.com/benjaminschubert/fetchcache/internal/httpcaching"
)

var (
	ErrMalformedEntry = errors.New("malformed cache entry")
	ErrUnknownCodec   = errors.New("unknown cache entry codec")
)

//go:generate go tool github.com/tinylib/msgp -io=false -tests=false

// Entry is a cached response: the policy deciding how it can be reused, and
// its full body.
type Entry struct {
	Policy httpcaching.State `json:"policy" msg:"policy"`
	Body   string            `json:"body" msg:"body"`
}

type Codec interface {
	Name() string
	Encode(entry Entry) (string, error)
	// Decode fails with ErrMalformedEntry if the value was not produced by
	// Encode.
	Decode(value string) (Entry, error)
}

// ByName returns the codec registered under the given name, "json" or
// "msgpack".
func ByName(name string) (Codec, error) {
	switch name {
	case JSON{}.Name():
		return JSON{}, nil
	case MessagePack{}.Name():
		return MessagePack{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}
