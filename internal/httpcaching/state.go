package httpcaching

import (
	"errors"
	"fmt"
	"time"
)

// StateVersion is the version of the State format. Restoring a state with a
// different version fails.
const StateVersion = 1

var ErrUnsupportedState = errors.New("unsupported cache policy state")

//go:generate go tool github.com/tinylib/msgp -io=false -tests=false
//msgp:ignore Options
//msgp:timezone utc

type Options struct {
	// Shared applies the rules of a shared cache (s-maxage, private,
	// Authorization handling). This is the default.
	Shared bool
	// CacheHeuristic is the fraction of the time since Last-Modified used as
	// a freshness lifetime when the response has no explicit one.
	CacheHeuristic float64
	// ImmutableMinTimeToLive is the minimum freshness lifetime given to
	// responses marked immutable without an explicit lifetime.
	ImmutableMinTimeToLive time.Duration
	// IgnoreCargoCult drops the directives old servers send alongside
	// pre-check and post-check, which would otherwise prevent caching.
	IgnoreCargoCult bool
}

func DefaultOptions() Options {
	return Options{
		Shared:                 true,
		CacheHeuristic:         0.1,
		ImmutableMinTimeToLive: 24 * time.Hour,
	}
}

// State is a closed, serializable snapshot of a Policy. It does not contain
// the request URL: entries may be stored under any key.
type State struct {
	Version                int           `json:"version" msg:"version"`
	CapturedAt             time.Time     `json:"capturedAt" msg:"capturedAt"`
	Shared                 bool          `json:"shared" msg:"shared"`
	CacheHeuristic         float64       `json:"cacheHeuristic" msg:"cacheHeuristic"`
	ImmutableMinTimeToLive time.Duration `json:"immutableMinTimeToLive" msg:"immutableMinTimeToLive"`
	Status                 int           `json:"status" msg:"status"`
	ResponseHeaders        Headers       `json:"responseHeaders" msg:"responseHeaders"`
	ResponseDirectives     Directives    `json:"responseDirectives" msg:"responseDirectives"`
	Method                 string        `json:"method" msg:"method"`
	VaryHeaders            Headers       `json:"varyHeaders,omitempty" msg:"varyHeaders"`
	Authorized             bool          `json:"authorized,omitempty" msg:"authorized"`
	RequestDirectives      Directives    `json:"requestDirectives" msg:"requestDirectives"`
}

func (s State) validate() error {
	if s.Version != StateVersion {
		return fmt.Errorf("%w: version %d is not %d", ErrUnsupportedState, s.Version, StateVersion)
	}
	if s.CapturedAt.IsZero() {
		return fmt.Errorf("%w: missing capture time", ErrUnsupportedState)
	}
	if s.Status == 0 {
		return fmt.Errorf("%w: missing status", ErrUnsupportedState)
	}
	return nil
}

func (s State) options() Options {
	return Options{
		Shared:                 s.Shared,
		CacheHeuristic:         s.CacheHeuristic,
		ImmutableMinTimeToLive: s.ImmutableMinTimeToLive,
	}
}
