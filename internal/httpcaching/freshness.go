// Implements section 4.2 of RFC 9111 'Freshness'
//
// See https://datatracker.ietf.org/doc/html/rfc9111#section-4.2
package httpcaching

import (
	"math"
	"net/http"
	"time"
)

// date returns the Date of the response, falling back to the time the
// response was captured, as per RFC 9110 section 6.6.1
func (p *Policy) date() time.Time {
	if value := p.state.ResponseHeaders.Get("Date"); value != "" {
		date, err := http.ParseTime(value)
		if err == nil {
			return date
		}
		p.logger.Debug().Err(err).Str("date", value).Msg("Date header is in an invalid format")
	}
	return p.state.CapturedAt
}

func (p *Policy) ageValue() time.Duration {
	value, ok := p.state.ResponseHeaders.Lookup("Age")
	if !ok {
		return 0
	}

	seconds, err := parseDeltaSeconds(value)
	if err != nil {
		p.logger.Debug().Err(err).Str("age", value).Msg("response has an invalid Age header")
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Age returns the age of the stored response at the given time: the age
// it had when it was received plus the time it has been resident in the
// cache, as per RFC 9111 section 4.2.3
func (p *Policy) Age(now time.Time) time.Duration {
	return p.ageValue() + max(0, now.Sub(p.state.CapturedAt))
}

// MaxAge returns the freshness lifetime of the response.
func (p *Policy) MaxAge() time.Duration {
	// Implements https://datatracker.ietf.org/doc/html/rfc9111#section-4.2.1
	// and https://datatracker.ietf.org/doc/html/rfc9111#section-4.2.2
	state := p.state
	rescc := state.ResponseDirectives

	if !p.Storable() || rescc.Has(DirectiveNoCache) {
		return 0
	}

	// A shared cache would hand cookies out to other users
	if state.Shared &&
		state.ResponseHeaders.Has("Set-Cookie") &&
		!rescc.Has(DirectivePublic) &&
		!rescc.Has(DirectiveImmutable) {
		return 0
	}

	if isVaryWildcard(state.ResponseHeaders) {
		return 0
	}

	if state.Shared {
		if rescc.Has(DirectiveProxyRevalidate) {
			return 0
		}
		if sMaxAge, ok := rescc.Seconds(DirectiveSMaxAge); ok {
			return sMaxAge
		}
	}

	if maxAge, ok := rescc.Seconds(DirectiveMaxAge); ok {
		return maxAge
	}

	defaultMinTTL := time.Duration(0)
	if rescc.Has(DirectiveImmutable) {
		defaultMinTTL = state.ImmutableMinTimeToLive
	}

	serverDate := p.date()

	if value, ok := state.ResponseHeaders.Lookup("Expires"); ok {
		// RFC 9111 section 5.3: invalid dates, like "0", represent a time in
		// the past
		expires, err := http.ParseTime(value)
		if err != nil || expires.Before(serverDate) {
			return 0
		}
		return max(defaultMinTTL, expires.Sub(serverDate))
	}

	if value := state.ResponseHeaders.Get("Last-Modified"); value != "" {
		lastModified, err := http.ParseTime(value)
		if err != nil {
			p.logger.Debug().Err(err).Msg("Last-Modified header is in an invalid format")
		} else if serverDate.After(lastModified) {
			heuristic := time.Duration(float64(serverDate.Sub(lastModified)) * state.CacheHeuristic)
			return max(defaultMinTTL, heuristic)
		}
	}

	return defaultMinTTL
}

// TimeToLive returns how long the stored response remains useful: fresh, or
// stale but still usable through stale-if-error or stale-while-revalidate.
// It is never negative.
func (p *Policy) TimeToLive(now time.Time) time.Duration {
	if !p.Storable() {
		return 0
	}

	rescc := p.state.ResponseDirectives
	remaining := p.MaxAge() - p.Age(now)

	return max(
		0,
		remaining,
		addDurations(remaining, rescc.SecondsOrZero(DirectiveStaleIfError)),
		addDurations(remaining, rescc.SecondsOrZero(DirectiveStaleWhileRevalidate)),
	)
}

// addDurations adds two durations, saturating instead of overflowing. An
// Expires far in the future yields a lifetime close to the maximum duration.
func addDurations(a, b time.Duration) time.Duration {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	default:
		return a + b
	}
}

// Stale returns whether the stored response has outlived its freshness
// lifetime at the given time.
func (p *Policy) Stale(now time.Time) bool {
	return p.MaxAge() <= p.Age(now)
}

// UseStaleIfError returns whether the stored response may be served in place
// of an error, as per RFC 5861 section 4.
func (p *Policy) UseStaleIfError(now time.Time) bool {
	staleIfError, ok := p.state.ResponseDirectives.Seconds(DirectiveStaleIfError)
	return ok && addDurations(p.MaxAge(), staleIfError) > p.Age(now)
}
