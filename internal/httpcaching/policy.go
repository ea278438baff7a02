// Implementation for RFC 9111: https://datatracker.ietf.org/doc/html/rfc9111
//
//		Useful links:
//	   - RFC 9110 (HTTP semantics): https://datatracker.ietf.org/doc/html/rfc9110
//	   - RFC 5861 (stale-if-error, stale-while-revalidate): https://datatracker.ietf.org/doc/html/rfc5861
package httpcaching

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Policy decides how a stored response may be reused. It is a pure function
// of the captured request and response and of the time it is asked about,
// and is never modified once built.
type Policy struct {
	state  State
	logger *zerolog.Logger
}

// New captures the given exchange, which happened at the given time.
func New(req Request, resp Response, now time.Time, opts Options, logger *zerolog.Logger) *Policy {
	logger = orNop(logger)

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	resHeaders := resp.Headers
	rescc := ParseCacheControl(resHeaders.Get("Cache-Control"), logger)

	// Some servers send "pre-check=0, post-check=0" together with directives
	// preventing any caching, which were only meant for old browsers
	if opts.IgnoreCargoCult && rescc.Has("pre-check") && rescc.Has("post-check") {
		rescc = rescc.Without(
			"pre-check",
			"post-check",
			DirectiveNoCache,
			DirectiveNoStore,
			DirectiveMustRevalidate,
		)
		resHeaders = resHeaders.Without("Expires", "Pragma")
		if len(rescc) == 0 {
			resHeaders = resHeaders.Without("Cache-Control")
		} else {
			resHeaders = resHeaders.With("Cache-Control", rescc.String())
		}
	}

	// RFC 9111 section 5.4: Pragma is only considered without Cache-Control
	if !resHeaders.Has("Cache-Control") && hasPragmaNoCache(resHeaders) {
		rescc = rescc.With(DirectiveNoCache)
	}

	return &Policy{
		State{
			Version:                StateVersion,
			CapturedAt:             now,
			Shared:                 opts.Shared,
			CacheHeuristic:         opts.CacheHeuristic,
			ImmutableMinTimeToLive: opts.ImmutableMinTimeToLive,
			Status:                 status,
			ResponseHeaders:        resHeaders,
			ResponseDirectives:     rescc,
			Method:                 req.method(),
			VaryHeaders:            extractVaryHeaders(req.Headers, resHeaders),
			Authorized:             req.Headers.Get("Authorization") != "",
			RequestDirectives:      ParseCacheControl(req.Headers.Get("Cache-Control"), logger),
		},
		logger,
	}
}

// Restore rebuilds a policy from a state previously returned by State.
func Restore(state State, logger *zerolog.Logger) (*Policy, error) {
	if err := state.validate(); err != nil {
		return nil, err
	}

	if state.ResponseDirectives == nil {
		state.ResponseDirectives = Directives{}
	}
	if state.RequestDirectives == nil {
		state.RequestDirectives = Directives{}
	}

	return &Policy{state, orNop(logger)}, nil
}

// State returns the serializable snapshot of the policy.
func (p *Policy) State() State {
	return p.state
}

// Status returns the status of the stored response.
func (p *Policy) Status() int {
	return p.state.Status
}

// ForceRevalidation returns a copy of the policy that never satisfies a
// request without revalidating it first, neither from freshness nor through
// max-stale. Only the directives are changed, the stored headers are kept,
// so that a successful revalidation restores the origin's own directives.
func (p *Policy) ForceRevalidation() *Policy {
	state := p.state
	state.ResponseDirectives = state.ResponseDirectives.With(
		DirectiveMustRevalidate,
		DirectiveNoCache,
	)
	return &Policy{state, p.logger}
}

// ResponseHeaders returns the headers to send along the stored response when
// serving it at the given time.
func (p *Policy) ResponseHeaders(now time.Time) Headers {
	headers := withoutHopByHopHeaders(p.state.ResponseHeaders).Without("Date")
	age := p.Age(now)

	// RFC 7234 section 5.5.4, the Warning header is obsolete in RFC 9111 but
	// still expected by some clients
	if age > 24*time.Hour && !p.hasExplicitExpiration() && p.MaxAge() > 24*time.Hour {
		warning := `113 - "rfc7234 5.5.4"`
		if previous := headers.Get("Warning"); previous != "" {
			warning = previous + ", " + warning
		}
		headers = headers.With("Warning", warning)
	}

	headers = headers.With("Age", strconv.FormatFloat(age.Round(time.Second).Seconds(), 'f', 0, 64))
	return headers.With("Date", now.UTC().Format(http.TimeFormat))
}

// Hop-by-hop headers, as per RFC 9110 section 7.6.1 and RFC 9111 section 3.1
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authentication-Info",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func withoutHopByHopHeaders(headers Headers) Headers {
	excluded := slices.Clone(hopByHopHeaders)

	// The Connection header field and fields whose names are listed in it are
	// required by Section 7.6.1 of RFC 9110 to be removed before forwarding
	if connection := headers.Get("Connection"); connection != "" {
		for name := range strings.SplitSeq(connection, ",") {
			if name = strings.TrimSpace(name); name != "" {
				excluded = append(excluded, name)
			}
		}
	}

	headers = headers.Without(excluded...)

	// Warnings with a 1xx code must be deleted once the response is validated
	if warning, ok := headers.Lookup("Warning"); ok {
		kept := []string{}
		for value := range strings.SplitSeq(warning, ",") {
			if value = strings.TrimSpace(value); value != "" && !strings.HasPrefix(value, "1") {
				kept = append(kept, value)
			}
		}

		if len(kept) == 0 {
			headers = headers.Without("Warning")
		} else {
			headers = headers.With("Warning", strings.Join(kept, ", "))
		}
	}

	return headers
}

func hasPragmaNoCache(headers Headers) bool {
	return strings.Contains(strings.ToLower(headers.Get("Pragma")), DirectiveNoCache)
}

func orNop(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return logger
}
