// Implements section 4 of RFC 9111 'Constructing Responses from Caches' and
// section 4.3 'Validation'
//
// See https://datatracker.ietf.org/doc/html/rfc9111#section-4
package httpcaching

import (
	"net/http"
	"strings"
	"time"

	"github.com/benjaminschubert/fetchcache/internal/httpheaders"
)

// Revalidation is the outcome of merging the origin's answer to a
// conditional request.
type Revalidation struct {
	// Policy to use from now on.
	Policy *Policy
	// Modified is true when the stored body must be replaced by the one of
	// the new response.
	Modified bool
	// Matches is true when the origin confirmed the stored response.
	Matches bool
}

// Fields of a 304 response that never replace the stored ones
var notUpdatedHeaders = []string{
	"Content-Length",
	"Content-Encoding",
	"Transfer-Encoding",
	"Content-Range",
}

// SatisfiesWithoutRevalidation returns whether the stored response can be
// served for the given request at the given time, without contacting the
// origin.
func (p *Policy) SatisfiesWithoutRevalidation(req Request, now time.Time) bool {
	reqHeaders := req.Headers
	reqcc := ParseCacheControl(reqHeaders.Get("Cache-Control"), p.logger)

	if reqcc.Has(DirectiveNoCache) {
		p.logger.Debug().Msg("request asks for revalidation")
		return false
	}
	if !reqHeaders.Has("Cache-Control") && hasPragmaNoCache(reqHeaders) {
		p.logger.Debug().Msg("request asks for revalidation through pragma")
		return false
	}

	age := p.Age(now)

	if maxAge, ok := reqcc.Seconds(DirectiveMaxAge); ok && age > maxAge {
		p.logger.Debug().
			Dur("age", age).
			Dur("maxAge", maxAge).
			Msg("stored response is older than the request allows")
		return false
	}

	if minFresh, ok := reqcc.Seconds(DirectiveMinFresh); ok && p.TimeToLive(now) < minFresh {
		p.logger.Debug().Dur("minFresh", minFresh).Msg("stored response is not fresh enough")
		return false
	}

	if p.Stale(now) && !p.allowsStale(reqcc, age) {
		p.logger.Debug().Dur("age", age).Dur("maxAge", p.MaxAge()).Msg("stored response is stale")
		return false
	}

	return p.requestMatches(req, false)
}

// RFC 9111 section 5.2.1.2
func (p *Policy) allowsStale(reqcc Directives, age time.Duration) bool {
	if !reqcc.Has(DirectiveMaxStale) {
		return false
	}
	if p.state.ResponseDirectives.Has(DirectiveMustRevalidate) {
		return false
	}

	maxStale, ok := reqcc.Seconds(DirectiveMaxStale)
	if !ok {
		// Without a value, the client accepts any staleness
		return true
	}
	return maxStale > age-p.MaxAge()
}

func (p *Policy) requestMatches(req Request, allowHeadMethod bool) bool {
	method := req.method()
	if method != p.state.Method && (!allowHeadMethod || method != http.MethodHead) {
		p.logger.Debug().
			Str("method", method).
			Str("storedMethod", p.state.Method).
			Msg("request method differs from the stored one")
		return false
	}

	return matchVaryHeaders(req.Headers, p.state.ResponseHeaders, p.state.VaryHeaders, p.logger)
}

// RevalidationHeaders returns the headers to send to the origin to validate
// the stored response for the given request.
func (p *Policy) RevalidationHeaders(req Request) Headers {
	headers := withoutHopByHopHeaders(req.Headers).Without("If-Range")

	if !p.requestMatches(req, true) || !p.Storable() {
		// The stored response cannot be used, the validators would be wrong
		return headers.Without("If-None-Match", "If-Modified-Since")
	}

	resHeaders := p.state.ResponseHeaders

	if etag := resHeaders.Get("ETag"); etag != "" {
		if existing := headers.Get("If-None-Match"); existing != "" {
			etag = existing + ", " + etag
		}
		headers = headers.With("If-None-Match", etag)
	}

	// RFC 9110 section 13.1.3 and 13.1.4
	forbidsWeakValidators := headers.Has("Accept-Ranges") ||
		headers.Has("If-Match") ||
		headers.Has("If-Unmodified-Since") ||
		p.state.Method != http.MethodGet

	if forbidsWeakValidators {
		headers = headers.Without("If-Modified-Since")

		if ifNoneMatch := headers.Get("If-None-Match"); ifNoneMatch != "" {
			strong := []string{}
			for _, etag := range httpheaders.SplitEtags(ifNoneMatch) {
				if !httpheaders.IsWeak(etag) {
					strong = append(strong, etag)
				}
			}

			if len(strong) == 0 {
				headers = headers.Without("If-None-Match")
			} else {
				headers = headers.With("If-None-Match", strings.Join(strong, ", "))
			}
		}
	} else if lastModified := resHeaders.Get("Last-Modified"); lastModified != "" && !headers.Has("If-Modified-Since") {
		headers = headers.With("If-Modified-Since", lastModified)
	}

	return headers
}

// RevalidatedPolicy computes the policy to use after the origin answered a
// request sent with RevalidationHeaders.
func (p *Policy) RevalidatedPolicy(req Request, resp Response, now time.Time) Revalidation {
	if resp.Status >= 500 && resp.Status <= 599 && p.UseStaleIfError(now) {
		p.logger.Debug().Int("status", resp.Status).Msg("origin failed, keeping stored response")
		return Revalidation{Policy: p, Modified: false, Matches: true}
	}

	if resp.Status != http.StatusNotModified {
		return Revalidation{
			Policy:   New(req, resp, now, p.state.options(), p.logger),
			Modified: true,
			Matches:  false,
		}
	}

	if !p.notModifiedMatches(resp.Headers) {
		p.logger.Debug().Msg("validators of the not modified response do not match the stored response")
		return Revalidation{Policy: p, Modified: false, Matches: false}
	}

	merged := Response{
		Status:  p.state.Status,
		Headers: mergeHeaders(p.state.ResponseHeaders, resp.Headers),
	}

	return Revalidation{
		Policy:   New(req, merged, now, p.state.options(), p.logger),
		Modified: false,
		Matches:  true,
	}
}

// RFC 9111 section 4.3.4
func (p *Policy) notModifiedMatches(headers Headers) bool {
	stored := p.state.ResponseHeaders
	storedEtag, newEtag := stored.Get("ETag"), headers.Get("ETag")
	storedLastModified, newLastModified := stored.Get("Last-Modified"), headers.Get("Last-Modified")

	switch {
	case newEtag != "" && !httpheaders.IsWeak(newEtag):
		return storedEtag != "" && httpheaders.StripWeak(storedEtag) == newEtag
	case storedEtag != "" && newEtag != "":
		return httpheaders.EtagsMatch(storedEtag, newEtag)
	case storedLastModified != "":
		return storedLastModified == newLastModified
	default:
		// Only one response is ever stored per key, a 304 without any
		// validator can only refer to it
		return storedEtag == "" && newEtag == "" && newLastModified == ""
	}
}

// mergeHeaders updates the stored headers with the ones of a 304 response, as
// per RFC 9111 section 3.2
func mergeHeaders(stored, notModified Headers) Headers {
	updates := withoutHopByHopHeaders(notModified).Without(notUpdatedHeaders...)
	merged := withoutHopByHopHeaders(stored)

	if updates.Has(setCookie) {
		merged = merged.Without(setCookie)
	}

	for _, field := range updates {
		if field.Name == setCookie {
			merged = append(merged, field)
			continue
		}
		merged = merged.With(field.Name, field.Value)
	}

	return merged
}
