package httpcaching

import "net/http"

// Status codes this cache understands, see RFC 9110 section 15.
//
// 206 is left out: partial responses are never stored.
var understoodStatuses = map[int]struct{}{
	http.StatusOK:                   {},
	http.StatusNonAuthoritativeInfo: {},
	http.StatusNoContent:            {},
	http.StatusMultipleChoices:      {},
	http.StatusMovedPermanently:     {},
	http.StatusFound:                {},
	http.StatusSeeOther:             {},
	http.StatusTemporaryRedirect:    {},
	http.StatusPermanentRedirect:    {},
	http.StatusNotFound:             {},
	http.StatusMethodNotAllowed:     {},
	http.StatusGone:                 {},
	http.StatusRequestURITooLong:    {},
	http.StatusNotImplemented:       {},
}

// Status codes that are heuristically cacheable, see RFC 9110 section 15.1
var heuristicallyCacheableStatuses = map[int]struct{}{
	http.StatusOK:                   {},
	http.StatusNonAuthoritativeInfo: {},
	http.StatusNoContent:            {},
	http.StatusMultipleChoices:      {},
	http.StatusMovedPermanently:     {},
	http.StatusPermanentRedirect:    {},
	http.StatusNotFound:             {},
	http.StatusMethodNotAllowed:     {},
	http.StatusGone:                 {},
	http.StatusRequestURITooLong:    {},
	http.StatusNotImplemented:       {},
}

// Storable returns whether the response may be stored at all.
func (p *Policy) Storable() bool {
	// Implements RFC 9111 section 3
	//
	// A cache MUST NOT store a response to a request unless:
	//
	// - the request method is understood by the cache;
	// - the response status code is final (see Section 15 of RFC 9110);
	// - if the response status code is 206 or 304, or the must-understand cache directive (see Section 5.2.2.3) is present: the cache understands the response status code;
	// - the no-store cache directive is not present in the response (see Section 5.2.2.5);
	// - if the cache is shared: the private response directive is either not present or allows a shared cache to store a modified response; see Section 5.2.2.7);
	// - if the cache is shared: the Authorization header field is not present in the request (see Section 11.6.2 of RFC 9110) or a response directive is present that explicitly allows shared caching (see Section 3.5); and
	// - the response contains at least one of the following:
	//   - a public response directive (see Section 5.2.2.9);
	//   - a private response directive, if the cache is not shared (see Section 5.2.2.7);
	// 	 - an Expires header field (see Section 5.3);
	//   - a max-age response directive (see Section 5.2.2.1);
	//   - if the cache is shared: an s-maxage response directive (see Section 5.2.2.10);
	//   - a cache extension that allows it to be cached (see Section 5.2.3);
	//   - or a status code that is defined as heuristically cacheable (see Section 4.2.2).
	state := p.state
	rescc := state.ResponseDirectives

	// Reasons it cannot be cached
	if state.RequestDirectives.Has(DirectiveNoStore) {
		return false
	}

	switch state.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodPost:
		// RFC 9110 section 9.3.3, only with explicit freshness information
		if !p.hasExplicitExpiration() {
			return false
		}
	default:
		return false
	}

	if _, ok := understoodStatuses[state.Status]; !ok {
		return false
	}

	// RFC 9111 section 5.2.2.3: must-understand overrides no-store when the
	// status code is understood, which was checked above
	if rescc.Has(DirectiveNoStore) && !rescc.Has(DirectiveMustUnderstand) {
		return false
	}

	if state.Shared && rescc.Has(DirectivePrivate) {
		return false
	}

	if state.Shared && state.Authorized && !p.allowsStoringAuthenticated() {
		return false
	}

	if state.ResponseHeaders.Has("Content-Range") {
		return false
	}

	// Reasons it could be cached
	if rescc.Has(DirectivePublic) || state.ResponseHeaders.Has("Expires") {
		return true
	}

	if _, ok := rescc.Seconds(DirectiveMaxAge); ok {
		return true
	}

	if _, ok := rescc.Seconds(DirectiveSMaxAge); ok && state.Shared {
		return true
	}

	if !state.Shared && rescc.Has(DirectivePrivate) {
		return true
	}

	_, ok := heuristicallyCacheableStatuses[state.Status]
	return ok
}

func (p *Policy) hasExplicitExpiration() bool {
	rescc := p.state.ResponseDirectives

	if _, ok := rescc.Seconds(DirectiveSMaxAge); ok && p.state.Shared {
		return true
	}
	if _, ok := rescc.Seconds(DirectiveMaxAge); ok {
		return true
	}
	return p.state.ResponseHeaders.Has("Expires")
}

// RFC 9111 section 3.5
func (p *Policy) allowsStoringAuthenticated() bool {
	rescc := p.state.ResponseDirectives
	if rescc.Has(DirectiveMustRevalidate) || rescc.Has(DirectivePublic) {
		return true
	}
	_, ok := rescc.Seconds(DirectiveSMaxAge)
	return ok
}
