// This implements the logic related to RFC 9110 'Vary' headers and RFC 9111 section 4.1 for their use
//
// See https://datatracker.ietf.org/doc/html/rfc9110#section-12.5.5
// See https://datatracker.ietf.org/doc/html/rfc9111#section-4.1 for usage
package httpcaching

import (
	"strings"

	"github.com/rs/zerolog"
)

func getVaryHeaderNames(headers Headers) []string {
	names := make([]string, 0)

	for field := range strings.SplitSeq(headers.Get("Vary"), ",") {
		field = strings.ToLower(strings.TrimSpace(field))
		if field != "" {
			names = append(names, field)
		}
	}

	return names
}

func isVaryWildcard(headers Headers) bool {
	for _, name := range getVaryHeaderNames(headers) {
		if name == "*" {
			return true
		}
	}
	return false
}

// extractVaryHeaders keeps the request headers the response varies on.
func extractVaryHeaders(reqHeaders, respHeaders Headers) Headers {
	relevantHeaders := Headers{}

	for _, name := range getVaryHeaderNames(respHeaders) {
		if value, ok := reqHeaders.Lookup(name); ok {
			relevantHeaders = relevantHeaders.With(name, value)
		}
	}

	return relevantHeaders
}

func matchVaryHeaders(reqHeaders, respHeaders, varyHeaders Headers, logger *zerolog.Logger) bool {
	for _, name := range getVaryHeaderNames(respHeaders) {
		if name == "*" {
			return false
		}

		current, currentOk := reqHeaders.Lookup(name)
		original, originalOk := varyHeaders.Lookup(name)

		if currentOk != originalOk || current != original {
			logger.Debug().
				Str("header", name).
				Str("currentHeader", current).
				Str("originalHeader", original).
				Msg("unable to reuse response without validating due to different headers")
			return false
		}
	}

	return true
}
