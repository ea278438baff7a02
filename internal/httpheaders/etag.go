// Package httpheaders contains helpers for entity tags, as defined in
// RFC 9110 section 8.8.3
package httpheaders

import "strings"

const weakPrefix = "W/"

// IsWeak returns whether the entity tag is a weak validator.
func IsWeak(etag string) bool {
	return strings.HasPrefix(etag, weakPrefix)
}

// StripWeak returns the opaque tag, without the weakness indicator.
func StripWeak(etag string) string {
	return strings.TrimPrefix(etag, weakPrefix)
}

// EtagsMatch implements the weak comparison: both tags match when their
// opaque tags are identical, regardless of either being weak.
func EtagsMatch(etag1, etag2 string) bool {
	return StripWeak(etag1) == StripWeak(etag2)
}

// StrongEtagsMatch implements the strong comparison: both tags must be
// strong and identical.
func StrongEtagsMatch(etag1, etag2 string) bool {
	return !IsWeak(etag1) && !IsWeak(etag2) && etag1 == etag2
}

// SplitEtags splits a list of entity tags, like the value of If-None-Match.
// Commas inside quoted tags are kept.
func SplitEtags(value string) []string {
	etags := []string{}
	inQuotes := false
	start := 0

	for idx, char := range value {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				if etag := strings.TrimSpace(value[start:idx]); etag != "" {
					etags = append(etags, etag)
				}
				start = idx + 1
			}
		}
	}

	if etag := strings.TrimSpace(value[start:]); etag != "" {
		etags = append(etags, etag)
	}

	return etags
}
