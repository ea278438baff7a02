// Implements the parsing for RFC 9111 section 5.2 'Cache-Control', covering both
// request and response directives, in addition to RFC 8246 and 5861
//
//		See https://datatracker.ietf.org/doc/html/rfc9111#section-5.2
//		See https://datatracker.ietf.org/doc/html/rfc8246
//		See https://datatracker.ietf.org/doc/html/rfc5861
//	 See https://developer.mozilla.org/en-US/docs/Web/HTTP/Reference/Headers/Cache-Control
package httpcaching

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RFC 9111 section 1.2.2: a delta-seconds too large to be represented is
// replaced by 2147483648 (2^31).
const maxDeltaSeconds = 2147483648

const (
	DirectiveImmutable            = "immutable"
	DirectiveMaxAge               = "max-age"
	DirectiveMaxStale             = "max-stale"
	DirectiveMinFresh             = "min-fresh"
	DirectiveMustRevalidate       = "must-revalidate"
	DirectiveMustUnderstand       = "must-understand"
	DirectiveNoCache              = "no-cache"
	DirectiveNoStore              = "no-store"
	DirectiveNoTransform          = "no-transform"
	DirectiveOnlyIfCached         = "only-if-cached"
	DirectivePrivate              = "private"
	DirectiveProxyRevalidate      = "proxy-revalidate"
	DirectivePublic               = "public"
	DirectiveSMaxAge              = "s-maxage"
	DirectiveStaleIfError         = "stale-if-error"
	DirectiveStaleWhileRevalidate = "stale-while-revalidate"
)

var (
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidArgument = errors.New("invalid argument")
)

//go:generate go tool github.com/tinylib/msgp -io=false -tests=false

// Directives is the set of Cache-Control directives of a message, mapping
// the lowercase directive name to its unquoted argument ("" when the
// directive has none).
type Directives map[string]string

// ParseCacheControl parses all the given Cache-Control field values.
//
// Parsing never fails: unknown directives are kept as-is and malformed
// arguments are only reported when the typed accessors are used.
func ParseCacheControl(header string, logger *zerolog.Logger) Directives {
	logger = orNop(logger)
	directives := Directives{}

	for directive := range strings.SplitSeq(header, ",") {
		key, val, found := strings.Cut(strings.TrimSpace(directive), "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}

		if _, ok := directives[key]; ok {
			logger.Trace().
				Str("directive", directive).
				Msg("duplicate directive in Cache-Control header, keeping the first one")
			continue
		}

		if found {
			val = strings.Trim(strings.TrimSpace(val), `"`)
		}
		directives[key] = val
	}

	return directives
}

func (d Directives) Has(directive string) bool {
	_, ok := d[directive]
	return ok
}

// Seconds returns the delta-seconds argument of the given directive, and
// whether it is present and valid.
func (d Directives) Seconds(directive string) (time.Duration, bool) {
	value, ok := d[directive]
	if !ok {
		return 0, false
	}

	seconds, err := parseDeltaSeconds(value)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// SecondsOrZero returns the delta-seconds argument of the given directive, or
// zero if it is absent or invalid.
func (d Directives) SecondsOrZero(directive string) time.Duration {
	seconds, _ := d.Seconds(directive)
	return seconds
}

// With returns a copy of the directives, with the given valueless directives
// added.
func (d Directives) With(directives ...string) Directives {
	copied := make(Directives, len(d)+len(directives))
	maps.Copy(copied, d)
	for _, directive := range directives {
		copied[directive] = ""
	}
	return copied
}

// Without returns a copy of the directives, without the given ones.
func (d Directives) Without(directives ...string) Directives {
	copied := maps.Clone(d)
	if copied == nil {
		copied = Directives{}
	}
	for _, directive := range directives {
		delete(copied, directive)
	}
	return copied
}

// String formats the directives back into a Cache-Control field value,
// sorted by name.
func (d Directives) String() string {
	keys := slices.Sorted(maps.Keys(d))

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if value := d[key]; value != "" {
			parts = append(parts, key+"="+value)
		} else {
			parts = append(parts, key)
		}
	}
	return strings.Join(parts, ", ")
}

func parseDeltaSeconds(value string) (int64, error) {
	if value == "" {
		return 0, ErrMissingArgument
	}

	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, ErrInvalidArgument
		}
	}

	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seconds > maxDeltaSeconds {
		// Only digits were accepted, so this can only be an overflow
		return maxDeltaSeconds, nil
	}
	return seconds, nil
}
