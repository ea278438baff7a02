package httpcaching_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschubert/fetchcache/internal/httpcaching"
	"github.com/benjaminschubert/fetchcache/internal/testutils"
)

func TestParseCacheControl(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		description string
		header      string
		expected    httpcaching.Directives
	}{
		{"empty", "", httpcaching.Directives{}},
		{"single", "no-cache", httpcaching.Directives{"no-cache": ""}},
		{
			"multiple",
			"public, max-age=60",
			httpcaching.Directives{"public": "", "max-age": "60"},
		},
		{
			"case-insensitive-and-whitespace",
			"  Max-Age = 60 ,PUBLIC",
			httpcaching.Directives{"public": "", "max-age": "60"},
		},
		{"quoted", `max-age="60"`, httpcaching.Directives{"max-age": "60"}},
		{"first-wins", "max-age=1, max-age=2", httpcaching.Directives{"max-age": "1"}},
		{"empty-entries", ",,no-store,", httpcaching.Directives{"no-store": ""}},
		{"unknown", "foo=bar", httpcaching.Directives{"foo": "bar"}},
	} {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			require.Equal(
				t,
				tc.expected,
				httpcaching.ParseCacheControl(tc.header, testutils.TestLogger(t)),
			)
		})
	}
}

func TestParseCacheControlAcceptsNilLogger(t *testing.T) {
	t.Parallel()

	require.Equal(
		t,
		httpcaching.Directives{"max-age": "1"},
		httpcaching.ParseCacheControl("max-age=1, max-age=2", nil),
	)
}

func TestDirectiveSeconds(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		value    string
		expected time.Duration
		ok       bool
	}{
		{"0", 0, true},
		{"60", 60 * time.Second, true},
		{"", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"hello", 0, false},
		{"99999999999999999999999", 2147483648 * time.Second, true},
		{"2147483649", 2147483648 * time.Second, true},
	} {
		t.Run(tc.value, func(t *testing.T) {
			t.Parallel()

			directives := httpcaching.Directives{httpcaching.DirectiveMaxAge: tc.value}
			seconds, ok := directives.Seconds(httpcaching.DirectiveMaxAge)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, seconds)
			assert.Equal(t, tc.expected, directives.SecondsOrZero(httpcaching.DirectiveMaxAge))
		})
	}
}

func TestDirectiveSecondsMissing(t *testing.T) {
	t.Parallel()

	seconds, ok := httpcaching.Directives{}.Seconds(httpcaching.DirectiveMaxAge)
	require.False(t, ok)
	require.Zero(t, seconds)
}

func TestDirectivesCopies(t *testing.T) {
	t.Parallel()

	original := httpcaching.Directives{"max-age": "60", "no-cache": ""}

	added := original.With(httpcaching.DirectiveMustRevalidate)
	removed := original.Without(httpcaching.DirectiveNoCache)

	assert.Equal(t, httpcaching.Directives{"max-age": "60", "no-cache": ""}, original)
	assert.Equal(
		t,
		httpcaching.Directives{"max-age": "60", "no-cache": "", "must-revalidate": ""},
		added,
	)
	assert.Equal(t, httpcaching.Directives{"max-age": "60"}, removed)
	assert.Equal(t, httpcaching.Directives{}, httpcaching.Directives(nil).Without("public"))
}

func TestDirectivesString(t *testing.T) {
	t.Parallel()

	directives := httpcaching.Directives{"public": "", "max-age": "60", "immutable": ""}
	require.Equal(t, "immutable, max-age=60, public", directives.String())
}
