package cacheentry_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/benjaminschubert/fetchcache/internal/cacheentry"
	"github.com/benjaminschubert/fetchcache/internal/httpcaching"
	"github.com/benjaminschubert/fetchcache/internal/testutils"
)

var testNow = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func newEntry(t *testing.T) cacheentry.Entry {
	t.Helper()

	policy := httpcaching.New(
		httpcaching.Request{
			URL:     "http://example.com",
			Method:  http.MethodGet,
			Headers: httpcaching.NewHeaders("Accept", "text/plain", "Cache-Control", "max-stale"),
		},
		httpcaching.Response{
			Status: http.StatusOK,
			Headers: httpcaching.NewHeaders(
				"Cache-Control", "max-age=60, stale-if-error=30",
				"Content-Type", "text/plain",
				"ETag", `"1"`,
				"Vary", "Accept",
			),
		},
		testNow,
		httpcaching.DefaultOptions(),
		testutils.TestLogger(t),
	)

	return cacheentry.Entry{Policy: policy.State(), Body: "hello\x00world"}
}

func TestCodecsRoundTrip(t *testing.T) {
	t.Parallel()

	for _, codec := range []cacheentry.Codec{cacheentry.JSON{}, cacheentry.MessagePack{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			t.Parallel()

			entry := newEntry(t)

			encoded, err := codec.Encode(entry)
			require.NoError(t, err)

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, entry, decoded)

			original, err := httpcaching.Restore(entry.Policy, testutils.TestLogger(t))
			require.NoError(t, err)
			restored, err := httpcaching.Restore(decoded.Policy, testutils.TestLogger(t))
			require.NoError(t, err)

			for _, elapsed := range []time.Duration{0, 59 * time.Second, 61 * time.Second, 2 * time.Minute} {
				now := testNow.Add(elapsed)
				req := httpcaching.Request{Headers: httpcaching.NewHeaders("Accept", "text/plain")}

				assert.Equal(t, original.TimeToLive(now), restored.TimeToLive(now))
				assert.Equal(
					t,
					original.SatisfiesWithoutRevalidation(req, now),
					restored.SatisfiesWithoutRevalidation(req, now),
				)
			}
		})
	}
}

func TestCodecsKeepRepeatedSetCookie(t *testing.T) {
	t.Parallel()

	for _, codec := range []cacheentry.Codec{cacheentry.JSON{}, cacheentry.MessagePack{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			t.Parallel()

			policy := httpcaching.New(
				httpcaching.Request{URL: "http://example.com", Method: http.MethodGet},
				httpcaching.Response{
					Status: http.StatusOK,
					Headers: httpcaching.HeadersFromHTTP(http.Header{
						"Cache-Control": {"public, max-age=60"},
						"Set-Cookie":    {"a=1", "b=2"},
					}),
				},
				testNow,
				httpcaching.DefaultOptions(),
				testutils.TestLogger(t),
			)
			entry := cacheentry.Entry{Policy: policy.State(), Body: "body"}

			encoded, err := codec.Encode(entry)
			require.NoError(t, err)

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, entry.Policy.ResponseHeaders, decoded.Policy.ResponseHeaders)
			assert.Equal(
				t,
				[]string{"a=1", "b=2"},
				decoded.Policy.ResponseHeaders.HTTPHeader().Values("Set-Cookie"),
			)
		})
	}
}

func TestCodecsRejectMalformedEntries(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		codec cacheentry.Codec
		value string
	}{
		{cacheentry.JSON{}, ""},
		{cacheentry.JSON{}, "not json"},
		{cacheentry.JSON{}, `{"policy": {"responseHeaders": []}}`},
		{cacheentry.JSON{}, `{"body": 1}`},
		{cacheentry.MessagePack{}, ""},
		{cacheentry.MessagePack{}, "\x01"},
		{cacheentry.MessagePack{}, string(msgp.AppendString(msgp.AppendMapHeader(nil, 1), "body"))},
	} {
		t.Run(tc.codec.Name()+"/"+tc.value, func(t *testing.T) {
			t.Parallel()

			_, err := tc.codec.Decode(tc.value)
			require.ErrorIs(t, err, cacheentry.ErrMalformedEntry)
		})
	}
}

func TestMessagePackRejectsTruncatedEntries(t *testing.T) {
	t.Parallel()

	encoded, err := cacheentry.MessagePack{}.Encode(newEntry(t))
	require.NoError(t, err)

	_, err = cacheentry.MessagePack{}.Decode(encoded[:len(encoded)/2])
	require.ErrorIs(t, err, cacheentry.ErrMalformedEntry)
}

func TestMessagePackSkipsUnknownFields(t *testing.T) {
	t.Parallel()

	data := msgp.AppendMapHeader(nil, 2)
	data = msgp.AppendString(data, "unknown")
	data = msgp.AppendInt(data, 42)
	data = msgp.AppendString(data, "body")
	data = msgp.AppendString(data, "content")

	entry, err := cacheentry.MessagePack{}.Decode(string(data))
	require.NoError(t, err)
	require.Equal(t, "content", entry.Body)
}

func TestMessagePackSizeIsAnUpperBound(t *testing.T) {
	t.Parallel()

	entry := newEntry(t)

	encoded, err := entry.MarshalMsg(nil)
	require.NoError(t, err)
	require.LessOrEqual(t, len(encoded), entry.Msgsize())
}

func TestJSONWireShape(t *testing.T) {
	t.Parallel()

	encoded, err := cacheentry.JSON{}.Encode(newEntry(t))
	require.NoError(t, err)

	var shape map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(encoded), &shape))
	require.Len(t, shape, 2)
	require.Contains(t, shape, "policy")
	require.JSONEq(t, `"hello\u0000world"`, string(shape["body"]))
}

func TestByName(t *testing.T) {
	t.Parallel()

	codec, err := cacheentry.ByName("json")
	require.NoError(t, err)
	require.Equal(t, cacheentry.JSON{}, codec)

	codec, err = cacheentry.ByName("msgpack")
	require.NoError(t, err)
	require.Equal(t, cacheentry.MessagePack{}, codec)

	_, err = cacheentry.ByName("xml")
	require.ErrorIs(t, err, cacheentry.ErrUnknownCodec)
}
