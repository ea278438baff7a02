package httpcaching_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/benjaminschubert/fetchcache/internal/httpcaching"
	"github.com/benjaminschubert/fetchcache/internal/testutils"
)

var testNow = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func httpDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

func getRequest(headers ...string) httpcaching.Request {
	return httpcaching.Request{
		URL:     "http://example.com/resource",
		Method:  http.MethodGet,
		Headers: httpcaching.NewHeaders(headers...),
	}
}

func newPolicyWithOptions(
	t *testing.T,
	req httpcaching.Request,
	status int,
	opts httpcaching.Options,
	headers ...string,
) *httpcaching.Policy {
	t.Helper()

	return httpcaching.New(
		req,
		httpcaching.Response{Status: status, Headers: httpcaching.NewHeaders(headers...)},
		testNow,
		opts,
		testutils.TestLogger(t),
	)
}

func newPolicy(t *testing.T, headers ...string) *httpcaching.Policy {
	t.Helper()

	return newPolicyWithOptions(t, getRequest(), http.StatusOK, httpcaching.DefaultOptions(), headers...)
}
