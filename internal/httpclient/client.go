// Package httpclient serves HTTP requests through a key-value store, reusing
// and revalidating stored responses as HTTP caching rules allow.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/benjaminschubert/fetchcache/internal/cacheentry"
	"github.com/benjaminschubert/fetchcache/internal/httpcaching"
	"github.com/benjaminschubert/fetchcache/internal/kvstore"
)

var (
	ErrStoreRead  = errors.New("unable to read the entry from the store")
	ErrStoreWrite = errors.New("unable to write the entry to the store")
)

// Transport sends requests to the origin. *http.Client implements it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	Policy httpcaching.Options
	// Codec encodes entries before they reach the store. Defaults to JSON.
	Codec cacheentry.Codec
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// StoreReadErrorsAsMiss makes a failing store read behave like a miss
	// instead of failing the request.
	StoreReadErrorsAsMiss bool
	// Registerer receives the client's metrics. Nil disables them.
	Registerer prometheus.Registerer
	// Notify, if set, is told how each request was served: "hit", "miss",
	// "revalidated" or "modified".
	Notify func(req *http.Request, result string)
}

func DefaultOptions() Options {
	return Options{
		Policy: httpcaching.DefaultOptions(),
		Codec:  cacheentry.JSON{},
		Clock:  time.Now,
	}
}

type Client struct {
	transport Transport
	store     kvstore.Store
	opts      Options
	metrics   *metrics
	logger    *zerolog.Logger
}

func New(transport Transport, store kvstore.Store, opts Options, logger *zerolog.Logger) *Client {
	if opts.Codec == nil {
		opts.Codec = cacheentry.JSON{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{transport, store, opts, newMetrics(opts.Registerer), logger}
}

type fetchOptions struct {
	key               string
	forceRevalidation bool
}

type FetchOption func(*fetchOptions)

// WithCacheKey stores the response under key instead of the request URL.
func WithCacheKey(key string) FetchOption {
	return func(o *fetchOptions) {
		o.key = key
	}
}

// WithForceRevalidation stores the response even when it is already stale,
// marked so that it is always revalidated before being served again.
func WithForceRevalidation() FetchOption {
	return func(o *fetchOptions) {
		o.forceRevalidation = true
	}
}

// result is a response ready to be stored and returned.
type result struct {
	policy *httpcaching.Policy
	status int
	header http.Header
	body   string
}

// FetchCached returns the response to req, from the store when a stored
// response can be reused, from the origin otherwise. The returned body is
// always fully buffered.
//
// Transport errors are returned as is. When the response cannot be written
// to the store, it is returned along with an error wrapping ErrStoreWrite.
func (c *Client) FetchCached(req *http.Request, opts ...FetchOption) (*http.Response, error) {
	fetchOpts := fetchOptions{key: req.URL.String()}
	for _, opt := range opts {
		opt(&fetchOpts)
	}

	logger := c.logger.With().
		Str("fetch", xid.New().String()).
		Str("key", fetchOpts.key).
		Logger()

	ctx := req.Context()
	policyReq := httpcaching.RequestFromHTTP(req)

	entry, policy, err := c.lookup(ctx, fetchOpts.key, &logger)
	if err != nil {
		return nil, err
	}

	var res result

	if policy == nil {
		logger.Debug().Msg("no entry in the store, fetching from upstream")
		c.record(req, lookupMiss)

		res, err = c.fetch(req, req.Header.Clone(), policyReq, &logger)
		if err != nil {
			return nil, err
		}
	} else {
		now := c.opts.Clock()

		if policy.SatisfiesWithoutRevalidation(policyReq, now) {
			logger.Debug().Msg("serving response from the store")
			c.record(req, lookupHit)

			return buildResponse(req, policy.Status(), policy.ResponseHeaders(now).HTTPHeader(), entry.Body), nil
		}

		res, err = c.revalidate(req, policyReq, policy, entry.Body, &logger)
		if err != nil {
			return nil, err
		}
	}

	resp := buildResponse(req, res.status, res.header, res.body)

	if err := c.save(ctx, fetchOpts, res, &logger); err != nil {
		return resp, err
	}
	return resp, nil
}

func (c *Client) lookup(
	ctx context.Context,
	key string,
	logger *zerolog.Logger,
) (*cacheentry.Entry, *httpcaching.Policy, error) {
	value, found, err := c.store.Get(ctx, key)
	if err != nil {
		if !c.opts.StoreReadErrorsAsMiss {
			return nil, nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
		}

		logger.Warn().Err(err).Msg("unable to read from the store, handling it as a miss")
		return nil, nil, nil
	}
	if !found {
		return nil, nil, nil
	}

	entry, err := c.opts.Codec.Decode(value)
	if err != nil {
		logger.Warn().Err(err).Str("codec", c.opts.Codec.Name()).Msg("ignoring malformed entry")
		c.metrics.lookups.WithLabelValues(lookupMalformed).Inc()
		return nil, nil, nil
	}

	policy, err := httpcaching.Restore(entry.Policy, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring entry with an invalid policy")
		c.metrics.lookups.WithLabelValues(lookupMalformed).Inc()
		return nil, nil, nil
	}

	return &entry, policy, nil
}

func (c *Client) fetch(
	req *http.Request,
	header http.Header,
	policyReq httpcaching.Request,
	logger *zerolog.Logger,
) (result, error) {
	resp, body, err := c.send(req, header, logger)
	if err != nil {
		return result{}, err
	}

	return result{
		policy: httpcaching.New(
			policyReq,
			httpcaching.ResponseFromHTTP(resp),
			c.opts.Clock(),
			c.opts.Policy,
			logger,
		),
		status: resp.StatusCode,
		header: resp.Header,
		body:   body,
	}, nil
}

func (c *Client) revalidate(
	req *http.Request,
	policyReq httpcaching.Request,
	policy *httpcaching.Policy,
	storedBody string,
	logger *zerolog.Logger,
) (result, error) {
	logger.Debug().Msg("stored response cannot be used as is, revalidating")

	resp, body, err := c.send(req, policy.RevalidationHeaders(policyReq).HTTPHeader(), logger)
	if err != nil {
		return result{}, err
	}

	now := c.opts.Clock()
	revalidation := policy.RevalidatedPolicy(policyReq, httpcaching.ResponseFromHTTP(resp), now)

	switch {
	case revalidation.Modified:
		logger.Debug().Int("status", resp.StatusCode).Msg("upstream sent a new response")
		c.record(req, lookupModified)

		return result{revalidation.Policy, resp.StatusCode, resp.Header, body}, nil

	case revalidation.Matches:
		logger.Debug().Int("status", resp.StatusCode).Msg("stored response revalidated")
		c.record(req, lookupRevalidated)

		updated := revalidation.Policy
		return result{
			updated,
			updated.Status(),
			updated.ResponseHeaders(now).HTTPHeader(),
			storedBody,
		}, nil

	default:
		// The origin answered a different validator than the one we sent,
		// the stored response is unusable
		logger.Debug().Msg("not modified response does not match the stored one, fetching again")
		c.record(req, lookupModified)

		return c.fetch(req, withoutConditionals(req.Header), policyReq, logger)
	}
}

var conditionalHeaders = []string{
	"If-Match",
	"If-Modified-Since",
	"If-None-Match",
	"If-Range",
	"If-Unmodified-Since",
}

// withoutConditionals returns a copy of header the origin has to answer with
// a full response.
func withoutConditionals(header http.Header) http.Header {
	header = header.Clone()
	for _, name := range conditionalHeaders {
		header.Del(name)
	}
	return header
}

func (c *Client) record(req *http.Request, outcome string) {
	c.metrics.lookups.WithLabelValues(outcome).Inc()
	if c.opts.Notify != nil {
		c.opts.Notify(req, outcome)
	}
}

// send forwards a copy of req carrying header to the transport, and reads
// the whole response.
func (c *Client) send(
	req *http.Request,
	header http.Header,
	logger *zerolog.Logger,
) (*http.Response, string, error) {
	upstreamReq := req.Clone(req.Context())
	upstreamReq.RequestURI = ""
	upstreamReq.Header = header
	acceptStale(upstreamReq.Header, logger)

	logger.Trace().
		Str("method", upstreamReq.Method).
		Any("headers", upstreamReq.Header).
		Msg("sending request upstream")

	resp, err := c.transport.Do(upstreamReq)
	if err != nil {
		return nil, "", err
	}

	body, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		logger.Warn().Err(closeErr).Msg("error closing the body of the upstream response")
	}
	if err != nil {
		return nil, "", fmt.Errorf("unable to read the upstream response: %w", err)
	}

	return resp, string(body), nil
}

// acceptStale lets the transport hand back stale responses, freshness is
// decided by the policy only.
func acceptStale(header http.Header, logger *zerolog.Logger) {
	cacheControl := strings.Join(header.Values("Cache-Control"), ", ")

	if httpcaching.ParseCacheControl(cacheControl, logger).Has(httpcaching.DirectiveMaxStale) {
		return
	}

	if cacheControl == "" {
		header.Set("Cache-Control", httpcaching.DirectiveMaxStale)
	} else {
		header.Set("Cache-Control", cacheControl+", "+httpcaching.DirectiveMaxStale)
	}
}

func (c *Client) save(
	ctx context.Context,
	fetchOpts fetchOptions,
	res result,
	logger *zerolog.Logger,
) error {
	policy := res.policy

	if !policy.Storable() {
		logger.Debug().Msg("response is not storable")
		c.metrics.writes.WithLabelValues(writeSkipped).Inc()
		return nil
	}

	ttl := storedTimeToLive(policy.TimeToLive(c.opts.Clock()))

	if ttl <= 0 && !fetchOpts.forceRevalidation {
		logger.Debug().Msg("response is already stale, not storing it")
		c.metrics.writes.WithLabelValues(writeSkipped).Inc()
		return nil
	}

	// A stale entry with a validator can still be revalidated
	if policy.State().ResponseHeaders.Has("ETag") {
		ttl *= 2
	}

	if fetchOpts.forceRevalidation {
		policy = policy.ForceRevalidation()
	}

	value, err := c.opts.Codec.Encode(cacheentry.Entry{Policy: policy.State(), Body: res.body})
	if err != nil {
		c.metrics.writes.WithLabelValues(writeError).Inc()
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	if err := c.store.Set(ctx, fetchOpts.key, value, ttl); err != nil {
		logger.Error().Err(err).Msg("unable to save the entry")
		c.metrics.writes.WithLabelValues(writeError).Inc()
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	logger.Debug().Dur("ttl", ttl).Int("size", len(value)).Msg("entry saved")
	c.metrics.writes.WithLabelValues(writeStored).Inc()
	c.metrics.storedBytes.Observe(float64(len(value)))
	return nil
}

// maxTimeToLive bounds the time to live of stored entries, before the ETag
// doubling. Lifetimes derived from far future Expires dates would otherwise
// overflow.
const maxTimeToLive = 2147483648 * time.Second

// storedTimeToLive rounds ttl to the second, capped to maxTimeToLive.
func storedTimeToLive(ttl time.Duration) time.Duration {
	return min(ttl, maxTimeToLive).Round(time.Second)
}

func buildResponse(req *http.Request, status int, header http.Header, body string) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
