package handlers

import (
	"errors"
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/benjaminschubert/fetchcache/internal/httpclient"
	"github.com/benjaminschubert/fetchcache/internal/httpheaders"
)

// Hop-by-hop headers, never forwarded in either direction
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

func removeHopByHopHeaders(headers http.Header) {
	for _, value := range headers.Values("Connection") {
		for name := range strings.SplitSeq(value, ",") {
			headers.Del(strings.TrimSpace(name))
		}
	}
	for _, name := range hopByHopHeaders {
		headers.Del(name)
	}
}

// Forward serves r with the response to upstreamURL, going through the
// cache.
func Forward(
	w http.ResponseWriter,
	r *http.Request,
	upstreamURL string,
	client *httpclient.Client,
	opts ...httpclient.FetchOption,
) {
	logger := hlog.FromRequest(r)

	upstreamReq, err := http.NewRequestWithContext(r.Context(), r.Method, upstreamURL, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Error generating new upstream request")
		Error(w, r, http.StatusBadRequest, "Invalid upstream request")
		return
	}
	maps.Copy(upstreamReq.Header, r.Header.Clone())
	removeHopByHopHeaders(upstreamReq.Header)

	resp, err := client.FetchCached(upstreamReq, opts...)
	switch {
	case errors.Is(err, httpclient.ErrStoreWrite):
		logger.Warn().Err(err).Msg("Unable to cache the response, serving it anyway")
	case errors.Is(err, httpclient.ErrStoreRead):
		logger.Error().Err(err).Msg("Unable to read from the cache")
		Error(w, r, http.StatusServiceUnavailable, "The cache is unavailable")
		return
	case err != nil:
		logger.Warn().Err(err).Msg("Error forwarding request to upstream")
		Error(w, r, http.StatusBadGateway, "Unable to contact upstream")
		return
	}
	defer resp.Body.Close() //nolint:errcheck

	maps.Copy(w.Header(), resp.Header)
	removeHopByHopHeaders(w.Header())

	if resp.StatusCode == http.StatusOK && matchesOriginalQuery(r.Header, resp) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(resp.StatusCode)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Error().Err(err).Msg("Error sending response to client")
	}
}

func matchesOriginalQuery(headers http.Header, resp *http.Response) bool {
	etag := resp.Header.Get("Etag")
	if etag != "" {
		for _, match := range headers.Values("If-None-Match") {
			for _, candidate := range httpheaders.SplitEtags(match) {
				if candidate == "*" || httpheaders.EtagsMatch(etag, candidate) {
					return true
				}
			}
		}
	}

	lastModified := resp.Header.Get("Last-Modified")
	return lastModified != "" && lastModified == headers.Get("If-Modified-Since")
}
