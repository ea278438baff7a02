// Package proxy implements a forward HTTP proxy serving allowed upstreams
// through the cache.
package proxy

import (
	"net/http"
	"strconv"

	"github.com/benjaminschubert/fetchcache/internal/handlers"
	"github.com/benjaminschubert/fetchcache/internal/httpclient"
)

const (
	// KeyHeader overrides the key the response is cached under.
	KeyHeader = "X-Fetchcache-Key"
	// ForceRevalidationHeader, when true, stores the response even if it
	// is stale, to be revalidated on every later request.
	ForceRevalidationHeader = "X-Fetchcache-Force-Revalidation"
)

func RegisterHandler(
	allowedHostnames []string,
	handler *http.ServeMux,
	client *httpclient.Client,
) {
	hostnames := make(map[string]struct{}, len(allowedHostnames))
	for _, hostname := range allowedHostnames {
		hostnames[hostname] = struct{}{}
	}

	// GET patterns also match HEAD requests
	handler.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if !r.URL.IsAbs() {
			handlers.Error(w, r, http.StatusBadRequest, "Only absolute-form requests can be proxied")
			return
		}

		if _, ok := hostnames[r.URL.Hostname()]; !ok {
			handlers.Error(
				w,
				r,
				http.StatusForbidden,
				"The server cannot authorize proxying to the requested upstream",
			)
			return
		}

		handlers.Forward(w, r, r.URL.String(), client, fetchOptions(r)...)
	})
}

// fetchOptions extracts the cache options from the request, removing their
// headers so they never reach the upstream.
func fetchOptions(r *http.Request) []httpclient.FetchOption {
	opts := []httpclient.FetchOption{}

	key := r.Header.Get(KeyHeader)
	if key == "" && r.Method == http.MethodHead {
		// HEAD responses have no body, they must not replace GET ones
		key = http.MethodHead + " " + r.URL.String()
	}
	if key != "" {
		opts = append(opts, httpclient.WithCacheKey(key))
	}

	if force, err := strconv.ParseBool(r.Header.Get(ForceRevalidationHeader)); err == nil && force {
		opts = append(opts, httpclient.WithForceRevalidation())
	}

	r.Header.Del(KeyHeader)
	r.Header.Del(ForceRevalidationHeader)
	return opts
}
