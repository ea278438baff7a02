package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const CorrelationIDHeader = "X-Fetchcache-Correlation-ID"

func newLoggingMiddleware(handler http.Handler, logger *zerolog.Logger) http.Handler {
	logHandler := hlog.NewHandler(*logger)

	correlationID := hlog.RequestIDHandler("id", CorrelationIDHeader)

	urlHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := zerolog.Ctx(r.Context())
			log.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("url", r.URL.Redacted())
			})
			next.ServeHTTP(w, r)
		})
	}

	access := hlog.AccessHandler(func(req *http.Request, status, size int, duration time.Duration) {
		level := zerolog.InfoLevel
		if status == 0 {
			level = zerolog.ErrorLevel
		} else if status >= http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}

		l := hlog.FromRequest(req).WithLevel(level) //nolint:zerologlint
		if ua := req.Header.Get("User-Agent"); ua != "" {
			l = l.Str("user-agent", ua)
		}
		l.
			Str("ip", req.RemoteAddr).
			Str("method", req.Method).
			Str("cache", GetCacheState(req.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Processed request")
	})

	return logHandler(correlationID(StateHandler(access(urlHandler(handler)))))
}

func newTraceMiddleware(next http.Handler, logger *zerolog.Logger) http.Handler {
	if logger.GetLevel() > zerolog.TraceLevel {
		logger.Debug().Msg("Tracing disabled, not adding trace middleware")
		return next
	}

	return http.HandlerFunc(func(respw http.ResponseWriter, req *http.Request) {
		headers := req.Header.Clone()
		headers.Del("Authorization")
		headers.Del("Proxy-Authorization")

		hlog.FromRequest(req).Trace().
			Any("headers", headers).
			Str("method", req.Method).
			Msg("Received request")
		defer func() {
			hlog.FromRequest(req).Trace().Any("headers", respw.Header()).Msg("Returned response")
		}()
		next.ServeHTTP(respw, req)
	})
}

func newMetricsMiddleware(
	next http.Handler,
	serviceName string,
	registry prometheus.Registerer,
) http.Handler {
	labels := prometheus.Labels{"service": serviceName}

	requests := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name:        "fetchcache_http_requests_total",
			Help:        "Total number of requests served, by method, status and cache outcome",
			ConstLabels: labels,
		},
		[]string{"method", "status", "cache"},
	)
	durations := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "fetchcache_http_request_duration_seconds",
			Help:        "Time spent serving requests, by cache outcome",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		},
		[]string{"cache"},
	)

	return hlog.AccessHandler(func(req *http.Request, status, _ int, duration time.Duration) {
		cache := GetCacheState(req.Context())

		requests.WithLabelValues(req.Method, strconv.Itoa(status), cache).Inc()
		durations.WithLabelValues(cache).Observe(duration.Seconds())
	})(next)
}

// ApplyAllMiddlewares wraps handler with request ids, access logs, cache
// state tracking and request metrics. The metrics are labelled with
// serviceName, which must be unique per registry.
func ApplyAllMiddlewares(
	handler http.Handler,
	serviceName string,
	logger *zerolog.Logger,
	registry prometheus.Registerer,
) http.Handler {
	return newLoggingMiddleware(
		newMetricsMiddleware(newTraceMiddleware(handler, logger), serviceName, registry),
		logger,
	)
}
