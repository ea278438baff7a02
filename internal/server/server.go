package server

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/benjaminschubert/fetchcache/internal/cacheentry"
	"github.com/benjaminschubert/fetchcache/internal/config"
	"github.com/benjaminschubert/fetchcache/internal/handlers"
	"github.com/benjaminschubert/fetchcache/internal/handlers/admin"
	"github.com/benjaminschubert/fetchcache/internal/handlers/proxy"
	"github.com/benjaminschubert/fetchcache/internal/httpclient"
	"github.com/benjaminschubert/fetchcache/internal/kvstore"
	"github.com/benjaminschubert/fetchcache/internal/middleware"
)

type serverInfo struct {
	server *http.Server
	logger *zerolog.Logger
}

type Server struct {
	servers []serverInfo
	logger  *zerolog.Logger
}

func New(
	conf *config.Config,
	client *httpclient.Client,
	store kvstore.Store,
	codec cacheentry.Codec,
	logger *zerolog.Logger,
	metricsRegistry interface {
		prometheus.Registerer
		prometheus.Gatherer
	},
) (*Server, error) {
	srv := Server{logger: logger}

	for idx, proxyConf := range conf.Proxies {
		srv.servers = append(
			srv.servers,
			setupProxy(conf, idx, proxyConf, client, logger, metricsRegistry),
		)
	}

	if conf.AdminInterface != "" {
		adminServer, err := setupAdminInterface(conf, store, codec, logger, metricsRegistry)
		if err != nil {
			return nil, err
		}
		srv.servers = append(srv.servers, adminServer)
	} else if conf.EnableMetrics {
		logger.Warn().Msg("Metrics requested, but the admin interface is disabled. Ignoring.")
	}

	return &srv, nil
}

func (s *Server) ListenAndServe() error {
	errChan := make(chan error, len(s.servers))

	for _, srv := range s.servers {
		go func() {
			srv.logger.Info().Str("address", srv.server.Addr).Msg("Starting server")
			err := srv.server.ListenAndServe()
			if !errors.Is(err, http.ErrServerClosed) {
				srv.logger.Error().Err(err).Msg("Server didn't come up properly")
				errChan <- err
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	select {
	case <-stop:
		s.logger.Info().Msg("Shutting down")
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("At least one server is unhealthy, shutting down")
	}

	return s.Shutdown(5 * time.Minute)
}

// Shutdown gracefully stops all the servers, waiting at most timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	closingErrs := make(chan error, len(s.servers))

	for _, srv := range s.servers {
		go func() {
			err := srv.server.Shutdown(ctx)
			if err != nil {
				srv.logger.Error().Err(err).Msg("Error shutting down the server")
			}
			closingErrs <- err
		}()
	}

	var lastErr error
	for range len(s.servers) {
		if err := <-closingErrs; err != nil {
			lastErr = err
		}
	}

	return lastErr
}

func setupProxy(
	conf *config.Config,
	idx int,
	proxyConf config.Proxy,
	client *httpclient.Client,
	logger *zerolog.Logger,
	registry prometheus.Registerer,
) serverInfo {
	serviceName := fmt.Sprintf("proxy[%d]", idx)
	log := logger.With().Str("service", serviceName).Logger()

	handler := http.NewServeMux()
	proxy.RegisterHandler(proxyConf.AllowedUpstreams, handler, client)

	return createServer(
		fmt.Sprintf("%s:%d", conf.Host, proxyConf.Port),
		handler,
		serviceName,
		&log,
		registry,
	)
}

func setupAdminInterface(
	conf *config.Config,
	store kvstore.Store,
	codec cacheentry.Codec,
	logger *zerolog.Logger,
	registry interface {
		prometheus.Registerer
		prometheus.Gatherer
	},
) (serverInfo, error) {
	serviceName := "admin"
	log := logger.With().Str("service", serviceName).Logger()

	handler := http.NewServeMux()

	if conf.EnableMetrics {
		log.Info().
			Str("metricsUrl", conf.AdminInterface+"/metrics").
			Msg("Enabling metrics")
		handler.Handle(
			"GET /metrics",
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	if err := admin.RegisterHandler(handler, store, codec, conf); err != nil {
		return serverInfo{}, fmt.Errorf("unable to initialize the admin interface: %w", err)
	}

	return createServer(conf.AdminInterface, handler, serviceName, &log, registry), nil
}

func createServer(
	address string,
	handler *http.ServeMux,
	serviceName string,
	log *zerolog.Logger,
	registry prometheus.Registerer,
) serverInfo {
	handler.HandleFunc("/", handlers.NotImplemented)

	return serverInfo{
		&http.Server{
			Addr:         address,
			Handler:      middleware.ApplyAllMiddlewares(handler, serviceName, log, registry),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 5 * time.Minute,
			ErrorLog:     stdlog.New(log, "", 0),
		},
		log,
	}
}
