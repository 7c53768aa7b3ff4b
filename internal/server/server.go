// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package server implements the web front end of the parser: an index page
// with a submission form, and an endpoint that parses submitted text and
// answers with the value tree or the parse error as JSON.
package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Markkimotho/json-parser/internal/config"
	"github.com/NYTimes/gziphandler"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	indexPath   = "/"
	staticPath  = "/static/"
	parsePath   = "/parse-json"
	healthPath  = "/healthz"
	metricsPath = "/metrics"
)

//go:embed assets
var assetFS embed.FS

// A Server is the HTTP service. The zero value is not ready for use; call New
// to construct one.
type Server struct {
	cfg     *config.Config
	logger  log.Logger
	metrics *Metrics
	handler http.Handler
	http    *http.Server
}

// New constructs a Server from cfg. Metrics are registered with reg, which
// is also served at /metrics.
func New(cfg *config.Config, logger log.Logger, reg *prometheus.Registry) (*Server, error) {
	assets, err := fs.Sub(assetFS, "assets")
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(reg),
	}

	r := mux.NewRouter()
	r.Use(s.instrument)
	r.Path(indexPath).Methods(http.MethodGet, http.MethodHead).Handler(indexHandler(assets))
	r.PathPrefix(staticPath).Methods(http.MethodGet, http.MethodHead).Handler(http.FileServer(http.FS(assets)))
	r.Path(parsePath).Methods(http.MethodPost).HandlerFunc(s.handleParse)
	r.Path(healthPath).Methods(http.MethodGet).HandlerFunc(s.handleHealth)
	r.Path(metricsPath).Methods(http.MethodGet).Handler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	s.handler = r
	if cfg.Server.Compress {
		s.handler = gziphandler.GzipHandler(r)
	}
	s.http = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}
	return s, nil
}

// Handler returns the root HTTP handler of s.
func (s *Server) Handler() http.Handler { return s.handler }

// Serve accepts connections on ln until Shutdown is called. It returns nil
// after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	level.Info(s.logger).Log("msg", "serving", "addr", ln.Addr().String())
	if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops s, waiting for active requests up to the configured
// shutdown timeout or until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if d := s.cfg.Server.ShutdownTimeout.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}

// statusWriter records the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(data []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(data)
}

// instrument logs and counts each request routed by mux.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		code := strconv.Itoa(sw.status)
		s.metrics.requests.WithLabelValues(r.Method, route, code).Inc()
		s.metrics.requestTimes.WithLabelValues(route).Observe(elapsed.Seconds())
		level.Debug(s.logger).Log("msg", "request", "method", r.Method, "path", r.URL.Path,
			"status", sw.status, "duration", elapsed)
	})
}
