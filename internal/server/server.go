// Package server exposes the chat service over HTTP: a JSON chat endpoint,
// a server-sent-events streaming variant, health probes, and Prometheus
// metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/internal/chat"
)

// Server serves the portfolio bot API.
type Server struct {
	svc      *chat.Service
	gatherer prometheus.Gatherer
	logger   *zap.Logger

	mu   sync.Mutex
	http *http.Server
}

// New builds a server around the chat service. A nil gatherer falls back
// to the default Prometheus registry.
func New(svc *chat.Service, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:      svc,
		gatherer: gatherer,
		logger:   logger.With(zap.String("component", "server")),
	}
}

// Handler assembles the route tree. Exposed separately so tests can drive
// the server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(recoverer(s.logger))
	r.Use(requestLogger(s.logger))
	r.Use(cors)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/chat/stream", s.handleChatStream)
		r.Get("/health", s.handleAPIHealth)
	})

	return r
}

// ListenAndServe starts serving on addr and blocks until the listener
// fails or Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
