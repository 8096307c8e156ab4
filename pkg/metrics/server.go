package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP server for Prometheus metrics.
type Server struct {
	addr     string
	path     string
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	server   *http.Server
	listener net.Listener
}

// NewServer creates a new metrics server. A nil gatherer serves the default
// registry.
func NewServer(addr, path string, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if path == "" {
		path = "/metrics"
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr:     addr,
		path:     path,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Start starts the metrics HTTP server.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting metrics server", "addr", listener.Addr().String(), "path", s.path)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the listen address once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully stops the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("stopping metrics server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}

	s.logger.Info("metrics server stopped")
	return nil
}
