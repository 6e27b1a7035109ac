// Package rpc is the HTTP front end: POST /<operation> with a url-encoded
// form body dispatches through the operation registry, each request on its
// own goroutine with its own operation context. Failures are rendered as a
// JSON error envelope with a stable numeric code.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"colorcore/go-daemon/internal/cache"
	"colorcore/go-daemon/internal/config"
	"colorcore/go-daemon/internal/operations"
)

const maxRequestBodyBytes int64 = 1 << 20 // 1 MiB

type Server struct {
	httpServer *http.Server
	registry   *operations.Registry
	cfg        config.Config
	newCache   cache.Factory
	limiter    *rateLimiter
	metrics    *serverMetrics
}

// NewServer wires the registry and cache factory into an HTTP server
// listening on the configured RPC port.
func NewServer(cfg config.Config, registry *operations.Registry, newCache cache.Factory) *Server {
	mux := http.NewServeMux()
	promRegistry := prometheus.NewRegistry()
	s := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.RPC.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		registry: registry,
		cfg:      cfg,
		newCache: newCache,
		limiter:  newRateLimiter(loadRateLimitConfig()),
		metrics:  newServerMetrics(promRegistry),
	}
	mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", s.handleOperation)
	return s
}

// Run serves until ctx is canceled, then shuts down gracefully. In-flight
// operations are given a short drain window; they are never deadlined while
// the server is up.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// HandleOperation exposes the dispatch handler for tests.
func (s *Server) HandleOperation(w http.ResponseWriter, r *http.Request) {
	s.handleOperation(w, r)
}
