// Package daemon serves the registry, resolver and expander over HTTP so
// front-ends other than the CLI can use them.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/Dleifnesor/PAW/internal/assist"
	"github.com/Dleifnesor/PAW/internal/catalog"
	"github.com/Dleifnesor/PAW/internal/config"
	"github.com/Dleifnesor/PAW/internal/observability"
	"github.com/Dleifnesor/PAW/internal/resolver"
	"github.com/Dleifnesor/PAW/internal/rpc/suggest"
	"github.com/Dleifnesor/PAW/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Server hosts the query endpoints, the Suggest RPC and Prometheus metrics.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.FileStore
	service *assist.Service
	metrics *observability.Metrics

	reloadDelay time.Duration
}

// NewServer loads the registry and constructs a daemon instance. A registry
// that cannot be read is logged and served empty until the next reload.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := store.New(cfg.Registry.Path, store.Options{
		LockTimeout: cfg.Registry.LockTimeout,
		Retry:       store.DefaultRetryPolicy(cfg.Registry.SaveRetries),
		Logger:      logger.Named("store"),
	})
	metrics := observability.NewMetrics()

	reg, err := catalog.Open(ctx, st, cfg.Registry.SeedOnEmpty)
	if err != nil {
		var corrupt *store.CorruptStoreError
		if !errors.As(err, &corrupt) {
			return nil, fmt.Errorf("load registry: %w", err)
		}
		logger.Warn("registry is corrupt, serving empty registry", zap.String("path", st.Path()), zap.Error(err))
		metrics.RecordReload(0, err)
	} else {
		metrics.RecordReload(reg.Len(), nil)
	}

	w := cfg.Resolver.Weights
	service := assist.New(reg,
		assist.WithTopK(cfg.Resolver.TopK),
		assist.WithWeights(resolver.Weights{Name: w.Name, Description: w.Description, Category: w.Category}),
	)

	return &Server{
		cfg:         cfg,
		logger:      logger,
		store:       st,
		service:     service,
		metrics:     metrics,
		reloadDelay: 100 * time.Millisecond,
	}, nil
}

// Service returns the query service backing the endpoints.
func (s *Server) Service() *assist.Service {
	return s.service
}

// Handler returns the daemon's HTTP handler, accepting HTTP/1.1 and cleartext HTTP/2.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /metrics", s.metricsHandler)
	mux.HandleFunc("GET /tools", s.toolsHandler)
	mux.HandleFunc("GET /tools/{name}", s.toolHandler)
	mux.HandleFunc("GET /categories", s.categoriesHandler)
	mux.HandleFunc("POST /resolve", s.resolveHandler)
	mux.HandleFunc("POST /expand", s.expandHandler)

	path, handler := suggest.NewHandler(s.service, s.metrics)
	mux.Handle(path, handler)

	return h2c.NewHandler(mux, &http2.Server{})
}

// Run listens on the configured address and blocks until ctx is cancelled or
// the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln and, when enabled, the registry watcher.
// Both stop when ctx is cancelled; the first failure stops the other.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting paw daemon", zap.String("addr", ln.Addr().String()), zap.Int("tools", s.service.Len()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down paw daemon")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	if s.cfg.Server.WatchRegistry {
		g.Go(func() error {
			return s.watchRegistry(gctx)
		})
	}
	return g.Wait()
}

// Reload re-reads the registry file. On failure the previous registry stays in
// service.
func (s *Server) Reload(ctx context.Context) error {
	reg, err := s.store.Load(ctx)
	if err != nil {
		s.metrics.RecordReload(0, err)
		s.logger.Warn("registry reload failed, keeping previous registry", zap.String("path", s.store.Path()), zap.Error(err))
		return err
	}
	s.service.Replace(reg)
	s.metrics.RecordReload(reg.Len(), nil)
	s.logger.Info("registry reloaded", zap.Int("tools", reg.Len()))
	return nil
}
