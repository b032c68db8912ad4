// Package api serves chart payloads, loading state and the watchlist over HTTP.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-chart/internal/indicator"
	"github.com/rxtech-lab/argo-chart/internal/logger"
	"github.com/rxtech-lab/argo-chart/internal/metrics"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/internal/watchlist"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

const shutdownTimeout = 10 * time.Second

// HistorySource is the part of the history cache the handlers use.
type HistorySource interface {
	Get(ctx context.Context, symbol string, interval types.Interval, outputSize int) ([]types.Bar, error)
	LoadingSymbols() []string
}

// Config holds the defaults applied when a request leaves a choice open.
type Config struct {
	DefaultInterval types.Interval
	DefaultRange    types.Range
}

type Option func(*Server)

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// Server owns the router. It holds no state of its own beyond its collaborators.
type Server struct {
	config    Config
	history   HistorySource
	watchlist *watchlist.Watchlist
	registry  indicator.IndicatorRegistry
	logger    *logger.Logger
	metrics   *metrics.Metrics
	router    *mux.Router
}

// NewServer wires the routes. A nil watchlist disables the watchlist endpoints.
func NewServer(config Config, history HistorySource, list *watchlist.Watchlist, registry indicator.IndicatorRegistry, opts ...Option) (*Server, error) {
	if history == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "history source is required")
	}

	if registry == nil {
		registry = indicator.NewDefaultRegistry()
	}

	if config.DefaultInterval == "" {
		config.DefaultInterval = types.IntervalDaily
	}

	if !config.DefaultInterval.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid default interval %q", config.DefaultInterval)
	}

	if config.DefaultRange.OutputSize <= 0 {
		config.DefaultRange = types.DefaultRange
	}

	s := &Server{
		config:    config,
		history:   history,
		watchlist: list,
		registry:  registry,
		logger:    logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With(zap.String("component", "api"))
	s.router = s.routes()

	return s, nil
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.requestID, s.observe)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/history/{symbol}", s.handleHistory).Methods(http.MethodGet)
	v1.HandleFunc("/loading", s.handleLoading).Methods(http.MethodGet)
	v1.HandleFunc("/options", s.handleOptions).Methods(http.MethodGet)
	v1.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	if s.watchlist != nil {
		v1.HandleFunc("/watchlist", s.handleWatchlistList).Methods(http.MethodGet)
		v1.HandleFunc("/watchlist", s.handleWatchlistAdd).Methods(http.MethodPost)
		v1.HandleFunc("/watchlist/{symbol}", s.handleWatchlistRemove).Methods(http.MethodDelete)
	}

	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return router
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
