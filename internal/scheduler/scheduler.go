// Package scheduler keeps the history of watchlist symbols warm on a cron schedule.
package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-chart/internal/logger"
	"github.com/rxtech-lab/argo-chart/internal/metrics"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

const defaultRefreshTimeout = 2 * time.Minute

// History is the part of the history cache a refresh needs. Refresh must keep the stored
// entry when the refetch fails.
type History interface {
	Refresh(ctx context.Context, symbol string, interval types.Interval, outputSize int) ([]types.Bar, error)
}

// Symbols supplies the symbols to refresh, typically the watchlist.
type Symbols interface {
	List() []string
}

// Config describes when to refresh and which history to prefetch.
type Config struct {
	// Spec is a six-field cron expression (seconds first).
	Spec     string
	Interval types.Interval
	Range    types.Range
	// Timeout bounds one whole refresh run. Zero means two minutes.
	Timeout time.Duration
}

type Option func(*Scheduler)

func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// Scheduler refetches watchlist history so the next view is warm. Runs never overlap.
type Scheduler struct {
	cron    *cron.Cron
	config  Config
	history History
	symbols Symbols
	logger  *logger.Logger
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	runMu  sync.Mutex
}

// NewScheduler registers the refresh job. The job starts firing after Start.
func NewScheduler(config Config, history History, symbols Symbols, opts ...Option) (*Scheduler, error) {
	if history == nil || symbols == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "scheduler needs a history cache and a symbol source")
	}

	if config.Interval == "" {
		config.Interval = types.IntervalDaily
	}

	if !config.Interval.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid refresh interval %q", config.Interval)
	}

	if config.Range.OutputSize <= 0 {
		config.Range = types.DefaultRange
	}

	if config.Timeout <= 0 {
		config.Timeout = defaultRefreshTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		config:  config,
		history: history,
		symbols: symbols,
		logger:  logger.NewNopLogger(),
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With(zap.String("component", "scheduler"))

	if _, err := s.cron.AddFunc(config.Spec, s.refreshTask); err != nil {
		cancel()

		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid refresh schedule %q", config.Spec)
	}

	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.config.Spec))
}

// Stop stops the scheduler, cancels a refresh in progress and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow performs one refresh immediately. It returns every per-symbol failure joined.
// A symbol whose refetch fails keeps its last cached history.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	symbols := s.symbols.List()
	s.logger.Info("refreshing watchlist history", zap.Int("symbols", len(symbols)))

	var errs []error

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		bars, err := s.history.Refresh(ctx, symbol, s.config.Interval, s.config.Range.OutputSize)
		if err != nil {
			s.logger.Warn("refresh failed", zap.String("symbol", symbol), zap.Error(err))
			errs = append(errs, fmt.Errorf("refresh %s: %w", symbol, err))

			continue
		}

		s.logger.Debug("refreshed", zap.String("symbol", symbol), zap.Int("bars", len(bars)))
	}

	err := stderrors.Join(errs...)
	if err != nil {
		s.metrics.ObserveSchedulerRun("error")
	} else {
		s.metrics.ObserveSchedulerRun("ok")
	}

	return err
}

func (s *Scheduler) refreshTask() {
	if err := s.RunNow(s.ctx); err != nil {
		s.logger.Error("scheduled refresh finished with errors", zap.Error(err))
	}
}
