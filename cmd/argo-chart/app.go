package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-chart/internal/config"
	"github.com/rxtech-lab/argo-chart/internal/indicator"
	"github.com/rxtech-lab/argo-chart/internal/logger"
	"github.com/rxtech-lab/argo-chart/internal/metrics"
	"github.com/rxtech-lab/argo-chart/internal/watchlist"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

// app is the set of collaborators every command builds from the configuration.
type app struct {
	config   *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	cache    *marketdata.HistoryCache
	registry indicator.IndicatorRegistry
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func newApp(cmd *cli.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	fetcher, err := provider.NewFetcher(cfg.ProviderConfig())
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics()

	cache, err := marketdata.NewHistoryCache(
		marketdata.HistoryCacheConfig{
			APIKey:        cfg.CacheAPIKey(),
			FetchTimeout:  cfg.FetchTimeout,
			MaxOutputSize: cfg.MaxOutputSize,
		},
		fetcher,
		marketdata.WithLogger(log),
		marketdata.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	log.Debug("configuration loaded", zap.Stringer("config", cfg))

	return &app{
		config:   cfg,
		logger:   log,
		metrics:  m,
		cache:    cache,
		registry: indicator.NewDefaultRegistry(),
	}, nil
}

func (a *app) Close() {
	_ = a.cache.Close()
	_ = a.logger.Sync()
}

// openWatchlist loads the watchlist from the configured store. The returned func closes the store.
func openWatchlist(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*watchlist.Watchlist, func() error, error) {
	var (
		store   watchlist.Store
		closeFn = func() error { return nil }
	)

	if path := cfg.WatchlistPath(); path == "" {
		store = watchlist.NewMemoryStore()
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}

		db, err := watchlist.NewDuckDBStore(path, log)
		if err != nil {
			return nil, nil, err
		}

		store = db
		closeFn = db.Close
	}

	list := watchlist.New(store, watchlist.WithLogger(log), watchlist.WithMetrics(m))
	if err := list.Load(); err != nil {
		_ = closeFn()

		return nil, nil, err
	}

	return list, closeFn, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}

	return os.Stderr
}
