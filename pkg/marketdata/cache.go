package marketdata

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rxtech-lab/argo-chart/internal/logger"
	"github.com/rxtech-lab/argo-chart/internal/metrics"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

// DefaultFetchTimeout bounds a shared fetch when the config leaves it unset.
const DefaultFetchTimeout = 30 * time.Second

// HistoryCacheConfig holds the configuration for the history cache.
type HistoryCacheConfig struct {
	// APIKey is sent with every provider request. An empty key fails every cache miss.
	APIKey string
	// FetchTimeout bounds one provider round trip shared by all waiting callers.
	FetchTimeout time.Duration `validate:"gte=0"`
	// MaxOutputSize rejects larger requests; zero means no limit.
	MaxOutputSize int `validate:"gte=0"`
}

// HistoryCacheOption configures optional collaborators.
type HistoryCacheOption func(*HistoryCache)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) HistoryCacheOption {
	return func(c *HistoryCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records cache and fetch metrics.
func WithMetrics(m *metrics.Metrics) HistoryCacheOption {
	return func(c *HistoryCache) {
		c.metrics = m
	}
}

// HistoryCache memoizes normalized price history by (symbol, interval, outputsize).
// Concurrent misses on the same key share one provider fetch. Failures are never stored.
type HistoryCache struct {
	config  HistoryCacheConfig
	fetcher provider.Fetcher
	logger  *logger.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	// Fetches run on this context, not the caller's, so one caller giving up
	// does not fail everyone waiting on the same key.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.RWMutex
	entries map[types.CacheKey][]types.Bar
	loading map[string]int
	closed  bool
}

// NewHistoryCache creates a cache in front of fetcher.
func NewHistoryCache(config HistoryCacheConfig, fetcher provider.Fetcher, opts ...HistoryCacheOption) (*HistoryCache, error) {
	if fetcher == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "history cache requires a fetcher")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid history cache configuration", err)
	}

	if config.FetchTimeout == 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	c := &HistoryCache{
		config:  config,
		fetcher: fetcher,
		logger:  logger.NewNopLogger(),
		baseCtx: baseCtx,
		cancel:  cancel,
		entries: make(map[types.CacheKey][]types.Bar),
		loading: make(map[string]int),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With(zap.String("component", "history_cache"))

	return c, nil
}

// Key validates the request and builds its cache key. The symbol is upper-cased.
func (c *HistoryCache) Key(symbol string, interval types.Interval, outputSize int) (types.CacheKey, error) {
	symbol = types.NormalizeSymbol(symbol)
	if symbol == "" {
		return types.CacheKey{}, errors.New(errors.ErrCodeInvalidSymbol, "symbol is required")
	}

	if !interval.Valid() {
		return types.CacheKey{}, errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", interval)
	}

	if outputSize <= 0 {
		return types.CacheKey{}, errors.Newf(errors.ErrCodeInvalidRange, "outputsize must be positive, got %d", outputSize)
	}

	if c.config.MaxOutputSize > 0 && outputSize > c.config.MaxOutputSize {
		return types.CacheKey{}, errors.Newf(errors.ErrCodeInvalidRange,
			"outputsize %d exceeds the limit of %d", outputSize, c.config.MaxOutputSize)
	}

	return types.CacheKey{Symbol: symbol, Interval: interval, OutputSize: outputSize}, nil
}

// Get returns oldest-first bars for the request, fetching on a miss.
// The returned slice is a copy. Cancelling ctx abandons only this caller's wait.
func (c *HistoryCache) Get(ctx context.Context, symbol string, interval types.Interval, outputSize int) ([]types.Bar, error) {
	key, err := c.Key(symbol, interval, outputSize)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	closed := c.closed
	bars, ok := c.entries[key]
	c.mu.RUnlock()

	if closed {
		return nil, errors.New(errors.ErrCodeCacheClosed, "history cache is closed")
	}

	if ok {
		c.metrics.ObserveHit()
		c.logger.Debug("cache hit", zap.String("key", key.String()))

		return types.CloneBars(bars), nil
	}

	if c.config.APIKey == "" {
		return nil, errors.New(errors.ErrCodeConfiguration, "API key is missing: set TWELVE_DATA_API_KEY or api_key in the config file")
	}

	c.metrics.ObserveMiss()

	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.fetch(key, false)
	})

	return c.wait(ctx, ch)
}

// Refresh refetches one key even when it is stored. On success the entry is replaced and the
// symbol's other entries are dropped as stale. On failure whatever was stored stays in place.
func (c *HistoryCache) Refresh(ctx context.Context, symbol string, interval types.Interval, outputSize int) ([]types.Bar, error) {
	key, err := c.Key(symbol, interval, outputSize)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return nil, errors.New(errors.ErrCodeCacheClosed, "history cache is closed")
	}

	if c.config.APIKey == "" {
		return nil, errors.New(errors.ErrCodeConfiguration, "API key is missing: set TWELVE_DATA_API_KEY or api_key in the config file")
	}

	ch := c.group.DoChan("refresh:"+key.String(), func() (any, error) {
		return c.fetch(key, true)
	})

	return c.wait(ctx, ch)
}

func (c *HistoryCache) wait(ctx context.Context, ch <-chan singleflight.Result) ([]types.Bar, error) {
	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.ObserveShared()
		}

		if res.Err != nil {
			return nil, res.Err
		}

		return types.CloneBars(res.Val.([]types.Bar)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetch runs once per key at a time, inside the singleflight group. A forced fetch ignores the
// stored entry and, once it succeeds, evicts the symbol's other entries.
func (c *HistoryCache) fetch(key types.CacheKey, force bool) ([]types.Bar, error) {
	// A flight that finished just before this one started may already have stored the key.
	c.mu.RLock()
	bars, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && !force {
		return bars, nil
	}

	c.markLoading(key.Symbol)
	defer c.unmarkLoading(key.Symbol)

	ctx, cancel := context.WithTimeout(c.baseCtx, c.config.FetchTimeout)
	defer cancel()

	log := c.logger.With(zap.String("key", key.String()))
	start := time.Now()

	resp, err := c.fetcher.FetchTimeSeries(ctx, provider.Request{
		Symbol:     key.Symbol,
		Interval:   key.Interval,
		OutputSize: key.OutputSize,
		APIKey:     c.config.APIKey,
	})
	if err == nil {
		bars, err = Normalize(resp)
	}

	elapsed := time.Since(start)

	if err != nil {
		var coded *errors.Error
		if !errors.As(err, &coded) {
			err = errors.Wrap(errors.ErrCodeTransport, "history fetch failed", err)
		}

		c.metrics.ObserveFetch(fetchOutcome(err), elapsed.Seconds())
		log.Warn("history fetch failed", zap.Error(err), zap.Duration("elapsed", elapsed))

		return nil, err
	}

	evicted := 0

	c.mu.Lock()
	if !c.closed {
		if force {
			for k := range c.entries {
				if k.Symbol == key.Symbol && k != key {
					delete(c.entries, k)
					evicted++
				}
			}
		}

		c.entries[key] = bars
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.metrics.ObserveFetch("ok", elapsed.Seconds())
	c.metrics.ObserveInvalidations(evicted)
	c.metrics.SetEntries(size)
	log.Info("history fetched",
		zap.Int("bars", len(bars)),
		zap.Bool("refresh", force),
		zap.Int("evicted", evicted),
		zap.Duration("elapsed", elapsed),
	)

	return bars, nil
}

func fetchOutcome(err error) string {
	switch {
	case errors.IsUpstreamError(err):
		return "upstream"
	case errors.IsTransportError(err):
		return "transport"
	default:
		return "error"
	}
}

func (c *HistoryCache) markLoading(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading[symbol]++
}

func (c *HistoryCache) unmarkLoading(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading[symbol]--
	if c.loading[symbol] <= 0 {
		delete(c.loading, symbol)
	}
}

// IsLoading reports whether a fetch for symbol is in flight.
func (c *HistoryCache) IsLoading(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loading[types.NormalizeSymbol(symbol)] > 0
}

// LoadingSymbols lists symbols with a fetch in flight, sorted.
func (c *HistoryCache) LoadingSymbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	symbols := make([]string, 0, len(c.loading))
	for symbol := range c.loading {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// Peek returns a stored entry without fetching.
func (c *HistoryCache) Peek(key types.CacheKey) ([]types.Bar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bars, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	return types.CloneBars(bars), true
}

// Keys lists the stored keys ordered by their string form.
func (c *HistoryCache) Keys() []types.CacheKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]types.CacheKey, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	return keys
}

// Len is the number of stored entries.
func (c *HistoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Invalidate drops one entry. A fetch already in flight for the key still stores its result.
func (c *HistoryCache) Invalidate(key types.CacheKey) bool {
	return c.drop(func(k types.CacheKey) bool { return k == key }) > 0
}

// InvalidateSymbol drops every entry of symbol and returns how many were removed.
func (c *HistoryCache) InvalidateSymbol(symbol string) int {
	symbol = types.NormalizeSymbol(symbol)

	return c.drop(func(k types.CacheKey) bool { return k.Symbol == symbol })
}

// Purge drops every entry.
func (c *HistoryCache) Purge() int {
	return c.drop(func(types.CacheKey) bool { return true })
}

func (c *HistoryCache) drop(match func(types.CacheKey) bool) int {
	c.mu.Lock()

	removed := 0

	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}

	size := len(c.entries)
	c.mu.Unlock()

	c.metrics.ObserveInvalidations(removed)
	c.metrics.SetEntries(size)

	if removed > 0 {
		c.logger.Debug("cache entries invalidated", zap.Int("removed", removed))
	}

	return removed
}

// Close cancels in-flight fetches and empties the cache. Later calls to Get fail.
func (c *HistoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cancel()
	c.entries = make(map[types.CacheKey][]types.Bar)
	c.metrics.SetEntries(0)

	return nil
}
