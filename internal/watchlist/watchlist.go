package watchlist

import (
	"encoding/json"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-chart/internal/logger"
	"github.com/rxtech-lab/argo-chart/internal/metrics"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// StorageKey is the fixed key the list is stored under, as a JSON array of symbols.
const StorageKey = "argo.watchlist"

// Watchlist is an ordered set of upper-case symbols. Every change rewrites the whole list.
type Watchlist struct {
	mu      sync.RWMutex
	store   Store
	symbols []string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// Option configures a Watchlist.
type Option func(*Watchlist)

func WithLogger(l *logger.Logger) Option {
	return func(w *Watchlist) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Watchlist) {
		w.metrics = m
	}
}

// New creates an empty watchlist backed by store. Call Load to read the stored list.
func New(store Store, opts ...Option) *Watchlist {
	w := &Watchlist{
		store:   store,
		symbols: []string{},
		logger:  logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Load replaces the in-memory list with the stored one. A missing key yields an empty list;
// an unreadable value is logged and also yields an empty list.
func (w *Watchlist) Load() error {
	raw, ok, err := w.store.Get(StorageKey)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWatchlistStore, "failed to read watchlist", err)
	}

	symbols := []string{}

	if ok && raw != "" {
		var stored []string
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			w.logger.Warn("stored watchlist is not a JSON array, starting empty", zap.Error(err))
		} else {
			symbols = dedupe(stored)
		}
	}

	w.mu.Lock()
	w.symbols = symbols
	w.mu.Unlock()

	w.metrics.SetWatchlistItems(len(symbols))

	return nil
}

// Add appends symbol. Blank and already-present symbols are ignored and report false.
func (w *Watchlist) Add(symbol string) (bool, error) {
	symbol = types.NormalizeSymbol(symbol)
	if symbol == "" {
		return false, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if slices.Contains(w.symbols, symbol) {
		return false, nil
	}

	next := append(slices.Clone(w.symbols), symbol)
	if err := w.persist(next); err != nil {
		return false, err
	}

	w.logger.Info("symbol added to watchlist", zap.String("symbol", symbol))

	return true, nil
}

// Remove deletes symbol and reports whether it was present.
func (w *Watchlist) Remove(symbol string) (bool, error) {
	symbol = types.NormalizeSymbol(symbol)

	w.mu.Lock()
	defer w.mu.Unlock()

	idx := slices.Index(w.symbols, symbol)
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(w.symbols), idx, idx+1)
	if err := w.persist(next); err != nil {
		return false, err
	}

	w.logger.Info("symbol removed from watchlist", zap.String("symbol", symbol))

	return true, nil
}

// persist writes next and adopts it only when the write succeeds. Callers hold mu.
func (w *Watchlist) persist(next []string) error {
	data, err := json.Marshal(next)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWatchlistStore, "failed to encode watchlist", err)
	}

	if err := w.store.Set(StorageKey, string(data)); err != nil {
		return errors.Wrap(errors.ErrCodeWatchlistStore, "failed to write watchlist", err)
	}

	w.symbols = next
	w.metrics.SetWatchlistItems(len(next))

	return nil
}

// List returns the symbols in insertion order.
func (w *Watchlist) List() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return slices.Clone(w.symbols)
}

func (w *Watchlist) Contains(symbol string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return slices.Contains(w.symbols, types.NormalizeSymbol(symbol))
}

func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.symbols)
}

func dedupe(stored []string) []string {
	out := make([]string, 0, len(stored))

	for _, s := range stored {
		s = types.NormalizeSymbol(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	return out
}
