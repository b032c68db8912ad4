package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rxtech-lab/argo-chart/internal/chart"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/internal/version"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// WatchlistResponse is returned by every watchlist endpoint.
type WatchlistResponse struct {
	Symbols []string `json:"symbols"`
	Changed *bool    `json:"changed,omitempty"`
}

// LoadingResponse lists the symbols with a fetch in flight.
type LoadingResponse struct {
	Symbols []string `json:"symbols"`
}

// OptionsResponse lists the choices a client can offer.
type OptionsResponse struct {
	Intervals       []string              `json:"intervals"`
	Ranges          []types.Range         `json:"ranges"`
	Indicators      []types.IndicatorType `json:"indicators"`
	DefaultInterval string                `json:"defaultInterval"`
	DefaultRange    string                `json:"defaultRange"`
}

type addSymbolRequest struct {
	Symbol string `json:"symbol"`
}

func (s *Server) selection(r *http.Request) (chart.Selection, error) {
	query := r.URL.Query()

	sel := chart.Selection{
		Symbol:   mux.Vars(r)["symbol"],
		Interval: s.config.DefaultInterval,
		Range:    s.config.DefaultRange,
	}

	if raw := query.Get("interval"); raw != "" {
		interval, err := types.ParseInterval(raw)
		if err != nil {
			return sel, errors.Wrap(errors.ErrCodeInvalidInterval, "invalid interval", err)
		}

		sel.Interval = interval
	}

	if raw := query.Get("range"); raw != "" {
		rng, err := types.ParseRange(raw)
		if err != nil {
			return sel, errors.Wrap(errors.ErrCodeInvalidRange, "invalid range", err)
		}

		sel.Range = rng
	}

	ind, err := chart.ParseIndicator(query.Get("indicator"))
	if err != nil {
		return sel, err
	}

	sel.Indicator = ind

	params, err := chart.ParseParams(query.Get("params"))
	if err != nil {
		return sel, err
	}

	sel.Params = params

	return sel, nil
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	bars, err := s.history.Get(r.Context(), sel.Symbol, sel.Interval, sel.Range.OutputSize)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	start := time.Now()

	payload, err := chart.Build(bars, s.registry, sel)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if sel.Indicator != "" {
		s.metrics.ObserveIndicator(string(sel.Indicator), time.Since(start).Seconds())
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLoading(w http.ResponseWriter, _ *http.Request) {
	symbols := s.history.LoadingSymbols()
	if symbols == nil {
		symbols = []string{}
	}

	writeJSON(w, http.StatusOK, LoadingResponse{Symbols: symbols})
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	intervals := make([]string, len(types.Intervals))
	for i, interval := range types.Intervals {
		intervals[i] = string(interval)
	}

	writeJSON(w, http.StatusOK, OptionsResponse{
		Intervals:       intervals,
		Ranges:          types.Ranges,
		Indicators:      s.registry.ListIndicators(),
		DefaultInterval: string(s.config.DefaultInterval),
		DefaultRange:    s.config.DefaultRange.Label,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.GetInfo())
}

func (s *Server) handleWatchlistList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, WatchlistResponse{Symbols: s.watchlist.List()})
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var req addSymbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid JSON body", err))

		return
	}

	if types.NormalizeSymbol(req.Symbol) == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidSymbol, "symbol is required"))

		return
	}

	added, err := s.watchlist.Add(req.Symbol)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}

	writeJSON(w, status, WatchlistResponse{Symbols: s.watchlist.List(), Changed: &added})
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	removed, err := s.watchlist.Remove(mux.Vars(r)["symbol"])
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, WatchlistResponse{Symbols: s.watchlist.List(), Changed: &removed})
}
