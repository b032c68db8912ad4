// Package mockserver provides a mock Twelve Data server for testing.
// It serves the time_series endpoint from in-memory series and records every request.
package mockserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/mocks"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

// MockTwelveDataServer mimics GET /time_series.
type MockTwelveDataServer struct {
	mu sync.RWMutex

	server *httptest.Server

	// Keyed by upper-case symbol, oldest-first.
	series map[string][]types.Bar
	// Upstream error messages keyed by symbol; an empty message is sent as-is.
	failures map[string]string
	// Symbols answered with a malformed body.
	garbage map[string]bool

	apiKey   string
	delay    time.Duration
	requests atomic.Int64
	queries  []url.Values
	release  chan struct{}
}

// NewMockTwelveDataServer starts the server. Call Close when done.
func NewMockTwelveDataServer() *MockTwelveDataServer {
	s := &MockTwelveDataServer{
		series:   make(map[string][]types.Bar),
		failures: make(map[string]string),
		garbage:  make(map[string]bool),
	}

	router := mux.NewRouter()
	router.HandleFunc("/time_series", s.handleTimeSeries).Methods(http.MethodGet)
	s.server = httptest.NewServer(router)

	return s
}

// URL is the base URL to hand to the client.
func (s *MockTwelveDataServer) URL() string {
	return s.server.URL
}

func (s *MockTwelveDataServer) Close() {
	s.mu.Lock()
	if s.release != nil {
		close(s.release)
		s.release = nil
	}
	s.mu.Unlock()

	s.server.Close()
}

// SetSeries installs oldest-first bars for symbol.
func (s *MockTwelveDataServer) SetSeries(symbol string, bars []types.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[strings.ToUpper(symbol)] = bars
	delete(s.failures, strings.ToUpper(symbol))
}

// SetFailure makes requests for symbol answer {"status":"error","message":message}.
func (s *MockTwelveDataServer) SetFailure(symbol string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[strings.ToUpper(symbol)] = message
}

// SetGarbage makes requests for symbol answer with a body that is not JSON.
func (s *MockTwelveDataServer) SetGarbage(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.garbage[strings.ToUpper(symbol)] = true
}

// RequireAPIKey rejects requests whose apikey differs, the way the real service answers with 401.
func (s *MockTwelveDataServer) RequireAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apiKey = key
}

// SetDelay slows every response down.
func (s *MockTwelveDataServer) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delay = d
}

// Hold blocks every response until the returned function is called.
func (s *MockTwelveDataServer) Hold() (release func()) {
	ch := make(chan struct{})

	s.mu.Lock()
	s.release = ch
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.release == ch {
				s.release = nil
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// RequestCount is the number of time_series requests received.
func (s *MockTwelveDataServer) RequestCount() int {
	return int(s.requests.Load())
}

// Queries returns the query strings received so far.
func (s *MockTwelveDataServer) Queries() []url.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]url.Values, len(s.queries))
	copy(out, s.queries)

	return out
}

func (s *MockTwelveDataServer) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	query := r.URL.Query()
	symbol := strings.ToUpper(query.Get("symbol"))

	s.mu.Lock()
	s.queries = append(s.queries, query)
	delay := s.delay
	hold := s.release
	apiKey := s.apiKey
	bars, known := s.series[symbol]
	message, failing := s.failures[symbol]
	garbage := s.garbage[symbol]
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}

	if delay > 0 {
		time.Sleep(delay)
	}

	switch {
	case garbage:
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	case apiKey != "" && query.Get("apikey") != apiKey:
		writeJSON(w, http.StatusUnauthorized, provider.TimeSeriesResponse{
			Status:  "error",
			Code:    http.StatusUnauthorized,
			Message: "**apikey** parameter is incorrect or not specified.",
		})
	case failing:
		writeJSON(w, http.StatusOK, provider.TimeSeriesResponse{Status: "error", Code: 400, Message: message})
	case !known:
		writeJSON(w, http.StatusOK, provider.TimeSeriesResponse{
			Status:  "error",
			Code:    404,
			Message: "**symbol** not found: " + symbol,
		})
	default:
		writeJSON(w, http.StatusOK, timeSeries(symbol, query, bars))
	}
}

func timeSeries(symbol string, query url.Values, bars []types.Bar) provider.TimeSeriesResponse {
	size, err := strconv.Atoi(query.Get("outputsize"))
	if err != nil || size <= 0 {
		size = 30
	}

	if size < len(bars) {
		bars = bars[len(bars)-size:]
	}

	resp := mocks.ToTimeSeries(symbol, types.IntervalDaily, bars)
	resp.Interval = query.Get("interval")

	return *resp
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
