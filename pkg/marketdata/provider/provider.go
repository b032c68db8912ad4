package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-chart/internal/types"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderTwelveData ProviderType = "twelvedata"
	ProviderPolygon    ProviderType = "polygon"
)

// Request describes one history fetch.
type Request struct {
	Symbol     string
	Interval   types.Interval
	OutputSize int
	APIKey     string
}

// TimeSeriesValue is one bar as the upstream sends it: every number is a decimal string.
type TimeSeriesValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume,omitempty"`
}

// TimeSeriesResponse is the time_series payload. Values are ordered newest-first.
type TimeSeriesResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message,omitempty"`
	Code     int               `json:"code,omitempty"`
	Symbol   string            `json:"symbol,omitempty"`
	Interval string            `json:"interval,omitempty"`
	Values   []TimeSeriesValue `json:"values"`
}

// IsError reports whether the upstream flagged the response as a failure.
func (r *TimeSeriesResponse) IsError() bool {
	return r != nil && r.Status == "error"
}

// Fetcher retrieves raw price history. Implementations never interpret the payload:
// error statuses are returned in the response, only transport and decode failures are errors.
type Fetcher interface {
	FetchTimeSeries(ctx context.Context, req Request) (*TimeSeriesResponse, error)
}

// Config selects and configures a Fetcher.
type Config struct {
	Provider ProviderType
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// NewFetcher creates a market data fetcher based on the provider type.
func NewFetcher(config Config) (Fetcher, error) {
	switch config.Provider {
	case ProviderTwelveData, "":
		return NewTwelveDataClient(config.BaseURL, config.Timeout), nil
	case ProviderPolygon:
		return NewPolygonClient(config.APIKey)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", config.Provider)
	}
}
