package provider

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// DefaultTwelveDataURL is the public Twelve Data REST endpoint.
const DefaultTwelveDataURL = "https://api.twelvedata.com"

// DefaultTimeout bounds a single upstream round trip.
const DefaultTimeout = 15 * time.Second

// TwelveDataClient fetches the time_series endpoint.
type TwelveDataClient struct {
	client *resty.Client
}

// NewTwelveDataClient builds a client against baseURL (DefaultTwelveDataURL when empty).
func NewTwelveDataClient(baseURL string, timeout time.Duration) *TwelveDataClient {
	if baseURL == "" {
		baseURL = DefaultTwelveDataURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &TwelveDataClient{client: client}
}

// FetchTimeSeries issues GET /time_series. The body is decoded whatever the HTTP status,
// because the upstream reports failures as {"status":"error","message":...}.
func (c *TwelveDataClient) FetchTimeSeries(ctx context.Context, req Request) (*TimeSeriesResponse, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     req.Symbol,
			"interval":   req.Interval.Wire(),
			"apikey":     req.APIKey,
			"outputsize": strconv.Itoa(req.OutputSize),
		}).
		Get("/time_series")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, "time_series request failed", err)
	}

	var out TimeSeriesResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeTransport, err, "invalid time_series payload (HTTP %d)", resp.StatusCode())
	}

	if resp.IsError() && !out.IsError() {
		return nil, errors.Newf(errors.ErrCodeTransport, "time_series returned HTTP %d", resp.StatusCode())
	}

	return &out, nil
}
