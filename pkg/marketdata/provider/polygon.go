package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// PolygonAggsIterator is the subset of the Polygon iterator the client consumes.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the Polygon REST client the adapter needs.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonRESTClient struct {
	client *polygon.Client
}

func (c *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

// PolygonClient serves history from Polygon aggregates, reshaped into the
// time_series payload so both providers share one normalization path.
type PolygonClient struct {
	apiClient PolygonAPIClient
	now       func() time.Time
}

func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeConfiguration, "polygon provider requires an API key")
	}

	return NewPolygonClientWithAPI(&polygonRESTClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI wraps an existing API client, used by tests.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		now:       time.Now,
	}
}

func (c *PolygonClient) FetchTimeSeries(ctx context.Context, req Request) (*TimeSeriesResponse, error) {
	span := TimespanFor(req.Interval)
	end := c.now().UTC()
	start := end.Add(-Lookback(req.Interval, req.OutputSize))

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     req.Symbol,
		Multiplier: span.Multiplier,
		Timespan:   span.Span,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithOrder(models.Desc).WithLimit(req.OutputSize)

	iter := c.apiClient.ListAggs(ctx, params)

	out := &TimeSeriesResponse{
		Status:   "ok",
		Symbol:   req.Symbol,
		Interval: req.Interval.Wire(),
		Values:   make([]TimeSeriesValue, 0, req.OutputSize),
	}

	for len(out.Values) < req.OutputSize && iter.Next() {
		out.Values = append(out.Values, aggToValue(iter.Item()))
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeTransport, err, "polygon aggregates for %s", req.Symbol)
	}

	if len(out.Values) == 0 {
		return &TimeSeriesResponse{
			Status:  "error",
			Message: fmt.Sprintf("no data is available for %s", req.Symbol),
		}, nil
	}

	return out, nil
}

func aggToValue(agg models.Agg) TimeSeriesValue {
	return TimeSeriesValue{
		Datetime: time.Time(agg.Timestamp).UTC().Format("2006-01-02"),
		Open:     decimal.NewFromFloat(agg.Open).String(),
		High:     decimal.NewFromFloat(agg.High).String(),
		Low:      decimal.NewFromFloat(agg.Low).String(),
		Close:    decimal.NewFromFloat(agg.Close).String(),
		Volume:   strconv.FormatInt(int64(agg.Volume), 10),
	}
}
