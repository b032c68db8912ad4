package marketdata

import (
	"math"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

// DefaultUpstreamMessage is used when the provider flags an error without explaining it.
const DefaultUpstreamMessage = "Failed to fetch data from Twelve Data."

// Normalize turns a newest-first string payload into oldest-first bars.
// An error envelope becomes an UpstreamError; unparsable or non-finite prices, bars whose
// open or close falls outside low..high, and out-of-order datetimes become a TransportError. Volume is optional: empty, unparsable or
// negative volume is dropped rather than failing the payload.
func Normalize(resp *provider.TimeSeriesResponse) ([]types.Bar, error) {
	if resp == nil {
		return nil, errors.New(errors.ErrCodeTransport, "empty time_series response")
	}

	if resp.IsError() {
		message := strings.TrimSpace(resp.Message)
		if message == "" {
			message = DefaultUpstreamMessage
		}

		return nil, errors.New(errors.ErrCodeUpstream, message)
	}

	bars := make([]types.Bar, len(resp.Values))

	// Reverse while parsing: values[0] is the newest bar.
	for i, value := range resp.Values {
		bar, err := parseValue(value)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeTransport, err, "value %d of time_series", i)
		}

		bars[len(resp.Values)-1-i] = bar
	}

	for i := 1; i < len(bars); i++ {
		if bars[i].Time < bars[i-1].Time {
			return nil, errors.Newf(errors.ErrCodeTransport,
				"time_series is not ordered newest-first: %s before %s", bars[i-1].Time, bars[i].Time)
		}
	}

	return bars, nil
}

func parseValue(value provider.TimeSeriesValue) (types.Bar, error) {
	if strings.TrimSpace(value.Datetime) == "" {
		return types.Bar{}, errors.New(errors.ErrCodeInvalidParameter, "missing datetime")
	}

	fields := [4]string{value.Open, value.High, value.Low, value.Close}

	var prices [4]float64

	for i, field := range fields {
		d, err := decimal.NewFromString(strings.TrimSpace(field))
		if err != nil {
			return types.Bar{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid price %q", field)
		}

		prices[i], _ = d.Float64()
		if math.IsInf(prices[i], 0) || math.IsNaN(prices[i]) {
			return types.Bar{}, errors.Newf(errors.ErrCodeTransport, "price %q is not a finite number", field)
		}
	}

	bar := types.Bar{
		Time:   strings.TrimSpace(value.Datetime),
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: parseVolume(value.Volume),
	}

	if bar.Low > bar.High ||
		bar.Open < bar.Low || bar.Open > bar.High ||
		bar.Close < bar.Low || bar.Close > bar.High {
		return types.Bar{}, errors.Newf(errors.ErrCodeTransport,
			"inconsistent bar: open %v high %v low %v close %v", bar.Open, bar.High, bar.Low, bar.Close)
	}

	return bar, nil
}

func parseVolume(raw string) optional.Option[int64] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return optional.None[int64]()
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return optional.None[int64]()
	}

	return optional.Some(d.IntPart())
}
