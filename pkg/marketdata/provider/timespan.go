package provider

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-chart/internal/types"
)

// Timespan maps a chart interval onto a Polygon aggregate window.
type Timespan struct {
	Multiplier int
	Span       models.Timespan
}

// TimespanFor returns the Polygon aggregate window for interval.
func TimespanFor(interval types.Interval) Timespan {
	switch interval {
	case types.IntervalWeekly:
		return Timespan{Multiplier: 1, Span: models.Week}
	case types.IntervalMonthly:
		return Timespan{Multiplier: 1, Span: models.Month}
	default:
		return Timespan{Multiplier: 1, Span: models.Day}
	}
}

// Lookback is the calendar duration that comfortably covers outputSize bars of interval.
// Daily bars only exist on trading days, so the window is padded for weekends and holidays.
func Lookback(interval types.Interval, outputSize int) time.Duration {
	const day = 24 * time.Hour

	switch interval {
	case types.IntervalWeekly:
		return time.Duration(outputSize+2) * 7 * day
	case types.IntervalMonthly:
		return time.Duration(outputSize+1) * 31 * day
	default:
		return time.Duration(outputSize*7/5+10) * day
	}
}
