package indicator

import (
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// EMA indicator implements Exponential Moving Average calculation.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam("period", params[0])
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// Compute implements Indicator.
func (e *EMA) Compute(bars []types.Bar) Result {
	return Result{
		Indicator: e.Name(),
		Line:      CalculateEMA(bars, e.period),
		Series:    types.MultiSeries{},
		Multi:     false,
	}
}

// CalculateEMA returns the exponential moving average of closes.
func CalculateEMA(bars []types.Bar, period int) []types.Point {
	return CalculateEMAPoints(types.ClosePoints(bars), period)
}

// CalculateEMAPoints applies the EMA recurrence to an arbitrary series.
// The seed, emitted at index period-1, is the simple mean of the first period values; after that
// ema[i] = (v[i] - ema[i-1]) * multiplier + ema[i-1] with multiplier = 2 / (period + 1).
func CalculateEMAPoints(values []types.Point, period int) []types.Point {
	if period <= 0 || len(values) < period {
		return []types.Point{}
	}

	multiplier := 2.0 / float64(period+1)

	out := make([]types.Point, 0, len(values)-period+1)
	prev := windowMean(values[:period])
	out = append(out, types.Point{Time: values[period-1].Time, Value: prev})

	for i := period; i < len(values); i++ {
		prev = (values[i].Value-prev)*multiplier + prev
		out = append(out, types.Point{Time: values[i].Time, Value: prev})
	}

	return out
}
