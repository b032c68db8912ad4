package indicator

import (
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// MA indicator implements Simple Moving Average calculation.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config configures the MA indicator. Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam("period", params[0])
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

// Compute implements Indicator.
func (m *MA) Compute(bars []types.Bar) Result {
	return Result{
		Indicator: m.Name(),
		Line:      CalculateSMA(bars, m.period),
		Series:    types.MultiSeries{},
		Multi:     false,
	}
}

// CalculateSMA returns the simple moving average of closes. The first point sits at index period-1.
func CalculateSMA(bars []types.Bar, period int) []types.Point {
	return smaPoints(types.ClosePoints(bars), period)
}

func smaPoints(values []types.Point, period int) []types.Point {
	if period <= 0 || len(values) < period {
		return []types.Point{}
	}

	out := make([]types.Point, 0, len(values)-period+1)
	for i := period - 1; i < len(values); i++ {
		out = append(out, types.Point{
			Time:  values[i].Time,
			Value: windowMean(values[i-period+1 : i+1]),
		})
	}

	return out
}

// windowMean sums the window from scratch so long series never accumulate subtraction drift.
func windowMean(window []types.Point) float64 {
	sum := 0.0
	for _, p := range window {
		sum += p.Value
	}

	return sum / float64(len(window))
}
