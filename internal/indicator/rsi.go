package indicator

import (
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam("period", params[0])
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// Compute implements Indicator.
func (r *RSI) Compute(bars []types.Bar) Result {
	return Result{
		Indicator: r.Name(),
		Line:      CalculateRSI(bars, r.period),
		Series:    types.MultiSeries{},
		Multi:     false,
	}
}

// CalculateRSI returns the Relative Strength Index of closes using Wilder smoothing.
//
// The first period deltas seed the average gain and loss and produce the point at index period.
// Every later delta updates the averages as avg = (avg*(period-1) + x) / period.
// A zero average loss yields 100.
func CalculateRSI(bars []types.Bar, period int) []types.Point {
	if period <= 0 || len(bars) <= period {
		return []types.Point{}
	}

	gains := 0.0
	losses := 0.0

	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	out := make([]types.Point, 0, len(bars)-period)
	out = append(out, types.Point{Time: bars[period].Time, Value: relativeStrength(avgGain, avgLoss)})

	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close

		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)

		out = append(out, types.Point{Time: bars[i].Time, Value: relativeStrength(avgGain, avgLoss)})
	}

	return out
}

func relativeStrength(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
