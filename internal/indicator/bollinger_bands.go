package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,  // Default period
		stdDev: 2.0, // Default standard deviation
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := periodParam("period", params[0])
	if err != nil {
		return err
	}

	stdDev, err := floatParam("stdDev", params[1])
	if err != nil {
		return err
	}

	if stdDev <= 0 || math.IsInf(stdDev, 0) || math.IsNaN(stdDev) {
		return errors.Newf(errors.ErrCodeInvalidStdDevMultiplier, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// Compute implements Indicator.
func (bb *BollingerBands) Compute(bars []types.Bar) Result {
	return Result{
		Indicator: bb.Name(),
		Line:      nil,
		Series:    CalculateBollingerBands(bars, bb.period, bb.stdDev),
		Multi:     true,
	}
}

// CalculateBollingerBands returns the upper, middle and lower bands. The middle band is the SMA
// of the window and the deviation is the population standard deviation (divided by period).
func CalculateBollingerBands(bars []types.Bar, period int, multiplier float64) types.MultiSeries {
	if period <= 0 || len(bars) < period {
		return bandGroup([]types.Point{}, []types.Point{}, []types.Point{})
	}

	closes := types.ClosePoints(bars)
	n := len(closes) - period + 1

	upper := make([]types.Point, 0, n)
	middle := make([]types.Point, 0, n)
	lower := make([]types.Point, 0, n)

	for i := period - 1; i < len(closes); i++ {
		window := closes[i-period+1 : i+1]
		mean := windowMean(window)

		var squaredDiffSum float64
		for _, p := range window {
			diff := p.Value - mean
			squaredDiffSum += diff * diff
		}

		deviation := math.Sqrt(squaredDiffSum / float64(period))
		t := closes[i].Time

		upper = append(upper, types.Point{Time: t, Value: mean + multiplier*deviation})
		middle = append(middle, types.Point{Time: t, Value: mean})
		lower = append(lower, types.Point{Time: t, Value: mean - multiplier*deviation})
	}

	return bandGroup(upper, middle, lower)
}

func bandGroup(upper, middle, lower []types.Point) types.MultiSeries {
	return types.NewMultiSeries().
		With(types.SeriesUpper, upper).
		With(types.SeriesMiddle, middle).
		With(types.SeriesLower, lower)
}
