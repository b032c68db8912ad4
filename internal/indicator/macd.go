package indicator

import (
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12, // Default fast period
		slowPeriod:   26, // Default slow period
		signalPeriod: 9,  // Default signal period
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fastPeriod, err := periodParam("fastPeriod", params[0])
	if err != nil {
		return err
	}

	slowPeriod, err := periodParam("slowPeriod", params[1])
	if err != nil {
		return err
	}

	signalPeriod, err := periodParam("signalPeriod", params[2])
	if err != nil {
		return err
	}

	m.fastPeriod = fastPeriod
	m.slowPeriod = slowPeriod
	m.signalPeriod = signalPeriod

	return nil
}

// Compute implements Indicator.
func (m *MACD) Compute(bars []types.Bar) Result {
	return Result{
		Indicator: m.Name(),
		Line:      nil,
		Series:    CalculateMACD(bars, m.fastPeriod, m.slowPeriod, m.signalPeriod),
		Multi:     true,
	}
}

// CalculateMACD returns the macd, signal and histogram series. All three cover the signal line's
// time range.
//
// The fast and slow EMAs start at different bars, so the macd line is built on their common time
// suffix. The signal line is an EMA of the macd line and starts later still; the macd line is
// trimmed again to match it before the histogram is taken.
func CalculateMACD(bars []types.Bar, fastPeriod, slowPeriod, signalPeriod int) types.MultiSeries {
	empty := macdGroup([]types.Point{}, []types.Point{}, []types.Point{})

	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 || len(bars) < slowPeriod {
		return empty
	}

	emas, ok := AlignSuffix(CalculateEMA(bars, fastPeriod), CalculateEMA(bars, slowPeriod))
	if !ok || len(emas[0]) == 0 {
		return empty
	}

	fast, slow := emas[0], emas[1]

	macdLine := make([]types.Point, len(slow))
	for i := range slow {
		macdLine[i] = types.Point{Time: slow[i].Time, Value: fast[i].Value - slow[i].Value}
	}

	lines, ok := AlignSuffix(macdLine, CalculateEMAPoints(macdLine, signalPeriod))
	if !ok || len(lines[1]) == 0 {
		return empty
	}

	macd, signal := lines[0], lines[1]

	histogram := make([]types.Point, len(signal))
	for i := range signal {
		histogram[i] = types.Point{Time: signal[i].Time, Value: macd[i].Value - signal[i].Value}
	}

	return macdGroup(macd, signal, histogram)
}

func macdGroup(macd, signal, histogram []types.Point) types.MultiSeries {
	return types.NewMultiSeries().
		With(types.SeriesMACD, macd).
		With(types.SeriesSignal, signal).
		With(types.SeriesHistogram, histogram)
}
