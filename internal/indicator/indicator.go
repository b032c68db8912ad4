package indicator

import (
	"github.com/rxtech-lab/argo-chart/internal/types"
)

// Result is the output of one indicator computation. Single-line indicators fill Line,
// band and MACD style indicators fill Series.
type Result struct {
	Indicator types.IndicatorType
	Line      []types.Point
	Series    types.MultiSeries
	Multi     bool
}

// IsEmpty reports whether the computation produced no points (insufficient data).
func (r Result) IsEmpty() bool {
	if r.Multi {
		return r.Series.IsEmpty()
	}

	return len(r.Line) == 0
}

// Indicator is a configurable wrapper around one of the pure series functions.
// Compute never fails: insufficient data yields an empty Result.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config validates and applies the indicator parameters
	Config(params ...any) error
	// Compute derives the indicator series from bars ordered oldest-first
	Compute(bars []types.Bar) Result
}
