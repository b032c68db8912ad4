package chart

import "github.com/rxtech-lab/argo-chart/internal/types"

// Quote summarizes the latest bar against the one before it.
type Quote struct {
	Time          string  `json:"time"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	IsPositive    bool    `json:"isPositive"`
}

// QuoteFromBars compares the latest close with the previous close, or with the latest
// open when there is only one bar. It reports false for an empty series.
func QuoteFromBars(bars []types.Bar) (Quote, bool) {
	if len(bars) == 0 {
		return Quote{}, false
	}

	latest := bars[len(bars)-1]

	reference := latest.Open
	if len(bars) > 1 {
		reference = bars[len(bars)-2].Close
	}

	change := latest.Close - reference

	percent := 0.0
	if reference != 0 {
		percent = change / reference * 100
	}

	return Quote{
		Time:          latest.Time,
		Price:         latest.Close,
		Change:        change,
		ChangePercent: percent,
		IsPositive:    change >= 0,
	}, true
}
