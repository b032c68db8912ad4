package types

import (
	"github.com/moznion/go-optional"
)

// Bar is one OHLC(V) observation. Slices of Bar are always ordered oldest-first.
type Bar struct {
	// Time is the provider's datetime identifier, e.g. "2024-01-31" or "2024-01-31 15:30:00".
	Time   string                 `json:"time" csv:"time"`
	Open   float64                `json:"open" csv:"open"`
	High   float64                `json:"high" csv:"high"`
	Low    float64                `json:"low" csv:"low"`
	Close  float64                `json:"close" csv:"close"`
	Volume optional.Option[int64] `json:"volume,omitempty" csv:"volume"`
}

// Point is one derived value at a bar time.
type Point struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// CloneBars returns a deep copy of bars so the caller may not alias a cached slice.
// Volume is itself a slice, so each present volume gets its own backing array.
func CloneBars(bars []Bar) []Bar {
	if bars == nil {
		return nil
	}

	out := make([]Bar, len(bars))
	copy(out, bars)

	for i := range out {
		if out[i].Volume.IsSome() {
			out[i].Volume = optional.Some(out[i].Volume.Unwrap())
		}
	}

	return out
}

// ClosePoints projects bars onto their close prices.
func ClosePoints(bars []Bar) []Point {
	points := make([]Point, len(bars))
	for i, b := range bars {
		points[i] = Point{Time: b.Time, Value: b.Close}
	}

	return points
}
