package indicator

import (
	"time"

	"github.com/rxtech-lab/argo-chart/internal/types"
)

// barsFromCloses builds daily bars, oldest first, with the given closes.
func barsFromCloses(closes ...float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{
			Time:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}

	return bars
}

func rising(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	return closes
}

func times(points []types.Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Time
	}

	return out
}
