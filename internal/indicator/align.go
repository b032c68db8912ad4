package indicator

import "github.com/rxtech-lab/argo-chart/internal/types"

// AlignSuffix trims the leading points of every series so that all of them cover the same
// trailing run of times. The shortest series decides the length of the shared run; every other
// series is cut to that length and must start at the same time, then the times are compared
// point by point.
//
// ok is false when a series does not contain the start time or the times disagree after trimming.
// In that case every returned series is empty.
func AlignSuffix(series ...[]types.Point) (aligned [][]types.Point, ok bool) {
	aligned = make([][]types.Point, len(series))
	if len(series) == 0 {
		return aligned, true
	}

	shortest := 0
	for i, s := range series {
		if len(s) < len(series[shortest]) {
			shortest = i
		}
	}

	if len(series[shortest]) == 0 {
		return emptySeries(len(series)), true
	}

	start := series[shortest][0].Time
	n := len(series[shortest])

	for i, s := range series {
		offset := len(s) - n
		if s[offset].Time != start {
			return emptySeries(len(series)), false
		}

		aligned[i] = s[offset:]
	}

	for idx := 0; idx < n; idx++ {
		t := aligned[0][idx].Time
		for _, s := range aligned[1:] {
			if s[idx].Time != t {
				return emptySeries(len(series)), false
			}
		}
	}

	return aligned, true
}

func emptySeries(n int) [][]types.Point {
	out := make([][]types.Point, n)
	for i := range out {
		out[i] = []types.Point{}
	}

	return out
}
