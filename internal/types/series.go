package types

import "encoding/json"

// Member names used by the multi-series indicators.
const (
	SeriesUpper     = "upper"
	SeriesMiddle    = "middle"
	SeriesLower     = "lower"
	SeriesMACD      = "macd"
	SeriesSignal    = "signal"
	SeriesHistogram = "histogram"
)

// MultiSeries is a named group of point series that share one time alignment.
// Member order is the order in which the series were added.
type MultiSeries struct {
	names  []string
	series map[string][]Point
}

// NewMultiSeries creates an empty group.
func NewMultiSeries() MultiSeries {
	return MultiSeries{
		names:  nil,
		series: make(map[string][]Point),
	}
}

// With returns the group with the named series appended (or replaced if the name exists).
func (m MultiSeries) With(name string, points []Point) MultiSeries {
	if m.series == nil {
		m.series = make(map[string][]Point)
	}

	if _, exists := m.series[name]; !exists {
		m.names = append(append([]string(nil), m.names...), name)
	}

	series := make(map[string][]Point, len(m.series)+1)
	for k, v := range m.series {
		series[k] = v
	}

	series[name] = points
	m.series = series

	return m
}

// Names returns the member names in insertion order.
func (m MultiSeries) Names() []string {
	return append([]string(nil), m.names...)
}

// Get returns the named member. Missing members are reported as (nil, false).
func (m MultiSeries) Get(name string) ([]Point, bool) {
	points, ok := m.series[name]

	return points, ok
}

// Series returns the named member or nil.
func (m MultiSeries) Series(name string) []Point {
	return m.series[name]
}

// Len returns the shared length of the members (0 for an empty group).
func (m MultiSeries) Len() int {
	if len(m.names) == 0 {
		return 0
	}

	return len(m.series[m.names[0]])
}

// IsEmpty reports whether the group holds no points.
func (m MultiSeries) IsEmpty() bool {
	return m.Len() == 0
}

// MarshalJSON encodes the group as an object keyed by member name.
func (m MultiSeries) MarshalJSON() ([]byte, error) {
	out := make(map[string][]Point, len(m.names))
	for _, name := range m.names {
		points := m.series[name]
		if points == nil {
			points = []Point{}
		}

		out[name] = points
	}

	return json.Marshal(out)
}
