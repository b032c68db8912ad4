package types

import (
	"fmt"
	"strings"
)

// Interval is the bar granularity requested from the provider.
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// Intervals lists every supported interval.
var Intervals = []Interval{IntervalDaily, IntervalWeekly, IntervalMonthly}

// ParseInterval accepts either the interval name or its wire form ("1day", "1week", "1month").
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "1day", "1d":
		return IntervalDaily, nil
	case "weekly", "1week", "1w":
		return IntervalWeekly, nil
	case "monthly", "1month", "1mo":
		return IntervalMonthly, nil
	default:
		return "", fmt.Errorf("unsupported interval %q", s)
	}
}

// Valid reports whether i is one of the enumerated intervals.
func (i Interval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	default:
		return false
	}
}

// Wire returns the provider query value for the interval.
func (i Interval) Wire() string {
	switch i {
	case IntervalDaily:
		return "1day"
	case IntervalWeekly:
		return "1week"
	case IntervalMonthly:
		return "1month"
	default:
		return ""
	}
}

// Range is a named lookback expressed as a bar count.
type Range struct {
	Label      string `json:"label"`
	OutputSize int    `json:"outputSize"`
}

// DefaultRange is the one-year lookback.
var DefaultRange = Range{Label: "1Y", OutputSize: 260}

// Ranges lists the lookback presets offered to users.
var Ranges = []Range{
	{Label: "1M", OutputSize: 30},
	{Label: "3M", OutputSize: 90},
	DefaultRange,
	{Label: "5Y", OutputSize: 1300},
	{Label: "Max", OutputSize: 5000},
}

// ParseRange resolves a preset label (case-insensitive). An empty label yields DefaultRange.
func ParseRange(label string) (Range, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultRange, nil
	}

	for _, r := range Ranges {
		if strings.EqualFold(r.Label, label) {
			return r, nil
		}
	}

	return Range{}, fmt.Errorf("unsupported range %q", label)
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CacheKey identifies one history request.
type CacheKey struct {
	Symbol     string
	Interval   Interval
	OutputSize int
}

// String renders the key as SYMBOL-interval-size.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s-%s-%d", k.Symbol, k.Interval.Wire(), k.OutputSize)
}
