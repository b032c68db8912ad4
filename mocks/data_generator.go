package mocks

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

// DataGenerator generates realistic price history for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// StartTime is the first bar's date
	StartTime time.Time
	// Interval is the bar granularity; daily bars skip weekends
	Interval types.Interval
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical move per bar)
	Volatility float64
	// Trend is the drift factor across the whole series
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:       types.IntervalDaily,
		Count:          260,
		InitialPrice:   100.0,
		Volatility:     0.01,
		Trend:          0.0,
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates oldest-first bars following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + priceChange + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, closePrice) + highExtension
		low := math.Min(open, closePrice) - lowExtension
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars[i] = types.Bar{
			Time:   currentTime.Format("2006-01-02"),
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(closePrice, 4),
			Volume: optional.Some(int64(volume)),
		}

		currentPrice = closePrice
		currentTime = nextBarTime(currentTime, config.Interval)
	}

	return bars
}

// GenerateBars is a convenience wrapper around DefaultConfig with a fixed seed.
func GenerateBars(count int) []types.Bar {
	config := DefaultConfig()
	config.Count = count

	return NewDataGenerator(42).Generate(config)
}

// ToTimeSeries renders oldest-first bars as an upstream payload (newest-first, decimal strings).
func ToTimeSeries(symbol string, interval types.Interval, bars []types.Bar) *provider.TimeSeriesResponse {
	values := make([]provider.TimeSeriesValue, 0, len(bars))
	for i := len(bars) - 1; i >= 0; i-- {
		b := bars[i]
		v := provider.TimeSeriesValue{
			Datetime: b.Time,
			Open:     strconv.FormatFloat(b.Open, 'f', -1, 64),
			High:     strconv.FormatFloat(b.High, 'f', -1, 64),
			Low:      strconv.FormatFloat(b.Low, 'f', -1, 64),
			Close:    strconv.FormatFloat(b.Close, 'f', -1, 64),
		}

		if vol, err := b.Volume.Take(); err == nil {
			v.Volume = strconv.FormatInt(vol, 10)
		}

		values = append(values, v)
	}

	return &provider.TimeSeriesResponse{
		Status:   "ok",
		Symbol:   symbol,
		Interval: interval.Wire(),
		Values:   values,
	}
}

func nextBarTime(t time.Time, interval types.Interval) time.Time {
	switch interval {
	case types.IntervalWeekly:
		return t.AddDate(0, 0, 7)
	case types.IntervalMonthly:
		return t.AddDate(0, 1, 0)
	default:
		next := t.AddDate(0, 0, 1)
		for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
			next = next.AddDate(0, 0, 1)
		}

		return next
	}
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
