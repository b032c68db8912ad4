package marketdata

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-chart/pkg/errors"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

type NormalizeTestSuite struct {
	suite.Suite
}

func TestNormalizeSuite(t *testing.T) {
	suite.Run(t, new(NormalizeTestSuite))
}

func value(datetime, closePrice, volume string) provider.TimeSeriesValue {
	return provider.TimeSeriesValue{
		Datetime: datetime,
		Open:     closePrice,
		High:     closePrice,
		Low:      closePrice,
		Close:    closePrice,
		Volume:   volume,
	}
}

func (suite *NormalizeTestSuite) TestReversesToOldestFirst() {
	bars, err := Normalize(&provider.TimeSeriesResponse{
		Status: "ok",
		Values: []provider.TimeSeriesValue{
			value("2024-01-04", "103.5", "300"),
			value("2024-01-03", "102.25", "200"),
			value("2024-01-02", "101", "100"),
		},
	})
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.Equal("2024-01-02", bars[0].Time)
	suite.Equal("2024-01-04", bars[2].Time)
	suite.Equal(101.0, bars[0].Close)
	suite.Equal(102.25, bars[1].Close)
	suite.Equal(optional.Some[int64](300), bars[2].Volume)
}

func (suite *NormalizeTestSuite) TestParsesAllPriceFields() {
	bars, err := Normalize(&provider.TimeSeriesResponse{
		Values: []provider.TimeSeriesValue{{
			Datetime: "2024-01-02 15:30:00",
			Open:     "187.15000",
			High:     "188.44000",
			Low:      " 183.88500",
			Close:    "185.64000",
			Volume:   "82488700",
		}},
	})
	suite.Require().NoError(err)
	suite.Require().Len(bars, 1)
	suite.Equal("2024-01-02 15:30:00", bars[0].Time)
	suite.Equal(187.15, bars[0].Open)
	suite.Equal(188.44, bars[0].High)
	suite.Equal(183.885, bars[0].Low)
	suite.Equal(185.64, bars[0].Close)
	suite.Equal(optional.Some[int64](82488700), bars[0].Volume)
}

func (suite *NormalizeTestSuite) TestOptionalVolume() {
	bars, err := Normalize(&provider.TimeSeriesResponse{
		Values: []provider.TimeSeriesValue{
			value("2024-01-05", "1", "12.9"),
			value("2024-01-04", "1", "-5"),
			value("2024-01-03", "1", "n/a"),
			value("2024-01-02", "1", ""),
		},
	})
	suite.Require().NoError(err)
	suite.True(bars[0].Volume.IsNone())
	suite.True(bars[1].Volume.IsNone())
	suite.True(bars[2].Volume.IsNone())
	suite.Equal(optional.Some[int64](12), bars[3].Volume)
}

func (suite *NormalizeTestSuite) TestEmptyValues() {
	bars, err := Normalize(&provider.TimeSeriesResponse{Status: "ok"})
	suite.NoError(err)
	suite.NotNil(bars)
	suite.Empty(bars)
}

func (suite *NormalizeTestSuite) TestErrorEnvelope() {
	_, err := Normalize(&provider.TimeSeriesResponse{Status: "error", Message: "**symbol** not found: ZZZZ"})
	suite.True(errors.IsUpstreamError(err))
	suite.Contains(err.Error(), "**symbol** not found: ZZZZ")

	_, err = Normalize(&provider.TimeSeriesResponse{Status: "error"})
	suite.True(errors.IsUpstreamError(err))
	suite.Contains(err.Error(), DefaultUpstreamMessage)
}

func (suite *NormalizeTestSuite) TestUnparsablePriceIsTransportError() {
	_, err := Normalize(&provider.TimeSeriesResponse{
		Values: []provider.TimeSeriesValue{value("2024-01-02", "abc", "1")},
	})
	suite.True(errors.IsTransportError(err))
	suite.False(errors.IsUpstreamError(err))
}

func (suite *NormalizeTestSuite) TestNonFinitePriceIsTransportError() {
	for _, price := range []string{"1e400", "-1e400"} {
		bars, err := Normalize(&provider.TimeSeriesResponse{
			Values: []provider.TimeSeriesValue{value("2024-01-02", price, "1")},
		})
		suite.Nil(bars, price)
		suite.True(errors.IsTransportError(err), price)
	}
}

func (suite *NormalizeTestSuite) TestInconsistentBarIsTransportError() {
	cases := []provider.TimeSeriesValue{
		{Datetime: "2024-01-02", Open: "10", High: "9", Low: "8", Close: "8.5"},
		{Datetime: "2024-01-02", Open: "8.5", High: "9", Low: "8", Close: "7"},
		{Datetime: "2024-01-02", Open: "8.5", High: "8", Low: "9", Close: "8.5"},
	}

	for _, v := range cases {
		_, err := Normalize(&provider.TimeSeriesResponse{Values: []provider.TimeSeriesValue{v}})
		suite.True(errors.IsTransportError(err), "%+v", v)
	}
}

func (suite *NormalizeTestSuite) TestMissingDatetimeIsTransportError() {
	_, err := Normalize(&provider.TimeSeriesResponse{
		Values: []provider.TimeSeriesValue{value("", "1", "1")},
	})
	suite.True(errors.IsTransportError(err))
}

func (suite *NormalizeTestSuite) TestOldestFirstPayloadIsRejected() {
	// Reversing an already oldest-first payload would hand the engine a descending series.
	_, err := Normalize(&provider.TimeSeriesResponse{
		Values: []provider.TimeSeriesValue{
			value("2024-01-02", "1", "1"),
			value("2024-01-03", "1", "1"),
		},
	})
	suite.True(errors.IsTransportError(err))
}

func (suite *NormalizeTestSuite) TestNilResponse() {
	_, err := Normalize(nil)
	suite.True(errors.IsTransportError(err))
}
