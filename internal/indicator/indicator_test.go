package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/stretchr/testify/suite"
)

type IndicatorInterfaceTestSuite struct {
	suite.Suite
}

func TestIndicatorInterfaceSuite(t *testing.T) {
	suite.Run(t, new(IndicatorInterfaceTestSuite))
}

func (suite *IndicatorInterfaceTestSuite) TestSingleLineResult() {
	result := NewMA().Compute(barsFromCloses(rising(25)...))

	suite.Equal(types.IndicatorTypeMA, result.Indicator)
	suite.False(result.Multi)
	suite.Len(result.Line, 6)
	suite.False(result.IsEmpty())
}

func (suite *IndicatorInterfaceTestSuite) TestMultiSeriesResult() {
	result := NewBollingerBands().Compute(barsFromCloses(rising(25)...))

	suite.True(result.Multi)
	suite.Nil(result.Line)
	suite.Equal([]string{types.SeriesUpper, types.SeriesMiddle, types.SeriesLower}, result.Series.Names())
	suite.Equal(6, result.Series.Len())
}

func (suite *IndicatorInterfaceTestSuite) TestInsufficientDataIsEmptyNotError() {
	bars := barsFromCloses(1, 2, 3)

	for _, ind := range []Indicator{NewMA(), NewEMA(), NewRSI(), NewMACD(), NewBollingerBands()} {
		result := ind.Compute(bars)
		suite.True(result.IsEmpty(), string(ind.Name()))
	}
}

func (suite *IndicatorInterfaceTestSuite) TestComputeDoesNotMutateInput() {
	bars := barsFromCloses(rising(40)...)
	snapshot := types.CloneBars(bars)

	for _, ind := range []Indicator{NewMA(), NewEMA(), NewRSI(), NewMACD(), NewBollingerBands()} {
		ind.Compute(bars)
	}

	suite.Equal(snapshot, bars)
}
