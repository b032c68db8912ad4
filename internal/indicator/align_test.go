package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/stretchr/testify/suite"
)

type AlignTestSuite struct {
	suite.Suite
}

func TestAlignSuite(t *testing.T) {
	suite.Run(t, new(AlignTestSuite))
}

func (suite *AlignTestSuite) TestTrimsToCommonSuffix() {
	long := []types.Point{{Time: "a", Value: 1}, {Time: "b", Value: 2}, {Time: "c", Value: 3}, {Time: "d", Value: 4}}
	short := []types.Point{{Time: "c", Value: 30}, {Time: "d", Value: 40}}

	aligned, ok := AlignSuffix(long, short)
	suite.True(ok)
	suite.Require().Len(aligned, 2)
	suite.Equal([]string{"c", "d"}, times(aligned[0]))
	suite.Equal([]string{"c", "d"}, times(aligned[1]))
	suite.Equal(3.0, aligned[0][0].Value)
	suite.Equal(30.0, aligned[1][0].Value)
}

func (suite *AlignTestSuite) TestDoesNotCopyOrMutate() {
	long := []types.Point{{Time: "a"}, {Time: "b"}, {Time: "c"}}
	short := []types.Point{{Time: "c"}}

	aligned, ok := AlignSuffix(long, short)
	suite.True(ok)
	suite.Len(long, 3)
	suite.Equal("c", aligned[0][0].Time)
}

func (suite *AlignTestSuite) TestMismatchedStartIsRejected() {
	a := []types.Point{{Time: "a"}, {Time: "b"}, {Time: "c"}}
	b := []types.Point{{Time: "x"}, {Time: "c"}}

	aligned, ok := AlignSuffix(a, b)
	suite.False(ok)
	suite.Empty(aligned[0])
	suite.Empty(aligned[1])
}

func (suite *AlignTestSuite) TestMismatchedInteriorIsRejected() {
	a := []types.Point{{Time: "a"}, {Time: "b"}, {Time: "c"}}
	b := []types.Point{{Time: "a"}, {Time: "x"}, {Time: "c"}}

	_, ok := AlignSuffix(a, b)
	suite.False(ok)
}

func (suite *AlignTestSuite) TestEmptyMemberEmptiesAll() {
	a := []types.Point{{Time: "a"}}

	aligned, ok := AlignSuffix(a, []types.Point{})
	suite.True(ok)
	suite.Empty(aligned[0])
	suite.Empty(aligned[1])
}

func (suite *AlignTestSuite) TestNoSeries() {
	aligned, ok := AlignSuffix()
	suite.True(ok)
	suite.Empty(aligned)
}

func (suite *AlignTestSuite) TestThreeSeries() {
	a := []types.Point{{Time: "1"}, {Time: "2"}, {Time: "3"}}
	b := []types.Point{{Time: "2"}, {Time: "3"}}
	c := []types.Point{{Time: "3"}}

	aligned, ok := AlignSuffix(a, b, c)
	suite.True(ok)

	for _, s := range aligned {
		suite.Equal([]string{"3"}, times(s))
	}
}
