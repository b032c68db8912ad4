package provider_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-chart/internal/mockserver"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/mocks"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

type TwelveDataClientTestSuite struct {
	suite.Suite
	server *mockserver.MockTwelveDataServer
	client *provider.TwelveDataClient
}

func TestTwelveDataClientSuite(t *testing.T) {
	suite.Run(t, new(TwelveDataClientTestSuite))
}

func (suite *TwelveDataClientTestSuite) SetupTest() {
	suite.server = mockserver.NewMockTwelveDataServer()
	suite.client = provider.NewTwelveDataClient(suite.server.URL(), 2*time.Second)
}

func (suite *TwelveDataClientTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *TwelveDataClientTestSuite) request(symbol string, size int) provider.Request {
	return provider.Request{Symbol: symbol, Interval: types.IntervalWeekly, OutputSize: size, APIKey: "demo"}
}

func (suite *TwelveDataClientTestSuite) TestSendsQueryParameters() {
	suite.server.SetSeries("AAPL", mocks.GenerateBars(5))

	_, err := suite.client.FetchTimeSeries(context.Background(), suite.request("AAPL", 5))
	suite.Require().NoError(err)

	queries := suite.server.Queries()
	suite.Require().Len(queries, 1)
	suite.Equal("AAPL", queries[0].Get("symbol"))
	suite.Equal("1week", queries[0].Get("interval"))
	suite.Equal("demo", queries[0].Get("apikey"))
	suite.Equal("5", queries[0].Get("outputsize"))
}

func (suite *TwelveDataClientTestSuite) TestReturnsNewestFirstValues() {
	bars := mocks.GenerateBars(10)
	suite.server.SetSeries("AAPL", bars)

	resp, err := suite.client.FetchTimeSeries(context.Background(), suite.request("AAPL", 4))
	suite.Require().NoError(err)
	suite.False(resp.IsError())
	suite.Require().Len(resp.Values, 4)
	suite.Equal(bars[9].Time, resp.Values[0].Datetime)
	suite.Equal(bars[6].Time, resp.Values[3].Datetime)
}

func (suite *TwelveDataClientTestSuite) TestUpstreamErrorIsReturnedInBody() {
	suite.server.SetFailure("AAPL", "You have run out of API credits for the current minute.")

	resp, err := suite.client.FetchTimeSeries(context.Background(), suite.request("AAPL", 4))
	suite.Require().NoError(err)
	suite.True(resp.IsError())
	suite.Equal("You have run out of API credits for the current minute.", resp.Message)
}

func (suite *TwelveDataClientTestSuite) TestUnauthorizedJSONBodyIsDecoded() {
	suite.server.SetSeries("AAPL", mocks.GenerateBars(5))
	suite.server.RequireAPIKey("secret")

	resp, err := suite.client.FetchTimeSeries(context.Background(), suite.request("AAPL", 4))
	suite.Require().NoError(err)
	suite.True(resp.IsError())
	suite.Contains(resp.Message, "apikey")
}

func (suite *TwelveDataClientTestSuite) TestMalformedBodyIsTransportError() {
	suite.server.SetGarbage("AAPL")

	resp, err := suite.client.FetchTimeSeries(context.Background(), suite.request("AAPL", 4))
	suite.Nil(resp)
	suite.True(errors.IsTransportError(err))
}

func (suite *TwelveDataClientTestSuite) TestUnreachableServerIsTransportError() {
	client := provider.NewTwelveDataClient("http://127.0.0.1:1", time.Second)

	_, err := client.FetchTimeSeries(context.Background(), suite.request("AAPL", 4))
	suite.True(errors.IsTransportError(err))
}

func (suite *TwelveDataClientTestSuite) TestContextCancellation() {
	suite.server.SetSeries("AAPL", mocks.GenerateBars(5))
	release := suite.server.Hold()
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := suite.client.FetchTimeSeries(ctx, suite.request("AAPL", 4))
	suite.True(errors.IsTransportError(err))
}

func (suite *TwelveDataClientTestSuite) TestNewFetcher() {
	fetcher, err := provider.NewFetcher(provider.Config{Provider: provider.ProviderTwelveData})
	suite.NoError(err)
	suite.IsType(&provider.TwelveDataClient{}, fetcher)

	fetcher, err = provider.NewFetcher(provider.Config{})
	suite.NoError(err)
	suite.IsType(&provider.TwelveDataClient{}, fetcher)

	fetcher, err = provider.NewFetcher(provider.Config{Provider: provider.ProviderPolygon, APIKey: "key"})
	suite.NoError(err)
	suite.IsType(&provider.PolygonClient{}, fetcher)

	_, err = provider.NewFetcher(provider.Config{Provider: provider.ProviderPolygon})
	suite.True(errors.IsConfigurationError(err))

	_, err = provider.NewFetcher(provider.Config{Provider: "yahoo"})
	suite.Error(err)
}
