package marketdata

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-chart/internal/logger"
	"github.com/rxtech-lab/argo-chart/internal/metrics"
	"github.com/rxtech-lab/argo-chart/internal/mockserver"
	"github.com/rxtech-lab/argo-chart/internal/types"
	"github.com/rxtech-lab/argo-chart/mocks"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
	"github.com/rxtech-lab/argo-chart/pkg/marketdata/provider"
)

// HistoryCacheTestSuite is a test suite for HistoryCache
type HistoryCacheTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	fetcher *mocks.MockFetcher
	metrics *metrics.Metrics
	cache   *HistoryCache
	bars    []types.Bar
}

func TestHistoryCacheSuite(t *testing.T) {
	suite.Run(t, new(HistoryCacheTestSuite))
}

func (suite *HistoryCacheTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.fetcher = mocks.NewMockFetcher(suite.ctrl)
	suite.metrics = metrics.NewMetrics()
	suite.bars = mocks.GenerateBars(5)

	cache, err := NewHistoryCache(
		HistoryCacheConfig{APIKey: "key", FetchTimeout: 5 * time.Second},
		suite.fetcher,
		WithLogger(logger.NewNopLogger()),
		WithMetrics(suite.metrics),
	)
	suite.Require().NoError(err)
	suite.cache = cache
}

func (suite *HistoryCacheTestSuite) TearDownTest() {
	suite.cache.Close()
	suite.ctrl.Finish()
}

func (suite *HistoryCacheTestSuite) request(symbol string, size int) provider.Request {
	return provider.Request{Symbol: symbol, Interval: types.IntervalDaily, OutputSize: size, APIKey: "key"}
}

func (suite *HistoryCacheTestSuite) payload() *provider.TimeSeriesResponse {
	return mocks.ToTimeSeries("AAPL", types.IntervalDaily, suite.bars)
}

// blockingFetch answers with the payload once release is closed and reports each start on started.
func (suite *HistoryCacheTestSuite) blockingFetch(started chan<- context.Context, release <-chan struct{}) func(context.Context, provider.Request) (*provider.TimeSeriesResponse, error) {
	return func(ctx context.Context, _ provider.Request) (*provider.TimeSeriesResponse, error) {
		started <- ctx
		select {
		case <-release:
			return suite.payload(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (suite *HistoryCacheTestSuite) TestNewHistoryCacheValidation() {
	_, err := NewHistoryCache(HistoryCacheConfig{APIKey: "key"}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewHistoryCache(HistoryCacheConfig{APIKey: "key", FetchTimeout: -time.Second}, suite.fetcher)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	cache, err := NewHistoryCache(HistoryCacheConfig{APIKey: "key"}, suite.fetcher)
	suite.Require().NoError(err)
	suite.Equal(DefaultFetchTimeout, cache.config.FetchTimeout)
	suite.NoError(cache.Close())
}

func (suite *HistoryCacheTestSuite) TestMissThenHit() {
	suite.fetcher.EXPECT().
		FetchTimeSeries(gomock.Any(), suite.request("AAPL", 5)).
		Return(suite.payload(), nil).
		Times(1)

	first, err := suite.cache.Get(context.Background(), " aapl ", types.IntervalDaily, 5)
	suite.Require().NoError(err)
	suite.Equal(suite.bars, first)

	second, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.Require().NoError(err)
	suite.Equal(first, second)

	suite.Equal(1, suite.cache.Len())
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.CacheHits))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.CacheMisses))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.FetchesTotal.WithLabelValues("ok")))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.CacheEntries))
}

func (suite *HistoryCacheTestSuite) TestKeysAreDistinctPerIntervalAndSize() {
	suite.fetcher.EXPECT().FetchTimeSeries(gomock.Any(), gomock.Any()).Return(suite.payload(), nil).Times(3)

	ctx := context.Background()
	_, err := suite.cache.Get(ctx, "AAPL", types.IntervalDaily, 5)
	suite.Require().NoError(err)
	_, err = suite.cache.Get(ctx, "AAPL", types.IntervalWeekly, 5)
	suite.Require().NoError(err)
	_, err = suite.cache.Get(ctx, "AAPL", types.IntervalDaily, 30)
	suite.Require().NoError(err)

	suite.Equal([]types.CacheKey{
		{Symbol: "AAPL", Interval: types.IntervalDaily, OutputSize: 30},
		{Symbol: "AAPL", Interval: types.IntervalDaily, OutputSize: 5},
		{Symbol: "AAPL", Interval: types.IntervalWeekly, OutputSize: 5},
	}, suite.cache.Keys())
}

func (suite *HistoryCacheTestSuite) TestReturnedSliceIsACopy() {
	suite.fetcher.EXPECT().FetchTimeSeries(gomock.Any(), gomock.Any()).Return(suite.payload(), nil).Times(1)

	got, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.Require().NoError(err)

	got[0].Close = -1

	again, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.Require().NoError(err)
	suite.Equal(suite.bars[0].Close, again[0].Close)

	peeked, ok := suite.cache.Peek(types.CacheKey{Symbol: "AAPL", Interval: types.IntervalDaily, OutputSize: 5})
	suite.True(ok)
	peeked[0].Close = -2
	suite.Equal(suite.bars[0].Close, suite.cache.entries[types.CacheKey{Symbol: "AAPL", Interval: types.IntervalDaily, OutputSize: 5}][0].Close)
}

func (suite *HistoryCacheTestSuite) TestInvalidInputNeverFetches() {
	ctx := context.Background()

	_, err := suite.cache.Get(ctx, "  ", types.IntervalDaily, 5)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSymbol))

	_, err = suite.cache.Get(ctx, "AAPL", types.Interval("hourly"), 5)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidInterval))

	_, err = suite.cache.Get(ctx, "AAPL", types.IntervalDaily, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRange))

	suite.True(errors.IsInvalidInput(err))
}

func (suite *HistoryCacheTestSuite) TestMaxOutputSize() {
	cache, err := NewHistoryCache(HistoryCacheConfig{APIKey: "key", MaxOutputSize: 5000}, suite.fetcher)
	suite.Require().NoError(err)
	defer cache.Close()

	_, err = cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5001)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRange))
}

func (suite *HistoryCacheTestSuite) TestMissingAPIKeyFailsBeforeAnyFetch() {
	// No expectation is registered: any fetch fails the test.
	cache, err := NewHistoryCache(HistoryCacheConfig{}, suite.fetcher)
	suite.Require().NoError(err)
	defer cache.Close()

	_, err = cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.True(errors.IsConfigurationError(err))
	suite.False(errors.IsFetchError(err))
	suite.False(cache.IsLoading("AAPL"))
}

func (suite *HistoryCacheTestSuite) TestUpstreamFailureIsNotCached() {
	gomock.InOrder(
		suite.fetcher.EXPECT().
			FetchTimeSeries(gomock.Any(), gomock.Any()).
			Return(&provider.TimeSeriesResponse{Status: "error", Message: "You have run out of API credits."}, nil),
		suite.fetcher.EXPECT().
			FetchTimeSeries(gomock.Any(), gomock.Any()).
			Return(suite.payload(), nil),
	)

	_, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.True(errors.IsUpstreamError(err))
	suite.Contains(err.Error(), "You have run out of API credits.")
	suite.Equal(0, suite.cache.Len())
	suite.False(suite.cache.IsLoading("AAPL"))

	bars, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.NoError(err)
	suite.Len(bars, 5)
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.FetchesTotal.WithLabelValues("upstream")))
}

func (suite *HistoryCacheTestSuite) TestTransportFailureIsWrapped() {
	suite.fetcher.EXPECT().
		FetchTimeSeries(gomock.Any(), gomock.Any()).
		Return(nil, stderrors.New("dial tcp: connection refused"))

	_, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.True(errors.IsTransportError(err))
	suite.True(errors.IsFetchError(err))
	suite.Contains(err.Error(), "connection refused")
	suite.Equal(0, suite.cache.Len())
	suite.Empty(suite.cache.LoadingSymbols())
}

func (suite *HistoryCacheTestSuite) TestConcurrentCallersShareOneFetch() {
	started := make(chan context.Context, 1)
	release := make(chan struct{})

	suite.fetcher.EXPECT().
		FetchTimeSeries(gomock.Any(), suite.request("AAPL", 5)).
		DoAndReturn(suite.blockingFetch(started, release)).
		Times(1)

	const callers = 10

	var wg sync.WaitGroup

	results := make([][]types.Bar, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
		}(i)
	}

	<-started
	suite.True(suite.cache.IsLoading("aapl"))
	suite.Equal([]string{"AAPL"}, suite.cache.LoadingSymbols())

	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		suite.NoError(errs[i])
		suite.Equal(suite.bars, results[i])
	}

	suite.False(suite.cache.IsLoading("AAPL"))
	suite.Equal(1, suite.cache.Len())
}

func (suite *HistoryCacheTestSuite) TestConcurrentCallersShareOneFailure() {
	started := make(chan struct{})
	release := make(chan struct{})

	suite.fetcher.EXPECT().
		FetchTimeSeries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, provider.Request) (*provider.TimeSeriesResponse, error) {
			close(started)
			<-release

			return &provider.TimeSeriesResponse{Status: "error"}, nil
		}).
		Times(1)

	var wg sync.WaitGroup

	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			_, errs[i] = suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
		}(i)

		if i == 0 {
			<-started
		}
	}

	// Give the second caller time to join the flight before it resolves.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	suite.True(errors.IsUpstreamError(errs[0]))
	suite.Contains(errs[0].Error(), DefaultUpstreamMessage)
	suite.Error(errs[1])
	suite.False(suite.cache.IsLoading("AAPL"))
}

func (suite *HistoryCacheTestSuite) TestCallerCancellationDoesNotCancelFetch() {
	started := make(chan context.Context, 1)
	release := make(chan struct{})

	suite.fetcher.EXPECT().
		FetchTimeSeries(gomock.Any(), gomock.Any()).
		DoAndReturn(suite.blockingFetch(started, release)).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		_, err := suite.cache.Get(ctx, "AAPL", types.IntervalDaily, 5)
		done <- err
	}()

	fetchCtx := <-started
	cancel()

	suite.ErrorIs(<-done, context.Canceled)
	suite.NoError(fetchCtx.Err())
	suite.True(suite.cache.IsLoading("AAPL"))

	close(release)

	bars, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.NoError(err)
	suite.Equal(suite.bars, bars)
}

func (suite *HistoryCacheTestSuite) TestFetchStartedBeforeInvalidationStillStores() {
	started := make(chan context.Context, 1)
	release := make(chan struct{})

	suite.fetcher.EXPECT().
		FetchTimeSeries(gomock.Any(), gomock.Any()).
		DoAndReturn(suite.blockingFetch(started, release)).
		Times(1)

	done := make(chan error, 1)

	go func() {
		_, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
		done <- err
	}()

	<-started
	suite.Equal(0, suite.cache.Purge())
	close(release)
	suite.NoError(<-done)

	_, ok := suite.cache.Peek(types.CacheKey{Symbol: "AAPL", Interval: types.IntervalDaily, OutputSize: 5})
	suite.True(ok)
}

func (suite *HistoryCacheTestSuite) TestInvalidation() {
	suite.fetcher.EXPECT().FetchTimeSeries(gomock.Any(), gomock.Any()).Return(suite.payload(), nil).Times(4)

	ctx := context.Background()
	for _, size := range []int{5, 30} {
		_, err := suite.cache.Get(ctx, "AAPL", types.IntervalDaily, size)
		suite.Require().NoError(err)
	}

	_, err := suite.cache.Get(ctx, "MSFT", types.IntervalDaily, 5)
	suite.Require().NoError(err)
	suite.Equal(3, suite.cache.Len())

	suite.Equal(2, suite.cache.InvalidateSymbol("aapl"))
	suite.Equal(1, suite.cache.Len())

	msft := types.CacheKey{Symbol: "MSFT", Interval: types.IntervalDaily, OutputSize: 5}
	suite.True(suite.cache.Invalidate(msft))
	suite.False(suite.cache.Invalidate(msft))
	suite.Equal(0, suite.cache.Len())
	suite.Equal(3.0, testutil.ToFloat64(suite.metrics.Invalidations))

	// Invalidated keys are fetched again.
	_, err = suite.cache.Get(ctx, "MSFT", types.IntervalDaily, 5)
	suite.NoError(err)
	suite.Equal(1, suite.cache.Purge())
}

func (suite *HistoryCacheTestSuite) TestClose() {
	suite.NoError(suite.cache.Close())
	suite.NoError(suite.cache.Close())

	_, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.True(errors.HasCode(err, errors.ErrCodeCacheClosed))
}

func (suite *HistoryCacheTestSuite) TestCloseCancelsInFlightFetch() {
	started := make(chan context.Context, 1)
	release := make(chan struct{})
	defer close(release)

	suite.fetcher.EXPECT().
		FetchTimeSeries(gomock.Any(), gomock.Any()).
		DoAndReturn(suite.blockingFetch(started, release)).
		Times(1)

	done := make(chan error, 1)

	go func() {
		_, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
		done <- err
	}()

	<-started
	suite.NoError(suite.cache.Close())

	err := <-done
	suite.True(errors.IsTransportError(err))
	suite.ErrorIs(err, context.Canceled)
	suite.Equal(0, suite.cache.Len())
}

// HistoryCacheHTTPTestSuite runs the cache against the real client and a mock upstream.
type HistoryCacheHTTPTestSuite struct {
	suite.Suite
	server *mockserver.MockTwelveDataServer
	cache  *HistoryCache
}

func TestHistoryCacheHTTPSuite(t *testing.T) {
	suite.Run(t, new(HistoryCacheHTTPTestSuite))
}

func (suite *HistoryCacheHTTPTestSuite) SetupTest() {
	suite.server = mockserver.NewMockTwelveDataServer()
	suite.server.RequireAPIKey("key")

	client := provider.NewTwelveDataClient(suite.server.URL(), time.Second)
	cache, err := NewHistoryCache(HistoryCacheConfig{APIKey: "key"}, client)
	suite.Require().NoError(err)
	suite.cache = cache
}

func (suite *HistoryCacheHTTPTestSuite) TearDownTest() {
	suite.cache.Close()
	suite.server.Close()
}

func (suite *HistoryCacheHTTPTestSuite) TestOldestFirstAndFetchedOnce() {
	bars := mocks.GenerateBars(40)
	suite.server.SetSeries("AAPL", bars)

	for i := 0; i < 3; i++ {
		got, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 30)
		suite.Require().NoError(err)
		suite.Equal(bars[10:], got)
	}

	suite.Equal(1, suite.server.RequestCount())
}

func (suite *HistoryCacheHTTPTestSuite) TestRefreshReplacesEntryAndDropsStaleKeys() {
	bars := mocks.GenerateBars(40)
	suite.server.SetSeries("AAPL", bars)

	_, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.Require().NoError(err)
	_, err = suite.cache.Get(context.Background(), "AAPL", types.IntervalWeekly, 10)
	suite.Require().NoError(err)

	updated := types.CloneBars(bars)
	updated[len(updated)-1].Close = updated[len(updated)-1].High
	suite.server.SetSeries("AAPL", updated)

	got, err := suite.cache.Refresh(context.Background(), "aapl", types.IntervalDaily, 5)
	suite.Require().NoError(err)
	suite.Equal(updated[35:], got)
	suite.Equal(3, suite.server.RequestCount())

	stored, ok := suite.cache.Peek(types.CacheKey{Symbol: "AAPL", Interval: types.IntervalDaily, OutputSize: 5})
	suite.Require().True(ok)
	suite.Equal(updated[35:], stored)

	_, ok = suite.cache.Peek(types.CacheKey{Symbol: "AAPL", Interval: types.IntervalWeekly, OutputSize: 10})
	suite.False(ok)
}

func (suite *HistoryCacheHTTPTestSuite) TestFailedRefreshKeepsEntry() {
	bars := mocks.GenerateBars(40)
	suite.server.SetSeries("AAPL", bars)

	_, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.Require().NoError(err)
	_, err = suite.cache.Get(context.Background(), "AAPL", types.IntervalWeekly, 10)
	suite.Require().NoError(err)

	suite.server.SetFailure("AAPL", "rate limited")

	_, err = suite.cache.Refresh(context.Background(), "AAPL", types.IntervalDaily, 5)
	suite.True(errors.IsUpstreamError(err))

	stored, ok := suite.cache.Peek(types.CacheKey{Symbol: "AAPL", Interval: types.IntervalDaily, OutputSize: 5})
	suite.Require().True(ok)
	suite.Equal(bars[35:], stored)
	suite.Equal(2, suite.cache.Len())
}

func (suite *HistoryCacheHTTPTestSuite) TestUnknownSymbolIsUpstreamError() {
	_, err := suite.cache.Get(context.Background(), "ZZZZ", types.IntervalDaily, 30)
	suite.True(errors.IsUpstreamError(err))
	suite.Contains(err.Error(), "ZZZZ")
}

func (suite *HistoryCacheHTTPTestSuite) TestMalformedBodyIsTransportError() {
	suite.server.SetGarbage("AAPL")

	_, err := suite.cache.Get(context.Background(), "AAPL", types.IntervalDaily, 30)
	suite.True(errors.IsTransportError(err))
}
