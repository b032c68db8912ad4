package watchlist

import (
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-chart/internal/metrics"
	"github.com/rxtech-lab/argo-chart/mocks"
	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

type WatchlistTestSuite struct {
	suite.Suite
	store *MemoryStore
	list  *Watchlist
}

func TestWatchlistSuite(t *testing.T) {
	suite.Run(t, new(WatchlistTestSuite))
}

func (suite *WatchlistTestSuite) SetupTest() {
	suite.store = NewMemoryStore()
	suite.list = New(suite.store)
	suite.Require().NoError(suite.list.Load())
}

func (suite *WatchlistTestSuite) stored() string {
	raw, ok, err := suite.store.Get(StorageKey)
	suite.Require().NoError(err)
	suite.Require().True(ok)

	return raw
}

func (suite *WatchlistTestSuite) TestEmptyOnFirstLoad() {
	suite.Equal([]string{}, suite.list.List())
	suite.Equal(0, suite.list.Len())
}

func (suite *WatchlistTestSuite) TestAddNormalizesAndPersists() {
	added, err := suite.list.Add(" aapl ")
	suite.NoError(err)
	suite.True(added)

	added, err = suite.list.Add("MSFT")
	suite.NoError(err)
	suite.True(added)

	suite.Equal([]string{"AAPL", "MSFT"}, suite.list.List())
	suite.Equal(`["AAPL","MSFT"]`, suite.stored())
	suite.True(suite.list.Contains("aapl"))
}

func (suite *WatchlistTestSuite) TestAddIgnoresBlankAndDuplicates() {
	_, err := suite.list.Add("AAPL")
	suite.Require().NoError(err)

	added, err := suite.list.Add("aapl")
	suite.NoError(err)
	suite.False(added)

	added, err = suite.list.Add("   ")
	suite.NoError(err)
	suite.False(added)

	suite.Equal([]string{"AAPL"}, suite.list.List())
}

func (suite *WatchlistTestSuite) TestRemove() {
	for _, s := range []string{"AAPL", "MSFT", "TSLA"} {
		_, err := suite.list.Add(s)
		suite.Require().NoError(err)
	}

	removed, err := suite.list.Remove("msft")
	suite.NoError(err)
	suite.True(removed)

	removed, err = suite.list.Remove("MSFT")
	suite.NoError(err)
	suite.False(removed)

	suite.Equal([]string{"AAPL", "TSLA"}, suite.list.List())
	suite.Equal(`["AAPL","TSLA"]`, suite.stored())
}

func (suite *WatchlistTestSuite) TestListIsACopy() {
	_, err := suite.list.Add("AAPL")
	suite.Require().NoError(err)

	symbols := suite.list.List()
	symbols[0] = "HACK"

	suite.Equal([]string{"AAPL"}, suite.list.List())
}

func (suite *WatchlistTestSuite) TestLoadRestoresStoredList() {
	suite.Require().NoError(suite.store.Set(StorageKey, `["nvda","AAPL","NVDA",""]`))

	list := New(suite.store)
	suite.Require().NoError(list.Load())
	suite.Equal([]string{"NVDA", "AAPL"}, list.List())
}

func (suite *WatchlistTestSuite) TestLoadCorruptValueStartsEmpty() {
	suite.Require().NoError(suite.store.Set(StorageKey, `{not json`))

	list := New(suite.store)
	suite.NoError(list.Load())
	suite.Equal([]string{}, list.List())

	// The next change overwrites the corrupt value.
	_, err := list.Add("AAPL")
	suite.NoError(err)
	suite.Equal(`["AAPL"]`, suite.stored())
}

func (suite *WatchlistTestSuite) TestMetricsTrackSize() {
	m := metrics.NewMetrics()
	list := New(NewMemoryStore(), WithMetrics(m))
	suite.Require().NoError(list.Load())

	_, err := list.Add("AAPL")
	suite.Require().NoError(err)
	_, err = list.Add("MSFT")
	suite.Require().NoError(err)
	_, err = list.Remove("AAPL")
	suite.Require().NoError(err)

	suite.Equal(1.0, testutil.ToFloat64(m.WatchlistItems))
}

type WatchlistStoreFailureTestSuite struct {
	suite.Suite
	ctrl  *gomock.Controller
	store *mocks.MockStore
}

func TestWatchlistStoreFailureSuite(t *testing.T) {
	suite.Run(t, new(WatchlistStoreFailureTestSuite))
}

func (suite *WatchlistStoreFailureTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.store = mocks.NewMockStore(suite.ctrl)
}

func (suite *WatchlistStoreFailureTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *WatchlistStoreFailureTestSuite) TestLoadReadError() {
	suite.store.EXPECT().Get(StorageKey).Return("", false, stderrors.New("disk gone"))

	err := New(suite.store).Load()
	suite.True(errors.HasCode(err, errors.ErrCodeWatchlistStore))
}

func (suite *WatchlistStoreFailureTestSuite) TestFailedWriteLeavesListUnchanged() {
	gomock.InOrder(
		suite.store.EXPECT().Get(StorageKey).Return(`["AAPL"]`, true, nil),
		suite.store.EXPECT().Set(StorageKey, `["AAPL","MSFT"]`).Return(stderrors.New("read-only")),
		suite.store.EXPECT().Set(StorageKey, `[]`).Return(stderrors.New("read-only")),
	)

	list := New(suite.store)
	suite.Require().NoError(list.Load())

	added, err := list.Add("MSFT")
	suite.False(added)
	suite.True(errors.HasCode(err, errors.ErrCodeWatchlistStore))

	removed, err := list.Remove("AAPL")
	suite.False(removed)
	suite.True(errors.HasCode(err, errors.ErrCodeWatchlistStore))

	suite.Equal([]string{"AAPL"}, list.List())
}
