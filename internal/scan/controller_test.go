package scan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"newsquant/internal/view"
	"newsquant/pkg/newsquant"
)

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, q newsquant.Query) ([]newsquant.Item, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]newsquant.Item), args.Error(1)
}

// recordingRegion keeps every write so tests can check ordering.
type recordingRegion struct {
	view.Buffer
	writes []string
}

func (r *recordingRegion) SetText(msg string) {
	r.writes = append(r.writes, "text:"+msg)
	r.Buffer.SetText(msg)
}

func (r *recordingRegion) SetList(l *view.List) {
	r.writes = append(r.writes, "list")
	r.Buffer.SetList(l)
}

func newController(t *testing.T, s Scanner, region view.Region, opts ...Option) *Controller {
	t.Helper()
	c, err := New(s, Handles{Period: Fixed("1w"), Industry: Fixed("all"), Display: region}, opts...)
	require.NoError(t, err)
	return c
}

func items(n int) []newsquant.Item {
	out := make([]newsquant.Item, n)
	for i := range out {
		out[i] = newsquant.Item{Title: strings.Repeat("x", i+1), Score: float64(i)}
	}
	return out
}

func TestNewFailsFastOnMissingHandles(t *testing.T) {
	s := &MockScanner{}
	region := view.NewBuffer()

	_, err := New(nil, Handles{Period: Fixed("1d"), Display: region})
	assert.ErrorIs(t, err, ErrMissingHandle)

	_, err = New(s, Handles{Display: region})
	assert.ErrorIs(t, err, ErrMissingHandle)

	_, err = New(s, Handles{Period: Fixed("1d")})
	assert.ErrorIs(t, err, ErrMissingHandle)

	c, err := New(s, Handles{Period: Fixed("1d"), Display: region})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestRunScanPopulated(t *testing.T) {
	s := &MockScanner{}
	s.On("Scan", mock.Anything, newsquant.Query{Period: "1w"}).Return(items(3), nil).Once()
	region := &recordingRegion{}
	c := newController(t, s, region)

	require.NoError(t, c.RunScan(context.Background(), "1w", ""))

	assert.Equal(t, []string{"text:Scanning...", "list"}, region.writes)
	require.NotNil(t, region.List())
	assert.Equal(t, 3, region.List().Len())
	for i, card := range region.List().Cards() {
		assert.Equal(t, items(3)[i].Title, card.Title)
	}
	s.AssertExpectations(t)
}

func TestRunScanEmpty(t *testing.T) {
	s := &MockScanner{}
	s.On("Scan", mock.Anything, mock.Anything).Return([]newsquant.Item{}, nil).Once()
	region := &recordingRegion{}
	c := newController(t, s, region)

	require.NoError(t, c.RunScan(context.Background(), "1w", ""))

	assert.Equal(t, []string{"text:Scanning...", "text:No articles found in this timeframe."}, region.writes)
	assert.Nil(t, region.List())
	assert.Equal(t, "No articles found in this timeframe.", region.Text())
}

func TestRunScanRequestFailed(t *testing.T) {
	s := &MockScanner{}
	s.On("Scan", mock.Anything, mock.Anything).
		Return(nil, &newsquant.RequestFailedError{StatusCode: http.StatusInternalServerError}).Once()
	region := &recordingRegion{}
	c := newController(t, s, region)

	err := c.RunScan(context.Background(), "1w", "")

	var rf *newsquant.RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, 500, rf.StatusCode)
	assert.Contains(t, region.Text(), "500")
	assert.Nil(t, region.List())
}

func TestRunScanTransportFailedVerbatim(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")
	s := &MockScanner{}
	s.On("Scan", mock.Anything, mock.Anything).
		Return(nil, &newsquant.TransportFailedError{Err: cause}).Once()
	region := view.NewBuffer()
	c := newController(t, s, region)

	err := c.RunScan(context.Background(), "1w", "")

	var tf *newsquant.TransportFailedError
	require.True(t, errors.As(err, &tf))
	assert.Equal(t, cause.Error(), region.Text())
}

func TestRunScanUntypedErrorBecomesTransportFailure(t *testing.T) {
	s := &MockScanner{}
	s.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
	region := view.NewBuffer()
	c := newController(t, s, region)

	err := c.RunScan(context.Background(), "1w", "")

	var tf *newsquant.TransportFailedError
	require.True(t, errors.As(err, &tf))
	assert.Equal(t, "boom", region.Text())
}

func TestRunScanOmitsAllIndustry(t *testing.T) {
	s := &MockScanner{}
	s.On("Scan", mock.Anything, newsquant.Query{Period: "1d"}).Return(items(1), nil).Once()
	s.On("Scan", mock.Anything, newsquant.Query{Period: "1d", Industry: "tech"}).Return(items(1), nil).Once()
	c := newController(t, s, view.NewBuffer())

	require.NoError(t, c.RunScan(context.Background(), "1d", "all"))
	require.NoError(t, c.RunScan(context.Background(), "1d", "tech"))
	s.AssertExpectations(t)
}

func TestRunScanRejectsUnknownSelection(t *testing.T) {
	s := &MockScanner{}
	region := &recordingRegion{}
	c := newController(t, s, region, WithPeriods("1d", "1w"), WithIndustries("fnb", "tech"))

	err := c.RunScan(context.Background(), "1y", "")
	assert.ErrorIs(t, err, ErrUnknownPeriod)

	err = c.RunScan(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrUnknownPeriod)

	err = c.RunScan(context.Background(), "1d", "energy")
	assert.ErrorIs(t, err, ErrUnknownIndustry)

	assert.Empty(t, region.writes, "display must stay untouched on rejected input")
	s.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}

func TestParseQuery(t *testing.T) {
	opts := []Option{WithPeriods("1d", "1w"), WithIndustries("fnb", "tech")}

	q, err := ParseQuery("1w", "all", opts...)
	require.NoError(t, err)
	assert.Equal(t, newsquant.Query{Period: "1w"}, q)

	q, err = ParseQuery("1d", "tech", opts...)
	require.NoError(t, err)
	assert.Equal(t, newsquant.Query{Period: "1d", Industry: "tech"}, q)

	_, err = ParseQuery("5y", "", opts...)
	assert.ErrorIs(t, err, ErrUnknownPeriod)
	_, err = ParseQuery("", "", opts...)
	assert.ErrorIs(t, err, ErrUnknownPeriod)
	_, err = ParseQuery("1d", "mining", opts...)
	assert.ErrorIs(t, err, ErrUnknownIndustry)

	q, err = ParseQuery("1d", "any", WithAllIndustries("any"))
	require.NoError(t, err)
	assert.Equal(t, newsquant.Query{Period: "1d"}, q)
}

func TestTriggerReadsSelectors(t *testing.T) {
	s := &MockScanner{}
	s.On("Scan", mock.Anything, newsquant.Query{Period: "1m", Industry: "fnb"}).Return(items(2), nil).Once()

	period := NewCycle([]Choice{{Value: "1d"}, {Value: "1w"}, {Value: "1m"}}, "1m")
	industry := NewCycle([]Choice{{Value: "all"}, {Value: "fnb"}}, "fnb")
	region := view.NewBuffer()
	c, err := New(s, Handles{Period: period, Industry: industry, Display: region})
	require.NoError(t, err)

	require.NoError(t, c.Trigger(context.Background()))
	assert.Equal(t, 2, region.List().Len())
	s.AssertExpectations(t)
}

func TestTriggerWithoutIndustrySelector(t *testing.T) {
	s := &MockScanner{}
	s.On("Scan", mock.Anything, newsquant.Query{Period: "1d"}).Return([]newsquant.Item{}, nil).Once()
	c, err := New(s, Handles{Period: Fixed("1d"), Display: view.NewBuffer()})
	require.NoError(t, err)

	require.NoError(t, c.Trigger(context.Background()))
	s.AssertExpectations(t)
}

func TestRerenderDiscardsToggleState(t *testing.T) {
	s := &MockScanner{}
	s.On("Scan", mock.Anything, mock.Anything).Return(items(2), nil).Twice()
	region := view.NewBuffer()
	c := newController(t, s, region)

	require.NoError(t, c.RunScan(context.Background(), "1w", ""))
	first := region.List()
	_, err := first.Toggle(1)
	require.NoError(t, err)

	require.NoError(t, c.RunScan(context.Background(), "1w", ""))
	second := region.List()
	assert.NotSame(t, first, second)
	assert.False(t, second.Expanded(1))
}

func TestBeginCompleteLastResolvedWins(t *testing.T) {
	region := view.NewBuffer()
	c := newController(t, &MockScanner{}, region)

	q1, err := c.Begin("1d", "")
	require.NoError(t, err)
	q2, err := c.Begin("1w", "")
	require.NoError(t, err)
	assert.Equal(t, BusyText, region.Text())

	// The second request resolves first; the first request's late answer
	// still overwrites it.
	outcome, err := c.Complete(q2, items(2), nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomePopulated, outcome)

	outcome, err = c.Complete(q1, nil, &newsquant.RequestFailedError{StatusCode: 503})
	require.Error(t, err)
	assert.Equal(t, OutcomeRequestFailed, outcome)
	assert.Equal(t, "HTTP 503", region.Text())
	assert.Nil(t, region.List())
}

func TestCompleteLogsCycle(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c := newController(t, &MockScanner{}, view.NewBuffer(), WithLogger(logger))

	_, err := c.Complete(newsquant.Query{Period: "1w"}, items(2), nil)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "scan rendered", entry.Message)
	assert.Equal(t, 2, entry.Data["items"])
	assert.Equal(t, "1w", entry.Data["period"])
	assert.NotEmpty(t, entry.Data["cycle"])
}

func TestRunScanAgainstHTTPServer(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	region := view.NewBuffer()
	c := newController(t, newsquant.NewClient(srv.URL), region)

	err := c.RunScan(context.Background(), "1w", "all")
	require.Error(t, err)
	assert.Equal(t, "period=1w", gotQuery)
	assert.Contains(t, region.Text(), "500")
	assert.Nil(t, region.List())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "empty", OutcomeEmpty.String())
	assert.Equal(t, "populated", OutcomePopulated.String())
	assert.Equal(t, "request_failed", OutcomeRequestFailed.String())
	assert.Equal(t, "transport_failed", OutcomeTransportFailed.String())
	assert.Equal(t, "none", OutcomeNone.String())
}
