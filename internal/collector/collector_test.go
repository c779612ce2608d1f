package collector

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalyser/internal/model"
	"StockAnalyser/internal/store"
)

type flakyFetcher struct {
	calls    atomic.Int32
	failures int32
	err      error
	next     Fetcher
}

func (f *flakyFetcher) Name() string { return "flaky" }

func (f *flakyFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceRecord, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, f.err
	}
	return f.next.FetchDailyBars(ctx, symbol, days)
}

func newTestCollector(f Fetcher) (*Collector, *store.MemoryStore) {
	st := store.NewMemoryStore()
	c := NewCollector(f, st)
	c.RetryInterval = time.Millisecond
	return c, st
}

func TestCollector_Import(t *testing.T) {
	end := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)
	c, st := newTestCollector(&MockFetcher{Price: 100, End: end})

	res, err := c.Import(context.Background(), "IBM", 60)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Symbol: "IBM", Fetched: 60, Stored: 60}, res)

	series, err := st.LoadSeries(context.Background(), "IBM")
	require.NoError(t, err)
	require.Len(t, series, 60)
	assert.Equal(t, end, series[59].Date)
	for _, r := range series {
		assert.NotEqual(t, time.Saturday, r.Date.Weekday())
		assert.NotEqual(t, time.Sunday, r.Date.Weekday())
	}

	// a second import of the same window only replaces rows
	_, err = c.Import(context.Background(), "IBM", 60)
	require.NoError(t, err)
	series, err = st.LoadSeries(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Len(t, series, 60)
}

func TestCollector_ImportDropsInvalidRecords(t *testing.T) {
	good := model.PriceRecord{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100}
	bad := good
	bad.Date = good.Date.AddDate(0, 0, 1)
	bad.Low = 12

	c, st := newTestCollector(&MockFetcher{DailyData: []model.PriceRecord{good, bad}})
	res, err := c.Import(context.Background(), "IBM", 10)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Symbol: "IBM", Fetched: 2, Stored: 1, Dropped: 1}, res)

	series, err := st.LoadSeries(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, []model.PriceRecord{good}, series)
}

func TestCollector_RetriesTemporaryErrors(t *testing.T) {
	f := &flakyFetcher{
		failures: 2,
		err:      &StatusError{Provider: "flaky", Code: http.StatusServiceUnavailable},
		next:     &MockFetcher{Price: 50},
	}
	c, _ := newTestCollector(f)

	res, err := c.Import(context.Background(), "IBM", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Stored)
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestCollector_GivesUpAfterRetries(t *testing.T) {
	f := &flakyFetcher{
		failures: 100,
		err:      &StatusError{Provider: "flaky", Code: http.StatusTooManyRequests},
		next:     &MockFetcher{Price: 50},
	}
	c, _ := newTestCollector(f)
	c.Retries = 2

	_, err := c.Import(context.Background(), "IBM", 5)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestCollector_PermanentErrorNotRetried(t *testing.T) {
	f := &flakyFetcher{
		failures: 100,
		err:      ErrInvalidPrice,
		next:     &MockFetcher{Price: 50},
	}
	c, _ := newTestCollector(f)

	_, err := c.Import(context.Background(), "IBM", 5)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Equal(t, int32(1), f.calls.Load())
}

type symbolFetcher struct {
	failing string
}

func (f *symbolFetcher) Name() string { return "symbols" }

func (f *symbolFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceRecord, error) {
	if symbol == f.failing {
		return nil, errors.New("unknown symbol " + symbol)
	}
	return (&MockFetcher{Price: 100}).FetchDailyBars(ctx, symbol, days)
}

func TestCollector_ImportAll(t *testing.T) {
	c, st := newTestCollector(&symbolFetcher{failing: "BAD"})
	stocks := []model.Stock{
		{Symbol: "IBM", Name: "IBM", Currency: "USD"},
		{Symbol: "BAD"},
		{Symbol: "SAP", Name: "SAP SE", Currency: "EUR"},
	}

	results, err := c.ImportAll(context.Background(), stocks, 30, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown symbol BAD")

	require.Len(t, results, 3)
	assert.Equal(t, 30, results[0].Stored)
	assert.Equal(t, "BAD", results[1].Symbol)
	assert.Zero(t, results[1].Stored)
	assert.Equal(t, 30, results[2].Stored)

	sap, err := st.Stock(context.Background(), "SAP")
	require.NoError(t, err)
	assert.Equal(t, "SAP SE", sap.Name)
	assert.Equal(t, "EUR", sap.Currency)
	assert.Len(t, sap.History, 30)
}

func TestCollector_ImportFile(t *testing.T) {
	c, st := newTestCollector(&MockFetcher{})

	res, err := c.ImportFile(context.Background(), model.Stock{Symbol: "IBM", Name: "IBM", Currency: "USD"}, "testdata/daily_IBM.csv")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Symbol: "IBM", Fetched: 6, Stored: 6}, res)

	series, err := st.LoadSeries(context.Background(), "IBM")
	require.NoError(t, err)
	require.Len(t, series, 6)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), series[0].Date)

	res, err = c.ImportFile(context.Background(), model.Stock{Symbol: "IBM"}, "testdata/daily_bad_ohlc.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 1, res.Stored)

	_, err = c.ImportFile(context.Background(), model.Stock{Symbol: "IBM"}, "testdata/missing.csv")
	assert.Error(t, err)
}

func TestCollector_ImportFileRejectsUnorderedDates(t *testing.T) {
	c, st := newTestCollector(&MockFetcher{})

	res, err := c.ImportFile(context.Background(), model.Stock{Symbol: "IBM"}, "testdata/daily_duplicate_date.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnorderedSeries))
	assert.Equal(t, 0, res.Stored)

	series, err := st.LoadSeries(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Empty(t, series)
}
