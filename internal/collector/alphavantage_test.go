package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalyser/internal/model"
)

func TestAlphaVantageFetcher_FetchDailyBars(t *testing.T) {
	csvBody, err := os.ReadFile("testdata/daily_IBM.csv")
	require.NoError(t, err)

	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/x-download")
		w.Write(csvBody)
	}))
	defer srv.Close()

	f := NewAlphaVantageFetcher(srv.URL, "demo", "")
	records, err := f.FetchDailyBars(context.Background(), "IBM", 4)
	require.NoError(t, err)

	assert.Equal(t, "TIME_SERIES_DAILY", query["function"])
	assert.Equal(t, "IBM", query["symbol"])
	assert.Equal(t, "compact", query["outputsize"])
	assert.Equal(t, "csv", query["datatype"])
	assert.Equal(t, "demo", query["apikey"])

	require.Len(t, records, 4)
	order, err := model.ValidateSeries(records)
	require.NoError(t, err)
	assert.Equal(t, model.Ascending, order)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), records[3].Date)

	_, err = f.FetchDailyBars(context.Background(), "IBM", 365)
	require.NoError(t, err)
	assert.Equal(t, "full", query["outputsize"])
}

func TestAlphaVantageFetcher_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		rateLimit bool
		temporary bool
	}{
		{"quota note", http.StatusOK, `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`, true, false},
		{"daily limit", http.StatusOK, `{"Information": "You have reached the daily rate limit."}`, true, false},
		{"bad symbol", http.StatusOK, `{"Error Message": "Invalid API call."}`, false, false},
		{"server error", http.StatusBadGateway, `upstream down`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewAlphaVantageFetcher(srv.URL, "demo", "").FetchDailyBars(context.Background(), "IBM", 10)
			require.Error(t, err)
			assert.Equal(t, tt.rateLimit, errors.Is(err, ErrRateLimited))
			assert.Equal(t, tt.rateLimit || tt.temporary, retryable(err))
		})
	}
}

const premiumBody = `{"Information": "Thank you for using Alpha Vantage! The outputsize=full parameter value is a premium feature for the TIME_SERIES_DAILY endpoint."}`

func TestAlphaVantageFetcher_FullHistoryFallsBackToCompact(t *testing.T) {
	csvBody, err := os.ReadFile("testdata/daily_IBM.csv")
	require.NoError(t, err)

	var (
		calls atomic.Int32
		mu    sync.Mutex
		sizes []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		size := r.URL.Query().Get("outputsize")
		mu.Lock()
		sizes = append(sizes, size)
		mu.Unlock()
		if size == "full" {
			w.Write([]byte(premiumBody))
			return
		}
		w.Write(csvBody)
	}))
	defer srv.Close()

	c, st := newTestCollector(NewAlphaVantageFetcher(srv.URL, "demo", ""))
	res, err := c.Import(context.Background(), "IBM", 365)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Symbol: "IBM", Fetched: 6, Stored: 6}, res)
	assert.Equal(t, int32(2), calls.Load())
	mu.Lock()
	assert.Equal(t, []string{"full", "compact"}, sizes)
	mu.Unlock()

	series, err := st.LoadSeries(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Len(t, series, 6)
}

func TestAlphaVantageFetcher_PremiumIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(premiumBody))
	}))
	defer srv.Close()

	c, _ := newTestCollector(NewAlphaVantageFetcher(srv.URL, "demo", ""))
	_, err := c.Import(context.Background(), "IBM", 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPremiumOnly))
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.False(t, retryable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAlphaVantageFetcher_SearchSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SYMBOL_SEARCH", r.URL.Query().Get("function"))
		assert.Equal(t, "microsoft", r.URL.Query().Get("keywords"))
		w.Write([]byte("symbol,name,type,region,marketOpen,marketClose,timezone,currency,matchScore\r\n" +
			"MSFT,Microsoft Corporation,Equity,United States,09:30,16:00,UTC-04,USD,0.6154\r\n" +
			"MSF.DEX,Microsoft Corporation,Equity,XETRA,08:00,20:00,UTC+02,EUR,0.5000\r\n"))
	}))
	defer srv.Close()

	matches, err := NewAlphaVantageFetcher(srv.URL, "demo", "").SearchSymbols(context.Background(), "microsoft")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, SymbolMatch{
		Symbol:   "MSFT",
		Name:     "Microsoft Corporation",
		Type:     "Equity",
		Region:   "United States",
		Currency: "USD",
		Score:    0.6154,
	}, matches[0])
	assert.Equal(t, "EUR", matches[1].Currency)
}
