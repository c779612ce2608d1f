package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"StockAnalyser/internal/model"
)

// ErrRateLimited is returned when a data provider refuses a request because
// the API quota is exhausted.
var ErrRateLimited = errors.New("rate limited by data provider")

// ErrPremiumOnly is returned when a request needs a paid plan. Retrying it
// never helps.
var ErrPremiumOnly = errors.New("premium feature of data provider")

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	// FetchDailyBars returns at most days daily records of symbol, oldest first.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceRecord, error)
	Name() string
}

// StatusError is returned for non-200 provider responses.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Provider, e.Code, e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// lastN keeps the newest n records of an oldest-first slice.
func lastN(records []model.PriceRecord, n int) []model.PriceRecord {
	if n > 0 && len(records) > n {
		return records[len(records)-n:]
	}
	return records
}
