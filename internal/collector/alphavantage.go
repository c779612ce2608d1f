package collector

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"StockAnalyser/internal/model"
)

const (
	alphaVantageURL = "https://www.alphavantage.co/query"
	compactDays     = 100
)

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage daily time
// series in CSV format.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a new fetcher with optional proxy support.
// An empty baseURL selects the public endpoint.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = alphaVantageURL
	}
	return &AlphaVantageFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avMessage is the JSON body returned instead of CSV on errors and quota hits.
type avMessage struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (f *AlphaVantageFetcher) query(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", f.APIKey)
	params.Set("datatype", "csv")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: f.Name(), Code: resp.StatusCode, Body: string(body)}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var msg avMessage
		if err := json.Unmarshal(trimmed, &msg); err != nil {
			return nil, fmt.Errorf("alphavantage decode: %w", err)
		}
		switch {
		case msg.ErrorMessage != "":
			return nil, fmt.Errorf("alphavantage api error: %s", msg.ErrorMessage)
		case msg.Note != "":
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, msg.Note)
		case msg.Information != "" && strings.Contains(strings.ToLower(msg.Information), "premium"):
			return nil, fmt.Errorf("%w: %s", ErrPremiumOnly, msg.Information)
		case msg.Information != "":
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, msg.Information)
		}
		return nil, errors.New("alphavantage: unexpected JSON response")
	}
	return body, nil
}

// FetchDailyBars requests TIME_SERIES_DAILY. The compact output holds the
// latest 100 days, so larger requests ask for the full history. Free keys
// cannot use the full output and get the compact one instead.
func (f *AlphaVantageFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceRecord, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	if days > compactDays {
		params.Set("outputsize", "full")
	} else {
		params.Set("outputsize", "compact")
	}

	body, err := f.query(ctx, params)
	if errors.Is(err, ErrPremiumOnly) && days > compactDays {
		log.WithField("symbol", symbol).Warnf("full history needs a premium key, fetching the latest %d days", compactDays)
		params.Set("outputsize", "compact")
		body, err = f.query(ctx, params)
	}
	if err != nil {
		return nil, err
	}
	records, err := ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", symbol, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("alphavantage: no data returned for %s", symbol)
	}
	return lastN(model.SortAscending(records), days), nil
}

// SymbolMatch is one SYMBOL_SEARCH result.
type SymbolMatch struct {
	Symbol   string
	Name     string
	Type     string
	Region   string
	Currency string
	Score    float64
}

// SearchSymbols looks up listed instruments matching keywords.
func (f *AlphaVantageFetcher) SearchSymbols(ctx context.Context, keywords string) ([]SymbolMatch, error) {
	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", keywords)

	body, err := f.query(ctx, params)
	if err != nil {
		return nil, err
	}

	// symbol,name,type,region,marketOpen,marketClose,timezone,currency,matchScore
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("alphavantage search decode: %w", err)
	}
	var matches []SymbolMatch
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(row[0], "symbol") {
			continue
		}
		if len(row) < 9 {
			return nil, fmt.Errorf("alphavantage search row %d: %w", i+1, ErrNotEnoughColumns)
		}
		score, _ := strconv.ParseFloat(row[8], 64)
		matches = append(matches, SymbolMatch{
			Symbol:   row[0],
			Name:     row[1],
			Type:     row[2],
			Region:   row[3],
			Currency: row[7],
			Score:    score,
		})
	}
	return matches, nil
}
