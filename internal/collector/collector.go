package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"StockAnalyser/internal/model"
	"StockAnalyser/internal/store"
)

// ImportResult summarizes one import run of a symbol.
type ImportResult struct {
	Symbol  string
	Fetched int
	Stored  int
	Dropped int
}

// Collector fetches daily price history and appends it to a store.
type Collector struct {
	Fetcher       Fetcher
	Store         store.Store
	Retries       uint64
	RetryInterval time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, st store.Store) *Collector {
	return &Collector{
		Fetcher:       fetcher,
		Store:         st,
		Retries:       3,
		RetryInterval: 2 * time.Second,
	}
}

// retryable reports whether err is worth another request: transport failures,
// 429/5xx responses and provider quota notes.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

func (c *Collector) fetch(ctx context.Context, symbol string, days int) ([]model.PriceRecord, error) {
	var records []model.PriceRecord
	op := func() error {
		var err error
		records, err = c.Fetcher.FetchDailyBars(ctx, symbol, days)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	if c.RetryInterval > 0 {
		b.InitialInterval = c.RetryInterval
	}
	notify := func(err error, next time.Duration) {
		log.WithField("symbol", symbol).WithError(err).Warnf("%s fetch failed, retrying in %s", c.Fetcher.Name(), next)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, c.Retries), ctx), notify)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	return records, nil
}

// ensureStock adds symbol to the store unless it is already there.
func (c *Collector) ensureStock(ctx context.Context, stock model.Stock) error {
	if stock.Name == "" && stock.Currency == "" {
		if _, err := c.Store.Stock(ctx, stock.Symbol); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrStockNotFound) {
			return err
		}
	}
	_, err := c.Store.AddStock(ctx, stock.Symbol, stock.Name, stock.Currency)
	return err
}

// save drops records that fail validation and appends the rest in one batch.
// A batch with duplicate or out-of-order dates is rejected as a whole.
func (c *Collector) save(ctx context.Context, symbol string, records []model.PriceRecord) (ImportResult, error) {
	result := ImportResult{Symbol: symbol, Fetched: len(records)}
	valid := make([]model.PriceRecord, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			log.WithField("symbol", symbol).Warnf("dropping record: %v", err)
			result.Dropped++
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return result, nil
	}
	if _, err := model.ValidateSeries(valid); err != nil {
		return result, fmt.Errorf("%s: %w", symbol, err)
	}

	n, err := c.Store.AppendRecords(ctx, symbol, model.SortAscending(valid))
	if err != nil {
		return result, fmt.Errorf("store %s: %w", symbol, err)
	}
	result.Stored = n
	return result, nil
}

// Import fetches the latest days of symbol and appends them to the store.
func (c *Collector) Import(ctx context.Context, symbol string, days int) (ImportResult, error) {
	return c.importStock(ctx, model.Stock{Symbol: symbol}, days)
}

func (c *Collector) importStock(ctx context.Context, stock model.Stock, days int) (ImportResult, error) {
	if err := c.ensureStock(ctx, stock); err != nil {
		return ImportResult{Symbol: stock.Symbol}, err
	}
	records, err := c.fetch(ctx, stock.Symbol, days)
	if err != nil {
		return ImportResult{Symbol: stock.Symbol}, err
	}
	result, err := c.save(ctx, stock.Symbol, records)
	if err != nil {
		return result, err
	}
	log.WithField("symbol", stock.Symbol).Infof("imported %d records (%d fetched, %d dropped) from %s",
		result.Stored, result.Fetched, result.Dropped, c.Fetcher.Name())
	return result, nil
}

// ImportAll imports every stock with at most concurrency requests in flight.
// A failing symbol does not stop the others; all failures are combined into
// the returned error.
func (c *Collector) ImportAll(ctx context.Context, stocks []model.Stock, days, concurrency int) ([]ImportResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]ImportResult, len(stocks))
	var (
		mu   sync.Mutex
		errs error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, stock := range stocks {
		i, stock := i, stock
		g.Go(func() error {
			res, err := c.importStock(ctx, stock, days)
			results[i] = res
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

// ImportFile reads a "date,open,high,low,close,volume" CSV file into the store.
func (c *Collector) ImportFile(ctx context.Context, stock model.Stock, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Symbol: stock.Symbol}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return ImportResult{Symbol: stock.Symbol}, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.ensureStock(ctx, stock); err != nil {
		return ImportResult{Symbol: stock.Symbol}, err
	}
	result, err := c.save(ctx, stock.Symbol, records)
	if err != nil {
		return result, err
	}
	log.WithField("symbol", stock.Symbol).Infof("imported %d records from %s (%d dropped)", result.Stored, path, result.Dropped)
	return result, nil
}
