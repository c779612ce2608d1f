package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"StockAnalyser/internal/model"
)

// Cache is a byte-oriented key/value cache with server-side expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedFetcher serves repeated requests of the same day from Cache before
// falling back to the wrapped Fetcher. Cache failures are logged and ignored.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   Cache
	Now     func() time.Time
}

func NewCachedFetcher(fetcher Fetcher, cache Cache) *CachedFetcher {
	return &CachedFetcher{Fetcher: fetcher, Cache: cache, Now: time.Now}
}

func (f *CachedFetcher) Name() string { return f.Fetcher.Name() }

func (f *CachedFetcher) key(symbol string, days int) string {
	return fmt.Sprintf("bars:%s:%s:%d:%s", f.Fetcher.Name(), symbol, days, f.Now().UTC().Format(model.DateLayout))
}

func (f *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceRecord, error) {
	key := f.key(symbol, days)
	logger := log.WithField("symbol", symbol).WithField("key", key)

	data, ok, err := f.Cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.WithError(err).Warn("cache get failed")
	case ok:
		var records []model.PriceRecord
		if err := json.Unmarshal(data, &records); err == nil {
			logger.Debugf("cache hit, %d records", len(records))
			return records, nil
		}
		logger.Warn("cache entry is corrupt, refetching")
	}

	records, err := f.Fetcher.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := f.Cache.Set(ctx, key, data); err != nil {
			logger.WithError(err).Warn("cache set failed")
		}
	}
	return records, nil
}
