package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockAnalyser/internal/cache"
	"StockAnalyser/internal/calculator"
	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/config"
	"StockAnalyser/internal/model"
	"StockAnalyser/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "stockchart",
	Short: "stock price history charts with MACD",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "debug logging")
	rootCmd.PersistentFlags().Bool("demo", false, "use an in-memory store seeded with generated prices")
	rootCmd.PersistentFlags().String("config", "", "config file (default $CONFIG_PATH or "+config.DefaultPath+")")
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// app holds the collaborators shared by the subcommands.
type app struct {
	cfg     *config.Config
	store   store.Store
	demo    bool
	closers []func() error
}

func setup(cmd *cobra.Command) (*app, error) {
	cfgFlag, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Path(cfgFlag))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if demo, _ := cmd.Flags().GetBool("demo"); demo {
		log.Info("demo mode: prices are generated and kept in memory")
		st := store.NewMemoryStore()
		return &app{cfg: cfg, store: st, demo: true, closers: []func() error{st.Close}}, nil
	}

	if err := os.MkdirAll(dirOf(cfg.Database.SQLitePath), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.NewSQLiteStore(cmd.Context(), cfg.Database.SQLitePath)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, store: st, closers: []func() error{st.Close}}, nil
}

func dirOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i > 0 {
		return path[:i]
	}
	return "."
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.WithError(err).Warn("close")
		}
	}
}

// fetcher builds the configured data source, wrapped with the Redis cache
// when one is configured and reachable.
func (a *app) fetcher(ctx context.Context) (collector.Fetcher, error) {
	if a.demo {
		return &collector.MockFetcher{Price: 100}, nil
	}
	if err := a.cfg.ValidateDataSource(); err != nil {
		return nil, err
	}

	ds := a.cfg.DataSource
	var f collector.Fetcher
	switch ds.Provider {
	case "alphavantage":
		f = collector.NewAlphaVantageFetcher(ds.BaseURL, ds.APIKey, a.cfg.Proxy)
	case "yahoo":
		f = collector.NewYahooFetcher(ds.BaseURL, a.cfg.Proxy)
	case "mock":
		f = &collector.MockFetcher{Price: 100}
	default:
		return nil, fmt.Errorf("unknown data provider %q", ds.Provider)
	}
	log.Infof("data source: %s", f.Name())

	if a.cfg.Cache.RedisAddr == "" {
		return f, nil
	}
	rc, err := cache.NewRedisCache(ctx, a.cfg.Cache.RedisAddr, a.cfg.Cache.RedisPassword, a.cfg.Cache.RedisDB, a.cfg.Cache.TTL)
	if err != nil {
		log.WithError(err).Warn("redis cache unavailable, fetching without cache")
		return f, nil
	}
	a.closers = append(a.closers, rc.Close)
	return collector.NewCachedFetcher(f, rc), nil
}

func (a *app) collector(ctx context.Context) (*collector.Collector, error) {
	f, err := a.fetcher(ctx)
	if err != nil {
		return nil, err
	}
	c := collector.NewCollector(f, a.store)
	c.Retries = a.cfg.Fetch.Retries
	c.RetryInterval = a.cfg.Fetch.RetryInterval
	return c, nil
}

// loadStock reads symbol from the store, optionally folded into weekly bars.
// In demo mode the symbol is generated first.
func (a *app) loadStock(ctx context.Context, symbol string, weekly bool) (*model.Stock, error) {
	if a.demo {
		c, err := a.collector(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := c.ImportAll(ctx, []model.Stock{a.cfg.Lookup(symbol).Stock()}, a.cfg.Fetch.Days, 1); err != nil {
			return nil, err
		}
	}

	stock, err := a.store.Stock(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(stock.History) == 0 {
		return nil, fmt.Errorf("no price history stored for %s, run import first", symbol)
	}
	if weekly {
		stock.History = calculator.AggregateWeekly(stock.History)
	}
	return stock, nil
}
