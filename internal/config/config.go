package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockAnalyser/internal/calculator"
	"StockAnalyser/internal/chart"
	"StockAnalyser/internal/model"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Providers lists the supported data_source.provider values.
var Providers = []string{"alphavantage", "yahoo", "mock"}

// StockConfig is one entry of the symbols list.
type StockConfig struct {
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

func (s StockConfig) Stock() model.Stock {
	return model.Stock{Symbol: s.Symbol, Name: s.Name, Currency: s.Currency}
}

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	DataSource struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"data_source"`
	Symbols []StockConfig `yaml:"symbols"`
	Fetch   struct {
		Days          int           `yaml:"days"`
		Retries       uint64        `yaml:"retries"`
		RetryInterval time.Duration `yaml:"retry_interval"`
		Concurrency   int           `yaml:"concurrency"`
	} `yaml:"fetch"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Chart struct {
		Width         int    `yaml:"width"`
		Height        int    `yaml:"height"`
		Span          int    `yaml:"span"`
		ViewStateFile string `yaml:"view_state_file"`
		ShowMACD      *bool  `yaml:"show_macd"`
	} `yaml:"chart"`
	MACD struct {
		Short  int `yaml:"short"`
		Long   int `yaml:"long"`
		Signal int `yaml:"signal"`
	} `yaml:"macd"`
	Proxy string `yaml:"proxy"`
	Log   struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Path resolves the config file location.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads a .env file if present, then config from a YAML file, then
// applies environment variable overrides and defaults. A missing YAML file is
// not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = db
		}
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stocks.db"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "alphavantage"
	}
	if c.Fetch.Days == 0 {
		c.Fetch.Days = 365
	}
	if c.Fetch.Retries == 0 {
		c.Fetch.Retries = 3
	}
	if c.Fetch.RetryInterval == 0 {
		c.Fetch.RetryInterval = 15 * time.Second
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 1
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 12 * time.Hour
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 30 22 * * 1-5"
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1200
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 700
	}
	if c.Chart.Span == 0 {
		c.Chart.Span = chart.DefaultSpan
	}
	if c.Chart.ShowMACD == nil {
		show := true
		c.Chart.ShowMACD = &show
	}
	if c.MACD.Short == 0 {
		c.MACD.Short = calculator.DefaultShortPeriod
	}
	if c.MACD.Long == 0 {
		c.MACD.Long = calculator.DefaultLongPeriod
	}
	if c.MACD.Signal == 0 {
		c.MACD.Signal = calculator.DefaultSignalPeriod
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// MACDConfig returns the configured indicator periods.
func (c *Config) MACDConfig() calculator.MACD {
	return calculator.MACD{ShortPeriod: c.MACD.Short, LongPeriod: c.MACD.Long, SignalPeriod: c.MACD.Signal}
}

// ChartOptions returns the layout options for rendering.
func (c *Config) ChartOptions() chart.Options {
	return chart.Options{
		Width:    c.Chart.Width,
		Height:   c.Chart.Height,
		ShowMACD: c.Chart.ShowMACD == nil || *c.Chart.ShowMACD,
		MACD:     c.MACDConfig(),
		Theme:    chart.DefaultTheme,
	}
}

// Stocks returns the configured symbols as stocks without history.
func (c *Config) Stocks() []model.Stock {
	stocks := make([]model.Stock, len(c.Symbols))
	for i, s := range c.Symbols {
		stocks[i] = s.Stock()
	}
	return stocks
}

// Lookup returns the configured entry for symbol, or a bare entry when the
// symbol is not listed.
func (c *Config) Lookup(symbol string) StockConfig {
	for _, s := range c.Symbols {
		if s.Symbol == symbol {
			return s
		}
	}
	return StockConfig{Symbol: symbol}
}

// Validate checks the settings every command depends on. Credentials are
// checked separately by ValidateDataSource, since rendering from the local
// store needs none.
func (c *Config) Validate() error {
	known := false
	for _, p := range Providers {
		if c.DataSource.Provider == p {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("data_source.provider %q is not one of %v", c.DataSource.Provider, Providers)
	}
	if c.Fetch.Days <= 0 {
		return fmt.Errorf("fetch.days must be positive")
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be positive")
	}
	for i, s := range c.Symbols {
		if s.Symbol == "" {
			return fmt.Errorf("symbols[%d].symbol is required", i)
		}
	}
	if err := c.MACDConfig().Validate(); err != nil {
		return fmt.Errorf("macd: %w", err)
	}
	if c.Chart.Width < chart.MinWidth || c.Chart.Height < chart.MinHeight {
		return fmt.Errorf("chart size %dx%d is below the minimum %dx%d", c.Chart.Width, c.Chart.Height, chart.MinWidth, chart.MinHeight)
	}
	return nil
}

// ValidateDataSource checks that the configured provider can be queried.
func (c *Config) ValidateDataSource() error {
	if c.DataSource.Provider == "alphavantage" && c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key (or ALPHAVANTAGE_API_KEY) is required for alphavantage")
	}
	return nil
}
