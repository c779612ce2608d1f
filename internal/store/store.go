package store

import (
	"context"
	"errors"

	"StockAnalyser/internal/model"
)

// ErrStockNotFound is returned for operations on a symbol that was never added.
var ErrStockNotFound = errors.New("stock not found")

// Store persists stocks and their daily price history.
type Store interface {
	InitSchema(ctx context.Context) error

	// AddStock registers symbol (or updates its name and currency) and
	// returns its id.
	AddStock(ctx context.Context, symbol, name, currency string) (int64, error)

	// AppendRecord stores one record for symbol. A record with a date that
	// is already stored replaces the stored one.
	AppendRecord(ctx context.Context, symbol string, record model.PriceRecord) error
	AppendRecords(ctx context.Context, symbol string, records []model.PriceRecord) (int, error)

	// LoadSeries returns the stored history of symbol, oldest first.
	LoadSeries(ctx context.Context, symbol string) ([]model.PriceRecord, error)
	Stock(ctx context.Context, symbol string) (*model.Stock, error)
	Symbols(ctx context.Context) ([]string, error)

	Close() error
}
