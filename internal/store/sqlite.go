package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"StockAnalyser/internal/model"
)

type stockRow struct {
	ID       int64  `db:"id"`
	Symbol   string `db:"symbol"`
	Name     string `db:"name"`
	Currency string `db:"currency"`
}

type priceRow struct {
	StockID int64   `db:"stock_id"`
	Date    string  `db:"date"`
	Open    float64 `db:"open"`
	High    float64 `db:"high"`
	Low     float64 `db:"low"`
	Close   float64 `db:"close"`
	Volume  int64   `db:"volume"`
}

func newPriceRow(stockID int64, r model.PriceRecord) priceRow {
	return priceRow{
		StockID: stockID,
		Date:    r.Date.Format(model.DateLayout),
		Open:    r.Open,
		High:    r.High,
		Low:     r.Low,
		Close:   r.Close,
		Volume:  r.Volume,
	}
}

func (p priceRow) record() (model.PriceRecord, error) {
	date, err := time.Parse(model.DateLayout, p.Date)
	if err != nil {
		return model.PriceRecord{}, fmt.Errorf("parse stored date %q: %w", p.Date, err)
	}
	return model.PriceRecord{
		Date:   date,
		Open:   p.Open,
		High:   p.High,
		Low:    p.Low,
		Close:  p.Close,
		Volume: p.Volume,
	}, nil
}

const upsertPriceSQL = `INSERT INTO prices (stock_id, date, open, high, low, close, volume)
	VALUES (:stock_id, :date, :open, :high, :low, :close, :volume)
	ON CONFLICT(stock_id, date) DO UPDATE SET
		open = excluded.open,
		high = excluded.high,
		low = excluded.low,
		close = excluded.close,
		volume = excluded.volume`

// SQLiteStore keeps stocks and prices in a SQLite database file.
type SQLiteStore struct {
	db *sqlx.DB
	mu sync.Mutex
}

// sqlitePragmas are applied by the driver to every pooled connection.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// NewSQLiteStore opens (or creates) the database at dbPath and creates the schema.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?"+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.Infof("sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stocks (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol   TEXT NOT NULL UNIQUE,
			name     TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS prices (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			stock_id INTEGER NOT NULL REFERENCES stocks(id) ON DELETE CASCADE,
			date     TEXT NOT NULL,
			open     REAL NOT NULL,
			high     REAL NOT NULL,
			low      REAL NOT NULL,
			close    REAL NOT NULL,
			volume   INTEGER NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_prices_stock_date ON prices(stock_id, date)`,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) AddStock(ctx context.Context, symbol, name, currency string) (int64, error) {
	if symbol == "" {
		return 0, errors.New("add stock: empty symbol")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO stocks (symbol, name, currency) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET name = excluded.name, currency = excluded.currency`,
		symbol, name, currency)
	if err != nil {
		return 0, fmt.Errorf("add stock %s: %w", symbol, err)
	}

	var id int64
	if err := s.db.GetContext(ctx, &id, `SELECT id FROM stocks WHERE symbol = ?`, symbol); err != nil {
		return 0, fmt.Errorf("add stock %s: %w", symbol, err)
	}
	return id, nil
}

func (s *SQLiteStore) stockRow(ctx context.Context, symbol string) (stockRow, error) {
	var row stockRow
	err := s.db.GetContext(ctx, &row, `SELECT id, symbol, name, currency FROM stocks WHERE symbol = ?`, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return row, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	if err != nil {
		return row, fmt.Errorf("query stock %s: %w", symbol, err)
	}
	return row, nil
}

func (s *SQLiteStore) AppendRecord(ctx context.Context, symbol string, record model.PriceRecord) error {
	_, err := s.AppendRecords(ctx, symbol, []model.PriceRecord{record})
	return err
}

// AppendRecords upserts records in a single transaction. Nothing is stored
// when any record is invalid.
func (s *SQLiteStore) AppendRecords(ctx context.Context, symbol string, records []model.PriceRecord) (int, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stock, err := s.stockRow(ctx, symbol)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.NamedExecContext(ctx, upsertPriceSQL, newPriceRow(stock.ID, r)); err != nil {
			return 0, fmt.Errorf("append %s %s: %w", symbol, r.Date.Format(model.DateLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

func (s *SQLiteStore) LoadSeries(ctx context.Context, symbol string) ([]model.PriceRecord, error) {
	stock, err := s.stockRow(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return s.loadPrices(ctx, stock.ID)
}

func (s *SQLiteStore) loadPrices(ctx context.Context, stockID int64) ([]model.PriceRecord, error) {
	var rows []priceRow
	err := s.db.SelectContext(ctx, &rows, `SELECT stock_id, date, open, high, low, close, volume
		FROM prices WHERE stock_id = ? ORDER BY date ASC`, stockID)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}

	series := make([]model.PriceRecord, 0, len(rows))
	for _, row := range rows {
		r, err := row.record()
		if err != nil {
			return nil, err
		}
		series = append(series, r)
	}
	return series, nil
}

func (s *SQLiteStore) Stock(ctx context.Context, symbol string) (*model.Stock, error) {
	row, err := s.stockRow(ctx, symbol)
	if err != nil {
		return nil, err
	}
	history, err := s.loadPrices(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return &model.Stock{
		Symbol:   row.Symbol,
		Name:     row.Name,
		Currency: row.Currency,
		History:  history,
	}, nil
}

func (s *SQLiteStore) Symbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := s.db.SelectContext(ctx, &symbols, `SELECT symbol FROM stocks ORDER BY symbol`); err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	return symbols, nil
}

func (s *SQLiteStore) Close() error {
	log.Info("closing sqlite store")
	return s.db.Close()
}
