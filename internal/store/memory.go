package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"StockAnalyser/internal/model"
)

type memoryStock struct {
	id      int64
	stock   model.Stock
	records map[string]model.PriceRecord
}

// MemoryStore is a Store held entirely in memory, used for seeded data and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	stocks map[string]*memoryStock
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stocks: make(map[string]*memoryStock)}
}

func (m *MemoryStore) InitSchema(_ context.Context) error { return nil }

func (m *MemoryStore) AddStock(_ context.Context, symbol, name, currency string) (int64, error) {
	if symbol == "" {
		return 0, errors.New("add stock: empty symbol")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stocks[symbol]; ok {
		s.stock.Name, s.stock.Currency = name, currency
		return s.id, nil
	}
	m.nextID++
	m.stocks[symbol] = &memoryStock{
		id:      m.nextID,
		stock:   model.Stock{Symbol: symbol, Name: name, Currency: currency},
		records: make(map[string]model.PriceRecord),
	}
	return m.nextID, nil
}

func (m *MemoryStore) AppendRecord(ctx context.Context, symbol string, record model.PriceRecord) error {
	_, err := m.AppendRecords(ctx, symbol, []model.PriceRecord{record})
	return err
}

func (m *MemoryStore) AppendRecords(_ context.Context, symbol string, records []model.PriceRecord) (int, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stocks[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	for _, r := range records {
		s.records[r.Date.Format(model.DateLayout)] = r
	}
	return len(records), nil
}

func (m *MemoryStore) LoadSeries(_ context.Context, symbol string) ([]model.PriceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stocks[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	return s.series(), nil
}

func (s *memoryStock) series() []model.PriceRecord {
	out := make([]model.PriceRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (m *MemoryStore) Stock(_ context.Context, symbol string) (*model.Stock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stocks[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	stock := s.stock
	stock.History = s.series()
	return &stock, nil
}

func (m *MemoryStore) Symbols(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.stocks))
	for symbol := range m.stocks {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (m *MemoryStore) Close() error { return nil }
