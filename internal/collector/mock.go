package collector

import (
	"context"
	"math"
	"time"

	"StockAnalyser/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.PriceRecord
	// End is the date of the last generated bar; zero means today.
	End time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.PriceRecord, error) {
	if m.DailyData != nil {
		return lastN(m.DailyData, days), nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return generateMockBars(m.Price, days, end), nil
}

// generateMockBars produces weekday bars ending at end, following a slow sine
// wave with a small upward drift around basePrice.
func generateMockBars(basePrice float64, count int, end time.Time) []model.PriceRecord {
	if basePrice <= 0 {
		basePrice = 100
	}
	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceRecord, count)
	for i := count - 1; i >= 0; i-- {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, -1)
		}
		p := basePrice * (1 + 0.1*math.Sin(float64(i)/15) + 0.05*float64(i)/float64(count))
		open := p * (1 + 0.004*math.Cos(float64(i)))
		bars[i] = model.PriceRecord{
			Date:   day,
			Open:   open,
			High:   math.Max(open, p) * 1.005,
			Low:    math.Min(open, p) * 0.995,
			Close:  p,
			Volume: 1000000 + int64(i%7)*125000,
		}
		day = day.AddDate(0, 0, -1)
	}
	return bars
}
