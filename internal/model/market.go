package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the day-granularity layout used for storage and CSV input.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidRecord is returned when a price record violates the OHLCV invariants.
	ErrInvalidRecord = errors.New("invalid price record")

	// ErrUnorderedSeries is returned when series dates are not strictly monotonic.
	ErrUnorderedSeries = errors.New("series dates are not strictly monotonic")
)

// PriceRecord is the OHLCV data of one trading period (usually a day).
type PriceRecord struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Validate checks low <= min(open,close) <= max(open,close) <= high,
// positive prices and a non-negative volume.
func (r PriceRecord) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if r.Open <= 0 || r.High <= 0 || r.Low <= 0 || r.Close <= 0 {
		return fmt.Errorf("%w: %s: prices must be positive", ErrInvalidRecord, r.Date.Format(DateLayout))
	}
	if r.Volume < 0 {
		return fmt.Errorf("%w: %s: negative volume", ErrInvalidRecord, r.Date.Format(DateLayout))
	}
	bodyLow, bodyHigh := r.Open, r.Close
	if bodyLow > bodyHigh {
		bodyLow, bodyHigh = bodyHigh, bodyLow
	}
	if r.Low > bodyLow || bodyHigh > r.High {
		return fmt.Errorf("%w: %s: low=%.4f open=%.4f close=%.4f high=%.4f",
			ErrInvalidRecord, r.Date.Format(DateLayout), r.Low, r.Open, r.Close, r.High)
	}
	return nil
}

// Bullish reports whether the period closed above its open.
func (r PriceRecord) Bullish() bool {
	return r.Close > r.Open
}

// Stock is a listed instrument together with its loaded price history.
type Stock struct {
	Symbol   string
	Name     string
	Currency string
	History  []PriceRecord
}

// Title returns the display name, falling back to the symbol.
func (s *Stock) Title() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Symbol
}
