package calculator

import (
	"errors"
	"fmt"

	"StockAnalyser/internal/model"
)

// ErrInvalidConfiguration is returned when MACD periods are not positive or
// the long period is shorter than the short period.
var ErrInvalidConfiguration = errors.New("invalid MACD configuration")

const (
	DefaultShortPeriod  = 12
	DefaultLongPeriod   = 26
	DefaultSignalPeriod = 9
)

// MACD computes the Moving Average Convergence/Divergence indicator.
// The zero value is not usable; start from NewMACD.
type MACD struct {
	ShortPeriod  int
	LongPeriod   int
	SignalPeriod int
}

// NewMACD returns the conventional 12/26/9 configuration.
func NewMACD() MACD {
	return MACD{
		ShortPeriod:  DefaultShortPeriod,
		LongPeriod:   DefaultLongPeriod,
		SignalPeriod: DefaultSignalPeriod,
	}
}

// Validate rejects configurations that would index the short EMA at a
// negative offset. Equal short and long periods are accepted and yield a
// zero MACD line.
func (m MACD) Validate() error {
	if m.ShortPeriod <= 0 || m.LongPeriod <= 0 || m.SignalPeriod <= 0 {
		return fmt.Errorf("%w: periods must be positive (short=%d long=%d signal=%d)",
			ErrInvalidConfiguration, m.ShortPeriod, m.LongPeriod, m.SignalPeriod)
	}
	if m.LongPeriod < m.ShortPeriod {
		return fmt.Errorf("%w: long period %d is shorter than short period %d",
			ErrInvalidConfiguration, m.LongPeriod, m.ShortPeriod)
	}
	return nil
}

// WarmUp is the number of leading records that produce no MACD point.
func (m MACD) WarmUp() int {
	return m.LongPeriod + m.SignalPeriod - 2
}

// Compute returns the MACD points of series, computed over close prices in
// the given order. The last point is aligned to the last record. A series
// shorter than the warm-up window yields an empty result, not an error.
func (m MACD) Compute(series []model.PriceRecord) ([]model.MACDPoint, error) {
	return m.ComputeCloses(Closes(series))
}

// ComputeCloses is Compute over a plain close price sequence.
func (m MACD) ComputeCloses(closes []float64) ([]model.MACDPoint, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	emaShort := EMA(closes, m.ShortPeriod)
	emaLong := EMA(closes, m.LongPeriod)

	// emaLong starts LongPeriod-ShortPeriod values later than emaShort.
	offset := m.LongPeriod - m.ShortPeriod
	n := len(emaShort)
	if len(emaLong) < n {
		n = len(emaLong)
	}
	macdLine := make([]float64, n)
	for i := 0; i < n; i++ {
		macdLine[i] = emaShort[i+offset] - emaLong[i]
	}

	signalLine := EMA(macdLine, m.SignalPeriod)
	points := make([]model.MACDPoint, len(signalLine))
	signalOffset := len(macdLine) - len(signalLine)
	first := len(closes) - len(signalLine)
	for i, signal := range signalLine {
		macd := macdLine[i+signalOffset]
		points[i] = model.MACDPoint{
			Index:     first + i,
			MACD:      macd,
			Signal:    signal,
			Histogram: macd - signal,
		}
	}
	return points, nil
}

// Window computes MACD over the whole series and returns the points aligned
// to records inside the inclusive window [start, end]. The result may be
// empty when the window lies entirely in the warm-up period.
func (m MACD) Window(series []model.PriceRecord, start, end int) ([]model.MACDPoint, error) {
	if err := checkWindow(len(series), start, end); err != nil {
		return nil, err
	}
	points, err := m.Compute(series)
	if err != nil {
		return nil, err
	}
	out := make([]model.MACDPoint, 0, end-start+1)
	for _, p := range points {
		if p.Index >= start && p.Index <= end {
			out = append(out, p)
		}
	}
	return out, nil
}
