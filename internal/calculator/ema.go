package calculator

import "StockAnalyser/internal/model"

// EMA computes the exponential moving average of values over period.
// The first element is the simple average of the first period values; each
// following element smooths the next value into the previous one with the
// multiplier 2/(period+1). The result has len(values)-period+1 elements, or
// is empty when there are fewer than period values or period is not positive.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return []float64{}
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)

	ema := make([]float64, 0, len(values)-period+1)
	ema = append(ema, prev)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		next := (values[i]-prev)*multiplier + prev
		ema = append(ema, next)
		prev = next
	}
	return ema
}

// Closes extracts the close prices of series, preserving order.
func Closes(series []model.PriceRecord) []float64 {
	closes := make([]float64, len(series))
	for i, r := range series {
		closes[i] = r.Close
	}
	return closes
}
