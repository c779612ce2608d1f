package calculator

import (
	"errors"
	"fmt"

	"StockAnalyser/internal/model"
)

// ErrEmptyRange is returned for window queries on an empty series or with
// bounds outside 0 <= start <= end < len(series).
var ErrEmptyRange = errors.New("empty range")

func checkWindow(n, start, end int) error {
	if n == 0 {
		return fmt.Errorf("%w: series is empty", ErrEmptyRange)
	}
	if start < 0 || end < start || end >= n {
		return fmt.Errorf("%w: window [%d, %d] outside series of length %d", ErrEmptyRange, start, end, n)
	}
	return nil
}

// MinLow returns the lowest low in the inclusive index window [start, end].
func MinLow(series []model.PriceRecord, start, end int) (float64, error) {
	if err := checkWindow(len(series), start, end); err != nil {
		return 0, err
	}
	low := series[start].Low
	for i := start + 1; i <= end; i++ {
		if series[i].Low < low {
			low = series[i].Low
		}
	}
	return low, nil
}

// MaxHigh returns the highest high in the inclusive index window [start, end].
func MaxHigh(series []model.PriceRecord, start, end int) (float64, error) {
	if err := checkWindow(len(series), start, end); err != nil {
		return 0, err
	}
	high := series[start].High
	for i := start + 1; i <= end; i++ {
		if series[i].High > high {
			high = series[i].High
		}
	}
	return high, nil
}

// MaxVolume returns the largest volume in the inclusive index window [start, end].
func MaxVolume(series []model.PriceRecord, start, end int) (int64, error) {
	if err := checkWindow(len(series), start, end); err != nil {
		return 0, err
	}
	volume := series[start].Volume
	for i := start + 1; i <= end; i++ {
		if series[i].Volume > volume {
			volume = series[i].Volume
		}
	}
	return volume, nil
}

// PriceRange scans the window once and returns its lowest low and highest high.
func PriceRange(series []model.PriceRecord, start, end int) (low, high float64, err error) {
	if err := checkWindow(len(series), start, end); err != nil {
		return 0, 0, err
	}
	low, high = series[start].Low, series[start].High
	for i := start + 1; i <= end; i++ {
		if series[i].High > high {
			high = series[i].High
		}
		if series[i].Low < low {
			low = series[i].Low
		}
	}
	return low, high, nil
}
