package model

import (
	"fmt"
	"sort"
)

// Order is the date direction of a series.
type Order int

const (
	// Unordered is reported for series with fewer than two records.
	Unordered Order = iota
	Ascending
	Descending
)

func (o Order) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unordered"
	}
}

// ValidateSeries checks that dates are strictly monotonic in one direction
// and returns that direction.
func ValidateSeries(records []PriceRecord) (Order, error) {
	order := Unordered
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1].Date, records[i].Date
		var step Order
		switch {
		case cur.After(prev):
			step = Ascending
		case cur.Before(prev):
			step = Descending
		default:
			return Unordered, fmt.Errorf("%w: duplicate date %s at index %d",
				ErrUnorderedSeries, cur.Format(DateLayout), i)
		}
		if order == Unordered {
			order = step
		} else if order != step {
			return Unordered, fmt.Errorf("%w: direction changes at index %d", ErrUnorderedSeries, i)
		}
	}
	return order, nil
}

// SortAscending returns an oldest-first copy of records. The input is not modified.
func SortAscending(records []PriceRecord) []PriceRecord {
	out := make([]PriceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
