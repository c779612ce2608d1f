package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.August, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		give    PriceRecord
		wantErr bool
	}{
		{"valid bullish", PriceRecord{Date: day(1), Open: 10, High: 12, Low: 9, Close: 11, Volume: 100}, false},
		{"valid doji", PriceRecord{Date: day(1), Open: 10, High: 10, Low: 10, Close: 10}, false},
		{"missing date", PriceRecord{Open: 10, High: 12, Low: 9, Close: 11}, true},
		{"zero price", PriceRecord{Date: day(1), Open: 0, High: 12, Low: 9, Close: 11}, true},
		{"negative volume", PriceRecord{Date: day(1), Open: 10, High: 12, Low: 9, Close: 11, Volume: -1}, true},
		{"low above open", PriceRecord{Date: day(1), Open: 10, High: 12, Low: 10.5, Close: 11}, true},
		{"close above high", PriceRecord{Date: day(1), Open: 10, High: 12, Low: 9, Close: 12.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.give.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSeries(t *testing.T) {
	asc := []PriceRecord{{Date: day(1)}, {Date: day(2)}, {Date: day(5)}}
	order, err := ValidateSeries(asc)
	require.NoError(t, err)
	assert.Equal(t, Ascending, order)

	desc := []PriceRecord{{Date: day(5)}, {Date: day(2)}, {Date: day(1)}}
	order, err = ValidateSeries(desc)
	require.NoError(t, err)
	assert.Equal(t, Descending, order)

	order, err = ValidateSeries([]PriceRecord{{Date: day(1)}})
	require.NoError(t, err)
	assert.Equal(t, Unordered, order)

	_, err = ValidateSeries([]PriceRecord{{Date: day(1)}, {Date: day(1)}})
	assert.ErrorIs(t, err, ErrUnorderedSeries)

	_, err = ValidateSeries([]PriceRecord{{Date: day(1)}, {Date: day(3)}, {Date: day(2)}})
	assert.ErrorIs(t, err, ErrUnorderedSeries)
}

func TestSortAscending(t *testing.T) {
	desc := []PriceRecord{{Date: day(5), Close: 3}, {Date: day(2), Close: 2}, {Date: day(1), Close: 1}}
	asc := SortAscending(desc)
	require.Len(t, asc, 3)
	assert.Equal(t, 1.0, asc[0].Close)
	assert.Equal(t, 3.0, asc[2].Close)
	// input untouched
	assert.Equal(t, 3.0, desc[0].Close)
}

func TestStock_Title(t *testing.T) {
	assert.Equal(t, "AAPL", (&Stock{Symbol: "AAPL"}).Title())
	assert.Equal(t, "Apple Inc.", (&Stock{Symbol: "AAPL", Name: "Apple Inc."}).Title())
}
