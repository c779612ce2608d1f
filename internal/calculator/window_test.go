package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalyser/internal/model"
)

func buildSeries(rows ...[5]float64) []model.PriceRecord {
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	series := make([]model.PriceRecord, len(rows))
	for i, r := range rows {
		series[i] = model.PriceRecord{
			Date:   start.AddDate(0, 0, i),
			Open:   r[0],
			High:   r[1],
			Low:    r[2],
			Close:  r[3],
			Volume: int64(r[4]),
		}
	}
	return series
}

func TestWindowQueries(t *testing.T) {
	series := buildSeries(
		[5]float64{10, 12, 9, 11, 100},
		[5]float64{11, 15, 10, 14, 500},
		[5]float64{14, 14.5, 8, 9, 50},
		[5]float64{9, 10, 8.5, 9.5, 70},
	)

	low, err := MinLow(series, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 8.0, low)

	high, err := MaxHigh(series, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 15.0, high)

	vol, err := MaxVolume(series, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(500), vol)

	vol, err = MaxVolume(series, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(70), vol)

	low, high, err = PriceRange(series, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 8.0, low)
	assert.Equal(t, 15.0, high)
}

func TestWindowQueries_SingleRecord(t *testing.T) {
	series := buildSeries(
		[5]float64{10, 12, 9, 11, 100},
		[5]float64{11, 15, 10, 14, 500},
	)
	low, err := MinLow(series, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, low)

	high, err := MaxHigh(series, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 15.0, high)

	vol, err := MaxVolume(series, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), vol)
}

func TestWindowQueries_Errors(t *testing.T) {
	series := buildSeries([5]float64{10, 12, 9, 11, 100})
	tests := []struct {
		name       string
		series     []model.PriceRecord
		start, end int
	}{
		{"empty series", nil, 0, 0},
		{"negative start", series, -1, 0},
		{"end before start", buildSeries([5]float64{1, 1, 1, 1, 1}, [5]float64{1, 1, 1, 1, 1}), 1, 0},
		{"end out of bounds", series, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MinLow(tt.series, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrEmptyRange)
			_, err = MaxHigh(tt.series, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrEmptyRange)
			_, err = MaxVolume(tt.series, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrEmptyRange)
			_, _, err = PriceRange(tt.series, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrEmptyRange)
		})
	}
}

func TestWindowQueries_BoundEveryRecord(t *testing.T) {
	series := buildSeries(
		[5]float64{100, 101, 99, 100.5, 1},
		[5]float64{100.5, 103, 100, 102, 2},
		[5]float64{102, 102.5, 97, 98, 3},
		[5]float64{98, 99, 96.5, 97, 4},
		[5]float64{97, 104, 97, 103, 5},
	)
	low, high, err := PriceRange(series, 0, len(series)-1)
	require.NoError(t, err)
	for _, r := range series {
		assert.LessOrEqual(t, low, r.Low)
		assert.GreaterOrEqual(t, high, r.High)
	}
}

func TestAggregateWeekly(t *testing.T) {
	// 2024-07-01 is a Monday.
	series := buildSeries(
		[5]float64{10, 12, 9, 11, 100},
		[5]float64{11, 15, 10, 14, 200},
		[5]float64{14, 14.5, 8, 9, 50},
		[5]float64{9, 10, 8.5, 9.5, 70},
		[5]float64{9.5, 11, 9, 10, 30},
		[5]float64{10, 10.5, 9.8, 10.2, 10},
		[5]float64{10.2, 10.4, 10, 10.1, 10},
		[5]float64{10.1, 13, 10, 12.5, 400}, // next Monday
	)
	weekly := AggregateWeekly(series)
	require.Len(t, weekly, 2)

	w := weekly[0]
	assert.Equal(t, series[0].Date, w.Date)
	assert.Equal(t, 10.0, w.Open)
	assert.Equal(t, 15.0, w.High)
	assert.Equal(t, 8.0, w.Low)
	assert.Equal(t, 10.1, w.Close)
	assert.Equal(t, int64(470), w.Volume)

	assert.Equal(t, series[7], weekly[1])
	assert.Nil(t, AggregateWeekly(nil))
}
