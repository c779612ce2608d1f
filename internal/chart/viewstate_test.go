package chart

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViewState(t *testing.T) {
	v := NewViewState(100, 30)
	assert.Equal(t, ViewState{First: 69, Last: 99, Span: 30}, v)

	v = NewViewState(5, 30)
	assert.Equal(t, 0, v.First)
	assert.Equal(t, 4, v.Last)

	v = NewViewState(0, 0)
	assert.Equal(t, ViewState{Span: DefaultSpan}, v)
}

func TestViewState_Zoom(t *testing.T) {
	v := NewViewState(100, 30)

	v.Zoom(1, 100)
	assert.Equal(t, 33, v.Span)
	assert.Equal(t, 66, v.First)
	assert.Equal(t, 99, v.Last)

	// truncation makes zooming back not exactly symmetric
	v.Zoom(-1, 100)
	assert.Equal(t, 29, v.Span)
	assert.Equal(t, 70, v.First)

	for i := 0; i < 50; i++ {
		v.Zoom(1, 100)
	}
	assert.Equal(t, 100, v.Span)
	assert.Equal(t, 0, v.First)

	for i := 0; i < 50; i++ {
		v.Zoom(-1, 100)
	}
	assert.Equal(t, MinSpan, v.Span)
	assert.Equal(t, 89, v.First)
}

func TestViewState_ZoomShortSeries(t *testing.T) {
	v := NewViewState(5, 30)
	v.Zoom(1, 5)
	assert.Equal(t, MinSpan, v.Span)
	assert.Equal(t, 0, v.First)
	assert.Equal(t, 4, v.Last)
}

func TestViewState_EndAt(t *testing.T) {
	v := NewViewState(100, 30)
	v.EndAt(40, 100)
	assert.Equal(t, 10, v.First)
	assert.Equal(t, 40, v.Last)

	v.EndAt(5, 100)
	assert.Equal(t, 0, v.First)
	assert.Equal(t, 5, v.Last)

	v.EndAt(500, 100)
	assert.Equal(t, 99, v.Last)

	v.EndAt(-3, 100)
	assert.Equal(t, 0, v.Last)
}

func TestViewState_Clamp(t *testing.T) {
	v := ViewState{First: 150, Last: 180, Span: 30}
	v.Clamp(100)
	assert.Equal(t, 69, v.First)
	assert.Equal(t, 99, v.Last)

	v = ViewState{Last: 10}
	v.Clamp(100)
	assert.Equal(t, DefaultSpan, v.Span)
	assert.Equal(t, 0, v.First)

	// a window saved for a long series does not stretch a short one
	v = ViewState{First: 100, Last: 400, Span: 300}
	v.Clamp(50)
	assert.Equal(t, ViewState{First: 0, Last: 49, Span: 50}, v)

	v = ViewState{First: 100, Last: 400, Span: 300}
	v.Clamp(4)
	assert.Equal(t, MinSpan, v.Span)
	assert.Equal(t, 3, v.Last)
}

func TestViewStatePath(t *testing.T) {
	tests := []struct {
		base, symbol, want string
	}{
		{"data/view.json", "IBM", "data/view-IBM.json"},
		{"data/view.json", "^GSPC", "data/view-_GSPC.json"},
		{"data/view.json", "BRK/B", "data/view-BRK_B.json"},
		{"view", "SAP.DE", "view-SAP.DE"},
		{"", "IBM", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ViewStatePath(tt.base, tt.symbol), tt.symbol)
	}
}

func TestViewState_Cursor(t *testing.T) {
	var v ViewState
	v.MoveCursor(12.5, 40)
	assert.True(t, v.HasCursor)
	assert.Equal(t, Point{X: 12.5, Y: 40}, v.Cursor)

	v.ClearCursor()
	assert.False(t, v.HasCursor)
}

func TestIndexOnOrBefore(t *testing.T) {
	series := testSeries(10, 1000)
	assert.Equal(t, 0, IndexOnOrBefore(series, series[0].Date))
	assert.Equal(t, 9, IndexOnOrBefore(series, series[9].Date.AddDate(1, 0, 0)))
	assert.Equal(t, -1, IndexOnOrBefore(series, series[0].Date.Add(-time.Hour)))

	// 2024-01-06 is a Saturday, the newest record before it is Friday's
	assert.Equal(t, 4, IndexOnOrBefore(series, time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)))
}

func TestViewStatePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.json")

	_, ok, err := LoadViewState(path)
	require.NoError(t, err)
	assert.False(t, ok)

	v := NewViewState(100, 45)
	v.MoveCursor(100, 200)
	require.NoError(t, SaveViewState(path, v))

	loaded, ok, err := LoadViewState(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, v, loaded)
}
