package chart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"StockAnalyser/internal/model"
)

const (
	// DefaultSpan is the number of records visible before any zoom.
	DefaultSpan = 30
	// MinSpan is the smallest zoom level.
	MinSpan = 10

	zoomFactor = 1.1
)

// Point is a position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ViewState is the visible window and cursor of a chart. It is passed to
// Layout explicitly and owned by the caller.
type ViewState struct {
	First     int   `json:"first"`
	Last      int   `json:"last"`
	Span      int   `json:"span"`
	Cursor    Point `json:"cursor"`
	HasCursor bool  `json:"has_cursor"`
}

// NewViewState shows the newest span+1 records of a series of length n.
func NewViewState(n, span int) ViewState {
	if span <= 0 {
		span = DefaultSpan
	}
	v := ViewState{Span: span}
	if n > 0 {
		v.Last = n - 1
		v.First = max(v.Last-v.Span, 0)
	}
	return v
}

// Zoom widens the window by 10% for a positive delta and narrows it by 10%
// otherwise. The span is truncated to whole records and kept within
// [MinSpan, n]; the last visible record stays fixed.
func (v *ViewState) Zoom(delta float64, n int) {
	span := float64(v.Span)
	if delta > 0 {
		span *= zoomFactor
	} else {
		span /= zoomFactor
	}
	v.Span = int(span)
	v.fitSpan(n)
	v.First = max(v.Last-v.Span, 0)
}

// fitSpan keeps the span within [MinSpan, n].
func (v *ViewState) fitSpan(n int) {
	if v.Span > n {
		v.Span = n
	}
	if v.Span < MinSpan {
		v.Span = MinSpan
	}
}

// EndAt scrolls the window so that index is the last visible record.
func (v *ViewState) EndAt(index, n int) {
	if n <= 0 {
		v.First, v.Last = 0, 0
		return
	}
	v.Last = min(max(index, 0), n-1)
	v.First = max(v.Last-v.Span, 0)
}

func (v *ViewState) MoveCursor(x, y float64) {
	v.Cursor = Point{X: x, Y: y}
	v.HasCursor = true
}

func (v *ViewState) ClearCursor() {
	v.Cursor = Point{}
	v.HasCursor = false
}

// Clamp fits a possibly stale window (e.g. one loaded from disk) to a series
// of length n.
func (v *ViewState) Clamp(n int) {
	if v.Span <= 0 {
		v.Span = DefaultSpan
	}
	if n <= 0 {
		v.First, v.Last = 0, 0
		return
	}
	v.fitSpan(n)
	if v.Last < 0 || v.Last >= n {
		v.Last = n - 1
	}
	v.First = max(v.Last-v.Span, 0)
}

// ViewStatePath returns the view state file of symbol derived from base,
// e.g. data/view.json becomes data/view-IBM.json.
func ViewStatePath(base, symbol string) string {
	if base == "" || symbol == "" {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + sanitizeSymbol(symbol) + ext
}

func sanitizeSymbol(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '^', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, symbol)
}

// IndexOnOrBefore returns the index of the newest record of an oldest-first
// series dated on or before date, or -1 when every record is later.
func IndexOnOrBefore(series []model.PriceRecord, date time.Time) int {
	i := sort.Search(len(series), func(i int) bool { return series[i].Date.After(date) })
	return i - 1
}

// LoadViewState reads a view state from a JSON file. Returns ok=false if the
// file doesn't exist.
func LoadViewState(filePath string) (ViewState, bool, error) {
	var state ViewState
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return state, false, nil
		}
		return state, false, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, false, fmt.Errorf("decode view state %s: %w", filePath, err)
	}
	return state, true, nil
}

// SaveViewState writes the view state to a JSON file.
func SaveViewState(filePath string, state ViewState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
