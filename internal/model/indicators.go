package model

// MACDPoint is one MACD/Signal/Histogram triple. Index is the position of the
// series record the point is aligned to.
type MACDPoint struct {
	Index     int
	MACD      float64
	Signal    float64
	Histogram float64 // MACD - Signal
}
