package chart

import (
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Rect is an axis-aligned rectangle in pixel space; Y grows downwards.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Op is the kind of a drawing command.
type Op int

const (
	OpFillRect Op = iota
	OpLine
	OpPolyline
	OpText
)

func (o Op) String() string {
	switch o {
	case OpFillRect:
		return "fill-rect"
	case OpLine:
		return "line"
	case OpPolyline:
		return "polyline"
	case OpText:
		return "text"
	}
	return "unknown"
}

// Layer tags commands with the chart element they belong to.
type Layer string

const (
	LayerBackground Layer = "background"
	LayerTimeGrid   Layer = "time-grid"
	LayerPriceGrid  Layer = "price-grid"
	LayerAxis       Layer = "axis"
	LayerTitle      Layer = "title"
	LayerVolume     Layer = "volume"
	LayerClose      Layer = "close"
	LayerCandle     Layer = "candle"
	LayerMACD       Layer = "macd"
	LayerSignal     Layer = "signal"
	LayerHistogram  Layer = "histogram"
	LayerCrosshair  Layer = "crosshair"
)

// Command is one drawing instruction. Rect is used by OpFillRect, Points by
// OpLine and OpPolyline, Points[0] and Text by OpText (baseline origin).
type Command struct {
	Op     Op
	Layer  Layer
	Color  drawing.Color
	Rect   Rect
	Points []Point
	Text   string
	Dashed bool
}

// Frame is the complete list of drawing commands for one chart image.
type Frame struct {
	Width, Height int
	Theme         Theme

	// Area is the plot region; PriceArea and MACDArea partition it.
	Area      Rect
	PriceArea Rect
	MACDArea  Rect

	XScale     float64
	YScale     float64
	PriceStart float64
	PriceStep  float64
	PriceTicks int

	Commands []Command
}

// Filter returns the commands of one layer.
func (f *Frame) Filter(layer Layer) []Command {
	var out []Command
	for _, c := range f.Commands {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	return out
}

func (f *Frame) add(c Command) {
	f.Commands = append(f.Commands, c)
}

func (f *Frame) fillRect(layer Layer, col drawing.Color, r Rect) {
	f.add(Command{Op: OpFillRect, Layer: layer, Color: col, Rect: r})
}

func (f *Frame) line(layer Layer, col drawing.Color, x1, y1, x2, y2 float64) {
	f.add(Command{Op: OpLine, Layer: layer, Color: col, Points: []Point{{x1, y1}, {x2, y2}}})
}

func (f *Frame) text(layer Layer, col drawing.Color, s string, x, y float64) {
	f.add(Command{Op: OpText, Layer: layer, Color: col, Text: s, Points: []Point{{x, y}}})
}

// Theme holds the chart colors.
type Theme struct {
	Background drawing.Color
	Grid       drawing.Color
	Axis       drawing.Color
	Foreground drawing.Color
	Bullish    drawing.Color
	Bearish    drawing.Color
	Volume     drawing.Color
	MACD       drawing.Color
	Signal     drawing.Color
}

func rgb(r, g, b uint8) drawing.Color {
	return drawing.Color{R: r, G: g, B: b, A: 255}
}

// DefaultTheme is the dark blue chart palette.
var DefaultTheme = Theme{
	Background: rgb(30, 30, 60),
	Grid:       rgb(60, 60, 90),
	Axis:       rgb(130, 130, 160),
	Foreground: rgb(180, 180, 210),
	Bullish:    rgb(80, 220, 130),
	Bearish:    rgb(240, 100, 100),
	Volume:     rgb(100, 150, 220),
	MACD:       rgb(255, 165, 0),
	Signal:     rgb(0, 200, 255),
}
