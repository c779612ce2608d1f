package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"StockAnalyser/internal/calculator"
	"StockAnalyser/internal/model"
)

const (
	MinWidth  = 200
	MinHeight = 150

	margin         = 20.0
	macdGap        = 10.0
	macdShare      = 0.25
	maxVolumeBarPx = 100.0
)

// ErrCanvasTooSmall is returned when the image leaves no room for the plot area.
var ErrCanvasTooSmall = errors.New("canvas too small")

// TextMeasurer reports text extents in pixels for the font used to paint.
type TextMeasurer interface {
	TextWidth(s string) float64
	TextHeight() float64
}

// FixedMeasurer measures every character with the same width.
type FixedMeasurer struct {
	CharWidth  float64
	LineHeight float64
}

func (m FixedMeasurer) TextWidth(s string) float64 { return float64(len([]rune(s))) * m.CharWidth }
func (m FixedMeasurer) TextHeight() float64        { return m.LineHeight }

// Options configures Layout.
type Options struct {
	Width    int
	Height   int
	ShowMACD bool
	MACD     calculator.MACD
	Theme    Theme
}

func DefaultOptions() Options {
	return Options{
		Width:    1200,
		Height:   700,
		ShowMACD: true,
		MACD:     calculator.NewMACD(),
		Theme:    DefaultTheme,
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// priceScale picks a readable grid step for the visible price range and the
// first grid line at or below low.
func priceScale(low, high float64) (step, start float64, ticks int) {
	rng := high - low
	switch {
	case rng < 5:
		step = 1
	case rng < 10:
		step = 2
	case rng < 25:
		step = 5
	case rng < 50:
		step = 10
	case rng < 100:
		step = 20
	default:
		step = math.Floor(rng / 5)
	}
	start = low - math.Mod(low, step)
	ticks = int(math.Ceil((high - start) / step))
	if ticks < 1 {
		ticks = 1
	}
	return step, start, ticks
}

// Layout turns the visible window of stock into drawing commands. It has no
// side effects; an empty history yields a frame holding only the background.
func Layout(stock *model.Stock, view ViewState, opts Options, m TextMeasurer) (*Frame, error) {
	if opts.Width < MinWidth || opts.Height < MinHeight {
		return nil, fmt.Errorf("%w: %dx%d, need at least %dx%d", ErrCanvasTooSmall, opts.Width, opts.Height, MinWidth, MinHeight)
	}
	theme := opts.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme
	}

	f := &Frame{Width: opts.Width, Height: opts.Height, Theme: theme}
	f.fillRect(LayerBackground, theme.Background, Rect{0, 0, float64(opts.Width), float64(opts.Height)})

	if stock == nil || len(stock.History) == 0 {
		return f, nil
	}
	series := stock.History
	view.Clamp(len(series))
	first, last := view.First, view.Last

	low, high, err := calculator.PriceRange(series, first, last)
	if err != nil {
		return nil, err
	}
	maxVolume, err := calculator.MaxVolume(series, first, last)
	if err != nil {
		return nil, err
	}

	marginRight := 25 + m.TextWidth(formatPrice(high))
	marginBottom := 25 + m.TextHeight()
	area := Rect{
		X: margin,
		Y: margin,
		W: float64(opts.Width) - margin - marginRight,
		H: float64(opts.Height) - margin - marginBottom,
	}
	priceArea := area
	if opts.ShowMACD {
		macdHeight := math.Floor(area.H * macdShare)
		priceArea.H = area.H - macdHeight - macdGap
		f.MACDArea = Rect{X: area.X, Y: priceArea.Bottom() + macdGap, W: area.W, H: macdHeight}
	}
	if area.W <= 0 || priceArea.H <= 0 {
		return nil, fmt.Errorf("%w: no room for the plot area", ErrCanvasTooSmall)
	}
	f.Area, f.PriceArea = area, priceArea

	xs := area.W / float64(view.Span+1)
	step, start, ticks := priceScale(low, high)
	ys := priceArea.H / (step * float64(ticks))
	f.XScale, f.YScale = xs, ys
	f.PriceStart, f.PriceStep, f.PriceTicks = start, step, ticks

	x := func(i int) float64 { return area.Left() + float64(i-first)*xs }
	y := func(p float64) float64 { return priceArea.Bottom() - (p-start)*ys }

	// monthly grid, placed at the first record of each month
	for i := max(first, 1); i <= last; i++ {
		cur, prev := series[i].Date, series[i-1].Date
		if cur.Month() == prev.Month() && cur.Year() == prev.Year() {
			continue
		}
		label := cur.Format("Jan")
		f.text(LayerTimeGrid, theme.Axis, label, x(i)-0.5*m.TextWidth(label), area.Bottom()+5+m.TextHeight())
		f.line(LayerTimeGrid, theme.Grid, x(i), area.Bottom(), x(i), area.Top())
	}
	f.line(LayerAxis, theme.Axis, area.Left(), area.Bottom(), area.Right(), area.Bottom())

	for k := 0; k <= ticks; k++ {
		p := float64(k) * step
		yy := priceArea.Bottom() - ys*p
		f.text(LayerPriceGrid, theme.Axis, formatPrice(start+p), area.Right()+4, yy)
		f.line(LayerPriceGrid, theme.Grid, area.Left(), yy, area.Right(), yy)
	}
	f.line(LayerAxis, theme.Axis, area.Right(), area.Top(), area.Right(), area.Bottom())

	f.text(LayerTitle, theme.Axis, stock.Title(), area.Left(), area.Top()+m.TextHeight())

	if maxVolume > 0 {
		volScale := math.Min(maxVolumeBarPx, priceArea.H/4) / float64(maxVolume)
		for i := first; i <= last; i++ {
			h := float64(series[i].Volume) * volScale
			f.fillRect(LayerVolume, theme.Volume, Rect{X: x(i) - 0.2*xs, Y: priceArea.Bottom() - h, W: 0.4 * xs, H: h})
		}
	}

	closeLine := make([]Point, 0, last-first+1)
	for i := first; i <= last; i++ {
		closeLine = append(closeLine, Point{x(i), y(series[i].Close)})
	}
	f.add(Command{Op: OpPolyline, Layer: LayerClose, Color: theme.Foreground, Points: closeLine})

	for i := first; i <= last; i++ {
		r := series[i]
		col := theme.Bearish
		if r.Bullish() {
			col = theme.Bullish
		}
		f.line(LayerCandle, col, x(i), y(r.Low), x(i), y(r.High))
		body := math.Max(math.Abs(r.Open-r.Close)*ys, 1)
		f.fillRect(LayerCandle, col, Rect{X: x(i) - 0.4*xs, Y: y(math.Max(r.Open, r.Close)), W: 0.8 * xs, H: body})
	}

	if opts.ShowMACD {
		if err := layoutMACD(f, series, first, last, opts.MACD, x); err != nil {
			return nil, err
		}
	}

	if view.HasCursor && area.Contains(view.Cursor) {
		c := view.Cursor
		f.add(Command{Op: OpLine, Layer: LayerCrosshair, Color: theme.Axis, Dashed: true,
			Points: []Point{{c.X, area.Top()}, {c.X, area.Bottom()}}})
		f.add(Command{Op: OpLine, Layer: LayerCrosshair, Color: theme.Axis, Dashed: true,
			Points: []Point{{area.Left(), c.Y}, {area.Right(), c.Y}}})
	}
	return f, nil
}

// layoutMACD draws the indicator panel scaled so that the largest absolute
// value of the window touches the panel edge. Records inside the warm-up
// period get no MACD point and leave the panel empty.
func layoutMACD(f *Frame, series []model.PriceRecord, first, last int, macd calculator.MACD, x func(int) float64) error {
	panel, theme := f.MACDArea, f.Theme
	mid := panel.Top() + panel.H/2
	f.line(LayerAxis, theme.Grid, panel.Left(), mid, panel.Right(), mid)

	points, err := macd.Window(series, first, last)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}

	maxAbs := 0.0
	for _, p := range points {
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(p.MACD), math.Max(math.Abs(p.Signal), math.Abs(p.Histogram))))
	}
	scale := 0.0
	if maxAbs > 0 {
		scale = panel.H / 2 / maxAbs
	}

	macdLine := make([]Point, len(points))
	signalLine := make([]Point, len(points))
	for i, p := range points {
		h := p.Histogram * scale
		bar := Rect{X: x(p.Index) - 0.2*f.XScale, Y: mid - h, W: 0.4 * f.XScale, H: h}
		col := theme.Bullish
		if h < 0 {
			bar.Y, bar.H = mid, -h
			col = theme.Bearish
		}
		f.fillRect(LayerHistogram, col, bar)

		macdLine[i] = Point{x(p.Index), mid - p.MACD*scale}
		signalLine[i] = Point{x(p.Index), mid - p.Signal*scale}
	}
	f.add(Command{Op: OpPolyline, Layer: LayerMACD, Color: theme.MACD, Points: macdLine})
	f.add(Command{Op: OpPolyline, Layer: LayerSignal, Color: theme.Signal, Points: signalLine})
	return nil
}
