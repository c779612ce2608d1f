package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
)

// Format is the output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"

	fontSize = 10.0
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported image format %q (want png or svg)", s)
}

func (f Format) provider() (chart.RendererProvider, error) {
	switch f {
	case FormatPNG:
		return chart.PNG, nil
	case FormatSVG:
		return chart.SVG, nil
	}
	return nil, fmt.Errorf("unsupported image format %q", string(f))
}

func newRenderer(format Format, width, height int) (chart.Renderer, error) {
	provider, err := format.provider()
	if err != nil {
		return nil, err
	}
	r, err := provider(width, height)
	if err != nil {
		return nil, fmt.Errorf("create %s renderer: %w", format, err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load default font: %w", err)
	}
	r.SetFont(font)
	r.SetFontSize(fontSize)
	return r, nil
}

// FontMeasurer measures text with the font Render paints with.
type FontMeasurer struct {
	r      chart.Renderer
	height float64
}

func NewFontMeasurer() (*FontMeasurer, error) {
	r, err := newRenderer(FormatPNG, 1, 1)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{r: r, height: float64(r.MeasureText("Mg").Height())}, nil
}

func (m *FontMeasurer) TextWidth(s string) float64 { return float64(m.r.MeasureText(s).Width()) }
func (m *FontMeasurer) TextHeight() float64        { return m.height }

func px(v float64) int { return int(math.Round(v)) }

// Paint replays the frame's commands on r.
func Paint(r chart.Renderer, frame *Frame) {
	for _, c := range frame.Commands {
		switch c.Op {
		case OpFillRect:
			if c.Rect.W <= 0 || c.Rect.H <= 0 {
				continue
			}
			r.SetFillColor(c.Color)
			r.SetStrokeColor(c.Color)
			r.SetStrokeWidth(0)
			r.MoveTo(px(c.Rect.Left()), px(c.Rect.Top()))
			r.LineTo(px(c.Rect.Right()), px(c.Rect.Top()))
			r.LineTo(px(c.Rect.Right()), px(c.Rect.Bottom()))
			r.LineTo(px(c.Rect.Left()), px(c.Rect.Bottom()))
			r.Close()
			r.Fill()

		case OpLine, OpPolyline:
			if len(c.Points) < 2 {
				continue
			}
			r.SetStrokeColor(c.Color)
			r.SetStrokeWidth(1)
			if c.Dashed {
				r.SetStrokeDashArray([]float64{4, 4})
			} else {
				r.SetStrokeDashArray(nil)
			}
			r.MoveTo(px(c.Points[0].X), px(c.Points[0].Y))
			for _, p := range c.Points[1:] {
				r.LineTo(px(p.X), px(p.Y))
			}
			r.Stroke()

		case OpText:
			if len(c.Points) == 0 || c.Text == "" {
				continue
			}
			r.SetFontColor(c.Color)
			r.Text(c.Text, px(c.Points[0].X), px(c.Points[0].Y))
		}
	}
	r.SetStrokeDashArray(nil)
}

// Render paints frame into a new image of the given format and writes it to w.
func Render(w io.Writer, frame *Frame, format Format) error {
	r, err := newRenderer(format, frame.Width, frame.Height)
	if err != nil {
		return err
	}
	Paint(r, frame)
	if err := r.Save(w); err != nil {
		return fmt.Errorf("save %s: %w", format, err)
	}
	return nil
}
