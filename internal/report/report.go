package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/model"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func price(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func indicator(v float64) string {
	return fmt.Sprintf("%+.4f", v)
}

// crossover labels the point where the histogram changes sign, which is where
// the MACD line crosses its signal line.
func crossover(prev, cur model.MACDPoint) string {
	switch {
	case prev.Histogram <= 0 && cur.Histogram > 0:
		return "bullish"
	case prev.Histogram >= 0 && cur.Histogram < 0:
		return "bearish"
	}
	return ""
}

// MACDTable writes the newest last points (all points when last <= 0) of the
// MACD series computed for stock.
func MACDTable(w io.Writer, stock *model.Stock, points []model.MACDPoint, last int) {
	t := newTable(w, fmt.Sprintf("%s MACD", stock.Title()))
	t.AppendHeader(table.Row{"Date", "Close", "MACD", "Signal", "Histogram", "Cross"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	from := 0
	if last > 0 && len(points) > last {
		from = len(points) - last
	}
	for i := from; i < len(points); i++ {
		p := points[i]
		r := stock.History[p.Index]
		cross := ""
		if i > 0 {
			cross = crossover(points[i-1], p)
		}
		t.AppendRow(table.Row{r.Date.Format(model.DateLayout), price(r.Close), indicator(p.MACD), indicator(p.Signal), indicator(p.Histogram), cross})
	}
	if len(points) == 0 {
		t.AppendFooter(table.Row{"not enough data", "", "", "", "", ""})
	} else {
		t.AppendFooter(table.Row{fmt.Sprintf("%d of %d", len(points)-from, len(points)), "", "", "", "", ""})
	}
	t.Render()
}

// Stats is the aggregate of an inclusive index window of a series.
type Stats struct {
	Start, End int
	Low, High  float64
	MaxVolume  int64
}

// StatsTable writes the window aggregates of stock.
func StatsTable(w io.Writer, stock *model.Stock, s Stats) {
	t := newTable(w, fmt.Sprintf("%s window statistics", stock.Title()))
	from, to := stock.History[s.Start].Date, stock.History[s.End].Date
	t.AppendRows([]table.Row{
		{"Window", fmt.Sprintf("%s .. %s", from.Format(model.DateLayout), to.Format(model.DateLayout))},
		{"Records", s.End - s.Start + 1},
		{"Lowest low", price(s.Low)},
		{"Highest high", price(s.High)},
		{"Range", price(s.High - s.Low)},
		{"Max volume", humanize.Comma(s.MaxVolume)},
	})
	if stock.Currency != "" {
		t.AppendFooter(table.Row{"Currency", stock.Currency})
	}
	t.Render()
}

// ImportTable writes one row per imported symbol.
func ImportTable(w io.Writer, results []collector.ImportResult) {
	t := newTable(w, "Import")
	t.AppendHeader(table.Row{"Symbol", "Fetched", "Stored", "Dropped"})
	var stored int
	for _, r := range results {
		t.AppendRow(table.Row{r.Symbol, humanize.Comma(int64(r.Fetched)), humanize.Comma(int64(r.Stored)), r.Dropped})
		stored += r.Stored
	}
	t.AppendFooter(table.Row{"Total", "", humanize.Comma(int64(stored)), ""})
	t.Render()
}

// SymbolTable writes symbol search matches.
func SymbolTable(w io.Writer, matches []collector.SymbolMatch) {
	t := newTable(w, "Symbols")
	t.AppendHeader(table.Row{"Symbol", "Name", "Type", "Region", "Currency", "Score"})
	for _, m := range matches {
		t.AppendRow(table.Row{m.Symbol, m.Name, m.Type, m.Region, m.Currency, fmt.Sprintf("%.2f", m.Score)})
	}
	t.Render()
}
