package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockAnalyser/internal/chart"
	"StockAnalyser/internal/model"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "render a candlestick chart of a stored symbol to PNG or SVG",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		symbol, _ := cmd.Flags().GetString("symbol")
		out, _ := cmd.Flags().GetString("out")
		formatFlag, _ := cmd.Flags().GetString("format")
		zoom, _ := cmd.Flags().GetInt("zoom")
		end, _ := cmd.Flags().GetString("end")
		weekly, _ := cmd.Flags().GetBool("weekly")
		cursor, _ := cmd.Flags().GetString("cursor")
		noMACD, _ := cmd.Flags().GetBool("no-macd")

		if formatFlag == "" {
			formatFlag = strings.TrimPrefix(filepath.Ext(out), ".")
		}
		format, err := chart.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		stock, err := a.loadStock(cmd.Context(), symbol, weekly)
		if err != nil {
			return err
		}
		n := len(stock.History)

		statePath := chart.ViewStatePath(a.cfg.Chart.ViewStateFile, symbol)
		view, err := initialView(statePath, weekly, n, a.cfg.Chart.Span)
		if err != nil {
			return err
		}
		if end != "" {
			date, err := time.Parse(model.DateLayout, end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			idx := chart.IndexOnOrBefore(stock.History, date)
			if idx < 0 {
				return fmt.Errorf("no %s record on or before %s", symbol, end)
			}
			view.EndAt(idx, n)
		}
		for i := 0; i < zoom; i++ {
			view.Zoom(1, n)
		}
		for i := 0; i > zoom; i-- {
			view.Zoom(-1, n)
		}
		view.Clamp(n)
		if cursor != "" {
			x, y, err := parseCursor(cursor)
			if err != nil {
				return err
			}
			view.MoveCursor(x, y)
		}

		opts := a.cfg.ChartOptions()
		if noMACD {
			opts.ShowMACD = false
		}
		measurer, err := chart.NewFontMeasurer()
		if err != nil {
			return err
		}
		frame, err := chart.Layout(stock, view, opts, measurer)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := chart.Render(f, frame, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.WithField("symbol", symbol).Infof("chart written to %s (records %d..%d of %d)", out, view.First, view.Last, n)

		if statePath != "" && !weekly {
			if err := chart.SaveViewState(statePath, view); err != nil {
				log.WithError(err).Warn("save view state")
			}
		}
		return nil
	},
}

// initialView restores the persisted view of daily charts, or starts at the
// newest records.
func initialView(path string, weekly bool, n, span int) (chart.ViewState, error) {
	if path != "" && !weekly {
		view, ok, err := chart.LoadViewState(path)
		if err != nil {
			return view, err
		}
		if ok {
			view.ClearCursor()
			view.Clamp(n)
			return view, nil
		}
	}
	return chart.NewViewState(n, span), nil
}

func parseCursor(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errors.New("--cursor must be X,Y")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--cursor x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--cursor y: %w", err)
	}
	return x, y, nil
}

func init() {
	renderCmd.Flags().String("symbol", "", "symbol to render")
	renderCmd.Flags().String("out", "chart.png", "output file")
	renderCmd.Flags().String("format", "", "png or svg (default: from --out extension)")
	renderCmd.Flags().Int("zoom", 0, "zoom steps of 10%, positive shows more records")
	renderCmd.Flags().String("end", "", "last visible date, YYYY-MM-DD")
	renderCmd.Flags().Bool("weekly", false, "aggregate daily records into weekly candles")
	renderCmd.Flags().String("cursor", "", "crosshair position in pixels, X,Y")
	renderCmd.Flags().Bool("no-macd", false, "hide the MACD panel")
	_ = renderCmd.MarkFlagRequired("symbol")
	rootCmd.AddCommand(renderCmd)
}
