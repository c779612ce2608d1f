package main

import (
	"github.com/spf13/cobra"

	"StockAnalyser/internal/calculator"
	"StockAnalyser/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "print lowest low, highest high and max volume of an index window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		symbol, _ := cmd.Flags().GetString("symbol")
		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")

		stock, err := a.loadStock(cmd.Context(), symbol, false)
		if err != nil {
			return err
		}
		if end < 0 {
			end = len(stock.History) - 1
		}
		if start < 0 {
			start = max(end-a.cfg.Chart.Span, 0)
		}

		low, high, err := calculator.PriceRange(stock.History, start, end)
		if err != nil {
			return err
		}
		volume, err := calculator.MaxVolume(stock.History, start, end)
		if err != nil {
			return err
		}
		report.StatsTable(cmd.OutOrStdout(), stock, report.Stats{
			Start: start, End: end, Low: low, High: high, MaxVolume: volume,
		})
		return nil
	},
}

func init() {
	statsCmd.Flags().String("symbol", "", "symbol")
	statsCmd.Flags().Int("start", -1, "first index of the window (default: chart.span records before --end)")
	statsCmd.Flags().Int("end", -1, "last index of the window (default: newest record)")
	_ = statsCmd.MarkFlagRequired("symbol")
	rootCmd.AddCommand(statsCmd)
}
