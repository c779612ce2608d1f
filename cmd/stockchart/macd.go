package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockAnalyser/internal/report"
)

var macdCmd = &cobra.Command{
	Use:   "macd",
	Short: "print the MACD, signal and histogram of a stored symbol",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		symbol, _ := cmd.Flags().GetString("symbol")
		last, _ := cmd.Flags().GetInt("last")
		weekly, _ := cmd.Flags().GetBool("weekly")

		stock, err := a.loadStock(cmd.Context(), symbol, weekly)
		if err != nil {
			return err
		}
		m := a.cfg.MACDConfig()
		points, err := m.Compute(stock.History)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			log.WithField("symbol", symbol).Warnf("MACD %d/%d/%d needs more than %d records, have %d",
				m.ShortPeriod, m.LongPeriod, m.SignalPeriod, m.WarmUp(), len(stock.History))
		}
		report.MACDTable(cmd.OutOrStdout(), stock, points, last)
		return nil
	},
}

func init() {
	macdCmd.Flags().String("symbol", "", "symbol")
	macdCmd.Flags().Int("last", 20, "number of newest points to print, 0 for all")
	macdCmd.Flags().Bool("weekly", false, "compute over weekly candles")
	_ = macdCmd.MarkFlagRequired("symbol")
	rootCmd.AddCommand(macdCmd)
}
