package main

import (
	"errors"

	"github.com/spf13/cobra"

	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/model"
	"StockAnalyser/internal/report"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "fetch daily prices (or read a CSV file) into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		symbol, _ := cmd.Flags().GetString("symbol")
		file, _ := cmd.Flags().GetString("file")
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			days = a.cfg.Fetch.Days
		}

		if file != "" {
			if symbol == "" {
				return errors.New("--file requires --symbol")
			}
			// no fetcher needed for a local file
			c := collector.NewCollector(nil, a.store)
			res, err := c.ImportFile(ctx, a.cfg.Lookup(symbol).Stock(), file)
			if err != nil {
				return err
			}
			report.ImportTable(cmd.OutOrStdout(), []collector.ImportResult{res})
			return nil
		}

		c, err := a.collector(ctx)
		if err != nil {
			return err
		}

		var stocks []model.Stock
		if symbol != "" {
			stocks = []model.Stock{a.cfg.Lookup(symbol).Stock()}
		} else {
			stocks = a.cfg.Stocks()
		}
		if len(stocks) == 0 {
			return errors.New("no symbols configured, pass --symbol")
		}

		results, err := c.ImportAll(ctx, stocks, days, a.cfg.Fetch.Concurrency)
		report.ImportTable(cmd.OutOrStdout(), results)
		return err
	},
}

func init() {
	importCmd.Flags().String("symbol", "", "symbol to import (default: all configured symbols)")
	importCmd.Flags().Int("days", 0, "number of trading days to fetch (default: fetch.days)")
	importCmd.Flags().String("file", "", "read date,open,high,low,close,volume rows from a CSV file instead of fetching")
	rootCmd.AddCommand(importCmd)
}
