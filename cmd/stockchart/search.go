package main

import (
	"errors"

	"github.com/spf13/cobra"

	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/report"
)

var searchCmd = &cobra.Command{
	Use:   "search KEYWORDS",
	Short: "look up symbols by name with Alpha Vantage SYMBOL_SEARCH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ds := a.cfg.DataSource
		if ds.APIKey == "" {
			return errors.New("search needs data_source.api_key (or ALPHAVANTAGE_API_KEY)")
		}
		baseURL := ""
		if ds.Provider == "alphavantage" {
			baseURL = ds.BaseURL
		}
		f := collector.NewAlphaVantageFetcher(baseURL, ds.APIKey, a.cfg.Proxy)
		matches, err := f.SearchSymbols(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report.SymbolTable(cmd.OutOrStdout(), matches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
