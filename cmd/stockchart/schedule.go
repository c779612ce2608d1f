package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockAnalyser/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "refresh all configured symbols on schedule.refresh_cron until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(a.cfg.Symbols) == 0 {
			return errors.New("no symbols configured")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := a.collector(ctx)
		if err != nil {
			return err
		}

		sched := scheduler.NewScheduler(ctx, c, a.cfg.Stocks(), a.cfg.Fetch.Days, a.cfg.Fetch.Concurrency)
		if err := sched.Register(a.cfg.Schedule.RefreshCron); err != nil {
			return err
		}
		sched.Start()

		if runNow, _ := cmd.Flags().GetBool("run-now"); runNow {
			sched.Trigger()
		}

		log.Info("stockchart scheduler is running. Press Ctrl+C to stop.")
		<-ctx.Done()
		log.Info("shutdown signal received, stopping...")

		// waits for a triggered refresh too, the store closes after it
		sched.Stop()

		if at, err := sched.LastRun(); !at.IsZero() {
			entry := log.WithField("at", at.Format("2006-01-02 15:04:05"))
			if err != nil {
				entry.WithError(err).Warn("last refresh failed")
			} else {
				entry.Info("last refresh succeeded")
			}
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().Bool("run-now", false, "refresh once immediately")
	rootCmd.AddCommand(scheduleCmd)
}
