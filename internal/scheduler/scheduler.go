package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/model"
)

// Importer refreshes the price history of a list of stocks.
type Importer interface {
	ImportAll(ctx context.Context, stocks []model.Stock, days, concurrency int) ([]collector.ImportResult, error)
}

// Scheduler manages the periodic price refresh.
type Scheduler struct {
	Cron        *cron.Cron
	Importer    Importer
	Stocks      []model.Stock
	Days        int
	Concurrency int
	Ctx         context.Context

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
	running sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, importer Importer, stocks []model.Stock, days, concurrency int) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Importer:    importer,
		Stocks:      stocks,
		Days:        days,
		Concurrency: concurrency,
		Ctx:         ctx,
	}
}

// Register adds the refresh task for the given six-field cron expression.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	log.Infof("refresh task registered: %q for %d symbols", refreshCron, len(s.Stocks))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running refreshes, scheduled
// or triggered, to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.running.Wait()
	log.Info("scheduler stopped")
}

// Trigger starts a refresh in the background. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.refreshTask()
	}()
}

// RunNow executes the refresh immediately (for manual trigger / run on start).
func (s *Scheduler) RunNow() ([]collector.ImportResult, error) {
	return s.refresh()
}

// LastRun reports when the last refresh finished and its error.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *Scheduler) refreshTask() {
	if _, err := s.refresh(); err != nil {
		log.WithError(err).Error("scheduled refresh failed")
	}
}

func (s *Scheduler) refresh() ([]collector.ImportResult, error) {
	log.Infof("refreshing %d symbols", len(s.Stocks))
	results, err := s.Importer.ImportAll(s.Ctx, s.Stocks, s.Days, s.Concurrency)

	stored := 0
	for _, r := range results {
		stored += r.Stored
	}
	log.Infof("refresh done: %d records stored", stored)

	s.mu.Lock()
	s.lastRun, s.lastErr = time.Now(), err
	s.mu.Unlock()
	return results, err
}
