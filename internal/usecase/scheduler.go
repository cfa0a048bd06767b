package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"newsherd/internal/domain"
	"newsherd/internal/ports"
)

// Scheduler binds the recurring driver to incremental scrape runs. Failures
// of a triggered run are logged, never propagated, so the cadence survives
// unreachable-site days.
type Scheduler struct {
	driver  ports.ScrapeDriver
	scraper *Scraper
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring scrape.
func NewScheduler(driver ports.ScrapeDriver, scraper *Scraper, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, scraper: scraper, logger: logger}
}

// Start arms the driver; starting an armed scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.scraper == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.runScheduled(ctx, trigger)
	})
}

func (s *Scheduler) runScheduled(ctx context.Context, trigger time.Time) {
	saved, err := s.scraper.Run(ctx, domain.ModeIncremental)
	switch {
	case errors.Is(err, domain.ErrScrapeInProgress):
		// Skipped, not failed: the previous run is still going.
		s.warn("previous scrape still in flight, skipping scheduled run", "trigger", trigger)
	case err != nil:
		s.error("scheduled scrape failed", "trigger", trigger, "error", err)
	default:
		s.info("scheduled scrape completed", "trigger", trigger, "saved", saved)
	}
}

// Stop disarms the driver; a run already dispatched keeps going.
func (s *Scheduler) Stop() error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop()
}

// Running reports whether the recurring timer is armed.
func (s *Scheduler) Running() bool {
	if s.driver == nil {
		return false
	}
	return s.driver.Running()
}

func (s *Scheduler) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Scheduler) error(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
