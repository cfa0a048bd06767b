package usecase

import (
	"context"
	"time"

	"newsherd/internal/domain"
	"newsherd/internal/ports"
)

// Service is the surface this core exposes to whatever transport sits in
// front of it.
type Service struct {
	scraper   *Scraper
	scheduler *Scheduler
	store     ports.ArticleStore
	now       func() time.Time
}

// NewService assembles the exposed operations.
func NewService(scraper *Scraper, scheduler *Scheduler, store ports.ArticleStore) *Service {
	return &Service{
		scraper:   scraper,
		scheduler: scheduler,
		store:     store,
		now:       time.Now,
	}
}

// TriggerScrape runs a scrape synchronously and returns the persisted count.
func (s *Service) TriggerScrape(ctx context.Context, mode domain.Mode) (int, error) {
	return s.scraper.Run(ctx, mode)
}

// SchedulerStart arms the daily scrape.
func (s *Service) SchedulerStart(ctx context.Context) error {
	return s.scheduler.Start(ctx)
}

// SchedulerStop disarms the daily scrape.
func (s *Service) SchedulerStop() error {
	return s.scheduler.Stop()
}

// SchedulerStatus reports whether the daily scrape is armed.
func (s *Service) SchedulerStatus() bool {
	return s.scheduler.Running()
}

// ListArticles returns stored records, newest scrape first.
func (s *Service) ListArticles(ctx context.Context, source string, limit int) ([]domain.ArticleRecord, error) {
	return s.store.FindMany(ctx, ports.ArticleFilter{Source: source, Limit: limit})
}

// GetArticle loads one record or domain.ErrArticleNotFound.
func (s *Service) GetArticle(ctx context.Context, id int64) (domain.ArticleRecord, error) {
	return s.store.FindByID(ctx, id)
}

// CleanupArticles deletes records last scraped more than days ago and
// returns how many were removed.
func (s *Service) CleanupArticles(ctx context.Context, days int) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -days)
	return s.store.DeleteOlderThan(ctx, cutoff)
}
