package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsherd/internal/domain"
	"newsherd/internal/ports"
	"newsherd/internal/site"
)

const (
	initialScrapePages = 10
	interPageDelay     = 2 * time.Second
)

// ScraperDeps wires the driven adapters into the scrape orchestrator.
type ScraperDeps struct {
	Fetcher  ports.PageFetcher
	Store    ports.ArticleStore
	Adapters []site.Adapter
	Logger   *slog.Logger
}

// Scraper drives pagination across the configured site adapters, extracts
// candidate records and persists them through url-keyed upserts. At most one
// run executes at a time; a trigger that finds a run in flight reports
// domain.ErrScrapeInProgress instead of overlapping it.
type Scraper struct {
	fetcher  ports.PageFetcher
	store    ports.ArticleStore
	adapters []site.Adapter
	logger   *slog.Logger

	// Deterministic seams for the cadence tests.
	sleep func(context.Context, time.Duration) error
	now   func() time.Time

	mu sync.Mutex
}

type sourcedCandidate struct {
	source    string
	candidate domain.Candidate
}

// NewScraper constructs the orchestration component.
func NewScraper(deps ScraperDeps) *Scraper {
	return &Scraper{
		fetcher:  deps.Fetcher,
		store:    deps.Store,
		adapters: deps.Adapters,
		logger:   deps.Logger,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// Run executes one scrape in the given mode and returns how many records were
// persisted. A page fetch or whole-page parse failure aborts the run; a
// single-record upsert failure is logged and skipped.
func (s *Scraper) Run(ctx context.Context, mode domain.Mode) (int, error) {
	if !s.mu.TryLock() {
		return 0, domain.ErrScrapeInProgress
	}
	defer s.mu.Unlock()

	pages := 1
	if mode == domain.ModeInitial {
		pages = initialScrapePages
	}

	candidates, err := s.collect(ctx, pages)
	if err != nil {
		return 0, err
	}

	s.info("scrape collected candidates", "mode", string(mode), "count", len(candidates))
	return s.persist(ctx, candidates), nil
}

func (s *Scraper) collect(ctx context.Context, pages int) ([]sourcedCandidate, error) {
	now := s.now()
	fetched := 0

	var collected []sourcedCandidate
	for _, adapter := range s.adapters {
		for page := 1; page <= pages; page++ {
			pageURL := adapter.BuildPageURL(page, now)
			if pageURL == "" {
				break
			}

			// Pause between fetches, never before the first or after
			// the last one.
			if fetched > 0 {
				if err := s.sleep(ctx, interPageDelay); err != nil {
					return nil, err
				}
			}

			html, err := s.fetcher.Fetch(ctx, pageURL)
			if err != nil {
				return nil, fmt.Errorf("site %s page %d: %w", adapter.Name(), page, err)
			}
			fetched++

			pageCandidates, err := adapter.Extract(html)
			if err != nil {
				return nil, fmt.Errorf("site %s page %d: %w", adapter.Name(), page, err)
			}

			s.debug("page extracted", "site", adapter.Name(), "page", page, "candidates", len(pageCandidates))
			for _, candidate := range pageCandidates {
				collected = append(collected, sourcedCandidate{source: adapter.Name(), candidate: candidate})
			}
		}
	}

	return collected, nil
}

func (s *Scraper) persist(ctx context.Context, candidates []sourcedCandidate) int {
	saved := 0
	for _, item := range candidates {
		record := domain.ArticleRecord{
			URL:    item.candidate.URL,
			Source: item.source,
			Data:   item.candidate.Data,
		}
		if _, err := s.store.Upsert(ctx, record); err != nil {
			s.error("save article failed", "url", item.candidate.URL, "error", err)
			continue
		}
		saved++
	}
	return saved
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Scraper) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Scraper) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scraper) error(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
