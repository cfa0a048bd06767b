package ports

import (
	"context"
	"time"

	"newsherd/internal/domain"
)

// PageFetcher retrieves a single listing page as raw HTML.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// ArticleFilter narrows FindMany results.
type ArticleFilter struct {
	Source string
	Limit  int
}

// ArticleStore persists article records keyed by canonical URL.
type ArticleStore interface {
	// Upsert inserts the record or, when the URL already exists, refreshes
	// its data and scrape timestamp while keeping id, source and any
	// previously assigned categories.
	Upsert(ctx context.Context, article domain.ArticleRecord) (domain.ArticleRecord, error)
	// FindMany returns records ordered by scrape time, most recent first.
	FindMany(ctx context.Context, filter ArticleFilter) ([]domain.ArticleRecord, error)
	// FindByID returns domain.ErrArticleNotFound for unknown ids.
	FindByID(ctx context.Context, id int64) (domain.ArticleRecord, error)
	// DeleteOlderThan removes records scraped strictly before cutoff and
	// reports how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// SetCategories assigns classification labels to a stored record.
	SetCategories(ctx context.Context, id int64, categories []string) error
}

// Completer is an opaque text-in/text-out completion service (LLM).
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// PreferenceDirectory supplies per-user article filters. Implemented by the
// surrounding user system, not by this core.
type PreferenceDirectory interface {
	PreferencesFor(ctx context.Context, userID int64) (domain.Preferences, error)
}

// ScrapeDriver arms a recurring timer that invokes the given job.
type ScrapeDriver interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop() error
	Running() bool
}
