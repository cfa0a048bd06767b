package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"newsherd/internal/config"
	"newsherd/internal/infrastructure/fetch"
	"newsherd/internal/infrastructure/llm"
	"newsherd/internal/infrastructure/scheduler"
	"newsherd/internal/infrastructure/sites"
	"newsherd/internal/infrastructure/storage"
	"newsherd/internal/logging"
	"newsherd/internal/ports"
	"newsherd/internal/site"
	"newsherd/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	db          *sql.DB
	store       *storage.Repository
	service     *usecase.Service
	categorizer *usecase.Categorizer
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}
	store := storage.NewRepository(db, sq.Dollar)

	registry := site.NewRegistry()
	registry.Register(sites.NewHackerNews(""))
	for _, sc := range cfg.Sites {
		if sc.Feed != "" {
			registry.Register(sites.NewRSSFeed(sc.Name, sc.Feed))
		}
	}

	adapters := make([]site.Adapter, 0, len(cfg.Sites))
	for _, sc := range cfg.Sites {
		name := sc.Adapter
		if name == "" {
			name = sc.Name
		}
		adapter, err := registry.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", sc.Name, err)
		}
		adapters = append(adapters, adapter)
	}

	scraper := usecase.NewScraper(usecase.ScraperDeps{
		Fetcher:  fetch.New(baseLogger.With("component", "fetcher")),
		Store:    store,
		Adapters: adapters,
		Logger:   baseLogger.With("component", "scraper"),
	})

	driver := scheduler.NewDaily(nil, cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, scraper, baseLogger.With("component", "scheduler"))

	var completer ports.Completer
	if cfg.OpenAI.APIKey != "" {
		completer = llm.NewOpenAIClient(cfg.OpenAI)
	}

	return &Application{
		cfg:         cfg,
		logger:      baseLogger,
		db:          db,
		store:       store,
		service:     usecase.NewService(scraper, sched, store),
		categorizer: usecase.NewCategorizer(store, completer, baseLogger.With("component", "categorizer")),
	}, nil
}

// Service exposes the assembled operation surface.
func (a *Application) Service() *usecase.Service {
	return a.service
}

// Categorizer exposes the LLM-backed classification use case.
func (a *Application) Categorizer() *usecase.Categorizer {
	return a.categorizer
}

// Run prepares storage, arms the daily scrape and blocks until the context
// is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	if err := a.store.EnsureSchema(ctx); err != nil {
		return err
	}

	if err := a.service.SchedulerStart(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("daily scrape scheduled", "timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	if err := a.service.SchedulerStop(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}
