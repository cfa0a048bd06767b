package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsherd/internal/domain"
	"newsherd/internal/infrastructure/fetch"
	"newsherd/internal/infrastructure/sites"
	"newsherd/internal/infrastructure/storage"
	"newsherd/internal/site"
)

const listingFixture = `<html><body>
<div class="body-post">
  <h2 class="home-title">Supply Chain Attack Hits Registry</h2>
  <a class="story-link" href="https://example.com/supply-chain"></a>
  <div class="home-desc">Poisoned packages.</div>
  <span class="label-name">Supply Chain</span>
</div>
<div class="body-post">
  <h2 class="home-title">New Phishing Kit Sold Underground</h2>
  <a class="story-link" href="https://example.com/phishing-kit"></a>
  <div class="home-desc">Kits for rent.</div>
  <span class="label-name">Phishing</span>
</div>
<div class="body-post">
  <a class="story-link" href="https://example.com/broken-entry"></a>
  <div class="home-desc">This entry lost its title.</div>
</div>
<div class="body-post">
  <h2 class="home-title">Botnet Dismantled by Europol</h2>
  <a class="story-link" href="https://example.com/botnet"></a>
</div>
<div class="body-post">
  <h2 class="home-title">Ransomware Gang Rebrands</h2>
  <a class="story-link" href="https://example.com/ransomware"></a>
  <div class="home-desc">Same crew, new name.</div>
  <span class="label-name">Ransomware</span>
</div>
</body></html>`

const testSchema = `
CREATE TABLE articles (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    url        TEXT      NOT NULL UNIQUE,
    source     TEXT      NOT NULL,
    data       TEXT      NOT NULL,
    categories TEXT,
    scraped_at TIMESTAMP NOT NULL
)`

func newServiceUnderTest(t *testing.T, listing string) (*Service, *sql.DB) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, listing)
	}))
	t.Cleanup(server.Close)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	repo := storage.NewRepository(db, sq.Question)
	scraper := NewScraper(ScraperDeps{
		Fetcher:  fetch.New(nil),
		Store:    repo,
		Adapters: []site.Adapter{sites.NewHackerNews(server.URL)},
	})
	scraper.sleep = func(context.Context, time.Duration) error { return nil }

	sched := NewScheduler(&fakeDriver{}, scraper, nil)
	return NewService(scraper, sched, repo), db
}

func TestServiceEndToEndIncrementalScrape(t *testing.T) {
	t.Parallel()

	service, _ := newServiceUnderTest(t, listingFixture)
	ctx := context.Background()

	saved, err := service.TriggerScrape(ctx, domain.ModeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 4, saved, "four well-formed entries, the malformed one is dropped")

	articles, err := service.ListArticles(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, articles, 4)

	for i := 1; i < len(articles); i++ {
		assert.False(t, articles[i-1].ScrapedAt.Before(articles[i].ScrapedAt),
			"listing must be ordered by scrape time, newest first")
	}
	for _, article := range articles {
		assert.Nil(t, article.Categories, "fresh records carry no categories")
		assert.Equal(t, "thehackernews", article.Source)
		assert.NotEmpty(t, article.Data.Title())
	}

	// The same scrape again changes nothing but the timestamps.
	savedAgain, err := service.TriggerScrape(ctx, domain.ModeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 4, savedAgain)

	articles, err = service.ListArticles(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, articles, 4)
}

func TestServiceGetArticle(t *testing.T) {
	t.Parallel()

	service, _ := newServiceUnderTest(t, listingFixture)
	ctx := context.Background()

	_, err := service.TriggerScrape(ctx, domain.ModeIncremental)
	require.NoError(t, err)

	articles, err := service.ListArticles(ctx, "thehackernews", 1)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	found, err := service.GetArticle(ctx, articles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, articles[0].URL, found.URL)

	_, err = service.GetArticle(ctx, 99999)
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
}

func TestServiceCleanupArticles(t *testing.T) {
	t.Parallel()

	service, db := newServiceUnderTest(t, listingFixture)
	ctx := context.Background()

	_, err := service.TriggerScrape(ctx, domain.ModeIncremental)
	require.NoError(t, err)

	// Age one record past the retention window.
	stale := time.Now().UTC().AddDate(0, 0, -40)
	_, err = db.Exec("UPDATE articles SET scraped_at = ? WHERE url = ?", stale, "https://example.com/botnet")
	require.NoError(t, err)

	deleted, err := service.CleanupArticles(ctx, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	articles, err := service.ListArticles(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestServiceSchedulerLifecycle(t *testing.T) {
	t.Parallel()

	service, _ := newServiceUnderTest(t, listingFixture)
	ctx := context.Background()

	assert.False(t, service.SchedulerStatus())
	require.NoError(t, service.SchedulerStart(ctx))
	assert.True(t, service.SchedulerStatus())
	require.NoError(t, service.SchedulerStart(ctx), "second start is a no-op")

	require.NoError(t, service.SchedulerStop())
	assert.False(t, service.SchedulerStatus())
	require.NoError(t, service.SchedulerStop(), "second stop is a no-op")
}
