package sites

import (
	"time"

	"github.com/mmcdole/gofeed"

	"newsherd/internal/domain"
	"newsherd/internal/site"
)

// RSSFeed adapts any RSS or Atom feed to the scrape pipeline. Feeds have no
// pagination, so every mode reduces to a single fetch of the feed URL.
type RSSFeed struct {
	name    string
	feedURL string
	parser  *gofeed.Parser
}

var _ site.Adapter = (*RSSFeed)(nil)

// NewRSSFeed builds an adapter for a named feed endpoint.
func NewRSSFeed(name, feedURL string) *RSSFeed {
	return &RSSFeed{name: name, feedURL: feedURL, parser: gofeed.NewParser()}
}

// Name identifies the feed inside the registry and on stored records.
func (r *RSSFeed) Name() string {
	return r.name
}

// BuildPageURL returns the feed URL for page 1 and nothing afterwards.
func (r *RSSFeed) BuildPageURL(page int, _ time.Time) string {
	if page > 1 {
		return ""
	}
	return r.feedURL
}

// Extract maps feed items to candidates. gofeed normalizes RSS and Atom into
// one item shape, so both formats are handled transparently.
func (r *RSSFeed) Extract(raw string) ([]domain.Candidate, error) {
	feed, err := r.parser.ParseString(raw)
	if err != nil {
		return nil, &domain.ExtractError{Err: err}
	}

	candidates := make([]domain.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Title
		}
		category := domain.UncategorizedLabel
		if len(item.Categories) > 0 && item.Categories[0] != "" {
			category = item.Categories[0]
		}

		data := domain.ArticleData{
			domain.FieldTitle:    item.Title,
			domain.FieldSummary:  summary,
			domain.FieldCategory: category,
		}
		if item.Image != nil && item.Image.URL != "" {
			data[domain.FieldImageURL] = item.Image.URL
		}
		if item.PublishedParsed != nil {
			data[domain.FieldPublishedDate] = item.PublishedParsed.UTC().Format(time.RFC3339)
		}

		candidates = append(candidates, domain.Candidate{URL: item.Link, Data: data})
	}

	return candidates, nil
}
