package sites

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsherd/internal/domain"
	"newsherd/internal/site"
)

const (
	hackerNewsBaseURL  = "https://thehackernews.com"
	hackerNewsPageSize = 20
	// Listing pages past the first are addressed by a date-offset query;
	// three days per page approximates a month across ten pages.
	hackerNewsDaysPerPage = 3
)

// HackerNews reads The Hacker News listing pages.
type HackerNews struct {
	base string
}

var _ site.Adapter = (*HackerNews)(nil)

// NewHackerNews builds the adapter; base overrides the site root for tests
// and defaults to the live site when empty.
func NewHackerNews(base string) *HackerNews {
	if base == "" {
		base = hackerNewsBaseURL
	}
	return &HackerNews{base: strings.TrimSuffix(base, "/")}
}

// Name identifies the adapter inside the registry and on stored records.
func (h *HackerNews) Name() string {
	return "thehackernews"
}

// BuildPageURL maps page 1 to the site root and later pages to the search
// endpoint with an updated-max timestamp pushed back three days per page.
func (h *HackerNews) BuildPageURL(page int, now time.Time) string {
	if page <= 1 {
		return h.base
	}

	offset := now.AddDate(0, 0, -page*hackerNewsDaysPerPage).UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s/search?updated-max=%s&max-results=%d",
		h.base, url.QueryEscape(offset), hackerNewsPageSize)
}

// Extract pulls every post block from the page. Entries without a title or a
// link are dropped; missing summaries fall back to the title and missing
// labels to the Uncategorized placeholder.
func (h *HackerNews) Extract(html string) ([]domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &domain.ExtractError{Err: err}
	}

	var candidates []domain.Candidate
	doc.Find(".body-post").Each(func(_ int, post *goquery.Selection) {
		title := strings.TrimSpace(post.Find(".home-title").First().Text())
		link, _ := post.Find(".story-link").First().Attr("href")
		link = strings.TrimSpace(link)
		if title == "" || link == "" {
			return
		}

		summary := strings.TrimSpace(post.Find(".home-desc").First().Text())
		if summary == "" {
			summary = title
		}

		category := strings.TrimSpace(post.Find(".label-name").First().Text())
		if category == "" {
			category = domain.UncategorizedLabel
		}

		data := domain.ArticleData{
			domain.FieldTitle:    title,
			domain.FieldSummary:  summary,
			domain.FieldCategory: category,
		}
		if img, ok := post.Find(".img-ratio img").First().Attr("src"); ok {
			if img = strings.TrimSpace(img); img != "" {
				data[domain.FieldImageURL] = img
			}
		}

		candidates = append(candidates, domain.Candidate{URL: link, Data: data})
	})

	return candidates, nil
}
