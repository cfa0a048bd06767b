package domain

import "time"

// Keys of the well-known fields inside an article payload. Sites may attach
// additional keys; they are preserved verbatim through persistence.
const (
	FieldTitle         = "title"
	FieldSummary       = "summary"
	FieldCategory      = "category"
	FieldImageURL      = "imageUrl"
	FieldPublishedDate = "publishedDate"
)

// UncategorizedLabel is the category fallback for entries without a label.
const UncategorizedLabel = "Uncategorized"

// ArticleData is the semi-structured payload extracted from a listing entry.
type ArticleData map[string]string

// Title returns the required title field.
func (d ArticleData) Title() string { return d[FieldTitle] }

// Summary returns the summary field.
func (d ArticleData) Summary() string { return d[FieldSummary] }

// Category returns the site-provided category label.
func (d ArticleData) Category() string { return d[FieldCategory] }

// Candidate is an extracted listing entry that has not been persisted yet.
type Candidate struct {
	URL  string
	Data ArticleData
}

// ArticleRecord is the unit of persistence, keyed by canonical URL.
type ArticleRecord struct {
	ID         int64
	URL        string
	Source     string
	Data       ArticleData
	Categories []string
	ScrapedAt  time.Time
}

// Mode selects how many listing pages a scrape run covers.
type Mode string

const (
	// ModeInitial backfills roughly a month of listings.
	ModeInitial Mode = "initial"
	// ModeIncremental fetches only the site root for new items.
	ModeIncremental Mode = "incremental"
)

// Preferences describes a user's per-source article filters. An empty Sources
// slice allows every source; an empty category list for a source allows every
// category of that source.
type Preferences struct {
	Sources          []string
	SourceCategories map[string][]string
}
