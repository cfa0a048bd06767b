package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced across the core's boundaries.
var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrScrapeInProgress = errors.New("scrape already in progress")
)

// FetchError reports a failed listing-page retrieval. It aborts the scrape
// run it occurs in.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError reports a document too malformed to parse at all. Individual
// broken entries are skipped instead and never produce this error.
type ExtractError struct {
	Err error
}

func (e *ExtractError) Error() string { return fmt.Sprintf("extract articles: %v", e.Err) }

func (e *ExtractError) Unwrap() error { return e.Err }
