package usecase

import (
	"context"
	"fmt"
	"slices"

	"newsherd/internal/domain"
	"newsherd/internal/ports"
)

// Feed serves stored articles filtered by a user's source and category
// preferences. The preference directory is an external collaborator.
type Feed struct {
	store ports.ArticleStore
	prefs ports.PreferenceDirectory
}

// NewFeed constructs the per-user listing use case.
func NewFeed(store ports.ArticleStore, prefs ports.PreferenceDirectory) *Feed {
	return &Feed{store: store, prefs: prefs}
}

// ListForUser returns the newest articles the user's preferences admit, up to
// limit. Unknown users surface domain.ErrUserNotFound from the directory.
func (f *Feed) ListForUser(ctx context.Context, userID int64, limit int) ([]domain.ArticleRecord, error) {
	prefs, err := f.prefs.PreferencesFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences for user %d: %w", userID, err)
	}

	articles, err := f.store.FindMany(ctx, ports.ArticleFilter{})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	matched := make([]domain.ArticleRecord, 0, limit)
	for _, article := range articles {
		if !allows(prefs, article) {
			continue
		}
		matched = append(matched, article)
		if limit > 0 && len(matched) == limit {
			break
		}
	}

	return matched, nil
}

func allows(prefs domain.Preferences, article domain.ArticleRecord) bool {
	if len(prefs.Sources) > 0 && !slices.Contains(prefs.Sources, article.Source) {
		return false
	}

	wanted := prefs.SourceCategories[article.Source]
	if len(wanted) == 0 {
		return true
	}

	// Assigned classification labels win; fall back to the label the site
	// itself published.
	labels := article.Categories
	if len(labels) == 0 {
		labels = []string{article.Data.Category()}
	}
	for _, label := range labels {
		if slices.Contains(wanted, label) {
			return true
		}
	}
	return false
}
