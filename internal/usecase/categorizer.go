package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"newsherd/internal/ports"
)

const categorizerSystemPrompt = "You are a JSON API that categorizes articles. " +
	"Respond only with valid JSON, no explanations."

const categorizerPromptTemplate = `You are a categorization expert. Analyze the following articles and create a categorization system.

Requirements:
1. Generate at least 10 distinct categories that cover all the articles
2. Each article can belong to multiple categories
3. Categories should be meaningful and descriptive

Articles:
%s

Respond with valid JSON only, no markdown, in this exact format:
{"categories": ["Category1", ...], "articleCategories": {"1": ["Category1"], ...}}`

// Categorizer assigns classification labels to stored articles of a source
// through the completion service.
type Categorizer struct {
	store     ports.ArticleStore
	completer ports.Completer
	logger    *slog.Logger
}

// NewCategorizer constructs the categorization use case.
func NewCategorizer(store ports.ArticleStore, completer ports.Completer, logger *slog.Logger) *Categorizer {
	return &Categorizer{store: store, completer: completer, logger: logger}
}

type categorization struct {
	Categories        []string            `json:"categories"`
	ArticleCategories map[string][]string `json:"articleCategories"`
}

// CategorizeSource sends every stored article of the source to the completion
// service and writes the returned labels back onto the records. It returns
// the generated category set.
func (c *Categorizer) CategorizeSource(ctx context.Context, source string) ([]string, error) {
	if c.completer == nil {
		return nil, fmt.Errorf("categorization requires a completion service")
	}

	articles, err := c.store.FindMany(ctx, ports.ArticleFilter{Source: source})
	if err != nil {
		return nil, fmt.Errorf("load articles for %s: %w", source, err)
	}
	if len(articles) == 0 {
		return nil, nil
	}

	type summary struct {
		ID      int64  `json:"id"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}
	summaries := make([]summary, 0, len(articles))
	for _, article := range articles {
		summaries = append(summaries, summary{
			ID:      article.ID,
			Title:   article.Data.Title(),
			Summary: article.Data.Summary(),
		})
	}

	encoded, err := json.Marshal(summaries)
	if err != nil {
		return nil, fmt.Errorf("encode article summaries: %w", err)
	}

	response, err := c.completer.Complete(ctx, categorizerSystemPrompt,
		fmt.Sprintf(categorizerPromptTemplate, string(encoded)))
	if err != nil {
		return nil, fmt.Errorf("generate categories for %s: %w", source, err)
	}

	var parsed categorization
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &parsed); err != nil {
		return nil, fmt.Errorf("parse categorization response: %w", err)
	}

	for key, labels := range parsed.ArticleCategories {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			c.warn("categorization returned non-numeric article id", "id", key)
			continue
		}
		if err := c.store.SetCategories(ctx, id, labels); err != nil {
			c.warn("store categories failed", "article_id", id, "error", err)
		}
	}

	return parsed.Categories, nil
}

func (c *Categorizer) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
