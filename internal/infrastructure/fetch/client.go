package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"newsherd/internal/domain"
	"newsherd/internal/ports"
)

const (
	requestTimeout = 30 * time.Second
	// Listing sites block obvious bot agents; present a browser identity.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client retrieves listing pages over HTTP. Retry policy belongs to callers;
// a single attempt either yields the page body or a domain.FetchError.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ ports.PageFetcher = (*Client)(nil)

// New builds a fetcher with the fixed timeout and client identity applied.
func New(logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", userAgent)

	return &Client{http: httpClient, logger: logger}
}

// Fetch performs one GET of the page URL and returns the raw body.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", &domain.FetchError{URL: pageURL, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return "", &domain.FetchError{
			URL:    pageURL,
			Status: resp.StatusCode(),
			Err:    fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	if c.logger != nil {
		c.logger.Debug("page fetched", "url", pageURL, "bytes", len(resp.Body()))
	}

	return string(resp.Body()), nil
}
