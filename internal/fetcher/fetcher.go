package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/amoghj8/gradwatch/internal/config"
	"github.com/amoghj8/gradwatch/internal/model"
)

// Ensure ListingFetcher implements model.PageFetcher.
var _ model.PageFetcher = (*ListingFetcher)(nil)

// ListingFetcher retrieves the raw careers-listing page over HTTP.
// A token-bucket limiter keeps requests to the careers host polite even when
// a retry decorator sits on top.
type ListingFetcher struct {
	listingURL string
	userAgent  string
	client     *http.Client
	limiter    *rate.Limiter
}

// New builds a fetcher for the configured source. requestsPerMinute bounds
// the request rate against the careers host (burst of 1).
func New(src config.SourceConfig, requestsPerMinute float64, client *http.Client) *ListingFetcher {
	q := url.Values{}
	for k, v := range src.Query {
		q.Set(k, v)
	}

	listingURL := src.BaseURL
	if enc := q.Encode(); enc != "" {
		listingURL += "?" + enc
	}

	return &ListingFetcher{
		listingURL: listingURL,
		userAgent:  src.UserAgent,
		client:     client,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), 1),
	}
}

// URL returns the fully-assembled listing URL (for logging).
func (f *ListingFetcher) URL() string {
	return f.listingURL
}

// Fetch retrieves the listing page body. Non-2xx responses come back as
// *model.HTTPError so callers can distinguish retryable failures.
func (f *ListingFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building listing request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("fetching listing %s", f.listingURL),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading listing body: %w", err)
	}
	return body, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
