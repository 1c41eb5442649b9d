// Package books wraps the Google Books volumes API behind a small lookup
// client. Results are fetched fresh per search and never persisted; only
// volume identifiers end up in the progress store.
package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL    = "https://www.googleapis.com/books/v1"
	defaultTimeout    = 10 * time.Second
	defaultMaxResults = 20

	maxRetries         = 3
	initialRetryDelay  = 500 * time.Millisecond
	maxRetryDelay      = 10 * time.Second
	retryBackoffFactor = 2
)

// BookRecord is a normalized search result. Transient: only ID is ever stored.
type BookRecord struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	PublishedYear int      `json:"published_year,omitempty"`
	Description   string   `json:"description,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	ThumbnailURL  string   `json:"thumbnail_url,omitempty"`
}

// Client interfaces with the Google Books volumes API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxResults int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithAPIKey attaches an API key to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMaxResults caps the number of results per search.
func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// NewClient creates a Google Books API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:    defaultBaseURL,
		maxResults: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries the volumes API for books matching query, optionally
// narrowed by topic. Transient upstream failures (network errors, 429, 5xx)
// are retried with exponential backoff before giving up with ErrUnavailable.
func (c *Client) Search(ctx context.Context, query, topic string) ([]BookRecord, error) {
	q := strings.TrimSpace(query)
	if topic != "" {
		q = strings.TrimSpace(q + " " + topic)
	}
	if q == "" {
		return nil, fmt.Errorf("search query is required")
	}

	u, err := url.Parse(c.baseURL + "/volumes")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	params := u.Query()
	params.Set("q", q)
	params.Set("maxResults", fmt.Sprintf("%d", c.maxResults))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u.RawQuery = params.Encode()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		records, err := c.doSearchRequest(ctx, u.String())
		if err == nil {
			return records, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: max retries exceeded: %v", ErrUnavailable, lastErr)
}

func (c *Client) doSearchRequest(ctx context.Context, url string) ([]BookRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Shelfmate/1.0 (https://github.com/shelfmate/shelfmate)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	records := make([]BookRecord, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID == "" || item.VolumeInfo.Title == "" {
			continue
		}
		records = append(records, convertVolume(item))
	}
	return records, nil
}

func convertVolume(item volumeItem) BookRecord {
	info := item.VolumeInfo

	record := BookRecord{
		ID:          item.ID,
		Title:       info.Title,
		Authors:     info.Authors,
		Description: info.Description,
		Categories:  info.Categories,
	}

	// Prefer ISBN-13 over ISBN-10
	for _, ident := range info.IndustryIdentifiers {
		if ident.Type == "ISBN_13" {
			record.ISBN = ident.Identifier
			break
		}
		if ident.Type == "ISBN_10" && record.ISBN == "" {
			record.ISBN = ident.Identifier
		}
	}

	record.PublishedYear = extractYear(info.PublishedDate)

	if info.ImageLinks.Thumbnail != "" {
		record.ThumbnailURL = info.ImageLinks.Thumbnail
	} else {
		record.ThumbnailURL = info.ImageLinks.SmallThumbnail
	}

	return record
}

// extractYear pulls a 4-digit year out of the published date, which the API
// returns as "2006", "2006-01" or "2006-01-02".
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	var year int
	if _, err := fmt.Sscanf(dateStr[:4], "%d", &year); err != nil {
		return 0
	}
	if year < 1000 || year > 3000 {
		return 0
	}
	return year
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// isRetryableError reports whether the failure is transient: rate limits,
// server errors, and network-level failures. Other 4xx responses and parse
// failures are not retried.
func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Google Books API response types (internal)

type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	Categories          []string             `json:"categories"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	ImageLinks          imageLinks           `json:"imageLinks"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}
