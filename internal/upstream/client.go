package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageSize = 300
	DefaultMaxPages = 1000

	// maxErrorBody bounds how much of a failed response is kept in the error.
	maxErrorBody = 512
)

var (
	// ErrMalformedPage marks a page whose records key is missing or not an array.
	ErrMalformedPage = errors.New("malformed upstream page")

	// ErrPageLimit marks an iterator that stopped at its max-page safety cap.
	ErrPageLimit = errors.New("upstream page limit reached")
)

// Query selects one time-windowed upstream dataset.
type Query struct {
	Path       string
	RecordsKey string
	From       time.Time
	To         time.Time
	// Unranged omits from/to (the agent directory endpoint).
	Unranged bool
}

// Client fetches paginated record sets from the contact-center API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageSize   int
	maxPages   int
}

// Options tunes a Client. Zero values fall back to defaults.
type Options struct {
	PageSize int
	MaxPages int
	Timeout  time.Duration
}

// NewClient creates an upstream client rooted at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		pageSize:   opts.PageSize,
		maxPages:   opts.MaxPages,
	}
}

// Pages returns an iterator over q authorized with token. No request is made
// until the first call to Next.
func (c *Client) Pages(token string, q Query) *PageIterator {
	return &PageIterator{client: c, token: token, query: q}
}

// PageIterator walks a cursor-paginated dataset one page at a time.
// Page N+1 is only requested after the caller has consumed page N.
type PageIterator struct {
	client    *Client
	token     string
	query     Query
	cursor    string
	page      int
	records   []json.RawMessage
	exhausted bool
	err       error
}

// Next fetches the next page. It returns false when the dataset is exhausted,
// the context is cancelled, the page cap is hit, or a request fails; Err
// tells these apart.
func (it *PageIterator) Next(ctx context.Context) bool {
	if it.exhausted || it.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		it.err = err
		return false
	}
	if it.page >= it.client.maxPages {
		slog.Warn("[Upstream] Page limit reached, stopping pagination",
			"path", it.query.Path,
			"max_pages", it.client.maxPages)
		it.err = fmt.Errorf("%w: %d pages of %s", ErrPageLimit, it.client.maxPages, it.query.Path)
		return false
	}

	records, next, err := it.client.fetchPage(ctx, it.token, it.query, it.cursor)
	if err != nil {
		it.err = err
		it.records = nil
		return false
	}

	it.page++
	it.records = records
	it.cursor = next
	if next == "" {
		it.exhausted = true
	}
	return true
}

// Records returns the raw records of the current page.
func (it *PageIterator) Records() []json.RawMessage { return it.records }

// Page returns the 1-based number of the current page.
func (it *PageIterator) Page() int { return it.page }

// Err returns the error that stopped iteration, or nil on natural exhaustion.
func (it *PageIterator) Err() error { return it.err }

func (c *Client) fetchPage(ctx context.Context, token string, q Query, cursor string) ([]json.RawMessage, string, error) {
	params := url.Values{}
	if !q.Unranged {
		params.Set("from", q.From.UTC().Format(time.RFC3339))
		params.Set("to", q.To.UTC().Format(time.RFC3339))
	}
	params.Set("page_size", strconv.Itoa(c.pageSize))
	if cursor != "" {
		params.Set("next_page_token", cursor)
	}

	endpoint := c.baseURL + q.Path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to call upstream %s: %w", q.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "", &StatusError{Path: q.Path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return decodePage(resp.Body, q.RecordsKey)
}

// decodePage extracts the records array and continuation cursor.
func decodePage(r io.Reader, recordsKey string) ([]json.RawMessage, string, error) {
	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	raw, ok := envelope[recordsKey]
	if !ok {
		return nil, "", fmt.Errorf("%w: missing %q", ErrMalformedPage, recordsKey)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil || records == nil {
		return nil, "", fmt.Errorf("%w: %q is not an array", ErrMalformedPage, recordsKey)
	}

	var next string
	if rawNext, ok := envelope["next_page_token"]; ok {
		// A non-string cursor is treated as the end of the dataset.
		_ = json.Unmarshal(rawNext, &next)
	}
	return records, next, nil
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}
