package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/storefront/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxAttempts       = 3
	maxErrorBodyBytes = 4096
	defaultPageSize   = 1000
	defaultTable      = "products"
)

// ClientConfig holds configuration for the catalog data service client
type ClientConfig struct {
	BaseURL           string
	APIKey            string
	Table             string
	PageSize          int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client loads the product catalog from the storefront's PostgREST-style
// data service
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	table       string
	pageSize    int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      *logrus.Entry
	debug       bool
}

// NewClient creates a new catalog client
func NewClient(config ClientConfig, logger *logrus.Entry) *Client {
	if logger == nil {
		logger = logrus.WithField("component", "catalog_client")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	table := config.Table
	if table == "" {
		table = defaultTable
	}
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 10
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		apiKey:      config.APIKey,
		table:       table,
		pageSize:    pageSize,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		backoff:     exponentialBackoff,
		logger:      logger,
	}
}

// SetDebug enables per-request debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		c.logger.Debugf(format, args...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt:
// 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// LoadCatalog fetches every product row, page by page, and maps the rows to
// catalog entries
func (c *Client) LoadCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	var rows []ProductRow

	for offset := 0; ; offset += c.pageSize {
		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page...)
		c.debugLog("fetched %d rows at offset %d", len(page), offset)

		if len(page) < c.pageSize {
			break
		}
	}

	entries, skipped := MapToCatalogEntries(rows)
	if skipped > 0 {
		c.logger.WithField("skipped", skipped).Warn("Skipped catalog rows without a unique id")
	}
	c.logger.WithField("entries", len(entries)).Info("Catalog loaded from data service")

	return entries, nil
}

// fetchPage requests one page of rows, retrying transient failures
func (c *Client) fetchPage(ctx context.Context, offset int) ([]ProductRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "id.asc")
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("offset", strconv.Itoa(offset))
	reqURL := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, url.PathEscape(c.table), params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		rows, retry, err := c.doFetch(ctx, reqURL)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if !retry || attempt == maxAttempts {
			break
		}

		c.logger.WithError(err).WithField("attempt", attempt).Warn("Catalog request failed, retrying")
		if err := sleepContext(ctx, c.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// doFetch performs a single request. The bool reports whether the failure
// is worth retrying.
func (c *Client) doFetch(ctx context.Context, reqURL string) ([]ProductRow, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Storefront-Search/1.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.debugLog("GET %s", reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: table %q not found", domain.ErrCatalogUnavailable, c.table)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		return nil, true, fmt.Errorf("%w: status %d: %s", domain.ErrCatalogUnavailable, resp.StatusCode, body)
	default:
		body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		return nil, false, fmt.Errorf("%w: status %d: %s", domain.ErrCatalogUnavailable, resp.StatusCode, body)
	}

	var rows []ProductRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrCatalogFormat, err)
	}

	return rows, false, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
