// Package client wraps the ask_db backend HTTP API. Every read
// endpoint is routed through the request cache with a fixed
// per-endpoint TTL; mutations invalidate the affected keys so the next
// read bypasses the cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"askdb/pkg/cache"
	"askdb/pkg/telemetry"
)

// Per-endpoint cache windows. Policy constants, not configuration:
// history lists churn fastest, dashboards slowest.
const (
	historyTTL   = 2 * time.Second
	askTTL       = 5 * time.Second
	queryTTL     = 10 * time.Second
	bookmarksTTL = 10 * time.Second
	threadTTL    = 15 * time.Second
	tableTTL     = 15 * time.Second
	dashboardTTL = 30 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL string
	UserID  string
	Timeout time.Duration
	// RateRPS/RateBurst bound outgoing ask calls. The limiter is
	// advisory: a disallowed send is dropped, never queued.
	RateRPS   float64
	RateBurst int
	Cache     *cache.Cache
	// BlobDir is where binary answers are spooled; defaults to the
	// system temp dir.
	BlobDir string
}

// Client is a caching HTTP client for the ask_db backend.
type Client struct {
	base    string
	userID  string
	http    *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
	blobDir string
}

// New validates options and returns a ready client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("askdb: base URL required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	ch := opts.Cache
	if ch == nil {
		ch = cache.New(cache.RealClock())
	}
	rps := opts.RateRPS
	if rps <= 0 {
		rps = 1
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}
	blobDir := opts.BlobDir
	if blobDir == "" {
		blobDir = os.TempDir()
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		userID:  opts.UserID,
		http:    &http.Client{Timeout: opts.Timeout},
		cache:   ch,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		blobDir: blobDir,
	}, nil
}

// UserID returns the configured user identity.
func (c *Client) UserID() string { return c.userID }

// Cache exposes the underlying request cache (for invalidation in
// callers that mutate out of band).
func (c *Client) Cache() *cache.Cache { return c.cache }

// call performs one JSON request/response round-trip with telemetry.
func (c *Client) call(ctx context.Context, endpoint, method, path string, body, out any) error {
	start := time.Now()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("askdb: %s: encode body: %w", endpoint, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("askdb: %s: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.ObserveRequest(endpoint, time.Since(start), err)
		return fmt.Errorf("askdb: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	err = decodeJSON(endpoint, resp, out)
	telemetry.ObserveRequest(endpoint, time.Since(start), err)
	return err
}

// decodeJSON enforces status and content type, then decodes into out.
func decodeJSON(endpoint string, resp *http.Response, out any) error {
	if resp.StatusCode/100 != 2 {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedContentType, ct, endpoint)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("askdb: %s: decode response: %w", endpoint, err)
	}
	return nil
}

// readSnippet drains at most 512 bytes of an error body for messages.
func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
