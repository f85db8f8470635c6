package platform

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
)

const (
	// DefaultUserAgent identifies modsync to the platform APIs
	DefaultUserAgent = "jakoblorz/go-modsync"

	// maxJSONResponseBytes bounds the size of decoded API responses (10 MB)
	maxJSONResponseBytes = 10 << 20
)

// apiClient is the JSON-over-HTTP plumbing shared by the platform backends
type apiClient struct {
	platform   string
	httpClient *http.Client
	baseURL    string
	userAgent  string
	headers    map[string]string
}

func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", c.platform, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{Platform: c.platform, RetryAfter: retryAfter(resp.Header)}
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned HTTP %d: %s", c.platform, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.platform, err)
	}
	return nil
}

// retryAfter reads the reset delay from Modrinth's X-Ratelimit-Reset or the standard Retry-After header
func retryAfter(h http.Header) time.Duration {
	for _, key := range []string{"X-Ratelimit-Reset", "Retry-After"} {
		if v := h.Get(key); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}

func newHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Option configures a platform backend during construction
type Option func(*apiClient)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations
func WithHTTPClient(c *http.Client) Option {
	return func(a *apiClient) {
		a.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers
func WithBaseURL(base string) Option {
	return func(a *apiClient) {
		if base != "" {
			a.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header value
func WithUserAgent(ua string) Option {
	return func(a *apiClient) {
		if ua != "" {
			a.userAgent = ua
		}
	}
}

func newAPIClient(platform, baseURL string, opts []Option) apiClient {
	a := apiClient{
		platform:  platform,
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		headers:   map[string]string{},
	}
	for _, opt := range opts {
		opt(&a)
	}
	a.httpClient = newHTTPClient(a.httpClient)
	return a
}
