package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/skillcat/pkg/cache"
	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/httputil"
	"github.com/matzehuels/skillcat/pkg/observability"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 8 << 20

// Client provides shared HTTP functionality for upstream API clients.
// It handles response caching, retry of transient failures, status mapping
// and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client. Successful GET bodies are cached in c for ttl.
// Pass nil for c to disable caching and nil for headers if none are needed.
func NewClient(c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		ttl:     ttl,
		headers: headers,
	}
}

// Get performs a cached HTTP GET and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	return decode(url, body, v)
}

// GetBytes performs a cached HTTP GET and returns the raw body.
// Only successful responses are cached; errors are never cached.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if data, ok, err := c.cache.Get(ctx, url); err == nil && ok {
		return data, nil
	}

	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.do(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, url, body, c.ttl)
	return body, nil
}

// Fetch performs an uncached HTTP GET and JSON-decodes the response into v.
// Use it for endpoints whose answer must be live, such as quota checks.
func (c *Client) Fetch(ctx context.Context, url string, v any) error {
	body, err := c.do(ctx, url)
	if err != nil {
		return err
	}
	return decode(url, body, v)
}

func decode(url string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errs.Wrap(errs.ErrCodeMalformedData, err, "decode %s", url)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "GET %s", url))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, url); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, httputil.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "read %s", url))
	}
	return body, nil
}

func checkStatus(resp *http.Response, url string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "GET %s: not found", url)
	case code == http.StatusUnauthorized:
		return errs.New(errs.ErrCodeUnauthorized, "GET %s: bad credentials", url)
	case code == http.StatusTooManyRequests, code == http.StatusForbidden && isRateLimited(resp.Header):
		return errs.Wrap(errs.ErrCodeRateLimited, rateLimitError(resp.Header), "GET %s", url)
	case code >= 500:
		return httputil.Retryable(errs.New(errs.ErrCodeNetwork, "GET %s: status %d", url, code))
	default:
		return errs.New(errs.ErrCodeNetwork, "GET %s: status %d", url, code)
	}
}

func isRateLimited(h http.Header) bool {
	return h.Get("X-RateLimit-Remaining") == "0" || h.Get("Retry-After") != ""
}

func rateLimitError(h http.Header) *errs.RateLimitedError {
	e := &errs.RateLimitedError{}
	if s, err := strconv.Atoi(h.Get("Retry-After")); err == nil {
		e.RetryAfter = s
	}
	if ts, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		e.Reset = time.Unix(ts, 0).UTC()
	}
	return e
}
