// Package httpcache implements the HTTP Cache (component I): a cached GET
// with a stale-if-error fallback for every outbound API call, grounded on
// original_source/app/avalanche/base.py's
// requests_cache.CachedSession(..., stale_if_error=True).
package httpcache

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// Client is the cached HTTP client behind design note 9's CachedHTTP
// surface: components depend on a narrow Get(url) interface that Client
// satisfies, not on *http.Client, so tests can substitute an in-memory
// fake.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	lastGood   sync.Map // url string -> []byte, used for stale-if-error
}

// New builds a Client backed by an on-disk cache under cacheDir. ttl sets
// the freshness window (request_cache_timeout, default 4h); timeout bounds
// every individual request (default 30s per §5).
func New(logger *slog.Logger, cacheDir string, ttl, timeout time.Duration) *Client {
	cache := diskcache.New(cacheDir)
	transport := httpcache.NewTransport(cache)
	transport.Transport = &ttlInjectingTransport{underlying: http.DefaultTransport, ttl: ttl}

	return &Client{
		logger: logger.With("component", "httpcache.Client"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// ttlInjectingTransport stamps a Cache-Control max-age onto every response
// that doesn't already carry explicit caching headers, so httpcache's
// standard RFC 7234 freshness calculation honors our configured TTL even
// though the upstream APIs (avalanche.ca, open-meteo.com) don't set one.
type ttlInjectingTransport struct {
	underlying http.RoundTripper
	ttl        time.Duration
}

func (t *ttlInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.underlying.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Header.Get("Cache-Control") == "" && resp.Header.Get("Expires") == "" {
		resp.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(t.ttl.Seconds())))
	}
	return resp, nil
}

// Get performs a cached GET. On success the body is remembered for the
// stale-if-error path; on network failure, the last successfully fetched
// body for this exact URL is served instead, per §4.I's "on network
// failure, return stale body and mark as degraded fetch."
func (c *Client) Get(url string) ([]byte, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		if stale, ok := c.lastGood.Load(url); ok {
			c.logger.Warn("serving stale cached response after fetch error", "url", url, "error", err)
			return stale.([]byte), nil
		}
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body for %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if stale, ok := c.lastGood.Load(url); ok {
			c.logger.Warn("serving stale cached response after non-2xx", "url", url, "status", resp.StatusCode)
			return stale.([]byte), nil
		}
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	c.lastGood.Store(url, body)
	return body, nil
}
