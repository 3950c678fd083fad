package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultReadTimeout    = 45 * time.Second
	DefaultCacheMaxAge    = 2 * time.Hour
)

// ResponseCache keeps downloaded bodies keyed by request URL.
type ResponseCache interface {
	Get(url string, maxAge time.Duration) ([]byte, bool, error)
	Put(url string, body []byte) error
	Clear() error
}

type Options struct {
	UserAgent      string
	CacheMaxAge    time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Cache          ResponseCache
}

type Downloader struct {
	httpClient  *http.Client
	userAgent   string
	cacheMaxAge time.Duration
	cache       ResponseCache
}

func NewDownloader(opts Options) *Downloader {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.CacheMaxAge <= 0 {
		opts.CacheMaxAge = DefaultCacheMaxAge
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: opts.ConnectTimeout}).DialContext
	transport.ResponseHeaderTimeout = opts.ReadTimeout

	return &Downloader{
		httpClient:  &http.Client{Transport: transport},
		userAgent:   opts.UserAgent,
		cacheMaxAge: opts.CacheMaxAge,
		cache:       opts.Cache,
	}
}

// Fetch returns the raw document for req, from the response cache when a
// fresh copy exists and the request allows it.
func (d *Downloader) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("request URL is empty")
	}

	target := ToURL(req)

	if d.cache != nil && !req.SkipCache {
		body, ok, err := d.cache.Get(target, d.cacheMaxAge)
		if err != nil {
			slog.Warn("Failed to read response cache", "url", target, "error", err)
		} else if ok {
			slog.Debug("Response served from cache", "url", target)
			return body, nil
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	maxAge := int(d.cacheMaxAge.Seconds())
	if req.SkipCache {
		maxAge = 0
	}
	httpReq.Header.Set("User-Agent", d.userAgent)
	httpReq.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))

	start := time.Now()
	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	slog.Debug("Response downloaded", "url", target, "bytes", len(body), "duration", time.Since(start))

	if d.cache != nil {
		if err := d.cache.Put(target, body); err != nil {
			slog.Warn("Failed to store response in cache", "url", target, "error", err)
		}
	}

	return body, nil
}

func (d *Downloader) ClearCache() error {
	if d.cache == nil {
		return nil
	}
	if err := d.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear response cache: %w", err)
	}
	return nil
}
