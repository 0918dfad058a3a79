package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/pkg/caching"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "localfeed/1.0 (+https://github.com/dtnitsch/localfeed)"

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 10 << 20
)

type Fetcher struct {
	client    *http.Client
	userAgent string
	cache     *caching.Cache
	logger    *zap.Logger
}

type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithCache serves fresh responses from c and stores new ones in it.
func WithCache(c *caching.Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the HTML for url, preferring the cache unless force is set.
// The bool result reports whether the bytes came from the cache.
func (f *Fetcher) Fetch(ctx context.Context, url string, force bool) ([]byte, bool, error) {
	if f.cache != nil && !force {
		if data, ok := f.cache.Get(url); ok {
			f.logger.Debug("cache hit", zap.String("url", url))
			return data, true, nil
		}
	}

	data, err := f.GetHTMLBytes(ctx, url)
	if err != nil {
		return nil, false, err
	}

	if f.cache != nil {
		if err := f.cache.Set(url, data); err != nil {
			f.logger.Warn("failed to cache html", zap.String("url", url), zap.Error(err))
		}
	}
	return data, false, nil
}

// GetHTMLBytes fetches url and returns the response body.
func (f *Fetcher) GetHTMLBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}
