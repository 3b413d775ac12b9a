package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ppiankov/laytoneval/internal/cache"
	"github.com/ppiankov/laytoneval/internal/metrics"
	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/ppiankov/laytoneval/internal/worker"
	"github.com/rs/zerolog"
)

// Fetcher downloads pages and images politely: robots.txt is honoured, each
// host is rate limited, failures are retried and bodies may be cached.
type Fetcher struct {
	http      *retryablehttp.Client
	userAgent string
	maxBytes  int64

	limiter  *worker.Limiter
	robots   *RobotsChecker
	cache    cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithCache stores successful responses in c
func WithCache(c cache.Cache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		f.cacheTTL = ttl
	}
}

// WithFetchLogger sets the fetcher logger
func WithFetchLogger(logger zerolog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a fetcher from the crawl configuration
func NewFetcher(cfg model.CrawlConfig, opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		limiter:   worker.NewLimiter(cfg.RatePerSecond, cfg.Burst),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	proxy, err := NewProxyFunc(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	f.http = newRetryClient(cfg.Timeout, cfg.Retries, proxy, f.logger)
	if cfg.RespectRobots {
		f.robots = NewRobotsChecker(f.http.StandardClient(), cfg.UserAgent)
	}

	return f, nil
}

// Get returns the body at rawURL. Every failure is a *FetchError.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key(cache.NamespacePage, rawURL)
	if f.cache != nil {
		if body, ok := f.cache.Get(key); ok {
			return body, nil
		}
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}
		if !allowed {
			return nil, &FetchError{URL: rawURL, Err: ErrDisallowed}
		}
		if err := f.limiter.ApplyCrawlDelay(rawURL, delay); err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	body, err := f.do(ctx, rawURL)
	if err != nil {
		metrics.FetchErrors.Inc()
		return nil, err
	}

	metrics.PagesFetched.Inc()
	metrics.BytesFetched.Add(float64(len(body)))

	if f.cache != nil {
		if err := f.cache.Set(key, body, f.cacheTTL); err != nil {
			f.logger.Warn().Err(err).Str("url", rawURL).Msg("cache write failed")
		}
	}

	return body, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,image/*;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrStatus}
	}

	limit := f.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > limit {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrTooLarge}
	}

	return body, nil
}
