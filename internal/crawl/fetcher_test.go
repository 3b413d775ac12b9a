package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/laytoneval/internal/cache"
	"github.com/ppiankov/laytoneval/internal/model"
)

func testCrawlConfig() model.CrawlConfig {
	return model.CrawlConfig{
		UserAgent:     "laytoneval-test/1.0",
		Timeout:       5 * time.Second,
		MaxBodyBytes:  1024,
		RatePerSecond: 1000,
		Burst:         10,
		Retries:       2,
		RespectRobots: true,
	}
}

func newTestFetcher(t *testing.T, opts ...FetcherOption) *Fetcher {
	t.Helper()
	f, err := NewFetcher(testCrawlConfig(), opts...)
	if err != nil {
		t.Fatalf("NewFetcher failed: %v", err)
	}
	f.http.RetryWaitMin = time.Millisecond
	f.http.RetryWaitMax = 5 * time.Millisecond
	return f
}

func newWikiServer(t *testing.T, flakyHits *atomic.Int32, pageHits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
		case "/wiki/Puzzle:A":
			if pageHits != nil {
				pageHits.Add(1)
			}
			if got := r.Header.Get("User-Agent"); got != "laytoneval-test/1.0" {
				t.Errorf("Expected user agent header, got %q", got)
			}
			_, _ = fmt.Fprint(w, "<html><body>A</body></html>")
		case "/flaky":
			if flakyHits.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = fmt.Fprint(w, "recovered")
		case "/big":
			_, _ = fmt.Fprint(w, strings.Repeat("x", 2048))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFetcher_Get(t *testing.T) {
	var flaky atomic.Int32
	server := newWikiServer(t, &flaky, nil)
	defer server.Close()

	body, err := newTestFetcher(t).Get(context.Background(), server.URL+"/wiki/Puzzle:A")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(body) != "<html><body>A</body></html>" {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestFetcher_RetriesTransientFailure(t *testing.T) {
	var flaky atomic.Int32
	server := newWikiServer(t, &flaky, nil)
	defer server.Close()

	body, err := newTestFetcher(t).Get(context.Background(), server.URL+"/flaky")
	if err != nil {
		t.Fatalf("Expected success after retry, got %v", err)
	}
	if string(body) != "recovered" {
		t.Errorf("Unexpected body: %s", body)
	}
	if flaky.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", flaky.Load())
	}
}

func TestFetcher_Errors(t *testing.T) {
	var flaky atomic.Int32
	server := newWikiServer(t, &flaky, nil)
	defer server.Close()

	tests := []struct {
		path   string
		target error
		status int
	}{
		{"/missing", ErrStatus, http.StatusNotFound},
		{"/private/page", ErrDisallowed, 0},
		{"/big", ErrTooLarge, http.StatusOK},
	}

	f := newTestFetcher(t)
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := f.Get(context.Background(), server.URL+tt.path)

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("Expected FetchError, got %v", err)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
			if fetchErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, fetchErr.StatusCode)
			}
		})
	}
}

func TestFetcher_Cache(t *testing.T) {
	var flaky, hits atomic.Int32
	server := newWikiServer(t, &flaky, &hits)
	defer server.Close()

	f := newTestFetcher(t, WithCache(cache.NewMemoryCache(time.Minute), time.Minute))
	for i := 0; i < 3; i++ {
		if _, err := f.Get(context.Background(), server.URL+"/wiki/Puzzle:A"); err != nil {
			t.Fatalf("Get %d failed: %v", i, err)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("Expected 1 server hit with cache, got %d", hits.Load())
	}
}

func TestFetcher_Cancelled(t *testing.T) {
	var flaky atomic.Int32
	server := newWikiServer(t, &flaky, nil)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestFetcher(t).Get(ctx, server.URL+"/wiki/Puzzle:A"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy, err := NewProxyFunc("http://proxy.local:3128")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "https://layton.fandom.com/", nil)
	u, err := proxy(req)
	if err != nil || u == nil || u.Host != "proxy.local:3128" {
		t.Errorf("Expected proxy.local:3128, got %v (%v)", u, err)
	}

	if _, err := NewProxyFunc("://bad"); err == nil {
		t.Error("Expected error for invalid proxy URL")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	if got := NormalizeUserAgent("laytoneval/1.0 (+https://example)"); got != "laytoneval" {
		t.Errorf("Expected laytoneval, got %s", got)
	}
}
