package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gregjones/httpcache"
)

const (
	// DefaultCacheTTL is how long fetched pages are reused.
	DefaultCacheTTL = 6 * time.Hour
	// UserAgent identifies the importer to stats sites.
	UserAgent = "fanhop-editionimport/1.0"
)

// Fetcher opens stats pages from disk or over cached HTTP.
type Fetcher struct {
	client    *http.Client
	cacheTTL  time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCacheTTL overrides how long responses are cached regardless of the
// origin's cache headers.
func WithCacheTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		if ttl > 0 {
			f.cacheTTL = ttl
		}
	}
}

// WithHTTPClient replaces the cached client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewFetcher creates a fetcher with an in-memory HTTP cache.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{cacheTTL: DefaultCacheTTL, userAgent: UserAgent}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = newCachedClient(http.DefaultTransport, f.cacheTTL)
	}
	return f
}

// newCachedClient wraps next in an httpcache transport that ignores the
// origin's cache headers and keeps every response for ttl.
func newCachedClient(next http.RoundTripper, ttl time.Duration) *http.Client {
	hc := httpcache.NewTransport(httpcache.NewMemoryCache())
	hc.Transport = &headerOverride{
		next: next,
		response: func(resp *http.Response) {
			resp.Header.Del("Pragma")
			resp.Header.Del("Expires")
			resp.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(ttl/time.Second)))
		},
	}
	return &http.Client{Transport: hc}
}

type headerOverride struct {
	next     http.RoundTripper
	response func(*http.Response)
}

func (t *headerOverride) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.response(resp)
	return resp, nil
}

// Open returns the document at src, an http(s) URL or a file path.
func (f *Fetcher) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return os.Open(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, src, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, src, resp.StatusCode)
	}
	return resp.Body, nil
}
