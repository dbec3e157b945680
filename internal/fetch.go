package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxPageSize caps how much of a watch page is read
const maxPageSize int64 = 8 << 20

var errPageTooLarge = errors.New("response body too large")

// defaultBaseURL is where watch pages are requested from
const defaultBaseURL = "https://www.youtube.com"

// Fetcher retrieves raw watch page markup for a video ID
type Fetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// HTTPFetcher fetches watch pages over HTTP, paced by a rate limiter.
// It does not retry; every failure is returned as *FetchError.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	baseURL   string
	userAgent string
	language  string
}

// FetcherOption customizes an HTTPFetcher
type FetcherOption func(*HTTPFetcher)

// WithBaseURL points the fetcher at another host, mainly for tests
func WithBaseURL(baseURL string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithRateLimit sets the maximum number of requests per second; 0 disables pacing
func WithRateLimit(perSecond float64) FetcherOption {
	return func(f *HTTPFetcher) {
		if perSecond <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewHTTPFetcher creates a fetcher with the given User-Agent and Accept-Language
func NewHTTPFetcher(userAgent, language string, timeout time.Duration, options ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(1), 1),
		baseURL:   defaultBaseURL,
		userAgent: userAgent,
		language:  language,
	}

	for _, option := range options {
		option(f)
	}

	return f
}

// Fetch downloads the watch page for id
func (f *HTTPFetcher) Fetch(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrEmptyVideoID
	}

	body, err := f.get(ctx, f.baseURL+"/watch?v="+url.QueryEscape(id))
	if err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}
	return body, nil
}

// get performs a paced GET request and returns the response body, failing
// when it exceeds maxPageSize
func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.language != "" {
		req.Header.Set("Accept-Language", f.language)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > maxPageSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", errPageTooLarge, maxPageSize)
	}
	return body, nil
}
