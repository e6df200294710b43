package remote

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewRealHTTPFetcher creates a production HTTP fetcher. A nil client gets a
// non-shared cleanhttp client; redirects are followed by net/http's default policy.
func NewRealHTTPFetcher(client *http.Client, userAgent string) *RealHTTPFetcher {
	if client == nil {
		client = cleanhttp.DefaultClient()
	}
	return &RealHTTPFetcher{client: client, userAgent: userAgent}
}

// NewHTTPClient returns a cleanhttp client with the given overall timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	client := cleanhttp.DefaultClient()
	client.Timeout = timeout
	return client
}

func (f *RealHTTPFetcher) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	return f.client.Do(req)
}

// MockHTTPFetcher simulates HTTP responses for testing
type MockHTTPFetcher struct {
	responses map[string]int
	errors    map[string]error
	calls     map[string]int
}

// NewMockHTTPFetcher creates a mock HTTP fetcher
func NewMockHTTPFetcher() *MockHTTPFetcher {
	return &MockHTTPFetcher{
		responses: make(map[string]int),
		errors:    make(map[string]error),
		calls:     make(map[string]int),
	}
}

// AddResponse registers a mock status code for a URL
func (m *MockHTTPFetcher) AddResponse(urlStr string, statusCode int) {
	m.responses[urlStr] = statusCode
}

// AddError registers a mock error for a URL
func (m *MockHTTPFetcher) AddError(urlStr string, err error) {
	m.errors[urlStr] = err
}

// Calls returns how many times url was requested.
func (m *MockHTTPFetcher) Calls(urlStr string) int {
	return m.calls[urlStr]
}

func (m *MockHTTPFetcher) Get(_ context.Context, urlStr string) (*http.Response, error) {
	m.calls[urlStr]++
	if err, ok := m.errors[urlStr]; ok {
		return nil, err
	}
	status, ok := m.responses[urlStr]
	if !ok {
		// Unknown URLs are 404
		status = http.StatusNotFound
	}
	parsedURL, _ := url.Parse(urlStr)
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
		Request:    &http.Request{URL: parsedURL},
	}, nil
}
