// Package remote verifies that HTTP(S) resources referenced by manifests are
// reachable. Verdicts are cached per exact URL for the lifetime of a Checker.
package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
)

// Response is the cached outcome of one existence check.
type Response struct {
	StatusCode int
	OK         bool
	Err        string // transport error, if any
}

// CacheStats reports cache performance.
type CacheStats struct {
	Hits   int
	Misses int
	Size   int
}

// Checker issues GET requests and caches the verdict by URL.
type Checker struct {
	fetcher HTTPFetcher
	cache   map[string]Response
	stats   CacheStats
}

// NewChecker creates a Checker on top of fetcher.
func NewChecker(fetcher HTTPFetcher) *Checker {
	return &Checker{
		fetcher: fetcher,
		cache:   make(map[string]Response),
	}
}

// CheckReachable reports whether url answers with a status code below 400.
// A transport error counts as unreachable. Nothing is retried.
func (c *Checker) CheckReachable(ctx context.Context, url string) bool {
	resp, ok := c.cache[url]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
		resp = c.fetch(ctx, url)
		c.cache[url] = resp
	}

	if !resp.OK {
		if resp.Err != "" {
			logger.Info(fmt.Sprintf("http request failed: %s", resp.Err), logger.String("url", url))
		} else {
			logger.Info(fmt.Sprintf("http response status: %d", resp.StatusCode), logger.String("url", url))
		}
		return false
	}
	logger.Info(fmt.Sprintf("[%d]: '%s' is accessible", resp.StatusCode, url))
	return true
}

// Lookup returns the cached response for url, if any.
func (c *Checker) Lookup(url string) (Response, bool) {
	resp, ok := c.cache[url]
	return resp, ok
}

// Stats returns current cache statistics.
func (c *Checker) Stats() CacheStats {
	return CacheStats{Hits: c.stats.Hits, Misses: c.stats.Misses, Size: len(c.cache)}
}

func (c *Checker) fetch(ctx context.Context, url string) Response {
	resp, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return Response{Err: err.Error()}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	return Response{StatusCode: resp.StatusCode, OK: resp.StatusCode < 400}
}
