// Package source fetches the raw extract bytes from http(s) URLs, file://
// URLs, or bare filesystem paths.
//
// Fetch failures are *IOError so callers can distinguish an unreachable
// source from malformed content further down the pipeline. The fetch is
// bounded by the configured timeout; there is no automatic retry.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// IOError reports an unreachable, timed-out, or otherwise unreadable source.
type IOError struct {
	URL string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Fetcher retrieves raw bytes from a source location.
type Fetcher struct {
	// Client is the HTTP client for http(s) URLs. Nil means a client with
	// Timeout as its overall deadline.
	Client *http.Client
	// Timeout bounds the whole fetch when Client is nil. <= 0 leaves the
	// request bounded only by ctx.
	Timeout time.Duration
}

// Fetch reads the full content at url.
//
// The entire extract is expected to fit in memory; callers needing larger
// inputs should not be using this package.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return f.fetchHTTP(ctx, url)
	case strings.HasPrefix(url, "file://"):
		return fetchFile(url, strings.TrimPrefix(url, "file://"))
	default:
		return fetchFile(url, url)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: f.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &IOError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &IOError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused, then fail.
		io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &IOError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &IOError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func fetchFile(url, path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{URL: url, Err: err}
	}
	return b, nil
}
