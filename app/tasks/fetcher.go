package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const maxDocumentSize = 10 << 20

// FetchError reports a failed document retrieval. It is opaque to the
// normalizer and surfaced to callers unchanged.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP error: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxSize    int64
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		maxSize:    maxDocumentSize,
	}
}

// Fetch retrieves a document over HTTP(S), or from disk for file:// URLs
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	switch u.Scheme {
	case "file":
		return f.fetchFile(u)
	case "http", "https":
		return f.fetchHTTP(ctx, rawURL, timeout)
	default:
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported scheme: %q", u.Scheme)}
	}
}

func (f *Fetcher) fetchFile(u *url.URL) ([]byte, error) {
	file, err := os.Open(u.Path)
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: err}
	}
	defer file.Close()

	return f.readLimited(u.String(), file)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml, application/rss+xml, application/atom+xml, */*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return f.readLimited(rawURL, resp.Body)
}

// readLimited reads one byte past maxSize so an oversized document is
// rejected instead of being cut short.
func (f *Fetcher) readLimited(rawURL string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxSize+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to read document: %w", err)}
	}

	if int64(len(data)) > f.maxSize {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("document too large: exceeds %d bytes", f.maxSize)}
	}

	return data, nil
}
