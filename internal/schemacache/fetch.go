package schemacache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/percolate/pedantic"
	"github.com/percolate/pedantic/internal/fileutil"
	"github.com/percolate/pedantic/raml"
)

// DefaultRetries is the number of extra attempts after a failed download.
const DefaultRetries = 3

// maxDownloadSize bounds a downloaded file.
const maxDownloadSize = 10 * 1024 * 1024

// Fetcher downloads files to disk. An existing destination is only
// replaced when the server reports a newer version.
type Fetcher struct {
	// HTTPClient performs requests. If nil, a client with a 30s timeout is used.
	HTTPClient *http.Client
	// Retries is the number of extra attempts after a network error or 5xx
	// response. Negative means none.
	Retries int
	// Backoff is the delay before the first retry; it doubles each attempt.
	Backoff time.Duration
	// Logger receives progress output. If nil, logging is disabled.
	Logger raml.Logger
}

// NewFetcher creates a Fetcher with default settings.
func NewFetcher() *Fetcher {
	return &Fetcher{Retries: DefaultRetries, Backoff: 500 * time.Millisecond}
}

func (f *Fetcher) log() raml.Logger {
	return raml.OrNop(f.Logger)
}

// errRetryable marks failures worth another attempt.
var errRetryable = errors.New("retryable")

// Fetch downloads url to dst. When dst exists its modification time is sent
// as If-Modified-Since and a 304 response keeps the file as is.
func (f *Fetcher) Fetch(ctx context.Context, url, dst string) error {
	f.log().Info("downloading", "url", url)

	var err error
	delay := f.Backoff
	for attempt := 0; attempt <= max(f.Retries, 0); attempt++ {
		if attempt > 0 {
			f.log().Warn("download failed, retrying", "url", url, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err = f.fetchOnce(ctx, url, dst); err == nil || !errors.Is(err, errRetryable) {
			return err
		}
	}
	return err
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, dst string) error {
	client := f.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("schemacache: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", pedantic.UserAgent())
	if info, statErr := os.Stat(dst); statErr == nil {
		req.Header.Set("If-Modified-Since", info.ModTime().UTC().Format(http.TimeFormat))
	}

	resp, err := client.Do(req) //nolint:gosec // URL is operator-provided input
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("schemacache: failed to fetch %s: %w: %w", url, errRetryable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		f.log().Debug("download not modified", "url", url, "path", dst)
		return nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("schemacache: %w: HTTP %d from %s", errRetryable, resp.StatusCode, url)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("schemacache: HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return fmt.Errorf("schemacache: failed to read %s: %w: %w", url, errRetryable, err)
	}
	if len(data) > maxDownloadSize {
		return fmt.Errorf("schemacache: %s exceeds %d bytes", url, maxDownloadSize)
	}
	if err := fileutil.WriteAtomic(dst, data, fileutil.OwnerReadWrite); err != nil {
		return fmt.Errorf("schemacache: failed to write %s: %w", dst, err)
	}
	f.log().Debug("downloaded", "url", url, "path", dst, "bytes", len(data))
	return nil
}
