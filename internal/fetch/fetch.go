// Package fetch downloads source documents to temporary files.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout bounds a whole download, connection included.
const DefaultTimeout = 300 * time.Second

// Fetcher downloads documents over HTTP. The zero value is not usable;
// construct with New.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// New builds a fetcher. A zero timeout uses DefaultTimeout; a nil logger
// falls back to the default.
func New(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Download fetches the URL into a fresh temporary file and returns its
// path. The caller owns the file and must remove it; on any error the
// partial file is already gone.
func (f *Fetcher) Download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid document URL: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("document fetch returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "pdfstruct-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write document to disk: %w", err)
	}

	f.logger.Info("document downloaded", "url", url, "bytes", n, "path", tmp.Name())
	return tmp.Name(), nil
}
