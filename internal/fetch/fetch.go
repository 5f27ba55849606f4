// Package fetch downloads source documents ahead of OCR.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultFilename is used when no filename can be derived from the URL.
const DefaultFilename = "upload.png"

// Downloader retrieves documents over HTTP with a timeout and size cap.
type Downloader struct {
	client   *http.Client
	maxBytes int64
}

// NewDownloader creates a downloader. maxMB caps the downloaded payload.
func NewDownloader(timeout time.Duration, maxMB int64) *Downloader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxMB <= 0 {
		maxMB = 50
	}
	return &Downloader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxMB * 1024 * 1024,
	}
}

// Fetch downloads the document at rawURL and returns its bytes together
// with a filename hint derived from the URL path.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid document URL: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("downloading document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading document: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, "", fmt.Errorf("document exceeds %d byte limit", d.maxBytes)
	}

	return data, FilenameHint(rawURL), nil
}

// FilenameHint derives an upload filename from the URL path, with the
// query string stripped.
func FilenameHint(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return DefaultFilename
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return DefaultFilename
	}
	return name
}
