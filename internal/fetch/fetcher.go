// Package fetch retrieves raw markdown resources for the viewer, either over
// HTTP from a docs origin or from a local file tree.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when the resource does not exist.
var ErrNotFound = errors.New("resource not found")

// maxResourceSize caps a single markdown resource.
const maxResourceSize = 8 << 20

// Fetcher retrieves a markdown resource by its name relative to the docs
// root, e.g. "SUMMARY.md" or "guide/setup.md".
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// HTTPFetcher issues GET {BaseURL}/docs/{name}.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher for the given origin.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// URL returns the address a resource is fetched from.
func (f *HTTPFetcher) URL(name string) string {
	escaped := (&url.URL{Path: strings.TrimPrefix(name, "/")}).EscapedPath()
	return f.BaseURL + "/docs/" + escaped
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	target := f.URL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetching %s: %w", name, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return body, nil
}

// DirFetcher reads resources from a file system rooted at the docs directory.
type DirFetcher struct {
	FS fs.FS
}

// NewDirFetcher creates a DirFetcher over fsys.
func NewDirFetcher(fsys fs.FS) *DirFetcher {
	return &DirFetcher{FS: fsys}
}

// Fetch implements Fetcher.
func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(f.FS, path.Clean(strings.TrimPrefix(name, "/")))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// checkName rejects empty names and names that would escape the docs root.
func checkName(name string) error {
	trimmed := strings.TrimPrefix(name, "/")
	if trimmed == "" {
		return fmt.Errorf("empty resource name: %w", ErrNotFound)
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return fmt.Errorf("invalid resource name %q: %w", name, ErrNotFound)
		}
	}
	return nil
}
