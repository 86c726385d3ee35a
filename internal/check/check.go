// Package check verifies that a book's summary and its pages agree.
package check

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/doc-web/internal/fetch"
	"github.com/ziadkadry99/doc-web/internal/markdown"
	"github.com/ziadkadry99/doc-web/internal/nav"
	"github.com/ziadkadry99/doc-web/internal/progress"
	"github.com/ziadkadry99/doc-web/internal/sidebar"
)

// Options configure a check run.
type Options struct {
	SummaryMD string
	Index     string
	// Docs, when set, is scanned for pages the summary never links to.
	Docs fs.FS
	// Reporter receives one update per checked page. May be nil.
	Reporter progress.Reporter
}

// Missing is a summary entry whose page could not be fetched.
type Missing struct {
	Entry sidebar.Entry
	Err   error
}

// Report is the outcome of a check run.
type Report struct {
	Pages    int       // intercepted summary entries checked
	External int       // entries that navigate away
	Missing  []Missing // entries whose page is absent or unreadable
	Orphans  []string  // markdown files no entry links to
}

// OK reports whether every summary entry resolved.
func (r *Report) OK() bool { return len(r.Missing) == 0 }

// Run fetches the summary and every page it links to.
func Run(ctx context.Context, fetcher fetch.Fetcher, renderer *markdown.Renderer, opts Options) (*Report, error) {
	src, err := fetcher.Fetch(ctx, opts.SummaryMD)
	if err != nil {
		return nil, fmt.Errorf("fetching summary %s: %w", opts.SummaryMD, err)
	}
	doc, err := renderer.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("rendering summary: %w", err)
	}
	sb, err := sidebar.Build(doc)
	if err != nil {
		return nil, err
	}

	var pages []sidebar.Entry
	report := &Report{}
	for _, e := range sb.Entries() {
		if e.Intercepted {
			pages = append(pages, e)
		} else {
			report.External++
		}
	}
	report.Pages = len(pages)

	if opts.Reporter != nil {
		opts.Reporter.Start(len(pages))
	}
	linked := map[string]bool{
		path.Clean(opts.SummaryMD): true,
		path.Clean(opts.Index):     true,
	}
	for i, e := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resource := nav.Key{Page: e.Page}.Resource()
		linked[path.Clean(resource)] = true

		if opts.Reporter != nil {
			opts.Reporter.Update(i+1, resource)
		}
		if _, err := fetcher.Fetch(ctx, resource); err != nil {
			report.Missing = append(report.Missing, Missing{Entry: e, Err: err})
		}
	}
	if opts.Reporter != nil {
		opts.Reporter.Finish()
	}

	if opts.Docs != nil {
		orphans, err := findOrphans(opts.Docs, linked)
		if err != nil {
			return nil, err
		}
		report.Orphans = orphans
	}
	return report, nil
}

func findOrphans(docs fs.FS, linked map[string]bool) ([]string, error) {
	matches, err := doublestar.Glob(docs, "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("scanning docs: %w", err)
	}
	var orphans []string
	for _, m := range matches {
		if !linked[path.Clean(m)] {
			orphans = append(orphans, m)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

// IsNotFound reports whether a missing entry's page simply does not exist,
// as opposed to failing to load.
func (m Missing) IsNotFound() bool {
	return errors.Is(m.Err, fetch.ErrNotFound)
}
