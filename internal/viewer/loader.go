package viewer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ziadkadry99/doc-web/internal/fetch"
	"github.com/ziadkadry99/doc-web/internal/highlight"
	"github.com/ziadkadry99/doc-web/internal/logging"
	"github.com/ziadkadry99/doc-web/internal/markdown"
	"github.com/ziadkadry99/doc-web/internal/nav"
	"github.com/ziadkadry99/doc-web/internal/sidebar"
)

// LoadingHTML is shown in the content area while a page is fetched.
const LoadingHTML = `<div class="book-content-loading"><i class="book-icon-loading"></i></div>`

// ErrSuperseded is returned by a load that finished after a newer load
// started. Its result was discarded.
var ErrSuperseded = errors.New("load superseded by a newer navigation")

// FetchError reports that a page could not be fetched or rendered.
type FetchError struct {
	Page string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("loading page %q: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options are the site settings the Loader needs.
type Options struct {
	SiteTitle     string
	IndexPage     string // index filename without extension
	OpenNewWindow bool
}

// Loader fetches, renders and decorates pages into the content view.
// Each call to LoadContent supersedes the previous one: the older fetch is
// cancelled and its result, if it still arrives, is dropped.
type Loader struct {
	opts        Options
	fetcher     fetch.Fetcher
	renderer    *markdown.Renderer
	highlighter *highlight.Highlighter
	content     ContentView
	sidebarView SidebarView
	window      Window
	logger      *zap.Logger

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	sidebar *sidebar.Sidebar
}

// renderedPage is the transient result of converting one resource.
type renderedPage struct {
	html     string
	title    string
	headings map[string]bool
}

// NewLoader creates a Loader writing to the given views.
func NewLoader(opts Options, deps Deps, content ContentView, sidebarView SidebarView, window Window) *Loader {
	return &Loader{
		opts:        opts,
		fetcher:     deps.Fetcher,
		renderer:    deps.Renderer,
		highlighter: deps.Highlighter,
		content:     content,
		sidebarView: sidebarView,
		window:      window,
		logger:      logging.OrNop(deps.Logger),
	}
}

// SetSidebar replaces the sidebar used for selection and the footer.
// A nil sidebar disables both.
func (l *Loader) SetSidebar(s *sidebar.Sidebar) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sidebar = s
}

// LoadContent shows the page named by key.
func (l *Loader) LoadContent(ctx context.Context, key nav.Key) error {
	ctx, gen := l.begin(ctx)
	defer l.end(gen)

	src, err := l.fetcher.Fetch(ctx, key.Resource())
	if err != nil {
		return l.fail(ctx, gen, key, err)
	}

	page, err := l.build(src, key)
	if err != nil {
		return l.fail(ctx, gen, key, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return ErrSuperseded
	}

	l.content.Render(page.html)
	l.window.SetTitle(page.title)
	l.syncSidebar(key.Page)
	l.window.ScrollTo(0)
	if key.HasAnchor() && page.headings[key.Anchor] {
		l.content.Reveal(key.Anchor)
	}

	l.logger.Debug("page loaded", zap.String("page", key.Page), zap.String("anchor", key.Anchor))
	return nil
}

// begin starts a new generation and shows the loading placeholder before
// anything is fetched.
func (l *Loader) begin(ctx context.Context) (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.content.Render(LoadingHTML)
	return ctx, l.gen
}

func (l *Loader) end(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen == l.gen && l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// fail renders the error panel unless the load was superseded or its
// caller went away.
func (l *Loader) fail(ctx context.Context, gen uint64, key nav.Key, err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		return ErrSuperseded
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	l.logger.Warn("page load failed", zap.String("page", key.Page), zap.Error(err))
	l.content.Render(ErrorHTML(key.Page))
	l.window.SetTitle(Title(key.Page, "", l.opts))
	l.selectEntry(key.Page)
	return &FetchError{Page: key.Page, Err: err}
}

// build converts and decorates a page. It touches no view.
func (l *Loader) build(src []byte, key nav.Key) (*renderedPage, error) {
	doc, err := l.renderer.Parse(src)
	if err != nil {
		return nil, err
	}

	page := &renderedPage{
		title:    Title(key.Page, doc.FirstText("h1"), l.opts),
		headings: decorateHeadings(doc),
	}

	if l.highlighter != nil {
		l.highlighter.Apply(doc.Root())
	}
	if l.opts.OpenNewWindow {
		doc.Find("a[href]").SetAttr("target", "_blank")
	}

	page.html, err = doc.HTML()
	if err != nil {
		return nil, err
	}
	return page, nil
}

// syncSidebar moves the selected marker and appends the prev/next footer.
// Callers hold l.mu.
func (l *Loader) syncSidebar(page string) {
	i := l.selectEntry(page)
	if i < 0 {
		return
	}
	if footer := sidebar.Footer(l.sidebar.Neighbors(i)); footer != "" {
		l.content.Append(footer)
	}
}

// selectEntry clears the selection and selects the entry for page. It
// returns the entry's position, or -1 when nothing matched.
func (l *Loader) selectEntry(page string) int {
	i := -1
	if l.sidebar != nil {
		i = l.sidebar.IndexOf(page)
	}
	if i < 0 {
		l.sidebarView.Select("")
		return -1
	}
	l.sidebarView.Select(l.sidebar.Entries()[i].Href)
	return i
}

// Title computes the document title for page. Pages without an h1 get
// " - <site title>".
func Title(page, h1 string, opts Options) string {
	if page == opts.IndexPage {
		return opts.SiteTitle
	}
	return h1 + " - " + opts.SiteTitle
}

// decorateHeadings appends an anchor marker to every h1-h4. The marker
// carries the heading text as it was before decoration; that text is the
// anchor written to the fragment when the marker is clicked. Headings with
// the same text share an anchor.
func decorateHeadings(doc *markdown.Document) map[string]bool {
	headings := make(map[string]bool)
	doc.Find("h1, h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		text := h.Text()
		headings[text] = true
		h.AppendHtml(fmt.Sprintf(`<a class="anchor" data-anchor="%s">#</a>`, html.EscapeString(text)))
	})
	return headings
}

// ErrorHTML is the panel shown when a page cannot be loaded.
func ErrorHTML(page string) string {
	return fmt.Sprintf(`<div class="book-content-error"><p>Could not load <code>%s.md</code>.</p>`+
		`<a class="book-content-retry" href="#" data-retry="true">Retry</a></div>`, html.EscapeString(page))
}
