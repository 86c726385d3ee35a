// Package viewer runs the documentation viewer's navigation and render
// state machine against injected view ports.
//
// A Viewer owns one browsing context: it loads the sidebar once, then turns
// every fragment change into a LoadContent call. It never touches a browser
// directly; the session package (websocket) and the headless `view` command
// supply the ports.
package viewer

import (
	"context"
	"fmt"
	"html"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doc-web/internal/fetch"
	"github.com/ziadkadry99/doc-web/internal/highlight"
	"github.com/ziadkadry99/doc-web/internal/logging"
	"github.com/ziadkadry99/doc-web/internal/markdown"
	"github.com/ziadkadry99/doc-web/internal/nav"
	"github.com/ziadkadry99/doc-web/internal/sidebar"
)

// Config holds the site settings of a Viewer.
type Config struct {
	SiteTitle     string
	Index         string // default page filename, e.g. "README.md"
	SummaryMD     string // sidebar source filename, e.g. "SUMMARY.md"
	OpenNewWindow bool
}

// Deps are the shared, stateless collaborators of a Viewer.
type Deps struct {
	Fetcher     fetch.Fetcher
	Renderer    *markdown.Renderer
	Highlighter *highlight.Highlighter
	Logger      *zap.Logger
}

// Ports are the per-browsing-context views.
type Ports struct {
	Location nav.Location
	Content  ContentView
	Sidebar  SidebarView
	Window   Window
}

// Viewer wires the navigation resolver to the content loader.
type Viewer struct {
	cfg      Config
	deps     Deps
	ports    Ports
	resolver *nav.Resolver
	loader   *Loader
	logger   *zap.Logger

	mu      sync.RWMutex
	sidebar *sidebar.Sidebar
}

// New creates a Viewer. Nothing is fetched until Start.
func New(cfg Config, deps Deps, ports Ports) *Viewer {
	if deps.Renderer == nil {
		deps.Renderer = markdown.New()
	}
	indexPage := nav.PageFromHref(cfg.Index)
	return &Viewer{
		cfg:      cfg,
		deps:     deps,
		ports:    ports,
		resolver: nav.NewResolver(ports.Location, indexPage),
		loader: NewLoader(Options{
			SiteTitle:     cfg.SiteTitle,
			IndexPage:     indexPage,
			OpenNewWindow: cfg.OpenNewWindow,
		}, deps, ports.Content, ports.Sidebar, ports.Window),
		logger: logging.OrNop(deps.Logger),
	}
}

// Resolver returns the navigation resolver.
func (v *Viewer) Resolver() *nav.Resolver { return v.resolver }

// Current returns the key named by the current fragment.
func (v *Viewer) Current() nav.Key { return v.resolver.ParseCurrentKey() }

// Sidebar returns the loaded sidebar, or nil before Start or after a failed
// sidebar load.
func (v *Viewer) Sidebar() *sidebar.Sidebar {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sidebar
}

// Start loads the sidebar and then the page named by the current fragment.
// A sidebar failure is reported in the sidebar view and returned, but the
// page is still loaded.
func (v *Viewer) Start(ctx context.Context) error {
	sidebarErr := v.LoadSidebar(ctx)
	if err := v.Navigate(ctx); err != nil {
		return err
	}
	return sidebarErr
}

// LoadSidebar fetches and renders the summary.
func (v *Viewer) LoadSidebar(ctx context.Context) error {
	s, err := v.buildSidebar(ctx)

	v.mu.Lock()
	v.sidebar = s
	v.mu.Unlock()
	v.loader.SetSidebar(s)

	if err != nil {
		v.logger.Warn("sidebar load failed", zap.String("summary", v.cfg.SummaryMD), zap.Error(err))
		v.ports.Sidebar.Render(sidebarErrorHTML(v.cfg.SummaryMD))
		return err
	}
	v.ports.Sidebar.Render(s.HTML())
	return nil
}

func (v *Viewer) buildSidebar(ctx context.Context) (*sidebar.Sidebar, error) {
	src, err := v.deps.Fetcher.Fetch(ctx, v.cfg.SummaryMD)
	if err != nil {
		return nil, fmt.Errorf("fetching summary: %w", err)
	}
	doc, err := v.deps.Renderer.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("rendering summary: %w", err)
	}
	return sidebar.Build(doc)
}

// Navigate loads the page named by the current fragment. It is the
// fragment-change handler.
func (v *Viewer) Navigate(ctx context.Context) error {
	return v.loader.LoadContent(ctx, v.Current())
}

// Refresh reloads the sidebar and the current page, keeping the fragment.
func (v *Viewer) Refresh(ctx context.Context) error {
	if err := v.LoadSidebar(ctx); err != nil {
		v.logger.Debug("refresh kept going without a sidebar", zap.Error(err))
	}
	return v.Navigate(ctx)
}

// SidebarClick handles a click on a sidebar link. Intercepted links rewrite
// the fragment to their page and report true; the caller must then suppress
// the default navigation. Other links are left to navigate normally.
func (v *Viewer) SidebarClick(href string) bool {
	if !sidebar.Intercept(href) {
		return false
	}
	v.resolver.WriteKey(nav.PageFromHref(href), "")
	return true
}

// AnchorClick handles a click on a heading marker: the anchor replaces any
// anchor of the current page.
func (v *Viewer) AnchorClick(text string) {
	v.resolver.WriteAnchor(text)
}

func sidebarErrorHTML(summary string) string {
	return fmt.Sprintf(`<div class="book-sidebar-error">Could not load <code>%s</code>.</div>`, html.EscapeString(summary))
}
