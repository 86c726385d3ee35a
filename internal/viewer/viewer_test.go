package viewer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/doc-web/internal/fetch"
	"github.com/ziadkadry99/doc-web/internal/highlight"
	"github.com/ziadkadry99/doc-web/internal/markdown"
	"github.com/ziadkadry99/doc-web/internal/nav"
)

var docs = fstest.MapFS{
	"SUMMARY.md": {Data: []byte("* [Intro](README.md)\n* [Ch1](ch1.md)\n* [Ch2](ch2.md)\n* [Repo](https://github.com/example/book)\n")},
	"README.md":  {Data: []byte("# Welcome\n\nStart [here](ch1.md).\n")},
	"ch1.md":     {Data: []byte("# Chapter One\n\n## Usage\n\n```go\npackage main\n```\n\nSee [Go](https://go.dev).\n")},
	"ch2.md":     {Data: []byte("No heading here.\n")},
}

type harness struct {
	viewer  *Viewer
	loc     *nav.MemoryLocation
	content *Recorder
	sidebar *SidebarRecorder
}

func newHarness(t *testing.T, fetcher fetch.Fetcher, fragment string) *harness {
	t.Helper()
	h := &harness{
		loc:     nav.NewMemoryLocation(fragment, nil),
		content: &Recorder{},
		sidebar: &SidebarRecorder{},
	}
	h.viewer = New(Config{
		SiteTitle:     "Python Craftsman",
		Index:         "README.md",
		SummaryMD:     "SUMMARY.md",
		OpenNewWindow: true,
	}, Deps{
		Fetcher:     fetcher,
		Renderer:    markdown.New(),
		Highlighter: highlight.New("github"),
	}, Ports{
		Location: h.loc,
		Content:  h.content,
		Sidebar:  h.sidebar,
		Window:   h.content,
	})
	return h
}

func (h *harness) navigate(t *testing.T, fragment string) error {
	t.Helper()
	h.loc.Sync(fragment)
	return h.viewer.Navigate(context.Background())
}

func parse(t *testing.T, s string) *markdown.Document {
	t.Helper()
	doc, err := markdown.ParseHTML(s)
	require.NoError(t, err)
	return doc
}

func TestStartLoadsSidebarAndIndex(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "")

	require.NoError(t, h.viewer.Start(context.Background()))

	assert.Equal(t, "Python Craftsman", h.content.Title())
	assert.Equal(t, "README.md", h.sidebar.Selected())
	assert.Contains(t, h.sidebar.HTML(), `data-page="ch1"`)
	require.NotNil(t, h.viewer.Sidebar())
	assert.Len(t, h.viewer.Sidebar().Entries(), 4)

	doc := parse(t, h.content.Content())
	assert.Equal(t, 0, doc.Find("a.book-footer-prev-link").Length())
	assert.Equal(t, "#ch1", doc.Find("a.book-footer-next-link").AttrOr("href", ""))
}

func TestNavigateDecoratesPage(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "")
	require.NoError(t, h.viewer.Start(context.Background()))

	require.NoError(t, h.navigate(t, "ch1"))

	assert.Equal(t, "Chapter One - Python Craftsman", h.content.Title())
	assert.Equal(t, "ch1.md", h.sidebar.Selected())
	assert.Equal(t, float64(0), h.content.ScrollTop())

	doc := parse(t, h.content.Content())
	assert.Equal(t, "Chapter One", doc.Find("h1 a.anchor").AttrOr("data-anchor", ""))
	assert.Equal(t, "Usage", doc.Find("h2 a.anchor").AttrOr("data-anchor", ""))
	assert.True(t, doc.Find("code.language-go").HasClass("chroma"))
	assert.Equal(t, "_blank", doc.Find(`a[href="https://go.dev"]`).AttrOr("target", ""))

	footer := doc.Find("div.book-footer")
	require.Equal(t, 1, footer.Length())
	assert.Equal(t, "#README", footer.Find("a.book-footer-prev-link").AttrOr("href", ""))
	assert.Equal(t, "#ch2", footer.Find("a.book-footer-next-link").AttrOr("href", ""))
	assert.Equal(t, 0, doc.Find("div.book-footer").Parent().Filter("h1, p").Length(), "footer must be a top-level sibling")
}

func TestTitleWithoutHeading(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "ch2")
	require.NoError(t, h.viewer.Start(context.Background()))

	assert.Equal(t, " - Python Craftsman", h.content.Title())
}

func TestTitle(t *testing.T) {
	opts := Options{SiteTitle: "Site", IndexPage: "index"}
	assert.Equal(t, "Site", Title("index", "Home", opts))
	assert.Equal(t, "Foo - Site", Title("other", "Foo", opts))
	assert.Equal(t, " - Site", Title("other", "", opts))
}

func TestLoadingPlaceholderComesFirst(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "")
	require.NoError(t, h.viewer.Start(context.Background()))
	require.Error(t, h.navigate(t, "missing"))
	require.NoError(t, h.navigate(t, "ch1"))

	renders := h.content.Renders()
	require.Len(t, renders, 6)
	for i := 0; i < len(renders); i += 2 {
		assert.Equal(t, LoadingHTML, renders[i], "render %d should be the placeholder", i)
	}
}

func TestFetchFailureShowsError(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "missing")
	err := h.viewer.Start(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "missing", fetchErr.Page)
	assert.ErrorIs(t, err, fetch.ErrNotFound)

	doc := parse(t, h.content.Content())
	assert.Equal(t, 1, doc.Find("a.book-content-retry").Length())
	assert.Equal(t, "", h.sidebar.Selected())
}

func TestFetchFailureClearsSelectionAndTitle(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "ch1")
	require.NoError(t, h.viewer.Start(context.Background()))
	assert.Equal(t, "ch1.md", h.sidebar.Selected())
	assert.Equal(t, "Chapter One - Python Craftsman", h.content.Title())

	var fetchErr *FetchError
	require.ErrorAs(t, h.navigate(t, "missing"), &fetchErr)
	assert.Equal(t, "", h.sidebar.Selected())
	assert.Equal(t, " - Python Craftsman", h.content.Title())
}

func TestNonASCIIPageSelectsEntry(t *testing.T) {
	fsys := fstest.MapFS{
		"SUMMARY.md":     {Data: []byte("* [Intro](README.md)\n* [变量](变量.md)\n* [Setup](guide/setup.md#install)\n")},
		"README.md":      {Data: []byte("# Welcome\n")},
		"变量.md":          {Data: []byte("# 变量\n")},
		"guide/setup.md": {Data: []byte("# Setup\n\n## install\n")},
	}
	h := newHarness(t, fetch.NewDirFetcher(fsys), "")
	require.NoError(t, h.viewer.Start(context.Background()))

	require.NoError(t, h.navigate(t, "变量"))
	assert.Equal(t, "%E5%8F%98%E9%87%8F.md", h.sidebar.Selected())
	assert.Equal(t, "变量 - Python Craftsman", h.content.Title())

	doc := parse(t, h.content.Content())
	assert.Equal(t, "#README", doc.Find("a.book-footer-prev-link").AttrOr("href", ""))
	assert.Equal(t, "#guide/setup", doc.Find("a.book-footer-next-link").AttrOr("href", ""))

	require.NoError(t, h.navigate(t, "guide/setup"))
	assert.Equal(t, "guide/setup.md#install", h.sidebar.Selected())
	doc = parse(t, h.content.Content())
	assert.Equal(t, "#变量", doc.Find("a.book-footer-prev-link").AttrOr("href", ""))
}

func TestSidebarFailureStillLoadsContent(t *testing.T) {
	fsys := fstest.MapFS{"README.md": {Data: []byte("# Home\n")}}
	h := newHarness(t, fetch.NewDirFetcher(fsys), "")

	err := h.viewer.Start(context.Background())
	assert.ErrorIs(t, err, fetch.ErrNotFound)

	assert.Contains(t, h.sidebar.HTML(), "book-sidebar-error")
	assert.Nil(t, h.viewer.Sidebar())
	assert.Contains(t, h.content.Content(), "Home")
	assert.NotContains(t, h.content.Content(), "book-footer")
}

func TestAnchorIsRevealed(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "ch1_Usage")
	require.NoError(t, h.viewer.Start(context.Background()))
	assert.Equal(t, "Usage", h.content.Revealed())

	require.NoError(t, h.navigate(t, "ch2_Nothing"))
	assert.Equal(t, "Usage", h.content.Revealed(), "unknown anchors are not revealed")
}

func TestSidebarClick(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "README")

	assert.True(t, h.viewer.SidebarClick("ch1.md"))
	assert.Equal(t, "ch1", h.loc.Fragment())

	assert.False(t, h.viewer.SidebarClick("https://github.com/example/book"))
	assert.Equal(t, "ch1", h.loc.Fragment())
}

func TestAnchorClickReplacesAnchor(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "ch1_Chapter One")

	h.viewer.AnchorClick("Usage")
	assert.Equal(t, "ch1_Usage", h.loc.Fragment())
	assert.Equal(t, nav.Key{Page: "ch1", Anchor: "Usage"}, h.viewer.Current())
}

// gatedFetcher blocks fetches of one resource until released or cancelled.
type gatedFetcher struct {
	inner   fetch.Fetcher
	gated   string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if name == g.gated {
		g.once.Do(func() { close(g.started) })
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.inner.Fetch(ctx, name)
}

func TestNewerNavigationSupersedesSlowLoad(t *testing.T) {
	g := &gatedFetcher{
		inner:   fetch.NewDirFetcher(docs),
		gated:   "ch2.md",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := newHarness(t, g, "")
	require.NoError(t, h.viewer.Start(context.Background()))

	slow := make(chan error, 1)
	h.loc.Sync("ch2")
	go func() { slow <- h.viewer.Navigate(context.Background()) }()

	select {
	case <-g.started:
	case <-time.After(5 * time.Second):
		t.Fatal("slow fetch never started")
	}

	require.NoError(t, h.navigate(t, "ch1"))
	close(g.release)

	select {
	case err := <-slow:
		assert.True(t, errors.Is(err, ErrSuperseded), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("slow load never returned")
	}

	assert.Equal(t, "Chapter One - Python Craftsman", h.content.Title())
	assert.True(t, strings.Contains(h.content.Content(), "Chapter One"))
	assert.Equal(t, "ch1.md", h.sidebar.Selected())
}

func TestRefreshKeepsFragment(t *testing.T) {
	h := newHarness(t, fetch.NewDirFetcher(docs), "ch1")
	require.NoError(t, h.viewer.Start(context.Background()))

	require.NoError(t, h.viewer.Refresh(context.Background()))
	assert.Equal(t, "ch1", h.loc.Fragment())
	assert.Equal(t, "ch1.md", h.sidebar.Selected())
}
