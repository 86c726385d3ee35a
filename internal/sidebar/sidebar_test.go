package sidebar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/doc-web/internal/markdown"
)

const summary = `# Summary

* [Intro](README.md)
* [Chapter 1](ch1.md)
  * [Section](ch1/section.md)
* [Chapter 2](ch2.md)
* [GitHub](https://github.com/piglei/one-python-craftsman)
`

func build(t *testing.T, src string) *Sidebar {
	t.Helper()
	doc, err := markdown.New().Parse([]byte(src))
	require.NoError(t, err)
	s, err := Build(doc)
	require.NoError(t, err)
	return s
}

func TestIntercept(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"chapter1.md", true},
		{"./chapter1.md", true},
		{"guide/setup.md#install", true},
		{"http://example.com/a.md", false},
		{"https://example.com/a.md", false},
		{"//example.com/a.md", false},
		{"mailto:someone@example.md", false},
		{"about.html", false},
		{".md", false},
		{"1c:intro.md", true},
		{"c1:intro.md", false},
		{"javascript:alert('.md')", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Intercept(tt.href), "Intercept(%q)", tt.href)
	}
}

func TestBuild(t *testing.T) {
	s := build(t, summary)

	entries := s.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, Entry{Text: "Intro", Href: "README.md", Page: "README", Intercepted: true}, entries[0])
	assert.Equal(t, "ch1/section", entries[2].Page)
	assert.False(t, entries[4].Intercepted)

	doc, err := markdown.ParseHTML(s.HTML())
	require.NoError(t, err)
	assert.Equal(t, "ch1", doc.Find(`a[href="ch1.md"]`).AttrOr("data-page", ""))
	assert.Equal(t, "_blank", doc.Find(`a[href^="https://"]`).AttrOr("target", ""))
	_, hasTarget := doc.Find(`a[href="ch1.md"]`).Attr("target")
	assert.False(t, hasTarget)
}

func TestIndexOf(t *testing.T) {
	s := build(t, summary)

	assert.Equal(t, 0, s.IndexOf("README"))
	assert.Equal(t, 2, s.IndexOf("ch1/section"))
	assert.Equal(t, -1, s.IndexOf("missing"))

	s = build(t, "* [A](./a.md)\n")
	assert.Equal(t, 0, s.IndexOf("a"))
}

func TestIndexOfEncodedAndFragmentLinks(t *testing.T) {
	s := build(t, "* [变量](变量.md)\n* [Setup](guide/setup.md#install)\n* [Ext](https://example.com/guide/setup.md)\n")

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "变量", entries[0].Page)
	assert.Equal(t, 0, s.IndexOf("变量"))
	assert.Equal(t, 1, s.IndexOf("guide/setup"))
	assert.Equal(t, -1, s.IndexOf("https://example.com/guide/setup"))

	doc, err := markdown.ParseHTML(s.HTML())
	require.NoError(t, err)
	assert.Equal(t, "变量", doc.Find("a").First().AttrOr("data-page", ""))
}

func TestNeighbors(t *testing.T) {
	s := build(t, "* [Intro](intro.md)\n* [Ch1](ch1.md)\n* [Ch2](ch2.md)\n")

	prev, next := s.Neighbors(s.IndexOf("ch1"))
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "Intro", prev.Text)
	assert.Equal(t, "Ch2", next.Text)

	prev, next = s.Neighbors(s.IndexOf("intro"))
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "Ch1", next.Text)

	prev, next = s.Neighbors(s.IndexOf("ch2"))
	require.NotNil(t, prev)
	assert.Equal(t, "Ch1", prev.Text)
	assert.Nil(t, next)

	prev, next = s.Neighbors(-1)
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestFooter(t *testing.T) {
	s := build(t, "* [Intro](intro.md)\n* [Ch1](ch1.md)\n* [Site](https://example.com)\n")
	prev, next := s.Neighbors(1)

	out := Footer(prev, next)
	doc, err := markdown.ParseHTML(out)
	require.NoError(t, err)

	prevLink := doc.Find("div.book-footer a.book-footer-prev-link")
	assert.Equal(t, "#intro", prevLink.AttrOr("href", ""))
	assert.Equal(t, "Intro", strings.TrimSpace(prevLink.Text()))

	nextLink := doc.Find("div.book-footer a.book-footer-next-link")
	assert.Equal(t, "https://example.com", nextLink.AttrOr("href", ""))
	assert.Equal(t, "_blank", nextLink.AttrOr("target", ""))

	assert.Empty(t, Footer(nil, nil))
}

func TestFooterEscapes(t *testing.T) {
	e := &Entry{Text: `<b>"x"</b>`, Href: "x.md", Page: "x", Intercepted: true}
	assert.Contains(t, Footer(e, nil), "&lt;b&gt;&#34;x&#34;&lt;/b&gt;")
}
