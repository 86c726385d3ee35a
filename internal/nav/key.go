package nav

import (
	"net/url"
	"path"
	"strings"
)

// Delimiter separates the page from the anchor in a fragment.
// Page identifiers and anchors must not contain it themselves; parsing
// always splits at the first occurrence.
const Delimiter = "_"

// Key identifies what the viewer shows: a page and, optionally, a heading
// anchor within it. An empty Anchor means no anchor.
type Key struct {
	Page   string
	Anchor string
}

// HasAnchor reports whether the key points at a heading.
func (k Key) HasAnchor() bool { return k.Anchor != "" }

// Fragment serializes the key without the leading '#'.
func (k Key) Fragment() string {
	if k.Anchor == "" {
		return k.Page
	}
	return k.Page + Delimiter + k.Anchor
}

// Resource is the markdown file backing the page.
func (k Key) Resource() string { return k.Page + ".md" }

// ParseKey parses a URL fragment, with or without its leading '#'.
// An empty fragment or an empty page part resolves to defaultPage.
func ParseKey(fragment, defaultPage string) Key {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return Key{Page: defaultPage}
	}

	page, anchor, _ := strings.Cut(fragment, Delimiter)
	if page == "" {
		page = defaultPage
	}
	return Key{Page: page, Anchor: anchor}
}

// PageFromHref turns a markdown link target into a page identifier by
// dropping its file extension: "chapter1.md" -> "chapter1". Rendered links
// are percent-encoded, so the path is unescaped first; an invalid escape
// is kept as written.
func PageFromHref(href string) string {
	href = strings.TrimPrefix(href, "./")
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if p, err := url.PathUnescape(href); err == nil {
		href = p
	}
	return strings.TrimSuffix(href, path.Ext(href))
}
