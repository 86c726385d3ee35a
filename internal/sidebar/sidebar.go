// Package sidebar models the table of contents rendered from the summary
// markdown: its ordered entries, link interception and the prev/next footer.
package sidebar

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ziadkadry99/doc-web/internal/markdown"
	"github.com/ziadkadry99/doc-web/internal/nav"
)

// Entry is one link of the sidebar, in document order.
type Entry struct {
	Text        string
	Href        string
	Page        string // page identifier; only meaningful when Intercepted
	Intercepted bool
}

// Target is where a footer link to this entry points.
func (e Entry) Target() string {
	if e.Intercepted {
		return "#" + e.Page
	}
	return e.Href
}

// Sidebar is built once per session from the rendered summary and is
// read-only afterwards.
type Sidebar struct {
	html    string
	entries []Entry
}

// Intercept reports whether a sidebar link is handled in-app: a relative
// reference to a markdown file. Anything with a scheme or a host navigates
// normally.
func Intercept(href string) bool {
	if strings.HasPrefix(href, "//") || hasScheme(href) {
		return false
	}
	return strings.Index(href, ".md") > 0
}

// hasScheme reports whether href starts with "scheme:". Only the text
// before the first '/', '?' or '#' is considered, so "1c:intro.md" is a
// relative path.
func hasScheme(href string) bool {
	if i := strings.IndexAny(href, "/?#"); i >= 0 {
		href = href[:i]
	}
	scheme, _, ok := strings.Cut(href, ":")
	if !ok || scheme == "" {
		return false
	}
	for i, c := range scheme {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// Build collects the entries of a rendered summary and decorates its links:
// intercepted links get a data-page attribute, all others open in a new
// browsing context.
func Build(doc *markdown.Document) (*Sidebar, error) {
	s := &Sidebar{}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		e := Entry{
			Text:        strings.TrimSpace(a.Text()),
			Href:        href,
			Intercepted: Intercept(href),
		}
		if e.Intercepted {
			e.Page = nav.PageFromHref(href)
			a.SetAttr("data-page", e.Page)
		} else {
			a.SetAttr("target", "_blank")
		}
		s.entries = append(s.entries, e)
	})

	out, err := doc.HTML()
	if err != nil {
		return nil, fmt.Errorf("building sidebar: %w", err)
	}
	s.html = out
	return s, nil
}

// HTML returns the decorated sidebar markup.
func (s *Sidebar) HTML() string { return s.html }

// Entries returns the entries in document order.
func (s *Sidebar) Entries() []Entry { return s.entries }

// IndexOf returns the position of the first intercepted entry for page,
// or -1.
func (s *Sidebar) IndexOf(page string) int {
	for i, e := range s.entries {
		if e.Intercepted && e.Page == page {
			return i
		}
	}
	return -1
}

// Neighbors returns the entries before and after position i. Either is nil
// at the ends of the list or when i is out of range.
func (s *Sidebar) Neighbors(i int) (prev, next *Entry) {
	if i < 0 || i >= len(s.entries) {
		return nil, nil
	}
	if i > 0 {
		prev = &s.entries[i-1]
	}
	if i < len(s.entries)-1 {
		next = &s.entries[i+1]
	}
	return prev, next
}

// Footer renders the prev/next footer. It returns "" when both are nil.
func Footer(prev, next *Entry) string {
	if prev == nil && next == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="book-footer">`)
	if prev != nil {
		fmt.Fprintf(&b, `<a class="book-footer-prev-link" href="%s"%s><i class="book-icon-left"></i> %s</a>`,
			html.EscapeString(prev.Target()), footerTarget(prev), html.EscapeString(prev.Text))
	}
	if next != nil {
		fmt.Fprintf(&b, `<a class="book-footer-next-link" href="%s"%s>%s <i class="book-icon-right"></i></a>`,
			html.EscapeString(next.Target()), footerTarget(next), html.EscapeString(next.Text))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func footerTarget(e *Entry) string {
	if e.Intercepted {
		return ""
	}
	return ` target="_blank"`
}
