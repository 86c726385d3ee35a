// Package markdown converts markdown resources into HTML documents that the
// viewer can query and decorate before handing them to a view.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSanitize runs every rendered page through a bluemonday UGC policy.
// Raw HTML embedded in the markdown is passed through otherwise.
func WithSanitize() Option {
	return func(r *Renderer) {
		r.policy = newPagePolicy()
	}
}

// New creates a Renderer with GitHub-flavoured markdown and heading IDs.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts src to an HTML fragment.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	if r.policy != nil {
		return r.policy.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}

// Parse renders src and wraps the result in a queryable Document.
func (r *Renderer) Parse(src []byte) (*Document, error) {
	out, err := r.Render(src)
	if err != nil {
		return nil, err
	}
	return ParseHTML(out)
}

var languageClass = regexp.MustCompile(`^language-[\w+#.-]+$`)

func newPagePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(languageClass).OnElements("code")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("align").OnElements("th", "td")
	policy.AllowAttrs("type", "checked", "disabled").OnElements("input")
	policy.AllowElements("input")
	return policy
}

// Document is a rendered HTML fragment open for querying and mutation.
type Document struct {
	doc  *goquery.Document
	body *goquery.Selection
}

// ParseHTML parses an HTML fragment.
func ParseHTML(fragment string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{doc: doc, body: doc.Find("body")}, nil
}

// Find selects elements inside the fragment.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.body.Find(selector)
}

// Root is the selection holding the fragment's top-level nodes.
func (d *Document) Root() *goquery.Selection { return d.body }

// FirstText returns the text of the first element matching selector, or ""
// when nothing matches.
func (d *Document) FirstText(selector string) string {
	return d.body.Find(selector).First().Text()
}

// HTML serializes the fragment back to HTML.
func (d *Document) HTML() (string, error) {
	out, err := d.body.Html()
	if err != nil {
		return "", fmt.Errorf("serializing html: %w", err)
	}
	return out, nil
}
