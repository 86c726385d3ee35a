// Package highlight applies chroma syntax highlighting to rendered code
// elements.
package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when no style is configured or the name is unknown.
const DefaultStyle = "github"

// Highlighter renders code with CSS classes; the matching stylesheet comes
// from WriteCSS.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New creates a Highlighter for the named chroma style.
func New(styleName string) *Highlighter {
	style := styles.Get(styleName)
	if style == nil || styleName == "" {
		style = styles.Get(DefaultStyle)
	}
	return &Highlighter{
		style: style,
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// Language extracts the language from a "language-xxx" class list.
func Language(class string) string {
	for _, c := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(c, "language-"); ok && lang != "" {
			return lang
		}
	}
	return ""
}

// Highlight renders code as highlighted HTML. ok is false when no lexer
// matches lang.
func (h *Highlighter) Highlight(lang, code string) (out string, ok bool, err error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", false, nil
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false, fmt.Errorf("tokenising %s: %w", lang, err)
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iter); err != nil {
		return "", false, fmt.Errorf("formatting %s: %w", lang, err)
	}
	return b.String(), true, nil
}

// Apply highlights every code element of sel in document order. Each element
// is handled on its own; one that fails to highlight is left as it was.
// It returns the number of elements highlighted.
func (h *Highlighter) Apply(sel *goquery.Selection) int {
	count := 0
	sel.Find("code").Each(func(_ int, code *goquery.Selection) {
		lang := Language(code.AttrOr("class", ""))
		if lang == "" {
			return
		}
		out, ok, err := h.Highlight(lang, code.Text())
		if err != nil || !ok {
			return
		}
		code.SetHtml(out)
		code.AddClass("chroma")
		count++
	})
	return count
}

// WriteCSS writes the stylesheet for the configured style.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}
