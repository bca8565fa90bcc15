package highlight

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "friendly"

// Highlighter turns source text into HTML with CSS classes. The matching
// stylesheet is produced by WriteCSS. It is safe for concurrent use.
type Highlighter struct {
	formatter *html.Formatter
	style     *chroma.Style
}

// New returns a Highlighter for the named chroma style. Unknown names fall
// back to chroma's default style.
func New(styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultStyle
	}
	return &Highlighter{
		formatter: html.New(html.WithClasses(true), html.TabWidth(4)),
		style:     styles.Get(styleName),
	}
}

// StyleName returns the name of the style in use.
func (h *Highlighter) StyleName() string {
	return h.style.Name
}

// HTML highlights source with the lexer registered for lang ("wkt", "proj",
// "json" or any chroma alias). Unknown languages are rendered as plain text.
func (h *Highlighter) HTML(lang, source string) (template.HTML, error) {
	lexer := lexers.Get(strings.ToLower(lang))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise %s: %w", lang, err)
	}

	var buf bytes.Buffer
	if err = h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", fmt.Errorf("failed to format %s: %w", lang, err)
	}
	return template.HTML(buf.String()), nil
}

// WriteCSS writes the stylesheet for the classes emitted by HTML.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}
