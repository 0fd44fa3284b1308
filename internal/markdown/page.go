package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Frontmatter is the YAML header of a content page. Every field is optional.
type Frontmatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	LastUpdated string `yaml:"lastUpdated"`
}

// Document is a rendered content page.
type Document struct {
	Meta Frontmatter
	HTML template.HTML
}

// PageRenderer renders the trusted markdown under CONTENT_PATH/pages.
// Unlike captions, page authors may use footnotes and typographic quotes.
type PageRenderer struct {
	md goldmark.Markdown
}

func NewPageRenderer() *PageRenderer {
	return &PageRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Footnote,
				extension.Typographer,
				&frontmatter.Extender{},
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(goldmarkhtml.WithXHTML()),
		),
	}
}

// Render converts source and decodes its frontmatter. A malformed header
// is an error so a broken page is caught when pages load.
func (p *PageRenderer) Render(source []byte) (*Document, error) {
	pctx := parser.NewContext()
	var buf bytes.Buffer
	if err := p.md.Convert(source, &buf, parser.WithContext(pctx)); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	doc := &Document{HTML: template.HTML(buf.String())}
	if data := frontmatter.Get(pctx); data != nil {
		if err := data.Decode(&doc.Meta); err != nil {
			return nil, fmt.Errorf("invalid frontmatter: %w", err)
		}
	}
	return doc, nil
}
