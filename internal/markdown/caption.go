package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// CaptionRenderer turns user-written captions into safe HTML.
// Raw HTML in the source is dropped by goldmark and the output is
// run through a UGC policy before it reaches a template.
type CaptionRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewCaptionRenderer() *CaptionRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
			emoji.Emoji,
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &CaptionRenderer{md: md, policy: policy}
}

// Render returns the caption as HTML. On a render failure the escaped
// plain text is returned so a caption is never lost.
func (c *CaptionRenderer) Render(caption string) template.HTML {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(caption), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(caption))
	}
	return template.HTML(c.policy.SanitizeBytes(buf.Bytes()))
}
