package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRenderWithFrontmatter(t *testing.T) {
	src := []byte("---\ntitle: About Pixaro\ndescription: Who we are\nlastUpdated: 2026-10-01\n---\n# Hello\n\nShare photos.")

	doc, err := NewPageRenderer().Render(src)
	require.NoError(t, err)
	assert.Equal(t, Frontmatter{Title: "About Pixaro", Description: "Who we are", LastUpdated: "2026-10-01"}, doc.Meta)
	assert.Contains(t, string(doc.HTML), `<h1 id="hello">Hello</h1>`)
	assert.NotContains(t, string(doc.HTML), "title:")
}

func TestPageRenderWithoutFrontmatter(t *testing.T) {
	doc, err := NewPageRenderer().Render([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, Frontmatter{}, doc.Meta)
	assert.Contains(t, string(doc.HTML), "plain")
}

func TestPageRenderRejectsBrokenFrontmatter(t *testing.T) {
	_, err := NewPageRenderer().Render([]byte("---\ntitle: [unclosed\n---\nbody"))
	assert.Error(t, err)
}

func TestCaptionRender(t *testing.T) {
	c := NewCaptionRenderer()

	tests := []struct {
		name     string
		caption  string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			caption:  "sunset *over* the bay",
			contains: []string{"<em>over</em>"},
		},
		{
			name:     "linkify",
			caption:  "shot on https://example.com/gear",
			contains: []string{`href="https://example.com/gear"`, "nofollow", `target="_blank"`},
		},
		{
			name:     "raw html dropped",
			caption:  "hi <script>alert(1)</script>",
			excludes: []string{"<script>", "alert(1)</script>"},
		},
		{
			name:     "javascript link stripped",
			caption:  "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "emoji",
			caption:  "beach day :sunny:",
			contains: []string{"\u2600"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(c.Render(tt.caption))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestCaptionRenderEmpty(t *testing.T) {
	assert.Empty(t, NewCaptionRenderer().Render("   "))
}

func TestCaptionRenderHardWraps(t *testing.T) {
	out := string(NewCaptionRenderer().Render("line one\nline two"))
	assert.True(t, strings.Contains(out, "<br"), out)
}
