package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time { return time.UnixMilli(1700000000000) }

func newTestRenderer(mod func(*Options)) *Renderer {
	opts := DefaultOptions()
	opts.Now = fixedNow
	if mod != nil {
		mod(&opts)
	}
	return NewRenderer(opts)
}

func render(t *testing.T, r *Renderer, project, body string) Result {
	t.Helper()
	res, err := r.Render([]byte(body), RenderContext{Project: project})
	require.NoError(t, err)
	return res
}

func TestRender_Heading(t *testing.T) {
	res := render(t, newTestRenderer(nil), "00_a", "# Hello\n")
	assert.Equal(t, "<h1>Hello</h1>\n", res.HTML.String())
	assert.Empty(t, res.Diagrams)
}

func TestRender_HeadingIDs(t *testing.T) {
	r := newTestRenderer(func(o *Options) { o.HeadingIDs = true })
	res := render(t, r, "00_a", "# Hello World\n")
	assert.Contains(t, res.HTML.String(), `<h1 id="hello-world">Hello World</h1>`)
}

func TestRender_GFM(t *testing.T) {
	body := "| a | b |\n|---|---|\n| 1 | 2 |\n\n- [x] done\n\n~~old~~\n"
	html := render(t, newTestRenderer(nil), "00_a", body).HTML.String()

	assert.Contains(t, html, "<table>")
	assert.NotContains(t, html, "<p><table>")
	assert.Contains(t, html, `type="checkbox"`)
	assert.Contains(t, html, "<del>old</del>")
}

func TestRender_StandaloneImageUnwrapped(t *testing.T) {
	html := render(t, newTestRenderer(nil), "00_a", "![logo](https://example.com/logo.png)\n").HTML.String()
	assert.Equal(t, "<img src=\"https://example.com/logo.png\" alt=\"logo\">\n", html)
}

func TestRender_InlineDivKeepsParagraph(t *testing.T) {
	res := render(t, newTestRenderer(nil), "00_a", "foo <div>bar</div>\n")
	assert.Equal(t, "<p>foo <div>bar</div></p>\n", res.HTML.String())
}

func TestRender_Diagrams(t *testing.T) {
	body := "```mermaid\ngraph TD; A-->B\n```\n\ntext\n\n```mermaid\nsequenceDiagram\n  A->>B: <hi>\n```\n\n```go\nfunc main() {}\n```\n"
	res := render(t, newTestRenderer(nil), "00_a", body)

	require.Len(t, res.Diagrams, 2)
	assert.Equal(t, "diagram-0-1700000000000", res.Diagrams[0].ID)
	assert.Equal(t, "diagram-1-1700000000000", res.Diagrams[1].ID)
	assert.Equal(t, "graph TD; A-->B\n", res.Diagrams[0].Source)
	assert.Equal(t, "sequenceDiagram\n  A->>B: <hi>\n", res.Diagrams[1].Source)

	html := res.HTML.String()
	assert.Contains(t, html, `<div class="diagram-container"><pre class="mermaid" id="diagram-0-1700000000000">graph TD; A--&gt;B`)
	assert.Contains(t, html, "A-&gt;&gt;B: &lt;hi&gt;")
	assert.Equal(t, 1, strings.Count(html, "<code"))
	assert.Contains(t, html, `class="language-go"`)
}

func TestRender_DiagramCounterPerPass(t *testing.T) {
	r := newTestRenderer(nil)
	body := "```mermaid\na\n```\n"

	first := render(t, r, "00_a", body)
	second := render(t, r, "00_a", body)
	assert.Equal(t, first.Diagrams[0].ID, second.Diagrams[0].ID)
}

func TestRender_CustomDiagramLanguage(t *testing.T) {
	r := newTestRenderer(func(o *Options) { o.DiagramLanguage = "plantuml" })
	res := render(t, r, "00_a", "```plantuml\n@startuml\n```\n\n```mermaid\nx\n```\n")

	require.Len(t, res.Diagrams, 1)
	assert.Equal(t, "@startuml\n", res.Diagrams[0].Source)
}

func TestRender_Highlighting(t *testing.T) {
	r := newTestRenderer(func(o *Options) { o.HighlightStyle = "github" })
	html := render(t, r, "00_a", "```go\npackage main\n```\n").HTML.String()
	assert.Contains(t, html, "<pre")
	assert.Contains(t, html, "style=")
}

func TestRender_UnsafeHTML(t *testing.T) {
	body := "<div class=\"note\">raw</div>\n"

	html := render(t, newTestRenderer(nil), "00_a", body).HTML.String()
	assert.Contains(t, html, `<div class="note">raw</div>`)

	safe := newTestRenderer(func(o *Options) { o.UnsafeHTML = false })
	html = render(t, safe, "00_a", body).HTML.String()
	assert.NotContains(t, html, `<div class="note">`)
}

func TestRender_LinkRewriting(t *testing.T) {
	body := "![arch](diagram.png) [setup](setup.md#install) [home](index.md) [other](../01_b/intro.md) [ext](https://example.com/x.md) [root](/projects/x)\n"
	html := render(t, newTestRenderer(nil), "00_a", body).HTML.String()

	assert.Contains(t, html, `src="/api/projects/00_a/diagram.png"`)
	assert.Contains(t, html, `href="/projects/00_a/setup#install"`)
	assert.Contains(t, html, `href="/projects/00_a"`)
	assert.Contains(t, html, `href="/projects/01_b/intro"`)
	assert.Contains(t, html, `href="https://example.com/x.md"`)
	assert.Contains(t, html, `href="/projects/x"`)
}

func TestRender_LinkRewritingDisabled(t *testing.T) {
	r := newTestRenderer(func(o *Options) { o.RewriteLinks = false })
	html := render(t, r, "00_a", "[setup](setup.md)\n").HTML.String()
	assert.Contains(t, html, `href="setup.md"`)
}

func TestRewriteImage(t *testing.T) {
	got, ok := RewriteImage("00_a", "./img/x.png")
	assert.False(t, ok, got)

	got, ok = RewriteImage("00_a", "../../etc/passwd")
	assert.False(t, ok, got)

	got, ok = RewriteImage("00_a", "./logo.png")
	assert.True(t, ok)
	assert.Equal(t, "/api/projects/00_a/logo.png", got)

	_, ok = RewriteImage("00_a", "data:image/png;base64,AAAA")
	assert.False(t, ok)
}

func TestTrustedHTML_Zero(t *testing.T) {
	var h TrustedHTML
	assert.True(t, h.IsEmpty())
	assert.Empty(t, h.String())
}
