// Package markdown turns page bodies into trusted HTML fragments.
//
// The pipeline is goldmark (CommonMark + GFM) with diagram fence extraction
// and relative link rewriting, followed by the paragraph unwrapping rules in
// Normalize.
package markdown

import (
	"bytes"
	"fmt"
	"time"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultDiagramLanguage is the fence language treated as a diagram.
const DefaultDiagramLanguage = "mermaid"

// Options is the renderer configuration. It is copied into the Renderer at
// construction and never changes afterwards.
type Options struct {
	// DiagramLanguage is the fence info string marking diagram blocks.
	DiagramLanguage string
	// HighlightStyle is a chroma style name; empty disables highlighting.
	HighlightStyle string
	// HeadingIDs adds generated id attributes to headings.
	HeadingIDs bool
	// UnsafeHTML passes raw HTML in the Markdown through to the output.
	UnsafeHTML bool
	// RewriteLinks maps relative image and .md destinations onto site routes.
	RewriteLinks bool
	// Now stamps each render pass; nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DiagramLanguage: DefaultDiagramLanguage,
		UnsafeHTML:      true,
		RewriteLinks:    true,
	}
}

// RenderContext carries per-call inputs that are not configuration.
type RenderContext struct {
	// Project is the slug of the project the page belongs to. Relative links
	// are only rewritten when it is set.
	Project string
}

// Result is the output of one render pass.
type Result struct {
	HTML     TrustedHTML
	Diagrams []Diagram
}

// Renderer converts Markdown bodies to HTML. It is safe for concurrent use.
type Renderer struct {
	opts       Options
	md         goldmark.Markdown
	normalizer *Normalizer
}

// NewRenderer builds the goldmark engine once for the given options.
func NewRenderer(opts Options) *Renderer {
	if opts.DiagramLanguage == "" {
		opts.DiagramLanguage = DefaultDiagramLanguage
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	extensions := []goldmark.Extender{
		extension.GFM,
		&diagramExtension{language: opts.DiagramLanguage},
	}
	if opts.HighlightStyle != "" {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(opts.HighlightStyle),
		))
	}
	if opts.RewriteLinks {
		extensions = append(extensions, &linkRewriteExtension{})
	}

	var parserOptions []parser.Option
	if opts.HeadingIDs {
		parserOptions = append(parserOptions, parser.WithAutoHeadingID())
	}
	var rendererOptions []renderer.Option
	if opts.UnsafeHTML {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithRendererOptions(rendererOptions...),
	)

	return &Renderer{opts: opts, md: md, normalizer: NewNormalizer()}
}

// Options returns a copy of the renderer configuration.
func (r *Renderer) Options() Options { return r.opts }

// Render converts body to normalized HTML and collects its diagram blocks.
func (r *Renderer) Render(body []byte, rc RenderContext) (Result, error) {
	pass := &renderPass{project: rc.Project, stamp: r.opts.Now().UnixMilli()}
	pc := parser.NewContext()
	pc.Set(passKey, pass)

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf, parser.WithContext(pc)); err != nil {
		return Result{}, fmt.Errorf("markdown render: %w", err)
	}

	return Result{
		HTML:     TrustedHTML{html: r.normalizer.Normalize(buf.String())},
		Diagrams: pass.diagrams,
	}, nil
}

var passKey = parser.NewContextKey()

// renderPass is the mutable state of a single Render call.
type renderPass struct {
	project  string
	stamp    int64
	counter  int
	diagrams []Diagram
}

func (p *renderPass) nextDiagram(source string) Diagram {
	d := Diagram{
		ID:     fmt.Sprintf("diagram-%d-%d", p.counter, p.stamp),
		Source: source,
	}
	p.counter++
	p.diagrams = append(p.diagrams, d)
	return d
}

func passFrom(pc parser.Context) *renderPass {
	pass, _ := pc.Get(passKey).(*renderPass)
	return pass
}
