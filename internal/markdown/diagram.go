package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Diagram is a diagram fence located during a render pass.
type Diagram struct {
	// ID is unique within the render pass: diagram-<counter>-<pass unix ms>.
	ID string
	// Source is the literal fence content.
	Source string
}

// KindDiagram is the AST node kind that replaces diagram fences.
var KindDiagram = ast.NewNodeKind("Diagram")

type diagramNode struct {
	ast.BaseBlock
	ID     string
	Source []byte
}

func (n *diagramNode) Kind() ast.NodeKind { return KindDiagram }

func (n *diagramNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"ID": n.ID}, nil)
}

type diagramExtension struct {
	language string
}

func (e *diagramExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&diagramTransformer{language: []byte(e.language)}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&diagramHTMLRenderer{}, 100),
	))
}

// diagramTransformer swaps fenced code blocks tagged with the diagram
// language for diagram nodes, numbering them in document order.
type diagramTransformer struct {
	language []byte
}

func (t *diagramTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	pass := passFrom(pc)
	if pass == nil {
		return
	}
	source := reader.Source()

	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fb, ok := n.(*ast.FencedCodeBlock); ok && bytes.Equal(fb.Language(source), t.language) {
			fences = append(fences, fb)
		}
		return ast.WalkContinue, nil
	})

	for _, fb := range fences {
		var buf bytes.Buffer
		lines := fb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		d := pass.nextDiagram(buf.String())
		node := &diagramNode{ID: d.ID, Source: buf.Bytes()}
		parent := fb.Parent()
		parent.ReplaceChild(parent, fb, node)
	}
}

type diagramHTMLRenderer struct{}

func (r *diagramHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDiagram, r.renderDiagram)
}

func (r *diagramHTMLRenderer) renderDiagram(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*diagramNode)
	_, _ = w.WriteString(`<div class="diagram-container"><pre class="mermaid" id="`)
	_, _ = w.WriteString(n.ID)
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(n.Source))
	_, _ = w.WriteString("</pre></div>\n")
	return ast.WalkSkipChildren, nil
}
