package markdown

import (
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

type linkRewriteExtension struct{}

func (e *linkRewriteExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&linkRewriter{}, 200),
	))
}

// linkRewriter maps relative destinations onto site routes: images to the
// asset endpoint and .md links to page routes.
type linkRewriter struct{}

func (t *linkRewriter) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	pass := passFrom(pc)
	if pass == nil || pass.project == "" {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			if dest, ok := RewriteImage(pass.project, string(node.Destination)); ok {
				node.Destination = []byte(dest)
			}
		case *ast.Link:
			if dest, ok := RewriteLink(pass.project, string(node.Destination)); ok {
				node.Destination = []byte(dest)
			}
		}
		return ast.WalkContinue, nil
	})
}

// RewriteImage returns the asset route for a relative image destination that
// resolves to a file directly inside project.
func RewriteImage(project, dest string) (string, bool) {
	u, ok := relative(dest)
	if !ok {
		return "", false
	}
	parts, ok := inProject(project, u.Path)
	if !ok {
		return "", false
	}
	return "/api/projects/" + url.PathEscape(parts[0]) + "/" + url.PathEscape(parts[1]), true
}

// RewriteLink returns the page route for a relative link to a .md file
// inside project or a sibling project. Fragments are kept.
func RewriteLink(project, dest string) (string, bool) {
	u, ok := relative(dest)
	if !ok || !strings.HasSuffix(strings.ToLower(u.Path), MarkdownExt) {
		return "", false
	}
	parts, ok := inProject(project, u.Path)
	if !ok {
		return "", false
	}
	slug := parts[1][:len(parts[1])-len(MarkdownExt)]
	out := "/projects/" + url.PathEscape(parts[0])
	if slug != "index" {
		out += "/" + url.PathEscape(slug)
	}
	if u.Fragment != "" {
		out += "#" + u.EscapedFragment()
	}
	return out, true
}

// MarkdownExt is the page file extension recognised by the link rewriter.
const MarkdownExt = ".md"

func relative(dest string) (*url.URL, bool) {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return nil, false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return nil, false
	}
	return u, true
}

// inProject resolves rel against project and accepts only results of the
// form <project>/<file>.
func inProject(project, rel string) ([]string, bool) {
	cleaned := path.Clean(project + "/" + rel)
	parts := strings.Split(cleaned, "/")
	if len(parts) != 2 || parts[0] == ".." || parts[0] == "." || parts[1] == ".." {
		return nil, false
	}
	return parts, true
}
