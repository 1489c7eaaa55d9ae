// Package site composes rendered pages into complete HTML documents with the
// shared navigation chrome.
package site

import (
	"errors"
	"html/template"
	"io"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docpages/internal/content"
	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/markdown"
	"git.home.luguber.info/inful/docpages/internal/navigation"
)

// DateSource supplies a last-modified date for pages without a front matter
// date.
type DateSource interface {
	LastModified(path string) (time.Time, bool)
}

// Options is the chrome configuration shared by every page.
type Options struct {
	SiteTitle        string
	SiteDescription  string
	GitHubURL        string
	Footer           string
	DiagramScriptURL string
	// LiveReload embeds the /livereload client script.
	LiveReload bool
}

// Document is the view model handed to the templates.
type Document struct {
	SiteTitle        string
	GitHubURL        string
	Footer           string
	HeadTitle        string
	MetaDescription  string
	Title            string
	Description      string
	Date             string
	Project          string
	Page             string
	Content          template.HTML
	Projects         []navigation.Entry
	Pages            []navigation.Entry
	Diagrams         []markdown.Diagram
	HasDiagrams      bool
	DiagramScriptURL string
	LiveReload       bool
}

// Composer loads, renders and lays out pages.
type Composer struct {
	repo      *content.Repository
	renderer  *markdown.Renderer
	nav       *navigation.Assembler
	dates     DateSource
	opts      Options
	templates *templateSet
	logger    *slog.Logger
}

// NewComposer parses the embedded templates. dates may be nil.
func NewComposer(repo *content.Repository, renderer *markdown.Renderer, nav *navigation.Assembler, dates DateSource, opts Options, logger *slog.Logger) (*Composer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ts, err := parseTemplates()
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryInternal, "failed to parse templates").Build()
	}
	return &Composer{
		repo:      repo,
		renderer:  renderer,
		nav:       nav,
		dates:     dates,
		opts:      opts,
		templates: ts,
		logger:    logger,
	}, nil
}

// Repository returns the content repository pages are loaded from.
func (c *Composer) Repository() *content.Repository { return c.repo }

// Compose builds the document for project/page. An empty page means the
// project index. Errors matching content.ErrPageNotFound mean the page does
// not exist; other errors are content or render failures.
func (c *Composer) Compose(project, page string) (*Document, error) {
	p, err := c.repo.LoadPage(project, page)
	if err != nil {
		return nil, err
	}

	res, err := c.renderer.Render(p.Body, markdown.RenderContext{Project: p.Project})
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRender, "failed to render page").
			WithContext("project", p.Project).
			WithContext("page", p.Slug).
			Build()
	}

	doc := c.chrome(p.Project, p.Slug)
	doc.Title = p.Title
	doc.HeadTitle = p.Title + " - " + c.opts.SiteTitle
	doc.Description = p.Description
	doc.MetaDescription = p.Description
	if doc.MetaDescription == "" {
		doc.MetaDescription = Excerpt(res.HTML.String(), DescriptionLimit)
	}
	if doc.MetaDescription == "" {
		doc.MetaDescription = c.opts.SiteDescription
	}
	doc.Date = p.Date
	if doc.Date == "" && c.dates != nil {
		if t, ok := c.dates.LastModified(p.Path); ok {
			doc.Date = t.UTC().Format(time.DateOnly)
		}
	}
	doc.Content = trusted(res.HTML)
	doc.Diagrams = res.Diagrams
	doc.HasDiagrams = len(res.Diagrams) > 0
	doc.Pages = c.nav.Siblings(p.Project, c.repo.PageSummaries(p.Project), p.Slug)
	return doc, nil
}

// NotFound builds the not-found document. project, when it exists, keeps its
// entry active in the project bar.
func (c *Composer) NotFound(project string) *Document {
	doc := c.chrome(project, "")
	doc.Title = "Page not found"
	doc.HeadTitle = doc.Title + " - " + c.opts.SiteTitle
	doc.MetaDescription = c.opts.SiteDescription
	return doc
}

// WritePage executes the page template.
func (c *Composer) WritePage(w io.Writer, doc *Document) error {
	return c.execute(c.templates.page, w, doc)
}

// WriteNotFound executes the not-found template.
func (c *Composer) WriteNotFound(w io.Writer, doc *Document) error {
	return c.execute(c.templates.notFound, w, doc)
}

// IsNotFound reports whether err from Compose means the page is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, content.ErrPageNotFound)
}

func (c *Composer) execute(t *template.Template, w io.Writer, doc *Document) error {
	if err := t.ExecuteTemplate(w, "layout.gohtml", doc); err != nil {
		c.logger.Error("Template execution failed", logfields.Project(doc.Project), logfields.Page(doc.Page), logfields.Error(err))
		return derrors.WrapError(err, derrors.CategoryRender, "failed to execute template").Build()
	}
	return nil
}

func (c *Composer) chrome(project, page string) *Document {
	return &Document{
		SiteTitle:        c.opts.SiteTitle,
		GitHubURL:        c.opts.GitHubURL,
		Footer:           c.opts.Footer,
		Project:          project,
		Page:             page,
		Projects:         c.nav.Projects(c.repo.Projects(), project),
		DiagramScriptURL: c.opts.DiagramScriptURL,
		LiveReload:       c.opts.LiveReload,
	}
}

// trusted is the only conversion from rendered Markdown to template.HTML.
func trusted(h markdown.TrustedHTML) template.HTML {
	return template.HTML(h.String()) //nolint:gosec // produced by the markdown pipeline
}
