package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/frontmatter"
	"git.home.luguber.info/inful/docpages/internal/logfields"
)

// ErrPageNotFound is returned when a project or page does not exist.
var ErrPageNotFound = errors.New("page not found")

// Project is a project directory with its resolved display title.
type Project struct {
	Slug string
	// Title is the index page title, or CleanName when there is none.
	Title     string
	CleanName string
	HasIndex  bool
}

// PageSummary is the navigation view of a page.
type PageSummary struct {
	Slug  string
	Title string
}

// Page is a fully loaded page ready for rendering.
type Page struct {
	Project     string
	Slug        string
	Title       string
	Description string
	Date        string
	Metadata    frontmatter.Metadata
	// RawFrontmatter is the metadata block without delimiters.
	RawFrontmatter []byte
	Body           []byte
	// Path is the file the page was read from.
	Path string
}

// IsIndex reports whether the page is its project's landing page.
func (p *Page) IsIndex() bool { return p.Slug == IndexSlug }

// StaticPath is one renderable route of the site.
type StaticPath struct {
	Project string
	Page    string
}

// URL returns the route path: /projects/<p> for index pages and
// /projects/<p>/<page> otherwise.
func (sp StaticPath) URL() string {
	if sp.Page == IndexSlug {
		return "/projects/" + sp.Project
	}
	return "/projects/" + sp.Project + "/" + sp.Page
}

// Repository loads pages and project metadata through a Scanner.
type Repository struct {
	scanner *Scanner
	logger  *slog.Logger
}

// NewRepository wraps scanner. A nil logger uses slog.Default.
func NewRepository(scanner *Scanner, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{scanner: scanner, logger: logger}
}

// Scanner returns the underlying scanner.
func (r *Repository) Scanner() *Scanner { return r.scanner }

// LoadPage reads and parses a page. Missing projects or pages, and slugs that
// cannot name an entry in the tree, yield an error matching ErrPageNotFound.
func (r *Repository) LoadPage(project, page string) (*Page, error) {
	if page == "" {
		page = IndexSlug
	}
	if !ValidSlug(project) || !ValidSlug(page) {
		return nil, notFound(project, page)
	}

	path := r.scanner.PagePath(project, page)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || isDirErr(path) {
			return nil, notFound(project, page)
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read page").
			WithContext("path", path).
			Build()
	}

	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryContent, "failed to parse page frontmatter").
			WithContext("path", path).
			Build()
	}

	date, _ := doc.Metadata.Date()
	return &Page{
		Project:        project,
		Slug:           page,
		Title:          doc.Metadata.Title(page),
		Description:    doc.Metadata.Description(),
		Date:           date,
		Metadata:       doc.Metadata,
		RawFrontmatter: doc.Raw,
		Body:           doc.Body,
		Path:           path,
	}, nil
}

// PageSummaries returns slug and title of every page in project, in file
// order. Pages whose frontmatter cannot be read fall back to their slug.
func (r *Repository) PageSummaries(project string) []PageSummary {
	slugs := r.scanner.PageSlugs(project)
	out := make([]PageSummary, 0, len(slugs))
	for _, slug := range slugs {
		title := slug
		if meta, err := r.readMetadata(project, slug); err == nil {
			title = meta.Title(slug)
		} else {
			r.logger.Warn("Using slug as page title", logfields.Project(project), logfields.Page(slug), logfields.Error(err))
		}
		out = append(out, PageSummary{Slug: slug, Title: title})
	}
	return out
}

// Projects returns every project in scan order with its display title.
func (r *Repository) Projects() []Project {
	slugs := r.scanner.Projects()
	out := make([]Project, 0, len(slugs))
	for _, slug := range slugs {
		clean := StripOrderPrefix(slug)
		p := Project{Slug: slug, Title: clean, CleanName: clean}
		if meta, err := r.readMetadata(slug, IndexSlug); err == nil {
			p.HasIndex = true
			p.Title = meta.Title(clean)
		} else if !errors.Is(err, ErrPageNotFound) {
			p.HasIndex = true
			r.logger.Warn("Using directory name as project title", logfields.Project(slug), logfields.Error(err))
		}
		out = append(out, p)
	}
	return out
}

// StaticPaths enumerates every renderable page route in scan order.
func (r *Repository) StaticPaths() []StaticPath {
	var paths []StaticPath
	for _, project := range r.scanner.Projects() {
		for _, page := range r.scanner.PageSlugs(project) {
			paths = append(paths, StaticPath{Project: project, Page: page})
		}
	}
	return paths
}

func (r *Repository) readMetadata(project, page string) (frontmatter.Metadata, error) {
	path := r.scanner.PagePath(project, page)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(project, page)
		}
		return nil, err
	}
	raw, _, had, err := frontmatter.Split(data)
	if err != nil {
		return nil, err
	}
	if !had {
		return frontmatter.Metadata{}, nil
	}
	return frontmatter.ParseYAML(raw)
}

func notFound(project, page string) error {
	return fmt.Errorf("%w: %s/%s", ErrPageNotFound, project, page)
}

func isDirErr(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
