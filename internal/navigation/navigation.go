// Package navigation assembles the sidebar and project bar entries for a page.
package navigation

import (
	"net/url"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docpages/internal/content"
)

// Entry is one navigation link.
type Entry struct {
	Slug     string
	Title    string
	Href     string
	IsActive bool
}

// Assembler orders navigation entries using a collation locale.
type Assembler struct {
	tag language.Tag
}

// NewAssembler returns an assembler for the given BCP 47 locale. An empty or
// unparseable locale falls back to language.Und (root collation).
func NewAssembler(locale string) *Assembler {
	tag := language.Und
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			tag = parsed
		}
	}
	return &Assembler{tag: tag}
}

// Siblings returns the pages of project with the index page first and the
// rest ordered by collated title. Equal titles are ordered by slug.
func (a *Assembler) Siblings(project string, pages []content.PageSummary, activePage string) []Entry {
	if activePage == "" {
		activePage = content.IndexSlug
	}

	sorted := make([]content.PageSummary, len(pages))
	copy(sorted, pages)

	// Collators keep internal buffers; one per call keeps Assembler shareable.
	col := collate.New(a.tag)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i], sorted[j]
		if pi.Slug == content.IndexSlug || pj.Slug == content.IndexSlug {
			return pi.Slug == content.IndexSlug && pj.Slug != content.IndexSlug
		}
		if c := col.CompareString(pi.Title, pj.Title); c != 0 {
			return c < 0
		}
		return pi.Slug < pj.Slug
	})

	entries := make([]Entry, 0, len(sorted))
	for _, p := range sorted {
		entries = append(entries, Entry{
			Slug:     p.Slug,
			Title:    p.Title,
			Href:     PageHref(project, p.Slug),
			IsActive: p.Slug == activePage,
		})
	}
	return entries
}

// Projects returns every project in the given (scan) order.
func (a *Assembler) Projects(projects []content.Project, activeProject string) []Entry {
	entries := make([]Entry, 0, len(projects))
	for _, p := range projects {
		entries = append(entries, Entry{
			Slug:     p.Slug,
			Title:    p.Title,
			Href:     PageHref(p.Slug, content.IndexSlug),
			IsActive: p.Slug == activeProject,
		})
	}
	return entries
}

// PageHref is the route of a page. Index pages map to the project route.
func PageHref(project, page string) string {
	href := "/projects/" + url.PathEscape(project)
	if page != "" && page != content.IndexSlug {
		href += "/" + url.PathEscape(page)
	}
	return href
}
