// Package content discovers projects and pages in the content tree and loads
// them for rendering.
//
// The tree layout is <root>/<project-slug>/<page-slug>.md. Project slugs are
// expected to carry a zero-padded numeric prefix ("00_", "01_", ...) so that
// lexical order equals display order.
package content

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docpages/internal/logfields"
)

const (
	// IndexSlug is the page slug of a project's landing page.
	IndexSlug = "index"
	// MarkdownExt is the file extension of pages.
	MarkdownExt = ".md"
)

var orderPrefix = regexp.MustCompile(`^\d+_`)

// StripOrderPrefix removes a leading "<digits>_" ordering prefix. Slugs that
// do not start with that shape are returned unchanged.
func StripOrderPrefix(slug string) string {
	return orderPrefix.ReplaceAllString(slug, "")
}

// ValidSlug reports whether s can name a single entry directly inside the
// content tree.
func ValidSlug(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}

// Scanner lists projects and pages below a content root. All listing methods
// fail softly: unreadable directories are logged and yield empty results.
type Scanner struct {
	root   string
	logger *slog.Logger
}

// NewScanner creates a scanner rooted at root. A nil logger uses slog.Default.
func NewScanner(root string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{root: filepath.Clean(root), logger: logger}
}

// Root returns the content root this scanner reads.
func (s *Scanner) Root() string { return s.root }

// Exists reports whether the content root is a readable directory.
func (s *Scanner) Exists() bool {
	st, err := os.Stat(s.root)
	return err == nil && st.IsDir()
}

// Projects returns the project directory names sorted lexically ascending.
func (s *Scanner) Projects() []string {
	entries, ok := s.readDir(s.root)
	if !ok {
		return []string{}
	}
	projects := make([]string, 0, len(entries))
	for _, e := range entries {
		if isHidden(e.Name()) || !isDir(s.root, e) {
			continue
		}
		projects = append(projects, e.Name())
	}
	sort.Strings(projects)
	return projects
}

// Pages returns the Markdown file names of a project sorted lexically.
func (s *Scanner) Pages(project string) []string {
	return s.files(project, func(name string) bool { return isMarkdown(name) })
}

// PageSlugs returns the page slugs of a project (file names without extension).
func (s *Scanner) PageSlugs(project string) []string {
	files := s.Pages(project)
	slugs := make([]string, 0, len(files))
	for _, f := range files {
		slugs = append(slugs, strings.TrimSuffix(f, filepath.Ext(f)))
	}
	return slugs
}

// Assets returns the non-Markdown regular files of a project.
func (s *Scanner) Assets(project string) []string {
	return s.files(project, func(name string) bool { return !isMarkdown(name) })
}

// HasPage reports whether project contains the page slug.
func (s *Scanner) HasPage(project, page string) bool {
	if !ValidSlug(project) || !ValidSlug(page) {
		return false
	}
	st, err := os.Stat(s.PagePath(project, page))
	return err == nil && st.Mode().IsRegular()
}

// PagePath returns the file path of a page. Callers validate slugs first.
func (s *Scanner) PagePath(project, page string) string {
	return filepath.Join(s.root, project, page+MarkdownExt)
}

func (s *Scanner) files(project string, keep func(string) bool) []string {
	if !ValidSlug(project) {
		return []string{}
	}
	dir := filepath.Join(s.root, project)
	entries, ok := s.readDir(dir)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if isHidden(name) || !keep(name) {
			continue
		}
		if !e.Type().IsRegular() && !isRegularSymlink(dir, e) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Scanner) readDir(dir string) ([]os.DirEntry, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Content directory not found", logfields.Path(dir))
		} else {
			s.logger.Error("Failed to read content directory", logfields.Path(dir), logfields.Error(err))
		}
		return nil, false
	}
	return entries, true
}

func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	st, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && st.IsDir()
}

func isRegularSymlink(parent string, e os.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	st, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && st.Mode().IsRegular()
}

func isMarkdown(name string) bool {
	return strings.HasSuffix(name, MarkdownExt)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
