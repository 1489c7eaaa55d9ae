// Package export writes the whole site as static files.
//
// Layout of the output directory:
//
//	index.html                          redirect to the first project
//	404.html                            not-found page
//	projects/<p>/index.html             project index page
//	projects/<p>/<page>/index.html      other pages
//	api/projects/<p>/<file>             assets
package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docpages/internal/assets"
	"git.home.luguber.info/inful/docpages/internal/content"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/metrics"
	"git.home.luguber.info/inful/docpages/internal/navigation"
	"git.home.luguber.info/inful/docpages/internal/site"
)

// Report summarises one export run.
type Report struct {
	OutputDir string
	Start     time.Time
	End       time.Time
	Pages     int
	Assets    int
	// Warnings are per-page and per-asset failures that did not abort the run.
	Warnings []error
}

// Duration returns End - Start.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Failed returns the number of pages and assets that could not be written.
func (r *Report) Failed() int { return len(r.Warnings) }

// Exporter renders every static path into a directory.
type Exporter struct {
	composer *site.Composer
	assets   *assets.Responder
	recorder metrics.Recorder
	logger   *slog.Logger
}

// New wires an exporter. recorder may be nil.
func New(composer *site.Composer, responder *assets.Responder, recorder metrics.Recorder, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{composer: composer, assets: responder, recorder: metrics.OrNoop(recorder), logger: logger}
}

// Run writes the site to outDir. Failing pages and assets are logged and
// reported as warnings; only output directory errors and cancellation abort
// the run.
func (e *Exporter) Run(ctx context.Context, outDir string) (*Report, error) {
	report := &Report{OutputDir: outDir, Start: time.Now()}
	defer func() { report.End = time.Now() }()

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}

	repo := e.composer.Repository()
	for _, sp := range repo.StaticPaths() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		start := time.Now()
		if err := e.writePage(outDir, sp); err != nil {
			outcome := metrics.RenderError
			if site.IsNotFound(err) {
				outcome = metrics.RenderNotFound
			}
			e.recorder.ObservePageRender(time.Since(start), outcome)
			e.logger.Warn("Skipping page", logfields.Project(sp.Project), logfields.Page(sp.Page), logfields.Error(err))
			report.Warnings = append(report.Warnings, fmt.Errorf("%s: %w", sp.URL(), err))
			continue
		}
		e.recorder.ObservePageRender(time.Since(start), metrics.RenderOK)
		report.Pages++
	}

	scanner := repo.Scanner()
	projects := scanner.Projects()
	if len(projects) > 0 {
		// Links leaving the content root are refused by the root, the same
		// way the asset endpoint refuses them.
		root, err := os.OpenRoot(e.assets.Root())
		if err != nil {
			return report, fmt.Errorf("open content root: %w", err)
		}
		defer root.Close()
		if err := e.copyAssets(ctx, root, outDir, projects, report); err != nil {
			return report, err
		}
	}

	if err := e.writeNotFound(outDir); err != nil {
		return report, err
	}
	if err := e.writeRootRedirect(outDir, projects); err != nil {
		return report, err
	}

	e.logger.Info("Static export complete",
		logfields.Path(outDir),
		slog.Int("pages", report.Pages),
		slog.Int("assets", report.Assets),
		slog.Int("failed", report.Failed()),
		logfields.Duration(time.Since(report.Start)))
	return report, nil
}

func (e *Exporter) copyAssets(ctx context.Context, root *os.Root, outDir string, projects []string, report *Report) error {
	scanner := e.composer.Repository().Scanner()
	for _, project := range projects {
		for _, name := range scanner.Assets(project) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.copyAsset(root, outDir, project, name); err != nil {
				e.logger.Warn("Skipping asset", logfields.Project(project), logfields.File(name), logfields.Error(err))
				report.Warnings = append(report.Warnings, fmt.Errorf("asset %s/%s: %w", project, name, err))
				continue
			}
			report.Assets++
		}
	}
	return nil
}

func (e *Exporter) writePage(outDir string, sp content.StaticPath) error {
	doc, err := e.composer.Compose(sp.Project, sp.Page)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := e.composer.WritePage(&buf, doc); err != nil {
		return err
	}
	target := filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(sp.URL(), "/")), "index.html")
	return writeFile(target, buf.Bytes())
}

func (e *Exporter) copyAsset(root *os.Root, outDir, project, name string) error {
	rel, err := e.assets.Resolve(project, name)
	if err != nil {
		return err
	}
	src, err := root.Open(rel)
	if err != nil {
		return err
	}
	defer src.Close()

	target := filepath.Join(outDir, "api", "projects", project, name)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}
	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func (e *Exporter) writeNotFound(outDir string) error {
	var buf bytes.Buffer
	if err := e.composer.WriteNotFound(&buf, e.composer.NotFound("")); err != nil {
		return err
	}
	return writeFile(filepath.Join(outDir, "404.html"), buf.Bytes())
}

var redirectTemplate = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta http-equiv="refresh" content="0; url={{.}}">
  <link rel="canonical" href="{{.}}">
  <title>Redirecting</title>
</head>
<body><a href="{{.}}">{{.}}</a></body>
</html>
`))

func (e *Exporter) writeRootRedirect(outDir string, projects []string) error {
	target := "/404.html"
	if len(projects) > 0 {
		target = navigation.PageHref(projects[0], "") + "/"
	}
	var buf bytes.Buffer
	if err := redirectTemplate.Execute(&buf, target); err != nil {
		return err
	}
	return writeFile(filepath.Join(outDir, "index.html"), buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
