package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docpages/internal/assets"
	"git.home.luguber.info/inful/docpages/internal/config"
	"git.home.luguber.info/inful/docpages/internal/content"
	"git.home.luguber.info/inful/docpages/internal/gitinfo"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/markdown"
	"git.home.luguber.info/inful/docpages/internal/metrics"
	"git.home.luguber.info/inful/docpages/internal/navigation"
	"git.home.luguber.info/inful/docpages/internal/site"
)

// siteParts is everything the serve and build commands render with.
type siteParts struct {
	scanner  *content.Scanner
	composer *site.Composer
	assets   *assets.Responder
}

func rendererOptions(cfg *config.Config) markdown.Options {
	opts := markdown.DefaultOptions()
	opts.DiagramLanguage = cfg.Diagrams.Language
	opts.HighlightStyle = cfg.Markdown.HighlightStyle
	opts.HeadingIDs = cfg.Markdown.HeadingIDs
	if cfg.Markdown.UnsafeHTML != nil {
		opts.UnsafeHTML = *cfg.Markdown.UnsafeHTML
	}
	if cfg.Markdown.RewriteLinks != nil {
		opts.RewriteLinks = *cfg.Markdown.RewriteLinks
	}
	return opts
}

func newSite(cfg *config.Config, recorder metrics.Recorder, liveReload bool, logger *slog.Logger) (*siteParts, error) {
	scanner := content.NewScanner(cfg.Content.Root, logger)
	if !scanner.Exists() {
		logger.Warn("Content root does not exist, serving an empty site", logfields.Path(cfg.Content.Root))
	}
	repo := content.NewRepository(scanner, logger)

	var dates site.DateSource
	if cfg.Content.GitDates {
		d, err := gitinfo.Open(cfg.Content.Root, logger)
		switch {
		case err == nil:
			dates = d
		case gitinfo.IsNotRepository(err):
			logger.Warn("Content root is not inside a git work tree, git dates disabled", logfields.Path(cfg.Content.Root))
		default:
			return nil, fmt.Errorf("open git repository: %w", err)
		}
	}

	composer, err := site.NewComposer(repo,
		markdown.NewRenderer(rendererOptions(cfg)),
		navigation.NewAssembler(cfg.Site.Locale),
		dates,
		site.Options{
			SiteTitle:        cfg.Site.Title,
			SiteDescription:  cfg.Site.Description,
			GitHubURL:        cfg.Site.GitHubURL,
			Footer:           cfg.Site.Footer,
			DiagramScriptURL: cfg.Diagrams.ScriptURL,
			LiveReload:       liveReload,
		},
		logger)
	if err != nil {
		return nil, err
	}

	responder, err := assets.NewResponder(cfg.Content.Root, recorder, logger)
	if err != nil {
		return nil, err
	}
	return &siteParts{scanner: scanner, composer: composer, assets: responder}, nil
}
