package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docpages/internal/config"
	"git.home.luguber.info/inful/docpages/internal/export"
	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory for the exported site" default:"./public" type:"path"`
	Strict bool   `help:"Fail when any page or asset could not be exported"`
}

func (b *BuildCmd) Run(g *Global) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := RunBuild(ctx, g.Config, b.Output, g.Logger)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Exported %d pages and %d assets to %s (%d failed)\n",
		report.Pages, report.Assets, report.OutputDir, report.Failed())
	if b.Strict && report.Failed() > 0 {
		return derrors.RenderError(fmt.Sprintf("%d items could not be exported", report.Failed())).
			WithContext("output", report.OutputDir).
			Build()
	}
	return nil
}

// RunBuild exports the configured content tree into outputDir.
func RunBuild(ctx context.Context, cfg *config.Config, outputDir string, logger *slog.Logger) (*export.Report, error) {
	logger.Info("Starting static export", slog.String("output", outputDir), slog.String("content", cfg.Content.Root))

	parts, err := newSite(cfg, metrics.NoopRecorder{}, false, logger)
	if err != nil {
		return nil, err
	}
	report, err := export.New(parts.composer, parts.assets, nil, logger).Run(ctx, outputDir)
	if err != nil {
		return report, derrors.WrapError(err, derrors.CategoryFileSystem, "static export failed").
			WithContext("output", outputDir).
			Build()
	}
	return report, nil
}
