package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpages/internal/config"
	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
)

// Global carries state shared by every subcommand once flags are parsed.
type Global struct {
	Config *config.Config
	Logger *slog.Logger
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"docpages.yaml" type:"path"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	ShowVersion kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Serve the project pages over HTTP"`
	Build   BuildCmd   `cmd:"" help:"Export every page and asset as static files"`
	Paths   PathsCmd   `cmd:"" help:"List every static page route"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing: it loads the configuration once and
// sets up logging from it.
func (c *CLI) AfterApply(kctx *kong.Context) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryConfig, "failed to load configuration").
			WithContext("path", c.Config).
			Build()
	}
	logger := cfg.Logging.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(logger)

	kctx.Bind(&Global{Config: cfg, Logger: logger, Stdout: kctx.Stdout})
	return nil
}
