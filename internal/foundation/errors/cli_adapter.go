package errors

import (
	"context"
	"log/slog"
)

// CLIErrorAdapter turns command errors into stderr text and exit codes.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter returns an adapter logging to logger, or slog.Default.
// verbose shows causes in FormatError.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor returns 0 for nil, the category's code for classified errors
// and 1 otherwise.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if c, ok := AsClassified(err); ok {
		return c.Category().ExitCode()
	}
	return 1
}

// FormatError renders err for stderr.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if c, ok := AsClassified(err); ok && !a.verbose {
		return "Error: " + c.Message()
	}
	return "Error: " + err.Error()
}

// Log records err at its severity's level.
func (a *CLIErrorAdapter) Log(err error) {
	if err == nil {
		return
	}
	c, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Command failed", slog.String("error", err.Error()))
		return
	}
	attrs := append([]slog.Attr{slog.String("category", string(c.Category()))}, c.Context().attrs()...)
	if cause := c.Cause(); cause != nil {
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), c.Severity().Level(), c.Message(), attrs...)
}
