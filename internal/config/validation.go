package config

import (
	"strings"

	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
)

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Content.Root) == "" {
		return derrors.ConfigError("content.root must not be empty").Build()
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return derrors.ConfigError("server timeouts must not be negative").Build()
	}
	if strings.TrimSpace(c.Diagrams.Language) == "" {
		return derrors.ConfigError("diagrams.language must not be empty").Build()
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return derrors.ConfigError("metrics.path must start with '/'").
			WithContext("path", c.Metrics.Path).
			Build()
	}
	if c.Metrics.InventoryInterval < 0 || c.Watch.Debounce < 0 {
		return derrors.ConfigError("intervals must not be negative").Build()
	}
	if r := c.Events.Retry; r.Initial < 0 || r.Max < 0 || (r.MaxRetries != nil && *r.MaxRetries < 0) {
		return derrors.ConfigError("events.retry values must not be negative").Build()
	}
	if _, err := logLevelNormalizer.Parse(c.Logging.Level); err != nil {
		return derrors.ConfigError("invalid logging.level").WithCause(err).Build()
	}
	if _, err := logFormatNormalizer.Parse(c.Logging.Format); err != nil {
		return derrors.ConfigError("invalid logging.format").WithCause(err).Build()
	}
	return nil
}
