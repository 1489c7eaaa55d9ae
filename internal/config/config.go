package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "docpages.yaml"

// Config represents the application configuration.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Content  ContentConfig  `yaml:"content"`
	Server   ServerConfig   `yaml:"server"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Diagrams DiagramConfig  `yaml:"diagrams"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
	Events   EventsConfig   `yaml:"events"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig holds the chrome shown around every page.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	GitHubURL   string `yaml:"github_url,omitempty"`
	Footer      string `yaml:"footer,omitempty"`
	// Locale is the BCP 47 tag used to order page titles.
	Locale string `yaml:"locale,omitempty"`
}

// ContentConfig locates the content tree.
type ContentConfig struct {
	// Root is the directory holding one sub-directory per project.
	Root string `yaml:"root"`
	// GitDates fills missing page dates from the last commit touching the file.
	GitDates bool `yaml:"git_dates,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MarkdownConfig configures the Markdown renderer.
type MarkdownConfig struct {
	// HighlightStyle is a chroma style name; empty disables highlighting.
	HighlightStyle string `yaml:"highlight_style"`
	HeadingIDs     bool   `yaml:"heading_ids,omitempty"`
	UnsafeHTML     *bool  `yaml:"unsafe_html,omitempty"`
	RewriteLinks   *bool  `yaml:"rewrite_links,omitempty"`
}

// DiagramConfig configures diagram fence handling.
type DiagramConfig struct {
	Language  string `yaml:"language"`
	ScriptURL string `yaml:"script_url"`
}

// MetricsConfig configures the Prometheus endpoint and inventory job.
type MetricsConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Path              string        `yaml:"path"`
	InventoryInterval time.Duration `yaml:"inventory_interval"`
}

// WatchConfig configures live reload in serve mode.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// EventsConfig configures optional NATS change notifications.
type EventsConfig struct {
	NATSURL string      `yaml:"nats_url,omitempty"`
	Subject string      `yaml:"subject,omitempty"`
	Retry   RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig configures backoff for failed event publication.
type RetryConfig struct {
	// Backoff is fixed, linear or exponential.
	Backoff    string        `yaml:"backoff,omitempty"`
	Initial    time.Duration `yaml:"initial,omitempty"`
	Max        time.Duration `yaml:"max,omitempty"`
	MaxRetries *int          `yaml:"max_retries,omitempty"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Load reads configuration from configPath. A missing file yields the defaults
// so the server can run against ./content/projects without any setup.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "My Project Pages"
	}
	if c.Site.Description == "" {
		c.Site.Description = "Collection of my project documentation"
	}
	if c.Site.GitHubURL == "" {
		c.Site.GitHubURL = "https://github.com"
	}
	if c.Site.Locale == "" {
		c.Site.Locale = "en"
	}
	if c.Content.Root == "" {
		c.Content.Root = "content/projects"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Markdown.UnsafeHTML == nil {
		c.Markdown.UnsafeHTML = boolPtr(true)
	}
	if c.Markdown.RewriteLinks == nil {
		c.Markdown.RewriteLinks = boolPtr(true)
	}
	if c.Diagrams.Language == "" {
		c.Diagrams.Language = "mermaid"
	}
	if c.Diagrams.ScriptURL == "" {
		c.Diagrams.ScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.InventoryInterval == 0 {
		c.Metrics.InventoryInterval = time.Minute
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 300 * time.Millisecond
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "docpages.content.changed"
	}
	if c.Events.Retry.Backoff == "" {
		c.Events.Retry.Backoff = "exponential"
	}
	if c.Events.Retry.Initial == 0 {
		c.Events.Retry.Initial = 200 * time.Millisecond
	}
	if c.Events.Retry.Max == 0 {
		c.Events.Retry.Max = 5 * time.Second
	}
	if c.Events.Retry.MaxRetries == nil {
		c.Events.Retry.MaxRetries = intPtr(2)
	}
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
