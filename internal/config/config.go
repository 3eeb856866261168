package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

const (
	// CurrentVersion is the only configuration version this build understands.
	CurrentVersion = "1.0"
	// DefaultPath is where the CLI looks for a configuration file.
	DefaultPath = "notebinder.yaml"
	// RevisionAuto asks for the document revision to be read from git.
	RevisionAuto = "auto"
)

// Config is the notebinder configuration file.
type Config struct {
	Version    string            `yaml:"version" toml:"version"`
	Document   DocumentConfig    `yaml:"document" toml:"document"`
	Render     RenderConfig      `yaml:"render" toml:"render"`
	Sections   []SectionConfig   `yaml:"sections,omitempty" toml:"sections,omitempty"`
	Categories map[string]string `yaml:"categories,omitempty" toml:"categories,omitempty"`
	Sources    SourcesConfig     `yaml:"sources" toml:"sources"`
	Preview    PreviewConfig     `yaml:"preview" toml:"preview"`
	Monitoring MonitoringConfig  `yaml:"monitoring" toml:"monitoring"`

	// dir is the directory of the loaded file; relative paths resolve against it.
	dir string
}

// DocumentConfig holds the document front matter.
type DocumentConfig struct {
	Title         string   `yaml:"title" toml:"title"`
	Authors       []string `yaml:"authors,omitempty" toml:"authors,omitempty"`
	Date          string   `yaml:"date,omitempty" toml:"date,omitempty"`
	Abstract      string   `yaml:"abstract,omitempty" toml:"abstract,omitempty"`
	AbstractTitle string   `yaml:"abstract_title,omitempty" toml:"abstract_title,omitempty"`
	TOC           bool     `yaml:"toc" toml:"toc"`
	TOCTitle      string   `yaml:"toc_title,omitempty" toml:"toc_title,omitempty"`
	TOCDepth      int      `yaml:"toc_depth,omitempty" toml:"toc_depth,omitempty"`
	// Revision is free text, or "auto" for the short git HEAD hash.
	Revision string `yaml:"revision,omitempty" toml:"revision,omitempty"`
	// Styles points at a word/styles.xml replacement.
	Styles string `yaml:"styles,omitempty" toml:"styles,omitempty"`
}

// RenderConfig bounds the rendered package.
type RenderConfig struct {
	MaxHeadingDepth  int   `yaml:"max_heading_depth" toml:"max_heading_depth"`
	MaxDocumentBytes int64 `yaml:"max_document_bytes" toml:"max_document_bytes"`
}

// SectionConfig is one section of the document outline.
type SectionConfig struct {
	ID       string          `yaml:"id" toml:"id"`
	Title    string          `yaml:"title,omitempty" toml:"title,omitempty"`
	List     string          `yaml:"list,omitempty" toml:"list,omitempty"`
	GroupBy  string          `yaml:"group_by,omitempty" toml:"group_by,omitempty"`
	Children []SectionConfig `yaml:"children,omitempty" toml:"children,omitempty"`
}

// SourcesConfig controls how entry files are read.
type SourcesConfig struct {
	StripFrontMatter bool     `yaml:"strip_front_matter" toml:"strip_front_matter"`
	InternalLinkBase string   `yaml:"internal_link_base,omitempty" toml:"internal_link_base,omitempty"`
	IgnoreFields     []string `yaml:"ignore_fields,omitempty" toml:"ignore_fields,omitempty"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Port           int     `yaml:"port" toml:"port"`
	Debounce       string  `yaml:"debounce" toml:"debounce"`
	RescanInterval string  `yaml:"rescan_interval,omitempty" toml:"rescan_interval,omitempty"`
	RenderRate     float64 `yaml:"render_rate" toml:"render_rate"`
	RenderBurst    int     `yaml:"render_burst" toml:"render_burst"`
	HistoryDB      string  `yaml:"history_db" toml:"history_db"`
}

// MonitoringConfig groups logging and metrics.
type MonitoringConfig struct {
	Logging MonitoringLogging `yaml:"logging" toml:"logging"`
	Metrics MonitoringMetrics `yaml:"metrics" toml:"metrics"`
}

type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level" toml:"level"`
	Format LogFormat `yaml:"format" toml:"format"`
}

type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Load reads, normalizes, defaults and validates a configuration file.
// Files ending in .toml are decoded as TOML, everything else as YAML.
func Load(configPath string) (*Config, error) {
	loadEnvFiles(filepath.Dir(configPath))

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.WrapError(err, derrors.CategoryNotFound, "configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read configuration file").
			WithContext("path", configPath).Build()
	}

	return Parse(configPath, data)
}

// LoadOrDefault behaves like Load, except that a missing file at DefaultPath
// yields Default().
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err != nil && derrors.HasCategory(err, derrors.CategoryNotFound) && filepath.Clean(configPath) == DefaultPath {
		slog.Debug("No configuration file, using defaults", "path", configPath)
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes data as the file named name and runs the normalize, defaults
// and validation passes. Relative paths in the result resolve against the
// directory of name.
func Parse(name string, data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if isTOML(name) {
		if err := toml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to decode TOML configuration").
				WithContext("path", name).Build()
		}
	} else if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to decode YAML configuration").
			WithContext("path", name).Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, derrors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, CurrentVersion)).
			WithContext("path", name).Build()
	}

	// Normalization pass (case-fold enumerations, bounds)
	res := NormalizeConfig(&cfg)
	for _, w := range res.Warnings {
		slog.Warn("Config normalization", "path", name, "warning", w)
	}

	applyDefaults(&cfg)
	cfg.dir = filepath.Dir(name)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "configuration validation failed").
			WithContext("path", name).Build()
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Version:  CurrentVersion,
		Document: DocumentConfig{Title: "Release Notes", TOC: true},
		Monitoring: MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true},
		},
	}
	applyDefaults(cfg)
	return cfg
}

// Init writes the default configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return derrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	cfg := Default()
	cfg.Document.Authors = []string{"${USER}"}
	cfg.Document.Revision = RevisionAuto

	var (
		data []byte
		err  error
	)
	if isTOML(configPath) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "failed to marshal configuration").Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", configPath).Build()
	}
	return nil
}

// Resolve makes p relative to the configuration file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

func isTOML(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".toml")
}
