package internal

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/onboard/internal/toc"
)

// Config represents the application configuration.
type Config struct {
	App          ApplicationConfig `yaml:"app"`
	Content      ContentConfig     `yaml:"content"`
	SQLite       SQLiteConfig      `yaml:"sqlite"`
	TOC          TOCConfig         `yaml:"toc"`
	Capabilities []string          `yaml:"capabilities"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.TOC.Validate(); err != nil {
		return fmt.Errorf("toc: %w", err)
	}
	return validation.Validate(c.Capabilities, validation.Each(validation.Required))
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the path to the directory of markdown guide pages.
type ContentConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TOCConfig holds table of contents formatting settings.
type TOCConfig struct {
	Marker         string `yaml:"marker"`
	SeparatorWidth int    `yaml:"separator_width"`
	Indent         string `yaml:"indent"`
	Glyph          string `yaml:"glyph"`
}

// Validate validates the formatter configuration.
func (c *TOCConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Marker, validation.Required, validation.RuneLength(1, 1)),
		validation.Field(&c.SeparatorWidth, validation.Min(0)),
		validation.Field(&c.Indent, validation.Required),
	)
}

// Options converts the section to formatter options.
func (c *TOCConfig) Options() toc.Options {
	marker, _ := utf8.DecodeRuneInString(c.Marker)
	return toc.Options{
		Marker:         marker,
		SeparatorWidth: c.SeparatorWidth,
		Indent:         c.Indent,
		Glyph:          c.Glyph,
	}
}

// DefaultCapabilities is the package list shown when none is configured.
var DefaultCapabilities = []string{
	"bs4", "jieba", "matplotlib", "numpy", "pandas", "PIL",
	"plotly", "pyecharts", "pywebio", "requests", "tablib",
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path: "./content",
		},
		SQLite: SQLiteConfig{
			Path: "./onboard.db",
		},
		TOC: TOCConfig{
			Marker:         string(toc.DefaultMarker),
			SeparatorWidth: toc.DefaultSeparatorWidth,
			Indent:         toc.DefaultIndent,
			Glyph:          toc.DefaultGlyph,
		},
		Capabilities: append([]string(nil), DefaultCapabilities...),
	}
}
