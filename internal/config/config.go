// Package config holds hexovault's run configuration and its loader.
//
// Values resolve in this order, later sources winning: built-in defaults,
// the config file (--config, or .hexovault.yml in the working directory),
// HEXOVAULT_* environment variables, and finally command-line flags.
package config

import (
	"github.com/gaurav-prasanna/hexovault/core/convert"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatPDF      = "pdf"
)

// Conversion engines.
const (
	EngineHexo    = "hexo"
	EngineGeneric = "generic"
)

// DefaultPrefix matches the post directories of the blog this tool was
// first written for ("0x01_layout", "0x02_tensor", ...).
const DefaultPrefix = "0x"

// Config is the resolved run configuration.
type Config struct {
	OutputDir      string      `yaml:"output_dir"`
	Format         string      `yaml:"format"`
	Engine         string      `yaml:"engine"`
	Prefix         string      `yaml:"prefix"`
	Jobs           int         `yaml:"jobs"`
	Force          bool        `yaml:"force"`
	DetectLanguage bool        `yaml:"detect_language"`
	SkipTeaser     bool        `yaml:"skip_teaser"`
	Selectors      Selectors   `yaml:"selectors"`
	Frontmatter    Frontmatter `yaml:"frontmatter"`
}

// Selectors names the markup hooks the Hexo engine looks for.
type Selectors struct {
	TitleClass     string `yaml:"title_class"`
	ContentClass   string `yaml:"content_class"`
	MarkerID       string `yaml:"marker_id"`
	HighlightClass string `yaml:"highlight_class"`
}

// Frontmatter holds note metadata used when a page carries none.
type Frontmatter struct {
	// Date is a YYYY-MM-DD fallback publish date.
	Date       string   `yaml:"date"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:  ".",
		Format:     FormatMarkdown,
		Engine:     EngineHexo,
		Prefix:     DefaultPrefix,
		SkipTeaser: true,
		Selectors: Selectors{
			TitleClass:     convert.DefaultTitleClass,
			ContentClass:   convert.DefaultContentClass,
			MarkerID:       convert.DefaultMarkerID,
			HighlightClass: convert.DefaultHighlightClass,
		},
	}
}

// ConvertOptions maps the configuration onto converter options. The
// language detector is wired by the caller.
func (c *Config) ConvertOptions() convert.Options {
	return convert.Options{
		TitleClass:     c.Selectors.TitleClass,
		ContentClass:   c.Selectors.ContentClass,
		MarkerID:       c.Selectors.MarkerID,
		HighlightClass: c.Selectors.HighlightClass,
		KeepTeaser:     !c.SkipTeaser,
	}
}
