// Package cmd: convert command.
// It resolves the configuration, discovers post pages and runs them through
// the pipeline: read/fetch -> convert -> extract -> render -> write.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/hexovault/core"
	"github.com/gaurav-prasanna/hexovault/core/convert"
	"github.com/gaurav-prasanna/hexovault/core/extract"
	"github.com/gaurav-prasanna/hexovault/core/fetch"
	"github.com/gaurav-prasanna/hexovault/core/generic"
	"github.com/gaurav-prasanna/hexovault/core/output"
	"github.com/gaurav-prasanna/hexovault/core/pipeline"
	"github.com/gaurav-prasanna/hexovault/core/render"
	"github.com/gaurav-prasanna/hexovault/crawl"
	"github.com/gaurav-prasanna/hexovault/internal/config"
	"github.com/gaurav-prasanna/hexovault/internal/langdetect"
	"github.com/gaurav-prasanna/hexovault/internal/logging"
	"github.com/gaurav-prasanna/hexovault/internal/ui"
)

// Flag variables.
var (
	flagOutputDir    string
	flagFormat       string
	flagEngine       string
	flagPrefix       string
	flagSitemap      bool
	flagMaxPages     int
	flagJobs         int
	flagForce        bool
	flagDetectLang   bool
	flagNoSkipTeaser bool
	flagStdout       bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <dir|file|url>...",
	Short: "Convert blog pages into Markdown notes",
	Long: `Convert reads Hexo post pages and writes one note per page.

A directory input is walked for <post>/index.html pages whose directory
name starts with --prefix. A URL input is converted as a single post, or,
with --sitemap, treated as a site root whose sitemap.xml lists the posts.

Existing notes are left alone unless --force is given; when overwriting a
Markdown note, frontmatter keys hexovault does not manage are kept.

Examples:
  hexovault convert ./public --output_dir ~/vault/CUTLASS
  hexovault convert ./public/0x01_layout/index.html --stdout
  hexovault convert https://blog.example.com --sitemap --jobs 4
  hexovault convert ./public --format json --engine generic`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	convertCmd.Flags().StringVar(&flagFormat, "format", config.FormatMarkdown, "Output format: markdown, json, pdf")
	convertCmd.Flags().StringVar(&flagEngine, "engine", config.EngineHexo, "Conversion engine: hexo, generic")
	convertCmd.Flags().StringVar(&flagPrefix, "prefix", config.DefaultPrefix, "Post directory name prefix; empty accepts every post")

	convertCmd.Flags().BoolVar(&flagSitemap, "sitemap", false, "Treat URL inputs as site roots and discover posts")
	convertCmd.Flags().IntVar(&flagMaxPages, "max-pages", crawl.DefaultMaxPages, "Page limit when crawling links without a sitemap")

	convertCmd.Flags().IntVar(&flagJobs, "jobs", 0, "Documents converted in parallel (default: number of CPUs)")
	convertCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite existing notes")
	convertCmd.Flags().BoolVar(&flagDetectLang, "detect-lang", false, "Guess the language of untagged code blocks")
	convertCmd.Flags().BoolVar(&flagNoSkipTeaser, "no-skip-teaser", false, "Keep the teaser section before the read-more marker")
	convertCmd.Flags().BoolVar(&flagStdout, "stdout", false, "Print notes to stdout instead of writing files")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Default()
	ctx = logging.WithLogger(ctx, logger)

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	loaded, err := config.Load(config.LoadOptions{
		WorkingDir:   wd,
		ExplicitPath: flagConfig,
		Override:     func(c *config.Config) { applyFlags(cmd, c) },
	})
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg := loaded.Config
	if loaded.LoadedFrom != "" {
		logger.Debug("loaded configuration", logging.FieldConfig, loaded.LoadedFrom)
	}
	logger.Debug("configuration resolved",
		logging.FieldFormat, cfg.Format,
		logging.FieldEngine, cfg.Engine,
		logging.FieldJobs, cfg.Jobs,
	)

	fetcher := fetch.New()

	sources, err := crawl.Discover(ctx, args, fetcher, crawl.Options{
		Prefix:   cfg.Prefix,
		Site:     flagSitemap,
		MaxPages: flagMaxPages,
	})
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no post pages found in %v (prefix %q)", args, cfg.Prefix)
	}
	logger.Info("discovered pages", logging.FieldDiscovered, len(sources))

	p := &pipeline.Pipeline{
		Converter: selectConverter(cfg),
		Extractor: extract.New(),
		Fetcher:   fetcher,
		Renderer:  selectRenderer(cfg),
		Defaults: pipeline.Defaults{
			Date:       cfg.FallbackDate(),
			Categories: cfg.Frontmatter.Categories,
			Tags:       cfg.Frontmatter.Tags,
		},
		Jobs: cfg.Jobs,
	}
	if flagStdout {
		p.Stdout = os.Stdout
	} else {
		p.Writer, err = output.New(cfg.OutputDir, cfg.Force)
		if err != nil {
			return fmt.Errorf("initializing output writer: %w", err)
		}
	}

	result, err := p.Run(ctx, sources)
	if result != nil {
		styles := ui.NewStyles(ui.IsColorEnabled(flagColor, os.Stderr))
		if serr := ui.Summary(os.Stderr, result, styles); serr != nil {
			logger.Warn("printing summary", logging.FieldError, serr)
		}
	}
	if err != nil {
		return err
	}

	logger.Debug("batch finished",
		logging.FieldWritten, result.Stats.Written,
		logging.FieldSkipped, result.Stats.Skipped,
		logging.FieldFailed, result.Stats.Failed,
		logging.FieldElapsed, result.Stats.Elapsed,
	)
	if result.Stats.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", result.Stats.Failed, result.Stats.Discovered)
	}
	return nil
}

// applyFlags copies explicitly set flags over the file and env config.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output_dir") {
		c.OutputDir = flagOutputDir
	}
	if flags.Changed("format") {
		c.Format = flagFormat
	}
	if flags.Changed("engine") {
		c.Engine = flagEngine
	}
	if flags.Changed("prefix") {
		c.Prefix = flagPrefix
	}
	if flags.Changed("jobs") {
		c.Jobs = flagJobs
	}
	if flags.Changed("force") {
		c.Force = flagForce
	}
	if flags.Changed("detect-lang") {
		c.DetectLanguage = flagDetectLang
	}
	if flags.Changed("no-skip-teaser") {
		c.SkipTeaser = !flagNoSkipTeaser
	}
}

// selectConverter creates the engine named by the configuration.
func selectConverter(cfg *config.Config) core.Converter {
	if cfg.Engine == config.EngineGeneric {
		return generic.New()
	}
	opts := cfg.ConvertOptions()
	if cfg.DetectLanguage {
		opts.DetectLanguage = langdetect.Detect
	}
	return convert.New(opts)
}

// selectRenderer creates the Renderer for the configured format.
func selectRenderer(cfg *config.Config) core.Renderer {
	switch cfg.Format {
	case config.FormatJSON:
		return render.NewJSONRenderer()
	case config.FormatPDF:
		return render.NewPDFRenderer()
	default:
		return render.NewMarkdownRenderer()
	}
}
