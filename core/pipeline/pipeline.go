// Package pipeline runs discovered sources through the conversion stages:
// read or fetch -> convert -> extract -> render -> write.
//
// Documents are processed concurrently with a job limit. A failing
// document is recorded in its Outcome and never stops the batch.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/hexovault/core"
	"github.com/gaurav-prasanna/hexovault/core/output"
	"github.com/gaurav-prasanna/hexovault/internal/logging"
)

// Defaults fill in note metadata a page does not carry.
type Defaults struct {
	Date       time.Time
	Categories []string
	Tags       []string
}

// Pipeline wires the stages together. Fetcher may be nil when every
// source is local.
type Pipeline struct {
	Converter core.Converter
	Extractor core.Extractor
	Fetcher   core.Fetcher
	Renderer  core.Renderer
	Writer    *output.Writer
	Defaults  Defaults

	// Jobs limits concurrent documents. Zero or less uses the CPU count.
	Jobs int
	// Stdout, when set, receives rendered notes instead of the output
	// directory. Notes are written whole, one after another.
	Stdout io.Writer

	mu sync.Mutex
}

// Run processes sources and returns one outcome per source in input order.
// The error is non-nil only when ctx is cancelled before the batch ends.
func (p *Pipeline) Run(ctx context.Context, sources []core.Source) (*Result, error) {
	start := time.Now()
	log := logging.FromContext(ctx)

	result := &Result{Outcomes: make([]Outcome, len(sources))}
	result.Stats.Discovered = len(sources)

	jobs := p.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	log.Debug("starting batch", logging.FieldDiscovered, len(sources), logging.FieldJobs, jobs)

	var g errgroup.Group
	g.SetLimit(jobs)

	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				result.Outcomes[i] = Outcome{Source: src, Status: StatusFailed, Err: err}
				return nil
			}
			result.Outcomes[i] = p.Process(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range result.Outcomes {
		result.Stats.add(o.Status)
	}
	result.Stats.Elapsed = time.Since(start)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

// Process runs a single source through every stage.
func (p *Pipeline) Process(ctx context.Context, src core.Source) Outcome {
	log := logging.FromContext(ctx).With(logging.FieldSource, src.Location)
	out := Outcome{Source: src}

	ext := p.Renderer.Extension()
	if p.Stdout == nil {
		out.Path = p.Writer.NotePath(src, ext)
		if p.Writer.ShouldSkip(out.Path) {
			log.Debug("note exists, skipping", logging.FieldOutput, out.Path)
			out.Status = StatusSkipped
			return out
		}
	}

	data, doc, err := p.build(ctx, src, out.Path, ext)
	if err != nil {
		log.Error("conversion failed", logging.FieldError, err)
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	out.Title = doc.Title

	if err := p.emit(ctx, out.Path, data); err != nil {
		log.Error("write failed", logging.FieldError, err)
		out.Status = StatusFailed
		out.Err = err
		return out
	}

	log.Info("converted", logging.FieldTitle, doc.Title, logging.FieldOutput, out.Path)
	out.Status = StatusWritten
	return out
}

func (p *Pipeline) build(ctx context.Context, src core.Source, path, ext string) ([]byte, core.Document, error) {
	html, err := p.read(ctx, src)
	if err != nil {
		return nil, core.Document{}, err
	}

	doc, err := p.Converter.Convert(html, src.Name)
	if err != nil {
		return nil, core.Document{}, fmt.Errorf("converting %s: %w", src.Location, err)
	}
	if doc.Body == "" {
		logging.FromContext(ctx).Debug("empty body", logging.FieldSource, src.Location)
	}

	page, err := p.Extractor.Extract(html)
	if err != nil {
		return nil, core.Document{}, fmt.Errorf("extracting metadata from %s: %w", src.Location, err)
	}

	meta := p.noteMeta(doc, page, src)
	if path != "" && p.Writer.Force && ext == ".md" {
		extra, err := output.ReadExtra(path)
		if err != nil {
			return nil, core.Document{}, err
		}
		meta.Extra = extra
	}

	data, err := p.Renderer.Render(doc, meta)
	if err != nil {
		return nil, core.Document{}, fmt.Errorf("rendering %s: %w", src.Location, err)
	}
	return data, doc, nil
}

func (p *Pipeline) read(ctx context.Context, src core.Source) ([]byte, error) {
	if src.IsRemote() {
		if p.Fetcher == nil {
			return nil, fmt.Errorf("fetching %s: no fetcher configured", src.Location)
		}
		html, err := p.Fetcher.Fetch(ctx, src.Location)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", src.Location, err)
		}
		return html, nil
	}

	logging.FromContext(ctx).Debug("reading page", logging.FieldPath, src.Location)
	html, err := os.ReadFile(filepath.Clean(src.Location))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src.Location, err)
	}
	return html, nil
}

// noteMeta prefers what the page declares over the configured defaults.
func (p *Pipeline) noteMeta(doc core.Document, page core.PageMetadata, src core.Source) core.NoteMeta {
	meta := core.NoteMeta{
		Title:      doc.Title,
		Date:       page.Date,
		Categories: page.Categories,
		Tags:       page.Tags,
	}
	if meta.Date.IsZero() {
		meta.Date = p.Defaults.Date
	}
	if len(meta.Categories) == 0 {
		meta.Categories = slices.Clone(p.Defaults.Categories)
	}
	if len(meta.Tags) == 0 {
		meta.Tags = slices.Clone(p.Defaults.Tags)
	}
	if src.IsRemote() {
		meta.Source = src.Location
	}
	return meta
}

func (p *Pipeline) emit(ctx context.Context, path string, data []byte) error {
	if p.Stdout == nil {
		return p.Writer.Write(ctx, path, data)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.Stdout.Write(data); err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}
	return nil
}
