// Package output handles note naming and writing into the vault.
// File sources are named after their post directory (e.g. 0x01_layout.md),
// URL sources after a slug of their last path segment. Existing notes are
// kept unless the writer is forced; a forced overwrite keeps the custom
// frontmatter keys of the note it replaces.
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/hexovault/core"
	"github.com/gaurav-prasanna/hexovault/core/render"
)

// Writer writes rendered notes to disk.
type Writer struct {
	OutputDir string
	// Force overwrites notes that already exist.
	Force bool
}

// New creates a Writer targeting the given output directory, creating it
// if needed. If outputDir is empty, it defaults to the working directory.
func New(outputDir string, force bool) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir, Force: force}, nil
}

// NotePath returns where the note for src is written.
func (w *Writer) NotePath(src core.Source, ext string) string {
	return filepath.Join(w.OutputDir, NoteName(src)+ext)
}

// ShouldSkip reports whether path exists and must be left alone.
func (w *Writer) ShouldSkip(path string) bool {
	if w.Force {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Write stores data at path atomically.
func (w *Writer) Write(ctx context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}
	if err := WriteAtomic(ctx, path, data, 0); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

// yamlFormat parses frontmatter with yaml.v3 so nested maps decode with
// string keys.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ReadExtra returns the frontmatter keys of the note at path that hexovault
// does not manage. A missing note or one without frontmatter yields nil.
func ReadExtra(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading note %s: %w", path, err)
	}

	var fm map[string]any
	if _, err := frontmatter.Parse(bytes.NewReader(data), &fm, yamlFormat); err != nil {
		return nil, fmt.Errorf("parsing frontmatter of %s: %w", path, err)
	}

	var extra map[string]any
	for k, v := range fm {
		if render.IsManagedKey(k) {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra, nil
}

// NoteName is the file name, without extension, of the note for src.
// Local and remote copies of the same post share the post directory name,
// so they map to one note. A remote source without a name falls back to a
// slug of its URL.
func NoteName(src core.Source) string {
	if name := sanitizeFileName(src.Name); name != "" {
		return name
	}
	if !src.IsRemote() {
		return "index"
	}

	flat := filenameFromURL(src.Location)
	if s, err := slug.Normalize(flat); err == nil && s != "" {
		return s
	}
	if flat != "" {
		return flat
	}
	return "index"
}

// filenameFromURL converts a URL into a flat filename.
// Example: https://example.com/docs/intro → example_com_docs_intro
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return sanitize(rawURL)
	}

	parts := []string{sanitize(parsed.Host)}
	path := strings.Trim(parsed.Path, "/")
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// sanitizeFileName keeps a directory name usable as a file name: path
// separators and characters vaults reject become underscores.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
