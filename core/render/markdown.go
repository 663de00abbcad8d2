// Package render provides output renderers for the hexovault pipeline.
// This file implements the vault note renderer: YAML frontmatter followed
// by the converted Markdown body.
package render

import (
	"bytes"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/hexovault/core"
)

// ManagedKeys are the frontmatter keys hexovault writes itself. Other keys
// found in an existing note travel in NoteMeta.Extra.
var ManagedKeys = []string{"title", "date", "categories", "tags", "source"}

// dateLayout is how note dates are written.
const dateLayout = "2006-01-02"

// MarkdownRenderer writes vault notes.
type MarkdownRenderer struct{}

var _ core.Renderer = (*MarkdownRenderer)(nil)

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// noteFrontmatter fixes the key order of the managed keys. Extra keys
// follow in sorted order.
type noteFrontmatter struct {
	Title      string         `yaml:"title"`
	Date       *yaml.Node     `yaml:"date,omitempty"`
	Categories []string       `yaml:"categories,omitempty"`
	Tags       []string       `yaml:"tags,omitempty"`
	Source     string         `yaml:"source,omitempty"`
	Extra      map[string]any `yaml:",inline"`
}

// Render returns the note: a frontmatter block, a blank line and the body.
func (r *MarkdownRenderer) Render(doc core.Document, meta core.NoteMeta) ([]byte, error) {
	fm, err := Frontmatter(meta)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(fm)
	buf.WriteString("\n")
	if doc.Body != "" {
		buf.WriteString(doc.Body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// Frontmatter renders meta as a delimited YAML block.
func Frontmatter(meta core.NoteMeta) ([]byte, error) {
	fm := noteFrontmatter{
		Title:      meta.Title,
		Categories: meta.Categories,
		Tags:       meta.Tags,
		Source:     meta.Source,
		Extra:      unmanaged(meta.Extra),
	}
	if !meta.Date.IsZero() {
		// An explicit timestamp tag keeps the date unquoted.
		fm.Date = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: meta.Date.Format(dateLayout)}
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}

func unmanaged(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		if !IsManagedKey(k) {
			out[k] = v
		}
	}
	return out
}

// IsManagedKey reports whether key is one of ManagedKeys.
func IsManagedKey(key string) bool {
	return slices.Contains(ManagedKeys, key)
}
