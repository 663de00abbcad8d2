// Package core defines the pipeline types and interfaces for hexovault.
// Each stage of the pipeline is a small, testable interface.
package core

import (
	"context"
	"strings"
	"time"
)

// Document is the result of converting one HTML post page.
// Body is Markdown without any frontmatter.
type Document struct {
	Title string
	Body  string
}

// Source identifies one post page to convert.
type Source struct {
	// Location is a file path or an absolute URL.
	Location string
	// Name is the note name, historically the post's directory name.
	// It doubles as the fallback title.
	Name string
}

// IsRemote reports whether the source must be fetched over HTTP.
func (s Source) IsRemote() bool {
	return strings.HasPrefix(s.Location, "http://") || strings.HasPrefix(s.Location, "https://")
}

// PageMetadata holds metadata extracted from the page markup.
type PageMetadata struct {
	Date       time.Time `json:"date,omitzero"`
	Tags       []string  `json:"tags,omitempty"`
	Categories []string  `json:"categories,omitempty"`
}

// NoteMeta is everything written into a note's frontmatter.
type NoteMeta struct {
	Title      string    `json:"title"`
	Date       time.Time `json:"date,omitzero"`
	Categories []string  `json:"categories,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Source     string    `json:"source,omitempty"`
	// Extra holds frontmatter keys of an existing note that hexovault does
	// not manage. They are written back unchanged.
	Extra map[string]any `json:"extra,omitempty"`
}

// Heading represents a single heading found in the Markdown.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link represents a hyperlink found in the Markdown.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Section is the text under one heading, up to the next heading.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// NoteContent holds the note body in its textual forms.
type NoteContent struct {
	Text     string    `json:"text"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections,omitempty"`
}

// NoteStructure holds structural information parsed from the Markdown body.
type NoteStructure struct {
	Headings   []Heading `json:"headings"`
	Links      []Link    `json:"links"`
	CodeBlocks int       `json:"code_blocks"`
	Languages  []string  `json:"languages,omitempty"`
	Tables     int       `json:"tables"`
	Lists      int       `json:"lists"`
}

// NoteJSON is the complete JSON output for a single note.
type NoteJSON struct {
	Meta      NoteMeta      `json:"meta"`
	Content   NoteContent   `json:"content"`
	Structure NoteStructure `json:"structure"`
}

// Converter turns raw HTML into a Markdown document. The only error a
// Converter returns is for undecodable input.
type Converter interface {
	Convert(html []byte, fallbackTitle string) (Document, error)
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor pulls page metadata out of raw HTML.
type Extractor interface {
	Extract(html []byte) (PageMetadata, error)
}

// Renderer converts a converted document and its metadata into the final
// output format.
type Renderer interface {
	Render(doc Document, meta NoteMeta) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
