// Package convert implements the streaming HTML to Markdown converter for
// Hexo post pages.
//
// A Converter feeds the tag events of one page through a state machine
// that keeps a stack of open contexts (lists, tables, code blocks, links,
// ...) and writes Markdown fragments into the innermost buffer. Everything
// before the teaser marker is skipped, body output starts at the content
// container, and the assembled text goes through normalize.Cleanup.
//
// Conversion is best effort: missing markers, titles or containers yield a
// shorter (possibly empty) body, never an error. The only failure is input
// that is not valid UTF-8, reported as a *DecodeError.
package convert

import (
	"strings"

	"github.com/gaurav-prasanna/hexovault/core"
	"github.com/gaurav-prasanna/hexovault/core/normalize"
	"github.com/gaurav-prasanna/hexovault/core/tagstream"
)

// Converter converts Hexo HTML pages to Markdown. It holds no per-document
// state and is safe for concurrent use.
type Converter struct {
	opts Options
}

var _ core.Converter = (*Converter)(nil)

// New creates a Converter. Empty option fields use the Hexo defaults.
func New(opts Options) *Converter {
	return &Converter{opts: opts.withDefaults()}
}

// Convert turns one HTML document into Markdown. When the page has no
// title heading, the document's title is fallbackTitle.
func (c *Converter) Convert(html []byte, fallbackTitle string) (core.Document, error) {
	src, err := Decode(html)
	if err != nil {
		return core.Document{}, err
	}

	m := newMachine(c.opts)
	m.run(tagstream.New(strings.NewReader(src)))

	title := m.title
	if title == "" {
		title = fallbackTitle
	}
	return core.Document{
		Title: title,
		Body:  normalize.Cleanup(m.out.String()),
	}, nil
}
