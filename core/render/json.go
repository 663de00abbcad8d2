// Package render: JSON renderer.
// Builds the structured JSON output from a converted note. The Markdown
// body is parsed with goldmark (GFM) to extract headings, links, code
// blocks, tables, lists and per-heading sections without inferring any
// domain-specific fields.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/gaurav-prasanna/hexovault/core"
)

// JSONRenderer produces structured JSON output from Markdown.
type JSONRenderer struct {
	md goldmark.Markdown
}

var _ core.Renderer = (*JSONRenderer)(nil)

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Render converts a document and its metadata into the JSON note format.
func (r *JSONRenderer) Render(doc core.Document, meta core.NoteMeta) ([]byte, error) {
	data, err := json.MarshalIndent(r.Build(doc, meta), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Build returns the JSON note structure without serializing it.
func (r *JSONRenderer) Build(doc core.Document, meta core.NoteMeta) core.NoteJSON {
	src := []byte(doc.Body)
	root := r.md.Parser().Parse(text.NewReader(src))

	return core.NoteJSON{
		Meta: meta,
		Content: core.NoteContent{
			Text:     plainText(root, src),
			Markdown: doc.Body,
			Sections: sections(root, src),
		},
		Structure: structure(root, src),
	}
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

func structure(root ast.Node, src []byte) core.NoteStructure {
	s := core.NoteStructure{
		Headings: []core.Heading{},
		Links:    []core.Link{},
	}
	seenLang := make(map[string]bool)

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			s.Headings = append(s.Headings, core.Heading{Level: node.Level, Text: inlineText(node, src)})
		case *ast.Link:
			s.Links = append(s.Links, core.Link{Text: inlineText(node, src), Href: string(node.Destination)})
		case *ast.AutoLink:
			url := string(node.URL(src))
			s.Links = append(s.Links, core.Link{Text: string(node.Label(src)), Href: url})
		case *ast.FencedCodeBlock:
			s.CodeBlocks++
			if lang := string(node.Language(src)); lang != "" && !seenLang[lang] {
				seenLang[lang] = true
				s.Languages = append(s.Languages, lang)
			}
		case *ast.CodeBlock:
			s.CodeBlocks++
		case *east.Table:
			s.Tables++
		case *ast.List:
			s.Lists++
		}
		return ast.WalkContinue, nil
	})
	return s
}

// sections splits the source at top-level headings. Text before the first
// heading belongs to no section.
func sections(root ast.Node, src []byte) []core.Section {
	var out []core.Section
	var cur *core.Section
	bodyStart := 0

	flush := func(end int) {
		if cur == nil {
			return
		}
		if end > bodyStart {
			cur.Text = strings.TrimSpace(string(src[bodyStart:end]))
		}
		out = append(out, *cur)
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		flush(lineStart(src, seg.Start))
		cur = &core.Section{Heading: inlineText(h, src), Level: h.Level}
		bodyStart = lineEnd(src, seg.Stop)
	}
	flush(len(src))
	return out
}

// plainText renders the document as text: one line per block, code blocks
// verbatim, Markdown syntax removed.
func plainText(root ast.Node, src []byte) string {
	var blocks []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Paragraph, *ast.TextBlock, *ast.Heading, *east.TableCell:
			if t := inlineText(n, src); t != "" {
				blocks = append(blocks, t)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blocks = append(blocks, strings.TrimRight(string(rawLines(n, src)), "\n"))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(blocks, "\n")
}

// inlineText concatenates the text of n's inline descendants.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func rawLines(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

func lineStart(src []byte, pos int) int {
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}

func lineEnd(src []byte, pos int) int {
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(src)
}
