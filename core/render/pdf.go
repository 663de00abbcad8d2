// Package render: PDF renderer.
// Lays a converted note out as a PDF using gofpdf: headings with variable
// font sizes, paragraphs, lists, blockquotes, and code blocks and tables in
// a monospace face. Images are not rendered.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/hexovault/core"
)

// PDFRenderer renders notes as PDF documents.
type PDFRenderer struct{}

var _ core.Renderer = (*PDFRenderer)(nil)

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

var (
	orderedItem   = regexp.MustCompile(`^\d+\.\s`)
	tableDivider  = regexp.MustCompile(`^\|(?:-+\|)+$`)
	boldMarkers   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicMarkers = regexp.MustCompile(`(^|[^*])\*([^*\s][^*]*)\*`)
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	markdownLink  = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

// Render converts a note into PDF bytes.
func (r *PDFRenderer) Render(doc core.Document, meta core.NoteMeta) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(meta.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if meta.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(meta.Title), "", "L", false)
		pdf.Ln(2)
	}
	if line := metaLine(meta); line != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(6)

	inCodeBlock := false
	for _, line := range strings.Split(doc.Body, "\n") {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}
		if inCodeBlock {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, tr(line), "", "L", true)
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(3)
		case trimmed == "---":
			y := pdf.GetY() + 2
			pdf.Line(10, y, 200, y)
			pdf.Ln(4)
		case strings.HasPrefix(line, "#"):
			level := len(line) - len(strings.TrimLeft(line, "#"))
			renderHeading(pdf, tr(strings.TrimSpace(line[level:])), level)
		case strings.HasPrefix(trimmed, "|"):
			if tableDivider.MatchString(trimmed) {
				continue
			}
			pdf.SetFont("Courier", "", 9)
			pdf.MultiCell(0, 4.5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		case strings.HasPrefix(trimmed, "> "):
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetX(16)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		case strings.HasPrefix(trimmed, "- "):
			renderListItem(pdf, line, "• "+cleanInlineMarkdown(trimmed[2:]), tr)
		case orderedItem.MatchString(trimmed):
			renderListItem(pdf, line, cleanInlineMarkdown(trimmed), tr)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// metaLine is the small print under the title: date, tags and source.
func metaLine(meta core.NoteMeta) string {
	var parts []string
	if !meta.Date.IsZero() {
		parts = append(parts, meta.Date.Format(dateLayout))
	}
	if len(meta.Categories) > 0 {
		parts = append(parts, strings.Join(meta.Categories, ", "))
	}
	if len(meta.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(meta.Tags, " #"))
	}
	if meta.Source != "" {
		parts = append(parts, "Source: "+meta.Source)
	}
	return strings.Join(parts, "  |  ")
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	pdf.Ln(2)
}

// renderListItem writes a list item indented by its nesting depth.
func renderListItem(pdf *gofpdf.Fpdf, line, text string, tr func(string) string) {
	indent := float64(len(line)-len(strings.TrimLeft(line, " "))) * 2
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(10 + indent)
	pdf.MultiCell(0, 5, tr(text), "", "L", false)
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = boldMarkers.ReplaceAllString(text, "$1")
	text = italicMarkers.ReplaceAllString(text, "$1$2")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = markdownLink.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, `\|`, "|")
	return strings.TrimSpace(text)
}
