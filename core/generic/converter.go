// Package generic converts pages that do not follow Hexo's markup
// conventions. It isolates the main content with goquery (the best of
// <main>, <article> or <body>, minus navigation and other noise) and hands
// it to html-to-markdown.
package generic

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/hexovault/core"
	"github.com/gaurav-prasanna/hexovault/core/convert"
	"github.com/gaurav-prasanna/hexovault/core/normalize"
)

// noiseSelectors are removed before conversion. They contribute no
// meaningful content to a note.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header",
	"img", "picture",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".comments", ".toc", "#toc",
	// Hexo code gutters and permalink anchors.
	"td.gutter", "a.headerlink",
}

// contentSelectors are tried in order to find the content container.
var contentSelectors = []string{"main", "article", "body"}

// Converter converts arbitrary HTML pages to Markdown.
type Converter struct {
	conv *converter.Converter
}

var _ core.Converter = (*Converter)(nil)

// New creates a Converter. It is safe for concurrent use.
func New() *Converter {
	return &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Convert extracts the main content of html and converts it to Markdown.
// The title is the first <h1>, then <title>, then fallbackTitle.
func (c *Converter) Convert(html []byte, fallbackTitle string) (core.Document, error) {
	src, err := convert.Decode(html)
	if err != nil {
		return core.Document{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return core.Document{}, fmt.Errorf("parsing HTML: %w", err)
	}

	title := firstText(doc, "h1", "title")
	if title == "" {
		title = fallbackTitle
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
	// The title heading lives in the note's frontmatter, not its body.
	doc.Find("h1").First().Remove()

	var content *goquery.Selection
	for _, tag := range contentSelectors {
		if sel := doc.Find(tag); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return core.Document{Title: title}, nil
	}

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return core.Document{}, fmt.Errorf("serializing content: %w", err)
	}

	markdown, err := c.conv.ConvertString(fragment)
	if err != nil {
		return core.Document{}, fmt.Errorf("converting HTML to markdown: %w", err)
	}

	return core.Document{Title: title, Body: normalize.Cleanup(markdown)}, nil
}

// firstText returns the collapsed text of the first element matching one
// of the selectors, trying them in order.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " "); t != "" {
			return t
		}
	}
	return ""
}
