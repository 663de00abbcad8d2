// Package extract implements the Extractor interface.
// It reads post metadata (publish date, tags, categories) from the markup
// Hexo themes put around an article. Selectors cover the landscape and
// icarus theme families plus Open Graph article meta tags.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/gaurav-prasanna/hexovault/core"
)

// field is one metadata field: the selectors that locate it and the
// attribute holding its value ("" means the element text).
type field struct {
	selectors []cascadia.Selector
	attrs     []string
}

func compile(pairs ...string) field {
	var f field
	for i := 0; i+1 < len(pairs); i += 2 {
		f.selectors = append(f.selectors, cascadia.MustCompile(pairs[i]))
		f.attrs = append(f.attrs, pairs[i+1])
	}
	return f
}

var (
	dateField = compile(
		`meta[property="article:published_time"]`, "content",
		`.article-meta time[datetime]`, "datetime",
		`time[datetime]`, "datetime",
	)
	tagsField = compile(
		`meta[property="article:tag"]`, "content",
		`a.article-tag-list-link`, "",
		`.article-tags a[rel="tag"]`, "",
		`.article-tags a`, "",
	)
	categoriesField = compile(
		`a.article-category-link`, "",
		`.article-meta a[href*="/categories/"]`, "",
	)
)

// dateLayouts are tried in order when parsing a publish date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// HTMLExtractor reads page metadata with goquery.
type HTMLExtractor struct{}

var _ core.Extractor = (*HTMLExtractor)(nil)

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract returns the metadata found in html. Missing fields are left
// empty; only unparsable markup is an error.
func (e *HTMLExtractor) Extract(html []byte) (core.PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return core.PageMetadata{}, fmt.Errorf("parsing HTML: %w", err)
	}

	var meta core.PageMetadata
	for _, v := range values(doc, dateField) {
		if t, ok := parseDate(v); ok {
			meta.Date = t
			break
		}
	}
	meta.Tags = values(doc, tagsField)
	meta.Categories = values(doc, categoriesField)
	return meta, nil
}

// values collects the non-empty, de-duplicated values of a field in
// selector order.
func values(doc *goquery.Document, f field) []string {
	var out []string
	seen := make(map[string]bool)
	for i, sel := range f.selectors {
		doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
			var v string
			if f.attrs[i] == "" {
				v = s.Text()
			} else {
				v, _ = s.Attr(f.attrs[i])
			}
			v = strings.Join(strings.Fields(v), " ")
			v = strings.TrimPrefix(v, "#")
			if v == "" || seen[v] {
				return
			}
			seen[v] = true
			out = append(out, v)
		})
	}
	return out
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
