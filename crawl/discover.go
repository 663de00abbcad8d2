// Package crawl discovers the post pages to convert.
// Local inputs are walked for <post-dir>/index.html pages; remote sites are
// read through sitemap.xml, falling back to link crawling when the site
// has no usable sitemap.
package crawl

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/hexovault/core"
)

// PageFile is the file name Hexo gives every generated post page.
const PageFile = "index.html"

// DefaultMaxPages bounds link crawling.
const DefaultMaxPages = 200

// Options controls discovery.
type Options struct {
	// Prefix filters post directory names. Empty accepts every post.
	Prefix string
	// Site treats URL inputs as site roots to crawl instead of single posts.
	Site bool
	// MaxPages bounds link crawling. Zero means DefaultMaxPages.
	MaxPages int
}

// Discover resolves inputs (directories, HTML files or URLs) into a
// de-duplicated list of sources, in input order.
func Discover(ctx context.Context, inputs []string, fetcher core.Fetcher, opts Options) ([]core.Source, error) {
	seen := NewQueue()
	var out []core.Source
	add := func(srcs ...core.Source) {
		for _, s := range srcs {
			if seen.Add(s.Location) {
				out = append(out, s)
			}
		}
	}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if isURL(in) {
			if !opts.Site {
				add(core.Source{Location: in, Name: PostName(in)})
				continue
			}
			srcs, err := DiscoverSite(ctx, in, fetcher, opts)
			if err != nil {
				return nil, err
			}
			add(srcs...)
			continue
		}

		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		if !info.IsDir() {
			add(fileSource(in))
			continue
		}
		srcs, err := DiscoverDir(in, opts.Prefix)
		if err != nil {
			return nil, err
		}
		add(srcs...)
	}
	return out, nil
}

// DiscoverDir walks root for post pages whose directory name starts with
// prefix. Hidden directories below root are skipped. Results are sorted by
// name.
func DiscoverDir(root, prefix string) ([]core.Source, error) {
	var out []core.Source
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != PageFile {
			return nil
		}
		dir := filepath.Base(filepath.Dir(path))
		if !MatchesPrefix(dir, prefix) {
			return nil
		}
		out = append(out, core.Source{Location: path, Name: dir})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Location < out[j].Location
	})
	return out, nil
}

// fileSource names a single HTML file after its directory when it is a
// post page, otherwise after the file itself.
func fileSource(path string) core.Source {
	base := filepath.Base(path)
	if base == PageFile {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		return core.Source{Location: path, Name: filepath.Base(filepath.Dir(path))}
	}
	return core.Source{Location: path, Name: strings.TrimSuffix(base, filepath.Ext(base))}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// sitemapURL holds a <loc> from a sitemap.
type sitemapURL struct {
	Loc string `xml:"loc"`
}

// sitemapDoc is either a <urlset> or a <sitemapindex>.
type sitemapDoc struct {
	URLs     []sitemapURL `xml:"url"`
	Sitemaps []sitemapURL `xml:"sitemap"`
}

// errNoPosts reports a sitemap without matching posts.
var errNoPosts = errors.New("no posts in sitemap")

// DiscoverSite finds the post pages of a site. It first tries
// sitemap.xml, then falls back to link crawling from baseURL.
func DiscoverSite(ctx context.Context, baseURL string, fetcher core.Fetcher, opts Options) ([]core.Source, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("parsing base URL %q: invalid URL", baseURL)
	}
	domain := parsed.Host

	sitemap := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, domain)
	srcs, err := discoverFromSitemap(ctx, sitemap, domain, fetcher, opts.Prefix, 1)
	if err == nil && len(srcs) > 0 {
		return srcs, nil
	}

	return discoverFromLinks(ctx, baseURL, domain, fetcher, opts)
}

// discoverFromSitemap reads a sitemap, following a sitemap index down to
// depth more levels.
func discoverFromSitemap(ctx context.Context, sitemap, domain string, fetcher core.Fetcher, prefix string, depth int) ([]core.Source, error) {
	body, err := fetcher.Fetch(ctx, sitemap)
	if err != nil {
		return nil, err
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemap, err)
	}

	var out []core.Source
	seen := NewQueue()
	for _, u := range doc.URLs {
		loc := NormalizeURL(strings.TrimSpace(u.Loc))
		if isPost(loc, domain, prefix) && seen.Add(loc) {
			out = append(out, core.Source{Location: loc, Name: PostName(loc)})
		}
	}
	if depth > 0 {
		for _, sm := range doc.Sitemaps {
			child, err := discoverFromSitemap(ctx, strings.TrimSpace(sm.Loc), domain, fetcher, prefix, depth-1)
			if err != nil {
				continue
			}
			for _, s := range child {
				if seen.Add(s.Location) {
					out = append(out, s)
				}
			}
		}
	}
	if len(out) == 0 {
		return nil, errNoPosts
	}
	return out, nil
}

// discoverFromLinks performs a BFS over same-domain pages and keeps the
// ones that look like posts.
func discoverFromLinks(ctx context.Context, startURL, domain string, fetcher core.Fetcher, opts Options) ([]core.Source, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	queue := NewQueue()
	queue.Add(NormalizeURL(startURL))

	var out []core.Source
	for queue.HasNext() && queue.Visited() < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		currentURL := queue.Next()
		if isPost(currentURL, domain, opts.Prefix) {
			out = append(out, core.Source{Location: currentURL, Name: PostName(currentURL)})
		}

		html, err := fetcher.Fetch(ctx, currentURL)
		if err != nil {
			continue // a broken page does not stop the crawl
		}
		links, err := extractLinks(html, currentURL)
		if err != nil {
			continue
		}
		for _, link := range links {
			if IsSameDomain(link, domain) && !IsStaticAsset(link) {
				queue.Add(NormalizeURL(link))
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(html []byte, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := resolveURL(href, base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
