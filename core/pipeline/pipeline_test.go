package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/hexovault/core"
	"github.com/gaurav-prasanna/hexovault/core/convert"
	"github.com/gaurav-prasanna/hexovault/core/extract"
	"github.com/gaurav-prasanna/hexovault/core/output"
	"github.com/gaurav-prasanna/hexovault/core/pipeline"
	"github.com/gaurav-prasanna/hexovault/core/render"
	"github.com/gaurav-prasanna/hexovault/crawl"
	"github.com/gaurav-prasanna/hexovault/internal/logging"
)

const postPage = `<!DOCTYPE html><html><head><title>Blog</title></head><body>
<div class="article-meta"><time datetime="2024-12-24T00:00:00.000Z">Dec 24</time></div>
<a class="article-tag-list-link" href="/tags/CuTe/">CuTe</a>
<h1 class="title">Layouts</h1>
<div class="content"><p>Teaser.</p><span id="more"></span><p>Body text.</p></div>
</body></html>`

const wantNote = "---\n" +
	"title: Layouts\n" +
	"date: 2024-12-24\n" +
	"categories:\n" +
	"  - CUTLASS\n" +
	"tags:\n" +
	"  - CuTe\n" +
	"---\n" +
	"\n" +
	"Body text.\n"

type mapFetcher map[string]string

func (f mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	page, ok := f[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(page), nil
}

func writeSite(t *testing.T, posts ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range posts {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, crawl.PageFile), []byte(postPage), 0o644))
	}
	return root
}

func newPipeline(t *testing.T, outDir string, force bool) *pipeline.Pipeline {
	t.Helper()
	w, err := output.New(outDir, force)
	require.NoError(t, err)
	return &pipeline.Pipeline{
		Converter: convert.New(convert.Options{}),
		Extractor: extract.New(),
		Renderer:  render.NewMarkdownRenderer(),
		Writer:    w,
		Defaults: pipeline.Defaults{
			Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Categories: []string{"CUTLASS"},
		},
		Jobs: 2,
	}
}

func TestRun_WritesNotes(t *testing.T) {
	site := writeSite(t, "0x01_layout", "0x02_tensor")
	out := t.TempDir()

	sources, err := crawl.DiscoverDir(site, "0x")
	require.NoError(t, err)

	result, err := newPipeline(t, out, false).Run(context.Background(), sources)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.Discovered)
	assert.Equal(t, 2, result.Stats.Written)
	assert.Zero(t, result.Stats.Failed)
	assert.Empty(t, result.Failures())

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, "0x01_layout", result.Outcomes[0].Source.Name)
	assert.Equal(t, "Layouts", result.Outcomes[0].Title)
	assert.Equal(t, filepath.Join(out, "0x01_layout.md"), result.Outcomes[0].Path)

	data, err := os.ReadFile(filepath.Join(out, "0x02_tensor.md"))
	require.NoError(t, err)
	assert.Equal(t, wantNote, string(data))
}

func TestRun_SkipsExistingNotes(t *testing.T) {
	site := writeSite(t, "0x01_layout")
	out := t.TempDir()
	existing := filepath.Join(out, "0x01_layout.md")
	require.NoError(t, os.WriteFile(existing, []byte("keep me\n"), 0o644))

	sources, err := crawl.DiscoverDir(site, "0x")
	require.NoError(t, err)

	result, err := newPipeline(t, out, false).Run(context.Background(), sources)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Skipped)
	assert.Equal(t, pipeline.StatusSkipped, result.Outcomes[0].Status)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me\n", string(data))
}

func TestRun_ForceKeepsCustomFrontmatter(t *testing.T) {
	site := writeSite(t, "0x01_layout")
	out := t.TempDir()
	existing := filepath.Join(out, "0x01_layout.md")
	old := "---\ntitle: Old\naliases:\n  - cute\n---\n\nold body\n"
	require.NoError(t, os.WriteFile(existing, []byte(old), 0o644))

	sources, err := crawl.DiscoverDir(site, "0x")
	require.NoError(t, err)

	result, err := newPipeline(t, out, true).Run(context.Background(), sources)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Written)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Layouts\n")
	assert.Contains(t, string(data), "aliases:\n  - cute\n")
	assert.NotContains(t, string(data), "Old")
	assert.NotContains(t, string(data), "old body")
}

func TestRun_FailureDoesNotStopBatch(t *testing.T) {
	site := writeSite(t, "0x01_layout")
	out := t.TempDir()

	sources := []core.Source{
		{Location: filepath.Join(site, "0x00_missing", crawl.PageFile), Name: "0x00_missing"},
		{Location: filepath.Join(site, "0x01_layout", crawl.PageFile), Name: "0x01_layout"},
	}

	result, err := newPipeline(t, out, false).Run(context.Background(), sources)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.Failed)
	assert.Equal(t, 1, result.Stats.Written)
	failures := result.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "0x00_missing", failures[0].Source.Name)
	assert.ErrorIs(t, failures[0].Err, os.ErrNotExist)
	assert.FileExists(t, filepath.Join(out, "0x01_layout.md"))
}

func TestRun_DecodeErrorIsReported(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "bad.html")
	require.NoError(t, os.WriteFile(bad, []byte("<p>\xff</p>"), 0o644))

	result, err := newPipeline(t, t.TempDir(), false).Run(context.Background(),
		[]core.Source{{Location: bad, Name: "bad"}})
	require.NoError(t, err)

	require.Len(t, result.Failures(), 1)
	var decodeErr *convert.DecodeError
	assert.True(t, errors.As(result.Outcomes[0].Err, &decodeErr))
}

func TestRun_RemoteSource(t *testing.T) {
	const url = "https://blog.example.com/2024/12/24/0x01_layout/"
	out := t.TempDir()

	p := newPipeline(t, out, false)
	p.Fetcher = mapFetcher{url: postPage}

	result, err := p.Run(context.Background(), []core.Source{{Location: url, Name: "0x01_layout"}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Stats.Written)

	data, err := os.ReadFile(filepath.Join(out, "0x01_layout.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "source: "+url+"\n")
}

func TestRun_RemoteWithoutFetcher(t *testing.T) {
	result, err := newPipeline(t, t.TempDir(), false).Run(context.Background(),
		[]core.Source{{Location: "https://blog.example.com/0x01/", Name: "0x01"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Failed)
}

func TestRun_DefaultsFillMissingMetadata(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "plain.html")
	html := `<div class="content"><span id="more"></span><p>Only body.</p></div>`
	require.NoError(t, os.WriteFile(page, []byte(html), 0o644))

	var buf bytes.Buffer
	p := newPipeline(t, t.TempDir(), false)
	p.Stdout = &buf
	p.Defaults.Tags = []string{"CUTLASS", "CuTe"}

	result, err := p.Run(context.Background(), []core.Source{{Location: page, Name: "plain"}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Stats.Written)
	assert.Empty(t, result.Outcomes[0].Path)

	want := "---\n" +
		"title: plain\n" +
		"date: 2024-01-01\n" +
		"categories:\n" +
		"  - CUTLASS\n" +
		"tags:\n" +
		"  - CUTLASS\n" +
		"  - CuTe\n" +
		"---\n" +
		"\n" +
		"Only body.\n"
	assert.Equal(t, want, buf.String())
}

func TestRun_Cancelled(t *testing.T) {
	site := writeSite(t, "0x01_layout")
	sources, err := crawl.DiscoverDir(site, "0x")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newPipeline(t, t.TempDir(), false).Run(ctx, sources)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Stats.Failed)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "written", pipeline.StatusWritten.String())
	assert.Equal(t, "skipped", pipeline.StatusSkipped.String())
	assert.Equal(t, "failed", pipeline.StatusFailed.String())
}

func TestRun_JSONIgnoresExistingFrontmatter(t *testing.T) {
	site := writeSite(t, "0x01_layout")
	out := t.TempDir()

	p := newPipeline(t, out, true)
	p.Renderer = render.NewJSONRenderer()

	sources, err := crawl.DiscoverDir(site, "0x")
	require.NoError(t, err)

	result, err := p.Run(context.Background(), sources)
	require.NoError(t, err)
	require.Equal(t, 1, result.Stats.Written)
	assert.FileExists(t, filepath.Join(out, "0x01_layout.json"))
}

func TestRun_LocalAndRemoteCopiesShareNote(t *testing.T) {
	const url = "https://blog.example.com/2024/12/24/0x01_layout/"
	site := writeSite(t, "0x01_layout")
	out := t.TempDir()

	local, err := crawl.DiscoverDir(site, "0x")
	require.NoError(t, err)

	p := newPipeline(t, out, false)
	p.Fetcher = mapFetcher{url: postPage}

	first, err := p.Run(context.Background(), local)
	require.NoError(t, err)
	require.Equal(t, 1, first.Stats.Written)

	second, err := p.Run(context.Background(), []core.Source{{Location: url, Name: crawl.PostName(url)}})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Stats.Skipped)
	assert.Equal(t, first.Outcomes[0].Path, second.Outcomes[0].Path)
}

func TestRun_LogsLocalReads(t *testing.T) {
	site := writeSite(t, "0x01_layout")
	sources, err := crawl.DiscoverDir(site, "0x")
	require.NoError(t, err)

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&buf, "debug"))

	p := newPipeline(t, t.TempDir(), false)
	p.Jobs = 1
	_, err = p.Run(ctx, sources)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "reading page")
	assert.Contains(t, buf.String(), logging.FieldPath+"="+sources[0].Location)
}
