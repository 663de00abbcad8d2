package convert_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/hexovault/core/convert"
)

// page wraps body in the markup of a Hexo post page: a title heading, a
// content container starting with a teaser paragraph, and the marker.
// The container runs to the end of the document.
func page(body string) string {
	return `<!DOCTYPE html><html><head><title>Site</title></head><body>` +
		`<nav><a href="/">Home</a></nav>` +
		`<h1 class="title is-3 is-size-4-mobile">My Post</h1>` +
		`<div class="content"><p>Teaser text.</p><span id="more"></span>` +
		body +
		`</div></body></html>`
}

func convertBody(t *testing.T, body string) string {
	t.Helper()
	doc, err := convert.New(convert.Options{}).Convert([]byte(page(body)), "fallback")
	require.NoError(t, err)
	return doc.Body
}

func TestConvert_InlineCode(t *testing.T) {
	got := convertBody(t, `<p>Use <code>x</code> now</p>`)
	assert.Equal(t, "Use `x` now", got)
	assert.NotContains(t, got, "```")
}

func TestConvert_Table(t *testing.T) {
	got := convertBody(t, `<table><thead><tr><th>A</th><th>B</th></tr></thead>`+
		`<tbody><tr><td>1</td><td>2</td></tr></tbody></table>`)
	assert.Equal(t, "| A | B |\n|---|---|\n| 1 | 2 |", got)
}

func TestConvert_TableWithWhitespaceAndInline(t *testing.T) {
	got := convertBody(t, "<table>\n<thead>\n<tr>\n<th> Name </th>\n<th>Type</th>\n</tr>\n</thead>\n"+
		"<tbody>\n<tr>\n<td><code>M</code> tile</td>\n<td>int | long</td>\n</tr>\n</tbody>\n</table>")
	assert.Equal(t, "| Name | Type |\n|---|---|\n| `M` tile | int \\| long |", got)
}

func TestConvert_TableHeaderWithoutThead(t *testing.T) {
	got := convertBody(t, `<table><tr><th>A</th></tr><tr><td>1</td></tr></table>`)
	assert.Equal(t, "| A |\n|---|\n| 1 |", got)
}

func TestConvert_TableCaptionDropped(t *testing.T) {
	got := convertBody(t, `<table><caption>Cap</caption><tr><th>A</th></tr></table>`)
	assert.Equal(t, "| A |\n|---|", got)
}

func TestConvert_TableStrayTextDropped(t *testing.T) {
	got := convertBody(t, `<table>stray<tr><td>1</td>loose</tr></table>`)
	assert.Equal(t, "| 1 |", got)
}

func TestConvert_TableEmptyCellKeepsColumn(t *testing.T) {
	got := convertBody(t, `<table><thead><tr><th>A</th><th>B</th></tr></thead>`+
		`<tbody><tr><td></td><td>2</td></tr></tbody></table>`)
	assert.Equal(t, "| A | B |\n|---|---|\n|  | 2 |", got)
}

func TestConvert_HighlightFigure(t *testing.T) {
	got := convertBody(t, `<figure class="highlight python"><table><tr>`+
		`<td class="gutter"><pre><span class="line">1</span><br></pre></td>`+
		`<td class="code"><pre><span class="line">print(1)</span><br></pre></td>`+
		`</tr></table></figure>`)
	assert.Equal(t, "```python\nprint(1)\n```", got)
}

func TestConvert_HighlightFigureMultiline(t *testing.T) {
	got := convertBody(t, `<figure class="highlight cpp"><figcaption><span>gemm.cu</span></figcaption>`+
		`<table><tr><td class="gutter"><pre><span class="line">1</span><br><span class="line">2</span><br></pre></td>`+
		`<td class="code"><pre><span class="line"><span class="keyword">int</span> a = b;</span><br>`+
		`<span class="line">a &lt;&lt;= 2 ;</span><br></pre></td></tr></table></figure>`+
		`<p>After .</p>`)
	assert.Equal(t, "```cpp\nint a = b;\na <<= 2 ;\n```\n\nAfter.", got)
}

func TestConvert_BarePre(t *testing.T) {
	got := convertBody(t, "<pre><code>plain text\n  indented\n</code></pre>")
	assert.Equal(t, "```\nplain text\n  indented\n```", got)
}

func TestConvert_BarePreLanguageClass(t *testing.T) {
	got := convertBody(t, "<pre><code class=\"language-go\">x := 1\n</code></pre>")
	assert.Equal(t, "```go\nx := 1\n```", got)
}

func TestConvert_FenceKeepsPunctuationSpacing(t *testing.T) {
	got := convertBody(t, `<pre>for (i = 0 ; i &lt; n ; i++) { }</pre>`)
	assert.Contains(t, got, "for (i = 0 ; i < n ; i++) { }")
}

func TestConvert_CodeSpanWithBackticksIsNotAFence(t *testing.T) {
	got := convertBody(t, "<p><code>```python</code> opens a block .</p>"+
		"<pre>for (i = 0 ; i &lt; n ; i++)</pre><p>x , y</p>")
	assert.Equal(t, "````python` opens a block.\n\n```\nfor (i = 0 ; i < n ; i++)\n```\n\nx, y", got)
}

func TestConvert_LineNumberStripping(t *testing.T) {
	got := convertBody(t, `<figure class="highlight js"><pre>`+
		`<span>1</span><span>x = 10</span><br><span>2</span><span>y</span><br><span>3a</span></pre></figure>`)
	assert.Equal(t, "```js\nx = 10\ny\n3a\n```", got)
}

func TestConvert_SkipGate(t *testing.T) {
	html := `<html><body><h1 class="title">T</h1>` +
		`<div class="content"><h2>Teaser heading</h2><p>Summary para</p>` +
		`<span id="more"></span><h2>Real</h2><p>Body.</p></div></body></html>`
	doc, err := convert.New(convert.Options{}).Convert([]byte(html), "x")
	require.NoError(t, err)

	assert.Equal(t, "## Real\n\nBody.", doc.Body)
	assert.NotContains(t, doc.Body, "Teaser")
	assert.NotContains(t, doc.Body, "Summary")
}

func TestConvert_NoMarkerYieldsEmptyBody(t *testing.T) {
	html := `<h1 class="title">T</h1><div class="content"><p>Only teaser</p></div>`
	doc, err := convert.New(convert.Options{}).Convert([]byte(html), "x")
	require.NoError(t, err)
	assert.Empty(t, doc.Body)
	assert.Equal(t, "T", doc.Title)
}

func TestConvert_ContentGate(t *testing.T) {
	html := `<span id="more"></span><p>nav text</p>` +
		`<div class="content"><p>body</p></div>`
	doc, err := convert.New(convert.Options{}).Convert([]byte(html), "x")
	require.NoError(t, err)
	assert.Equal(t, "body", doc.Body)
}

func TestConvert_NoContentContainer(t *testing.T) {
	doc, err := convert.New(convert.Options{}).Convert([]byte(`<span id="more"></span><p>text</p>`), "x")
	require.NoError(t, err)
	assert.Empty(t, doc.Body)
}

func TestConvert_KeepTeaser(t *testing.T) {
	doc, err := convert.New(convert.Options{KeepTeaser: true}).Convert([]byte(page(`<p>Rest</p>`)), "x")
	require.NoError(t, err)
	assert.Equal(t, "Teaser text.\n\nRest", doc.Body)
}

func TestConvert_Link(t *testing.T) {
	assert.Equal(t, "[t](https://x)", convertBody(t, `<p><a href="https://x">t</a></p>`))
	assert.Equal(t, "[t](https://x/a_b?c=d%20e#f)", convertBody(t, `<p><a href="https://x/a_b?c=d%20e#f">t</a></p>`))
	assert.Equal(t, "[**b** and `c`](u)", convertBody(t, `<p><a href="u"><strong>b</strong> and <code>c</code></a></p>`))
}

func TestConvert_LinkEdgeCases(t *testing.T) {
	assert.Equal(t, "plain", convertBody(t, `<p><a name="x">plain</a></p>`), "no href")
	assert.Equal(t, "## Setup", convertBody(t, `<h2 id="Setup"><a href="#Setup" class="headerlink" title="Setup"></a>Setup</h2>`))
}

func TestConvert_Title(t *testing.T) {
	doc, err := convert.New(convert.Options{}).Convert([]byte(page("<p>x</p>")), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "My Post", doc.Title)
	assert.NotContains(t, doc.Body, "My Post")
}

func TestConvert_TitleWithMarkup(t *testing.T) {
	html := `<h1 class="title">Hello <span>World</span> &amp; more</h1>`
	doc, err := convert.New(convert.Options{}).Convert([]byte(html), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "Hello World & more", doc.Title)
}

func TestConvert_TitleFallback(t *testing.T) {
	html := `<h1>Not a title</h1><div class="content"><span id="more"></span><p>x</p></div>`
	doc, err := convert.New(convert.Options{}).Convert([]byte(html), "0x01_cute_layout")
	require.NoError(t, err)
	assert.Equal(t, "0x01_cute_layout", doc.Title)

	doc, err = convert.New(convert.Options{}).Convert(nil, "empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", doc.Title)
	assert.Empty(t, doc.Body)
}

func TestConvert_Lists(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"unordered", `<ul><li>one</li><li>two</li></ul>`, "- one\n- two"},
		{"ordered keeps literal 1.", `<ol><li>one</li><li>two</li><li>three</li></ol>`, "1. one\n1. two\n1. three"},
		{"paragraph in item", `<ul><li><p>one</p></li></ul>`, "- one"},
		{"nested", `<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>`, "- a\n  - b\n\n- c"},
		{"ordered in unordered", `<ul><li>a<ol><li>b</li></ol></li></ul>`, "- a\n  1. b"},
		{"surrounded by text", `<p>Intro</p><ul><li>x</li></ul><p>Outro</p>`, "Intro\n\n- x\n\nOutro"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, convertBody(t, tc.html))
		})
	}
}

func TestConvert_Blockquote(t *testing.T) {
	assert.Equal(t, "> quoted", convertBody(t, `<blockquote><p>quoted</p></blockquote>`))
	assert.Equal(t, "before\n\n> q\n\nafter",
		convertBody(t, `<p>before</p><blockquote>q</blockquote><p>after</p>`))
}

func TestConvert_Headings(t *testing.T) {
	got := convertBody(t, `<h2>Two</h2><p>Body text.</p><h3>Three</h3><h6>Six</h6>`)
	assert.Equal(t, "## Two\n\nBody text.\n\n### Three\n\n###### Six", got)
}

func TestConvert_InlineFormatting(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"bold", `<p><strong>b</strong></p>`, "**b**"},
		{"b tag", `<p><b>b</b></p>`, "**b**"},
		{"italic", `<p><em>i</em> and <i>j</i></p>`, "*i* and *j*"},
		{"nested", `<p><strong>bold <em>both</em></strong> and <em>it</em></p>`, "**bold *both*** and *it*"},
		{"space between inline", `<p><strong>x</strong> <em>y</em></p>`, "**x** *y*"},
		{"line break", `<p>a<br>b</p>`, "a\nb"},
		{"transparent tags", `<p><span class="x">hi</span> there</p>`, "hi there"},
		{"prose reflow", "<p>one\ntwo   three</p>", "one two three"},
		{"punctuation", `<p>Hello <strong>world</strong> .</p>`, "Hello **world**."},
		{"entities", `<p>a &lt; b &amp;&amp; c</p>`, "a < b && c"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, convertBody(t, tc.html))
		})
	}
}

func TestConvert_HorizontalRule(t *testing.T) {
	assert.Equal(t, "a\n\n---\n\nb", convertBody(t, `<p>a</p><hr><p>b</p>`))
}

func TestConvert_DropsScripts(t *testing.T) {
	got := convertBody(t, `<p>x</p><script>var a = "<p>no</p>";</script><style>p{}</style><p>y</p>`)
	assert.Equal(t, "x\n\ny", got)
}

func TestConvert_MalformedMarkup(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"unclosed inline", `<div class="content"><p>unclosed <b>bold`, "unclosed **bold**"},
		{"stray end tags", `<div class="content"></em></li><p>x</p></table>`, "x"},
		{"mismatched end closes inner", `<div class="content"><p><b>x</p>y`, "**x**\ny"},
		{"stray less-than", `<div class="content"><p>1 < 2</p>`, "1 < 2"},
		{"unclosed fence", `<div class="content"><pre>code`, "```\ncode\n```"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := convert.New(convert.Options{KeepTeaser: true}).Convert([]byte(tc.html), "x")
			require.NoError(t, err)
			assert.Equal(t, tc.want, doc.Body)
		})
	}
}

func TestConvert_DetectLanguage(t *testing.T) {
	detect := func(code []byte) string {
		if strings.Contains(string(code), "func ") {
			return "go"
		}
		return ""
	}
	c := convert.New(convert.Options{DetectLanguage: detect})

	doc, err := c.Convert([]byte(page("<pre>func main() {}</pre><pre>???</pre>")), "x")
	require.NoError(t, err)
	assert.Equal(t, "```go\nfunc main() {}\n```\n\n```\n???\n```", doc.Body)

	doc, err = c.Convert([]byte(page(`<figure class="highlight python"><pre>func f()</pre></figure>`)), "x")
	require.NoError(t, err)
	assert.Equal(t, "```python\nfunc f()\n```", doc.Body, "an explicit language wins")
}

func TestConvert_CustomSelectors(t *testing.T) {
	html := `<h1 class="post-name">Custom</h1><article class="x"><div class="post-body">` +
		`<p>teaser</p><a id="cut"></a><p>kept</p></div></article>`
	c := convert.New(convert.Options{TitleClass: "post-name", ContentClass: "post-body", MarkerID: "cut"})
	doc, err := c.Convert([]byte(html), "x")
	require.NoError(t, err)
	assert.Equal(t, "Custom", doc.Title)
	assert.Equal(t, "kept", doc.Body)
}

func TestConvert_DecodeError(t *testing.T) {
	_, err := convert.New(convert.Options{}).Convert([]byte("ok\xff\xfe"), "x")
	require.Error(t, err)

	var decodeErr *convert.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 2, decodeErr.Offset)
	assert.True(t, errors.Is(err, convert.ErrInvalidUTF8))
}

func TestConvert_StripsBOM(t *testing.T) {
	doc, err := convert.New(convert.Options{}).Convert([]byte("\xef\xbb\xbf"+page("<p>x</p>")), "f")
	require.NoError(t, err)
	assert.Equal(t, "x", doc.Body)
	assert.Equal(t, "My Post", doc.Title)
}

func TestConvert_Deterministic(t *testing.T) {
	html := []byte(page(`<h2>A</h2><ul><li>x <b>y</b></li></ul><table><tr><th>h</th></tr></table><pre>1\n2</pre>`))
	c := convert.New(convert.Options{})

	first, err := c.Convert(html, "x")
	require.NoError(t, err)
	for range 5 {
		again, err := c.Convert(html, "x")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestConvert_NoTripleNewlines(t *testing.T) {
	bodies := []string{
		`<p>a</p><p></p><p></p><p>b</p>`,
		`<ul><li><p>a</p></li><li><p>b</p></li></ul><br><br><br><br>`,
		"<pre>a\n\n\n\n\nb</pre>",
		`<blockquote><p>a</p><p>b</p></blockquote><h2>x</h2><hr><hr>`,
	}
	for _, body := range bodies {
		got := convertBody(t, body)
		assert.NotContains(t, got, "\n\n\n", "body %q", body)
	}
}

func TestConvert_WhitespaceBetweenInlineElements(t *testing.T) {
	assert.Equal(t, "**a** *b*", convertBody(t, "<p><b>a</b> <i>b</i></p>"))
	assert.Equal(t, "a b", convertBody(t, "<p>a \n <span> </span> b</p>"))
}

func TestDecode(t *testing.T) {
	src, err := convert.Decode([]byte("\xef\xbb\xbf<p>x</p>"))
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", src)

	_, err = convert.Decode([]byte("ab\xffc"))
	var decodeErr *convert.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 2, decodeErr.Offset)
}
