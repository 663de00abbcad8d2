package convert

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/hexovault/core/normalize"
	"github.com/gaurav-prasanna/hexovault/core/tagstream"
)

// machine is the Markdown emission state machine. One machine converts one
// document; it is discarded afterwards.
type machine struct {
	opts  Options
	stack stack
	out   strings.Builder
	title string

	// contentSeen records a content container opened while the teaser
	// gate was still closed.
	contentSeen bool
}

func newMachine(opts Options) *machine {
	m := &machine{opts: opts}
	if !opts.KeepTeaser {
		m.stack.push(&frame{kind: frameSkipZone})
	}
	return m
}

// run consumes the stream until EOF.
func (m *machine) run(s *tagstream.Stream) {
	for {
		ev := s.Next()
		m.handle(ev)
		if ev.Kind == tagstream.EOF {
			return
		}
	}
}

func (m *machine) handle(ev tagstream.Event) {
	switch ev.Kind {
	case tagstream.StartTag:
		if ev.SelfClosing && !tagstream.IsVoid(ev.Name) {
			ev.SelfClosing = false
			m.start(ev)
			m.end(ev.Name)
			return
		}
		m.start(ev)
	case tagstream.EndTag:
		m.end(ev.Name)
	case tagstream.Text:
		m.text(ev.Raw)
	case tagstream.EOF:
		m.finish()
	}
}

// gated reports whether the teaser gate is still closed.
func (m *machine) gated() bool {
	return len(m.stack) > 0 && m.stack[0].kind == frameSkipZone
}

// emitting reports whether body content is being converted.
func (m *machine) emitting() bool {
	return !m.gated() && m.stack.has(frameContentRoot)
}

// sink is the builder that receives emitted Markdown: the innermost
// buffering frame, or the document output.
func (m *machine) sink() *strings.Builder {
	for i := len(m.stack) - 1; i >= 0; i-- {
		f := m.stack[i]
		if f.buf != nil && f.kind != frameTitle {
			return f.buf
		}
	}
	return &m.out
}

func (m *machine) emit(s string) {
	m.sink().WriteString(s)
}

func (m *machine) start(ev tagstream.Event) {
	if top := m.top(); top != nil && top.opaque() {
		m.startOpaque(top, ev)
		return
	}
	if m.isTitle(ev) {
		m.stack.push(&frame{kind: frameTitle, tag: ev.Name, buf: &strings.Builder{}})
		return
	}
	if m.gated() {
		if m.isMarker(ev) {
			m.openGate()
			return
		}
		if m.isContent(ev) {
			m.contentSeen = true
		}
		return
	}
	if !m.stack.has(frameContentRoot) {
		if m.isContent(ev) {
			m.stack.push(&frame{kind: frameContentRoot, tag: ev.Name})
		}
		return
	}

	m.startContent(ev)
}

// startOpaque handles a start tag inside a title, drop or code frame.
func (m *machine) startOpaque(f *frame, ev tagstream.Event) {
	if ev.Name == f.tag && !ev.SelfClosing {
		f.depth++
		return
	}
	if f.kind != frameCode {
		return
	}
	switch ev.Name {
	case "br":
		f.buf.WriteByte('\n')
	case "figcaption":
		m.stack.push(&frame{kind: frameDrop, tag: ev.Name})
	case "td", "div":
		if hasClassToken(ev, "gutter") {
			m.stack.push(&frame{kind: frameDrop, tag: ev.Name})
		}
	case "code":
		if f.lang == "" && !f.figure {
			f.lang = languageFromClass(ev)
		}
	}
}

func (m *machine) startContent(ev tagstream.Event) {
	switch name := ev.Name; name {
	case "figure":
		if !hasClassToken(ev, m.opts.HighlightClass) {
			return
		}
		m.stack.push(&frame{
			kind:   frameCode,
			tag:    name,
			figure: true,
			lang:   figureLanguage(ev, m.opts.HighlightClass),
			buf:    &strings.Builder{},
		})
	case "pre":
		m.stack.push(&frame{kind: frameCode, tag: name, buf: &strings.Builder{}})
	case "code":
		m.emit("`")
		m.stack.push(&frame{kind: frameInlineCode, tag: name})
	case "table":
		m.emit("\n")
		m.stack.push(&frame{kind: frameTable, tag: name})
	case "thead", "tbody", "tfoot":
		head := name == "thead"
		if head {
			if t := m.stack.nearest(frameTable); t != nil {
				t.hasHead = true
			}
		}
		m.stack.push(&frame{kind: frameTableSection, tag: name, header: head})
	case "tr":
		m.stack.push(&frame{kind: frameTableRow, tag: name, allHeader: true})
	case "th", "td":
		if row := m.stack.nearestOf(frameTableRow, frameTable); row == nil || row.kind != frameTableRow {
			return
		}
		m.stack.push(&frame{kind: frameTableCell, tag: name, header: name == "th", buf: &strings.Builder{}})
	case "blockquote":
		m.emit("\n> ")
		m.stack.push(&frame{kind: frameBlockquote, tag: name})
	case "ul", "ol":
		m.emit("\n")
		m.stack.push(&frame{kind: frameList, tag: name, ordered: name == "ol"})
	case "li":
		marker := ""
		if list := m.stack.nearest(frameList); list != nil {
			marker = m.stack.listIndent() + "- "
			if list.ordered {
				marker = m.stack.listIndent() + "1. "
			}
		}
		m.emit(marker)
		m.stack.push(&frame{kind: frameListItem, tag: name, marker: marker})
	case "strong", "b":
		m.emit("**")
		m.stack.push(&frame{kind: frameBold, tag: name})
	case "em", "i":
		m.emit("*")
		m.stack.push(&frame{kind: frameItalic, tag: name})
	case "a":
		href, _ := ev.Attr("href")
		m.stack.push(&frame{kind: frameLink, tag: name, href: href, buf: &strings.Builder{}})
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(name[1:])
		m.emit("\n" + strings.Repeat("#", level) + " ")
		m.stack.push(&frame{kind: frameHeading, tag: name, level: level})
	case "p":
		if !m.stack.has(frameListItem) && !m.stack.has(frameBlockquote) {
			m.emit("\n")
		}
		m.stack.push(&frame{kind: frameParagraph, tag: name})
	case "br":
		if m.stack.has(frameTableCell) {
			m.emit(" ")
			return
		}
		m.emit("\n")
	case "hr":
		if !m.stack.has(frameTableCell) {
			m.emit("\n---\n")
		}
	case "script", "style", "noscript", "template", "caption":
		m.stack.push(&frame{kind: frameDrop, tag: name})
	}
}

func (m *machine) end(name string) {
	i := m.stack.matchEnd(name)
	if i < 0 {
		return
	}
	if f := m.stack[i]; f.depth > 0 {
		f.depth--
		return
	}
	for len(m.stack) > i {
		m.close(m.stack.pop())
	}
}

// close emits the closing Markdown of a frame that was just popped.
func (m *machine) close(f *frame) {
	switch f.kind {
	case frameTitle:
		if t := strings.Join(strings.Fields(f.buf.String()), " "); t != "" {
			m.title = t
		}
	case frameCode:
		m.emit(m.fence(f))
	case frameInlineCode:
		m.emit("`")
	case frameTable:
		m.emit("\n")
	case frameTableRow:
		m.emit(m.row(f))
	case frameTableCell:
		if row := m.stack.nearest(frameTableRow); row != nil {
			row.cells = append(row.cells, normalize.Cell(f.buf.String()))
			if !f.header {
				row.allHeader = false
			}
		}
	case frameBlockquote, frameList, frameListItem, frameHeading, frameParagraph:
		m.emit("\n")
	case frameBold:
		m.emit("**")
	case frameItalic:
		m.emit("*")
	case frameLink:
		m.emit(link(f))
	}
}

// fence renders a buffered code block.
func (m *machine) fence(f *frame) string {
	body := strings.Trim(f.buf.String(), "\n")
	lang := f.lang
	if lang == "" && body != "" && m.opts.DetectLanguage != nil {
		lang = m.opts.DetectLanguage([]byte(body))
	}
	if body == "" {
		return "\n```" + lang + "\n```\n"
	}
	return "\n```" + lang + "\n" + body + "\n```\n"
}

// row renders a table row and, for header rows, the separator line.
func (m *machine) row(f *frame) string {
	if len(f.cells) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(f.cells, " | ") + " |\n")

	table := m.stack.nearest(frameTable)
	header := false
	if section := m.stack.nearestOf(frameTableSection, frameTable); section != nil && section.kind == frameTableSection {
		header = section.header
	}
	if !header && table != nil && !table.hasHead && table.rows == 0 && f.allHeader {
		header = true
	}
	if header {
		b.WriteString("|" + strings.Repeat("---|", len(f.cells)) + "\n")
	}
	if table != nil {
		table.rows++
	}
	return b.String()
}

func link(f *frame) string {
	text := f.buf.String()
	switch {
	case strings.TrimSpace(text) == "":
		return ""
	case f.href == "":
		return text
	default:
		return "[" + text + "](" + f.href + ")"
	}
}

func (m *machine) text(raw string) {
	if top := m.top(); top != nil && top.kind == frameTitle {
		top.buf.WriteString(normalize.Decode(raw))
		return
	}
	if !m.emitting() {
		return
	}
	if m.stack.has(frameDrop) {
		return
	}
	if code := m.stack.nearest(frameCode); code != nil {
		if normalize.IsLineNumber(raw) {
			return
		}
		code.buf.WriteString(normalize.Decode(raw))
		return
	}
	if m.top().kind == frameInlineCode {
		m.emit(strings.ReplaceAll(normalize.Decode(raw), "\n", " "))
		return
	}
	// Text between table rows or cells belongs to no cell.
	if t := m.stack.nearestOf(frameTableCell, frameTableRow, frameTableSection, frameTable); t != nil && t.kind != frameTableCell {
		return
	}

	text := normalize.Prose(raw)
	sink := m.sink()
	s := sink.String()
	afterSpace := s == "" || isSpace(s[len(s)-1])
	if text == "" {
		// Whitespace between inline elements survives as one space.
		if !afterSpace {
			sink.WriteByte(' ')
		}
		return
	}
	if afterSpace && text[0] == ' ' {
		text = text[1:]
	}
	sink.WriteString(text)
}

// finish closes every open frame at end of input.
func (m *machine) finish() {
	for len(m.stack) > 0 {
		m.close(m.stack.pop())
	}
}

func (m *machine) top() *frame {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// openGate clears the teaser gate. A content container seen while gated
// starts emission right away.
func (m *machine) openGate() {
	m.stack = m.stack[1:]
	if m.contentSeen && !m.stack.has(frameContentRoot) {
		m.stack = append(stack{{kind: frameContentRoot, tag: "div"}}, m.stack...)
	}
}

func (m *machine) isTitle(ev tagstream.Event) bool {
	if ev.Name != "h1" {
		return false
	}
	class, _ := ev.Attr("class")
	return strings.Contains(class, m.opts.TitleClass)
}

func (m *machine) isMarker(ev tagstream.Event) bool {
	id, ok := ev.Attr("id")
	return ok && id == m.opts.MarkerID
}

func (m *machine) isContent(ev tagstream.Event) bool {
	if ev.Name != "div" {
		return false
	}
	class, _ := ev.Attr("class")
	return strings.Contains(class, m.opts.ContentClass)
}

func hasClassToken(ev tagstream.Event, token string) bool {
	class, _ := ev.Attr("class")
	for _, c := range strings.Fields(class) {
		if c == token {
			return true
		}
	}
	return false
}

// figureLanguage returns the first class token other than the highlight
// marker.
func figureLanguage(ev tagstream.Event, marker string) string {
	class, _ := ev.Attr("class")
	for _, c := range strings.Fields(class) {
		if c != marker {
			return c
		}
	}
	return ""
}

// languageFromClass reads "language-x" or "lang-x" classes used by
// Markdown renderers on <code> inside a bare <pre>.
func languageFromClass(ev tagstream.Event) string {
	class, _ := ev.Attr("class")
	for _, c := range strings.Fields(class) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(c, prefix) && len(c) > len(prefix) {
				return c[len(prefix):]
			}
		}
	}
	return ""
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}
