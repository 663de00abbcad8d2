package convert

import "strings"

// frameKind is the type of a structural context on the machine's stack.
type frameKind int

const (
	frameSkipZone frameKind = iota
	frameContentRoot
	frameTitle
	frameHeading
	frameParagraph
	frameList
	frameListItem
	frameBlockquote
	frameTable
	frameTableSection
	frameTableRow
	frameTableCell
	frameCode
	frameInlineCode
	frameLink
	frameBold
	frameItalic
	frameDrop
)

// frame is one open context. Only the fields relevant to its kind are set.
type frame struct {
	kind frameKind
	// tag is the element name whose end tag closes the frame.
	tag string
	// depth counts nested elements with the same tag inside opaque frames
	// (code and drop), so their inner end tags do not close them early.
	depth int

	level   int    // heading
	ordered bool   // list
	marker  string // list item: marker including indentation
	header  bool   // table section (thead) or cell (th)

	// table
	hasHead bool
	rows    int

	// table row
	cells     []string
	allHeader bool

	// code block
	figure bool
	lang   string

	// link
	href string

	// buf collects the text of buffering frames: title, link, cell and code.
	buf *strings.Builder
}

// opaque frames swallow every tag except their own end tag.
func (f *frame) opaque() bool {
	switch f.kind {
	case frameCode, frameDrop, frameTitle:
		return true
	}
	return false
}

// barrier frames are never closed by an end tag.
func (f *frame) barrier() bool {
	return f.kind == frameSkipZone || f.kind == frameContentRoot
}

// stack is the machine's context stack, bottom first.
type stack []*frame

func (s *stack) push(f *frame) {
	*s = append(*s, f)
}

func (s *stack) pop() *frame {
	old := *s
	f := old[len(old)-1]
	*s = old[:len(old)-1]
	return f
}

// nearest returns the topmost frame of the given kind, or nil.
func (s stack) nearest(kind frameKind) *frame {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].kind == kind {
			return s[i]
		}
	}
	return nil
}

func (s stack) has(kind frameKind) bool {
	return s.nearest(kind) != nil
}

// nearestOf returns the topmost frame of any of the given kinds, or nil.
func (s stack) nearestOf(kinds ...frameKind) *frame {
	for i := len(s) - 1; i >= 0; i-- {
		for _, k := range kinds {
			if s[i].kind == k {
				return s[i]
			}
		}
	}
	return nil
}

// matchEnd returns the index of the frame closed by an end tag, or -1.
// The search stops at barrier frames and at opaque frames that the tag
// does not close.
func (s stack) matchEnd(name string) int {
	for i := len(s) - 1; i >= 0; i-- {
		f := s[i]
		if f.barrier() {
			return -1
		}
		if f.tag == name {
			return i
		}
		if f.opaque() {
			return -1
		}
	}
	return -1
}

// listIndent is the indentation for an item of the innermost list: the
// marker widths of every enclosing list item.
func (s stack) listIndent() string {
	var b strings.Builder
	for _, f := range s {
		if f.kind == frameListItem {
			b.WriteString(strings.Repeat(" ", len(strings.TrimLeft(f.marker, " "))))
		}
	}
	return b.String()
}
