// Package tagstream turns raw HTML into a lazy sequence of tag events.
//
// The stream is a thin layer over the golang.org/x/net/html tokenizer: it
// lower-cases tag names, keeps attributes in document order, marks void
// elements as self-closing and reports text verbatim so callers decide how
// to decode and reflow it. Malformed markup never fails the stream; the
// tokenizer recovers by treating the offending bytes as text.
package tagstream

import (
	"io"

	"golang.org/x/net/html"
)

// Kind is the type of an Event.
type Kind int

const (
	// StartTag is an opening tag, possibly self-closing.
	StartTag Kind = iota
	// EndTag is a closing tag.
	EndTag
	// Text is character data between tags.
	Text
	// EOF marks the end of input. It is repeated on every later call.
	EOF
)

func (k Kind) String() string {
	switch k {
	case StartTag:
		return "start"
	case EndTag:
		return "end"
	case Text:
		return "text"
	case EOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Attr is a single attribute of a start tag.
type Attr struct {
	Name  string
	Value string
}

// Event is one item of the stream.
type Event struct {
	Kind Kind
	// Name is the lower-cased tag name for StartTag and EndTag events.
	Name string
	// Attrs holds the start tag's attributes in document order.
	Attrs []Attr
	// SelfClosing is set on StartTag events that have no matching end tag.
	SelfClosing bool
	// Raw is the undecoded character data of a Text event.
	Raw string
}

// Attr returns the value of the first attribute with the given name.
func (e Event) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// voidElements never have content or an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// IsVoid reports whether the element never has an end tag.
func IsVoid(name string) bool {
	return voidElements[name]
}

// Stream yields events from an HTML document. It is not safe for
// concurrent use and cannot be restarted.
type Stream struct {
	z    *html.Tokenizer
	done bool
}

// New creates a Stream reading from r.
func New(r io.Reader) *Stream {
	return &Stream{z: html.NewTokenizer(r)}
}

// Next returns the next event. After the input is exhausted, or the
// tokenizer reports a read error, Next returns EOF events.
func (s *Stream) Next() Event {
	if s.done {
		return Event{Kind: EOF}
	}
	for {
		switch s.z.Next() {
		case html.ErrorToken:
			s.done = true
			return Event{Kind: EOF}
		case html.TextToken:
			return Event{Kind: Text, Raw: string(s.z.Raw())}
		case html.StartTagToken:
			ev := s.tag(StartTag)
			ev.SelfClosing = IsVoid(ev.Name)
			return ev
		case html.SelfClosingTagToken:
			ev := s.tag(StartTag)
			ev.SelfClosing = true
			return ev
		case html.EndTagToken:
			return s.tag(EndTag)
		default:
			// Comments and doctypes carry nothing the consumers act on.
			continue
		}
	}
}

func (s *Stream) tag(kind Kind) Event {
	name, hasAttr := s.z.TagName()
	ev := Event{Kind: kind, Name: string(name)}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = s.z.TagAttr()
		if kind == StartTag {
			ev.Attrs = append(ev.Attrs, Attr{Name: string(key), Value: string(val)})
		}
	}
	return ev
}
