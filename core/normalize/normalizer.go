// Package normalize implements text normalization for the converter.
// It decodes character references, reflows prose whitespace, and runs the
// final cleanup pass over an assembled Markdown document.
package normalize

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Decode resolves character references and normalizes line endings.
// It is the only transformation applied to text inside code blocks.
func Decode(raw string) string {
	if strings.IndexByte(raw, '\r') >= 0 {
		raw = strings.ReplaceAll(raw, "\r\n", "\n")
		raw = strings.ReplaceAll(raw, "\r", "\n")
	}
	return html.UnescapeString(raw)
}

// Prose decodes raw text and collapses every whitespace run, newlines
// included, to a single space. Leading and trailing spaces are kept so
// adjacent inline fragments stay separated. Whitespace-only input yields "".
func Prose(raw string) string {
	text := Decode(raw)
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		if isSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return norm.NFC.String(b.String())
}

// Cell collapses whitespace in table cell text, trims it and escapes the
// pipe character.
func Cell(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.ReplaceAll(text, "|", `\|`)
}

// IsLineNumber reports whether text is a line-number gutter artifact:
// after trimming it is non-empty and made only of ASCII digits.
func IsLineNumber(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] < '0' || t[i] > '9' {
			return false
		}
	}
	return true
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

var (
	extraNewlines    = regexp.MustCompile(`\n{3,}`)
	spaceBeforePunct = regexp.MustCompile(` +([.,;:!?])`)
	inlineCodeSpan   = regexp.MustCompile("`[^`\n]+`")
	// fenceLine matches a whole fence delimiter line with an optional
	// language tag. Tags never hold the punctuation fixPunctuation touches,
	// so the cleanup cannot turn a prose line into a fence line.
	fenceLine = regexp.MustCompile("^```[^`\\s.,;:!?]*$")
)

// Cleanup is the final pass over an assembled Markdown document:
//   - runs of three or more newlines become exactly two,
//   - spaces directly before . , ; : ! ? are removed, except inside fenced
//     code blocks and inline code spans,
//   - leading and trailing whitespace is trimmed.
//
// Cleanup is idempotent.
func Cleanup(md string) string {
	md = strings.TrimSpace(extraNewlines.ReplaceAllString(md, "\n\n"))

	lines := strings.Split(md, "\n")
	inFence := false
	for i, line := range lines {
		if fenceLine.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		lines[i] = fixPunctuation(line)
	}
	return strings.Join(lines, "\n")
}

// fixPunctuation removes spaces before punctuation outside inline code.
func fixPunctuation(line string) string {
	if !strings.Contains(line, " ") {
		return line
	}
	spans := inlineCodeSpan.FindAllStringIndex(line, -1)
	if len(spans) == 0 {
		return spaceBeforePunct.ReplaceAllString(line, "$1")
	}
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(spaceBeforePunct.ReplaceAllString(line[last:sp[0]], "$1"))
		b.WriteString(line[sp[0]:sp[1]])
		last = sp[1]
	}
	b.WriteString(spaceBeforePunct.ReplaceAllString(line[last:], "$1"))
	return b.String()
}
