// Package textdoc holds an immutable snapshot of a source document together
// with a line index, so that positions, offsets and line text can be
// converted without rescanning the buffer.
package textdoc

import (
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Document is a read-only text snapshot.
type Document struct {
	// Path is the file path the snapshot was read from (may be empty).
	Path string

	text       string
	lineStarts []int
}

// New creates a document snapshot for text.
func New(path, text string) *Document {
	d := &Document{Path: path, text: text}
	d.lineStarts = append(d.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	return d
}

// Text returns the full document text.
func (d *Document) Text() string {
	return d.text
}

// Len returns the document length in bytes.
func (d *Document) Len() int {
	return len(d.text)
}

// Ext returns the lower-cased file extension of the document path.
func (d *Document) Ext() string {
	return strings.ToLower(filepath.Ext(d.Path))
}

// EOL returns the document's line break: "\r\n" when the first line ends
// with one, otherwise "\n".
func (d *Document) EOL() string {
	if len(d.lineStarts) > 1 {
		if end := d.lineStarts[1] - 1; end > 0 && d.text[end-1] == '\r' {
			return "\r\n"
		}
	}
	return "\n"
}

// LineCount returns the number of lines. A trailing line break starts a new
// (empty) last line, so "a\n" has two lines.
func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// LineText returns the text of line without its line break.
func (d *Document) LineText(line int) string {
	start, end := d.lineBounds(line)
	return d.text[start:end]
}

// LineRangeIncludingBreak returns the byte offsets of line including its
// trailing line break, if any.
func (d *Document) LineRangeIncludingBreak(line int) (int, int) {
	line = d.clampLine(line)
	start := d.lineStarts[line]
	if line+1 < len(d.lineStarts) {
		return start, d.lineStarts[line+1]
	}
	return start, len(d.text)
}

// LineEnd returns the position just after the last character of line,
// excluding the line break.
func (d *Document) LineEnd(line int) Position {
	line = d.clampLine(line)
	start, end := d.lineBounds(line)
	return Position{Line: line, Character: end - start}
}

// OffsetAt converts a position to a byte offset, clamping out-of-range
// lines and columns to the nearest valid offset.
func (d *Document) OffsetAt(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	start, end := d.lineBounds(p.Line)
	if p.Character < 0 {
		return start
	}
	if start+p.Character > end {
		return end
	}
	return start + p.Character
}

// PositionAt converts a byte offset to a position.
func (d *Document) PositionAt(offset int) Position {
	if offset <= 0 {
		return Position{}
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	// last line start <= offset
	lo, hi := 0, len(d.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Position{Line: lo, Character: offset - d.lineStarts[lo]}
}

// GetText returns the text covered by r.
func (d *Document) GetText(r Range) string {
	start, end := d.OffsetAt(r.Start), d.OffsetAt(r.End)
	if end < start {
		return ""
	}
	return d.text[start:end]
}

// FullRange returns the range covering the whole document.
func (d *Document) FullRange() Range {
	return Range{End: d.PositionAt(len(d.text))}
}

// FromUTF16 converts a position whose character is counted in UTF-16 code
// units (as language servers report them) into a byte-column position.
func (d *Document) FromUTF16(p Position) Position {
	if p.Line < 0 || p.Line >= len(d.lineStarts) {
		return p
	}
	line := d.LineText(p.Line)
	units, col := 0, 0
	for col < len(line) && units < p.Character {
		r, size := utf8.DecodeRuneInString(line[col:])
		units += utf16.RuneLen(r)
		if units > p.Character {
			break
		}
		col += size
	}
	return Position{Line: p.Line, Character: col}
}

func (d *Document) clampLine(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lineStarts) {
		return len(d.lineStarts) - 1
	}
	return line
}

// lineBounds returns the offsets of line's content excluding "\n" or "\r\n".
func (d *Document) lineBounds(line int) (int, int) {
	line = d.clampLine(line)
	start := d.lineStarts[line]
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
		if end > start && d.text[end-1] == '\r' {
			end--
		}
	}
	return start, end
}
