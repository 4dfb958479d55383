// Package relocate rewrites a document so that a set of methods appears in
// a given order, carrying each method's leading line comments along.
package relocate

import (
	"fmt"
	"sort"
	"strings"

	"codeaxe/internal/edit"
	"codeaxe/internal/errors"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

// DefaultLineComment is used when Options.LineComment is empty.
const DefaultLineComment = "//"

// Options configures relocation.
type Options struct {
	// LineComment is the marker of comment lines absorbed above a method.
	LineComment string
}

// MethodSpan is a method plus the contiguous comment lines directly above it.
type MethodSpan struct {
	Method *symbols.Symbol
	// Range is the method's own range.
	Range textdoc.Range
	// Extended starts at column 0 of the first absorbed comment line (or of
	// the method's first line) and ends at the end of the method's last line.
	Extended     textdoc.Range
	Text         string
	ExtendedText string
}

// CommentStartLine walks upward from startLine over lines whose trimmed
// text starts with marker and returns the topmost such line, or startLine
// when the line above is not a comment.
func CommentStartLine(doc *textdoc.Document, startLine int, marker string) int {
	if marker == "" {
		marker = DefaultLineComment
	}
	line := startLine
	for line-1 >= 0 {
		if !strings.HasPrefix(strings.TrimSpace(doc.LineText(line-1)), marker) {
			break
		}
		line--
	}
	return line
}

// NewSpan computes the span of m in doc.
func NewSpan(doc *textdoc.Document, m *symbols.Symbol, marker string) MethodSpan {
	start := CommentStartLine(doc, m.Range.Start.Line, marker)
	ext := textdoc.Range{
		Start: textdoc.Position{Line: start},
		End:   doc.LineEnd(m.Range.End.Line),
	}
	return MethodSpan{
		Method:       m,
		Range:        m.Range,
		Extended:     ext,
		Text:         doc.GetText(m.Range),
		ExtendedText: doc.GetText(ext),
	}
}

// Spans returns the spans of methods in document order.
func Spans(doc *textdoc.Document, methods []*symbols.Symbol, marker string) []MethodSpan {
	inDocOrder := append([]*symbols.Symbol(nil), methods...)
	sort.SliceStable(inDocOrder, func(i, j int) bool {
		return inDocOrder[i].Range.Start.Line < inDocOrder[j].Range.Start.Line
	})
	spans := make([]MethodSpan, len(inDocOrder))
	for i, m := range inDocOrder {
		spans[i] = NewSpan(doc, m, marker)
	}
	return spans
}

// Relocate returns the edits that move ordered (anchor first) into a single
// block at the anchor's position, in the given order. Every span is deleted
// together with its line break and any blank lines after it, then the
// spans are inserted at the start of the anchor's span separated by one
// blank line and followed by one, using the document's line break.
// Fewer than two methods yield no edits.
func Relocate(doc *textdoc.Document, ordered []*symbols.Symbol, anchor *symbols.Symbol, opts Options) ([]edit.Edit, error) {
	if len(ordered) <= 1 {
		return nil, nil
	}
	if anchor == nil {
		anchor = ordered[0]
	}
	marker := opts.LineComment
	if marker == "" {
		marker = DefaultLineComment
	}

	rank := make(map[string]int, len(ordered))
	for i, m := range ordered {
		if _, ok := rank[m.Name]; !ok {
			rank[m.Name] = i
		}
	}

	spans := Spans(doc, ordered, marker)
	for i := 1; i < len(spans); i++ {
		if spans[i].Extended.Start.Line <= spans[i-1].Extended.End.Line {
			return nil, errors.New(errors.OverlappingEdits,
				fmt.Sprintf("methods %s and %s share lines", spans[i-1].Method.Name, spans[i].Method.Name), nil)
		}
	}

	target := append([]MethodSpan(nil), spans...)
	sort.SliceStable(target, func(i, j int) bool {
		return rank[target[i].Method.Name] < rank[target[j].Method.Name]
	})

	var edits []edit.Edit
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		start := doc.OffsetAt(textdoc.Position{Line: s.Extended.Start.Line})
		_, end := doc.LineRangeIncludingBreak(s.Extended.End.Line)
		edits = append(edits, edit.Delete(start, end))

		for next := s.Extended.End.Line + 1; next < doc.LineCount(); next++ {
			if strings.TrimSpace(doc.LineText(next)) != "" {
				break
			}
			ls, le := doc.LineRangeIncludingBreak(next)
			if ls == le {
				break
			}
			edits = append(edits, edit.Delete(ls, le))
		}
	}

	texts := make([]string, len(target))
	for i, s := range target {
		texts[i] = s.ExtendedText
	}
	insertLine := CommentStartLine(doc, anchor.Range.Start.Line, marker)
	at := doc.OffsetAt(textdoc.Position{Line: insertLine})
	sep := doc.EOL() + doc.EOL()
	edits = append(edits, edit.Insert(at, strings.Join(texts, sep)+sep))

	return edits, nil
}
