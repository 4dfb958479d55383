// Package edit applies sets of byte-offset text edits to a buffer as a
// single all-or-nothing operation.
package edit

import (
	"fmt"
	"sort"
	"strings"

	"codeaxe/internal/errors"
)

// Edit replaces the bytes [Start, End) of the original text with Text.
// An insertion has Start == End; a deletion has an empty Text.
type Edit struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text,omitempty"`
}

// Delete returns an edit removing [start, end).
func Delete(start, end int) Edit {
	return Edit{Start: start, End: end}
}

// Insert returns an edit inserting text at offset at.
func Insert(at int, text string) Edit {
	return Edit{Start: at, End: at, Text: text}
}

// IsInsert reports whether e removes nothing.
func (e Edit) IsInsert() bool {
	return e.Start == e.End
}

func (e Edit) String() string {
	if e.IsInsert() {
		return fmt.Sprintf("insert@%d(%d bytes)", e.Start, len(e.Text))
	}
	return fmt.Sprintf("replace[%d,%d)(%d bytes)", e.Start, e.End, len(e.Text))
}

// Apply applies edits to text. Edits are interpreted against the original
// text, so their order in the slice does not matter, except that several
// insertions at the same offset keep their relative order. Insertions at an
// offset come before a deletion starting at that offset. Out-of-range or
// overlapping edits fail the whole set and text is returned unchanged.
func Apply(text string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}

	sorted := append([]Edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(text) {
			return text, errors.New(errors.OverlappingEdits,
				fmt.Sprintf("edit %v out of range for %d bytes", e, len(text)), nil)
		}
		if i > 0 && e.Start < sorted[i-1].End {
			return text, errors.New(errors.OverlappingEdits,
				fmt.Sprintf("edit %v overlaps %v", e, sorted[i-1]), nil)
		}
	}

	var sb strings.Builder
	sb.Grow(len(text))
	offset := 0
	for _, e := range sorted {
		sb.WriteString(text[offset:e.Start])
		sb.WriteString(e.Text)
		offset = e.End
	}
	sb.WriteString(text[offset:])
	return sb.String(), nil
}
