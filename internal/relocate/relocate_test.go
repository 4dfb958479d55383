package relocate

import (
	"strings"
	"testing"

	"codeaxe/internal/edit"
	"codeaxe/internal/errors"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

func method(name string, startLine, startChar, endLine, endChar int) *symbols.Symbol {
	return &symbols.Symbol{
		Name: name,
		Kind: symbols.KindMethod,
		Range: textdoc.Range{
			Start: textdoc.Position{Line: startLine, Character: startChar},
			End:   textdoc.Position{Line: endLine, Character: endChar},
		},
	}
}

func apply(t *testing.T, doc *textdoc.Document, ordered []*symbols.Symbol) string {
	t.Helper()
	edits, err := Relocate(doc, ordered, ordered[0], Options{})
	if err != nil {
		t.Fatalf("Relocate() error = %v", err)
	}
	out, err := edit.Apply(doc.Text(), edits)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return out
}

func TestRelocateMovesCalleeBelowCaller(t *testing.T) {
	src := "class X {\n" +
		"  // helper for a\n" +
		"  // second line\n" +
		"  b() {\n" +
		"  }\n" +
		"\n" +
		"  a() {\n" +
		"    this.b();\n" +
		"  }\n" +
		"}\n"
	doc := textdoc.New("x.ts", src)
	a := method("a", 6, 2, 8, 3)
	b := method("b", 3, 2, 4, 3)

	got := apply(t, doc, []*symbols.Symbol{a, b})
	want := "class X {\n" +
		"  a() {\n" +
		"    this.b();\n" +
		"  }\n" +
		"\n" +
		"  // helper for a\n" +
		"  // second line\n" +
		"  b() {\n" +
		"  }\n" +
		"\n" +
		"}\n"
	if got != want {
		t.Errorf("Relocate() result:\n%s\nwant:\n%s", got, want)
	}
}

func TestRelocateKeepsCRLF(t *testing.T) {
	src := "class X {\r\n" +
		"  b() {\r\n" +
		"  }\r\n" +
		"\r\n" +
		"  a() {\r\n" +
		"    this.b();\r\n" +
		"  }\r\n" +
		"}\r\n"
	doc := textdoc.New("x.ts", src)
	a := method("a", 4, 2, 6, 3)
	b := method("b", 1, 2, 2, 3)

	got := apply(t, doc, []*symbols.Symbol{a, b})
	want := "class X {\r\n" +
		"  a() {\r\n" +
		"    this.b();\r\n" +
		"  }\r\n" +
		"\r\n" +
		"  b() {\r\n" +
		"  }\r\n" +
		"\r\n" +
		"}\r\n"
	if got != want {
		t.Errorf("Relocate() = %q, want %q", got, want)
	}
	if bare := strings.Count(got, "\n") - strings.Count(got, "\r\n"); bare != 0 {
		t.Errorf("result has %d bare LF line breaks", bare)
	}
}

func TestRelocateAlreadyOrderedIsIdempotent(t *testing.T) {
	src := "function A() {\n  B();\n}\n\nfunction B() {}\n\nfunction C() {}\n"
	doc := textdoc.New("a.js", src)
	a := method("A", 0, 0, 2, 1)
	b := method("B", 4, 0, 4, 15)

	if got := apply(t, doc, []*symbols.Symbol{a, b}); got != src {
		t.Errorf("Relocate() changed an ordered document:\n%q\nwant\n%q", got, src)
	}
}

func TestRelocateLeavesUnreachedMethods(t *testing.T) {
	src := "function A() {\n  B();\n}\n\nfunction C() {}\n\nfunction B() {}\n"
	doc := textdoc.New("a.js", src)
	a := method("A", 0, 0, 2, 1)
	b := method("B", 6, 0, 6, 15)

	got := apply(t, doc, []*symbols.Symbol{a, b})
	want := "function A() {\n  B();\n}\n\nfunction B() {}\n\nfunction C() {}\n\n"
	if got != want {
		t.Errorf("Relocate() = %q, want %q", got, want)
	}
}

func TestRelocateAnchorBelowCallees(t *testing.T) {
	src := "// c docs\nfunction C() {}\n\n\n\nfunction B() { C(); }\n// a docs\nfunction A() { B(); }\n"
	doc := textdoc.New("a.js", src)
	a := method("A", 7, 0, 7, 21)
	b := method("B", 5, 0, 5, 20)
	c := method("C", 1, 0, 1, 15)

	got := apply(t, doc, []*symbols.Symbol{a, b, c})
	want := "// a docs\nfunction A() { B(); }\n\nfunction B() { C(); }\n\n// c docs\nfunction C() {}\n\n"
	if got != want {
		t.Errorf("Relocate() = %q, want %q", got, want)
	}
}

func TestRelocatePreservesSpanTexts(t *testing.T) {
	src := "// one\nfunction one() {\n  three();\n}\n\n// two\n// more\nfunction two() {}\n\nfunction three() {\n  two();\n}\n"
	doc := textdoc.New("a.js", src)
	one := method("one", 1, 0, 3, 1)
	two := method("two", 7, 0, 7, 17)
	three := method("three", 9, 0, 11, 1)
	ordered := []*symbols.Symbol{one, three, two}

	before := Spans(doc, ordered, "//")
	got := apply(t, doc, ordered)

	for _, s := range before {
		if n := strings.Count(got, s.ExtendedText); n != 1 {
			t.Errorf("span %s appears %d times in result", s.Method.Name, n)
		}
	}
	if strings.Index(got, "function three") > strings.Index(got, "function two") {
		t.Errorf("three should precede two:\n%s", got)
	}
}

func TestRelocateSingleMethodIsNoop(t *testing.T) {
	doc := textdoc.New("a.js", "function A() {}\n")
	edits, err := Relocate(doc, []*symbols.Symbol{method("A", 0, 0, 0, 15)}, nil, Options{})
	if err != nil || edits != nil {
		t.Errorf("Relocate() = %v, %v; want no edits", edits, err)
	}
}

func TestRelocateRejectsSharedLines(t *testing.T) {
	doc := textdoc.New("a.js", "function A() { B(); } function B() {}\n")
	a := method("A", 0, 0, 0, 21)
	b := method("B", 0, 22, 0, 37)

	_, err := Relocate(doc, []*symbols.Symbol{a, b}, a, Options{})
	if !errors.Is(err, errors.OverlappingEdits) {
		t.Errorf("Relocate() error = %v, want OVERLAPPING_EDITS", err)
	}
}

func TestCommentStartLine(t *testing.T) {
	doc := textdoc.New("a.py", "# first\n  # second\nx = 1\n# lone\ndef f():\n    pass\n")
	tests := []struct {
		start  int
		marker string
		want   int
	}{
		{0, "#", 0},
		{2, "#", 0},
		{4, "#", 3},
		{5, "#", 5},
		{4, "//", 4},
	}
	for _, tt := range tests {
		if got := CommentStartLine(doc, tt.start, tt.marker); got != tt.want {
			t.Errorf("CommentStartLine(%d, %q) = %d, want %d", tt.start, tt.marker, got, tt.want)
		}
	}
}

func TestNewSpan(t *testing.T) {
	doc := textdoc.New("a.go", "// Doc.\nfunc f() {\n\treturn\n}\n")
	s := NewSpan(doc, method("f", 1, 0, 3, 1), "//")
	if s.Extended.Start.Line != 0 {
		t.Errorf("Extended.Start.Line = %d, want 0", s.Extended.Start.Line)
	}
	if s.ExtendedText != "// Doc.\nfunc f() {\n\treturn\n}" {
		t.Errorf("ExtendedText = %q", s.ExtendedText)
	}
	if s.Text != "func f() {\n\treturn\n}" {
		t.Errorf("Text = %q", s.Text)
	}
}
