package symbols

import (
	"testing"

	"codeaxe/internal/textdoc"
)

func rng(startLine, startChar, endLine, endChar int) textdoc.Range {
	return textdoc.Range{
		Start: textdoc.Position{Line: startLine, Character: startChar},
		End:   textdoc.Position{Line: endLine, Character: endChar},
	}
}

func pos(line, char int) textdoc.Position {
	return textdoc.Position{Line: line, Character: char}
}

// class Widget (0-20)
//   .ctor        (1-3)
//   render       (5-12)
//     helper     (7-9)   nested function
//   update       (14-18)
// top            (22-25)
func sampleForest() []Symbol {
	return []Symbol{
		{
			Name:  "Widget",
			Kind:  KindOther,
			Range: rng(0, 0, 20, 1),
			Children: []Symbol{
				{Name: ".ctor", Kind: KindConstructor, Range: rng(1, 4, 3, 5)},
				{
					Name:  "render",
					Kind:  KindMethod,
					Range: rng(5, 4, 12, 5),
					Children: []Symbol{
						{Name: "helper", Kind: KindFunction, Range: rng(7, 8, 9, 9)},
						{Name: "count", Kind: KindOther, Range: rng(10, 8, 10, 20)},
					},
				},
				{Name: "update", Kind: KindMethod, Range: rng(14, 4, 18, 5)},
			},
		},
		{Name: "top", Kind: KindFunction, Range: rng(22, 0, 25, 1)},
	}
}

func TestLocate(t *testing.T) {
	forest := sampleForest()
	tests := []struct {
		name string
		pos  textdoc.Position
		want string
	}{
		{"inside method body", pos(6, 2), "render"},
		{"inside method outside nested function", pos(11, 0), "render"},
		{"nested function wins", pos(8, 10), "helper"},
		{"non-function child falls back to function", pos(10, 12), "render"},
		{"second method", pos(15, 0), "update"},
		{"top-level function", pos(23, 3), "top"},
		{"class body between methods", pos(13, 0), ""},
		{"outside every symbol", pos(21, 0), ""},
		{"past end of document", pos(100, 0), ""},
		{"sentinel constructor excluded", pos(2, 0), ""},
		{"end position is exclusive", pos(25, 1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locate(forest, tt.pos, DefaultOptions())
			name := ""
			if got != nil {
				name = got.Name
			}
			if name != tt.want {
				t.Errorf("Locate(%v) = %q, want %q", tt.pos, name, tt.want)
			}
		})
	}
}

func TestLocateSentinelIncludedWhenNotExcluded(t *testing.T) {
	opts := Options{ExcludeSentinel: false, Sentinel: DefaultSentinel}
	got := Locate(sampleForest(), pos(2, 0), opts)
	if got == nil || got.Name != ".ctor" {
		t.Fatalf("Locate() = %v, want .ctor", got)
	}
}

func TestLocateEmptyForest(t *testing.T) {
	if got := Locate(nil, pos(0, 0), DefaultOptions()); got != nil {
		t.Errorf("Locate(nil) = %v, want nil", got)
	}
}

func TestLocateAliasesForest(t *testing.T) {
	forest := sampleForest()
	got := Locate(forest, pos(15, 0), DefaultOptions())
	if got != &forest[0].Children[2] {
		t.Error("Locate() should return a pointer into the forest")
	}
}

func TestSiblings(t *testing.T) {
	forest := sampleForest()

	update := Locate(forest, pos(15, 0), DefaultOptions())
	got := names(Siblings(forest, update, DefaultOptions()))
	if want := []string{"render", "update"}; !equal(got, want) {
		t.Errorf("Siblings(update) = %v, want %v", got, want)
	}

	top := Locate(forest, pos(23, 0), DefaultOptions())
	got = names(Siblings(forest, top, DefaultOptions()))
	if want := []string{"top"}; !equal(got, want) {
		t.Errorf("Siblings(top) = %v, want %v", got, want)
	}

	helper := Locate(forest, pos(8, 10), DefaultOptions())
	got = names(Siblings(forest, helper, DefaultOptions()))
	if want := []string{"helper"}; !equal(got, want) {
		t.Errorf("Siblings(helper) = %v, want %v", got, want)
	}
}

func TestMethodsFlattensInLineOrder(t *testing.T) {
	forest := []Symbol{
		{Name: "b", Kind: KindFunction, Range: rng(10, 0, 12, 1)},
		{Name: "a", Kind: KindFunction, Range: rng(0, 0, 8, 1), Children: []Symbol{
			{Name: "inner", Kind: KindFunction, Range: rng(2, 0, 4, 1)},
		}},
		{Name: ".ctor", Kind: KindConstructor, Range: rng(14, 0, 15, 1)},
	}
	got := names(Methods(forest, DefaultOptions()))
	if want := []string{"a", "inner", "b"}; !equal(got, want) {
		t.Errorf("Methods() = %v, want %v", got, want)
	}
	// the forest itself is not reordered
	if forest[0].Name != "b" {
		t.Error("Methods() must not reorder the forest")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"function", KindFunction},
		{"Method", KindMethod},
		{"constructor", KindConstructor},
		{"class", KindOther},
		{"12", KindFunction},
		{"6", KindMethod},
		{"9", KindConstructor},
		{"5", KindOther},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func names(list []*Symbol) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNest(t *testing.T) {
	r := func(sl, el int) textdoc.Range {
		return textdoc.Range{Start: textdoc.Position{Line: sl}, End: textdoc.Position{Line: el}}
	}
	flat := []Symbol{
		{Name: "inner", Kind: KindFunction, Range: r(2, 3)},
		{Name: "after", Kind: KindFunction, Range: r(8, 9)},
		{Name: "outer", Kind: KindMethod, Range: r(1, 5)},
		{Name: "Class", Kind: KindOther, Range: r(0, 6)},
	}
	forest := Nest(flat)
	if len(forest) != 2 || forest[0].Name != "Class" || forest[1].Name != "after" {
		t.Fatalf("roots = %+v", forest)
	}
	outer := forest[0].Children
	if len(outer) != 1 || outer[0].Name != "outer" || len(outer[0].Children) != 1 || outer[0].Children[0].Name != "inner" {
		t.Errorf("nesting = %+v", outer)
	}
	if flat[0].Name != "inner" {
		t.Error("Nest must not reorder its input")
	}
}
