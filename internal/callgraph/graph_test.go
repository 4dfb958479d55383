package callgraph

import (
	"reflect"
	"testing"

	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

type method struct {
	name string
	body string
}

func build(t *testing.T, methods []method) (*Graph, []*symbols.Symbol) {
	t.Helper()
	bodies := make(map[*symbols.Symbol]string)
	var syms []*symbols.Symbol
	for i, m := range methods {
		s := &symbols.Symbol{
			Name:  m.name,
			Kind:  symbols.KindMethod,
			Range: textdoc.Range{Start: textdoc.Position{Line: i * 10}, End: textdoc.Position{Line: i*10 + 5}},
		}
		bodies[s] = m.body
		syms = append(syms, s)
	}
	b := NewBuilder(defaultDetector())
	g := b.Build(syms, func(s *symbols.Symbol) string { return bodies[s] })
	return g, syms
}

func TestBuildSimpleChain(t *testing.T) {
	g, syms := build(t, []method{
		{"A", "A() { B(); }"},
		{"B", "B() {}"},
		{"C", "C() {}"},
	})

	want := map[string][]string{"A": {"B"}, "B": {}, "C": {}}
	if got := g.Map(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Map() = %v, want %v", got, want)
	}

	order := names(Order(syms[0], g, syms))
	if !equal(order, []string{"A", "B"}) {
		t.Errorf("Order(A) = %v, want [A B]", order)
	}
}

func TestBuildDiamond(t *testing.T) {
	g, syms := build(t, []method{
		{"A", "A() { B(); C(); }"},
		{"B", "B() { C(); }"},
		{"C", "C() {}"},
	})

	if got := g.Callees("A"); !equal(got, []string{"B", "C"}) {
		t.Errorf("Callees(A) = %v", got)
	}
	if got := g.Callees("B"); !equal(got, []string{"C"}) {
		t.Errorf("Callees(B) = %v", got)
	}

	order := names(Order(syms[0], g, syms))
	if !equal(order, []string{"A", "B", "C"}) {
		t.Errorf("Order(A) = %v, want [A B C]", order)
	}
}

func TestBuildIgnoresSelfRecursion(t *testing.T) {
	g, _ := build(t, []method{
		{"fact", "fact(n) { return n * fact(n - 1); }"},
	})
	if got := g.Callees("fact"); len(got) != 0 {
		t.Errorf("Callees(fact) = %v, want none", got)
	}
}

func TestBuildOrdersByCallSite(t *testing.T) {
	g, syms := build(t, []method{
		{"main", "main() { this.last(); first(); }"},
		{"first", "first() {}"},
		{"last", "last() {}"},
	})
	if got := g.Callees("main"); !equal(got, []string{"last", "first"}) {
		t.Errorf("Callees(main) = %v, want [last first]", got)
	}
	if got := names(Order(syms[0], g, syms)); !equal(got, []string{"main", "last", "first"}) {
		t.Errorf("Order(main) = %v", got)
	}
}

func TestBuildDuplicateNames(t *testing.T) {
	g, _ := build(t, []method{
		{"A", "A() { B(); }"},
		{"B", "B() {}"},
		{"B", "B(x) { C(); }"},
		{"C", "C() {}"},
	})
	if got := g.Map(); len(got) != 3 {
		t.Errorf("Map() = %v, want one node per name", got)
	}
	if got := g.Callees("A"); !equal(got, []string{"B"}) {
		t.Errorf("Callees(A) = %v, want [B] with duplicates collapsed", got)
	}
	if got := g.Callees("B"); !equal(got, []string{"C"}) {
		t.Errorf("Callees(B) = %v, want the last definition's callees", got)
	}
}

type fakeDetector struct {
	calls map[string][]Call
}

func (f *fakeDetector) Detect(body string, candidates []string) []Call {
	return f.calls[body]
}

func TestBuilderUsesDetector(t *testing.T) {
	a := &symbols.Symbol{Name: "a", Kind: symbols.KindFunction}
	b := &symbols.Symbol{Name: "b", Kind: symbols.KindFunction}
	det := &fakeDetector{calls: map[string][]Call{"body-a": {{Name: "b", Offset: 0}}}}

	g := NewBuilder(det).Build([]*symbols.Symbol{a, b}, func(s *symbols.Symbol) string {
		return "body-" + s.Name
	})
	if got := g.Callees("a"); !equal(got, []string{"b"}) {
		t.Errorf("Callees(a) = %v", got)
	}
	if _, ok := g.Map()["b"]; !ok {
		t.Error("every method should have an entry")
	}
}

func names(list []*symbols.Symbol) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Name
	}
	return out
}
