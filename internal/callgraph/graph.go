package callgraph

import (
	"fmt"
	"strings"

	"codeaxe/internal/symbols"
)

// Graph maps each method name to the sibling names it calls, ordered by
// first call site. Methods that share a name share one node.
type Graph struct {
	edges map[string][]string
	names []string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// Set replaces the callees of name.
func (g *Graph) Set(name string, callees []string) {
	if _, ok := g.edges[name]; !ok {
		g.names = append(g.names, name)
	}
	g.edges[name] = callees
}

// Callees returns the names called by name, in first-call order.
func (g *Graph) Callees(name string) []string {
	return g.edges[name]
}

// Map returns a copy of the adjacency lists.
func (g *Graph) Map() map[string][]string {
	out := make(map[string][]string, len(g.edges))
	for k, v := range g.edges {
		out[k] = append([]string{}, v...)
	}
	return out
}

func (g *Graph) String() string {
	var b strings.Builder
	for _, name := range g.names {
		fmt.Fprintf(&b, "%s -> [%s]\n", name, strings.Join(g.edges[name], ", "))
	}
	return b.String()
}

// Builder builds call graphs with a pluggable detector.
type Builder struct {
	detector CallDetector
}

// NewBuilder creates a Builder using detector.
func NewBuilder(detector CallDetector) *Builder {
	return &Builder{detector: detector}
}

// Build returns a graph with one entry per method name. Edges only point at
// names in methods; a method never lists its own name. When several methods
// share a name the last one's callees are kept.
func (b *Builder) Build(methods []*symbols.Symbol, textOf func(*symbols.Symbol) string) *Graph {
	g := NewGraph()
	for _, m := range methods {
		var candidates []string
		for _, other := range methods {
			if other.Name != m.Name {
				candidates = append(candidates, other.Name)
			}
		}

		calls := b.detector.Detect(textOf(m), candidates)
		callees := make([]string, 0, len(calls))
		for _, c := range calls {
			callees = append(callees, c.Name)
		}
		g.Set(m.Name, callees)
	}
	return g
}
