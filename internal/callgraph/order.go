package callgraph

import "codeaxe/internal/symbols"

// Order walks g depth-first from start and returns methods in pre-order:
// start first, then each callee as soon as it is reached. Names already
// visited are skipped, which also breaks cycles. Callee names are resolved
// to the first method in all with that name; unresolved names are ignored.
// Methods not reachable from start are not returned.
func Order(start *symbols.Symbol, g *Graph, all []*symbols.Symbol) []*symbols.Symbol {
	byName := make(map[string]*symbols.Symbol, len(all))
	for _, m := range all {
		if _, ok := byName[m.Name]; !ok {
			byName[m.Name] = m
		}
	}

	visited := make(map[string]bool)
	var out []*symbols.Symbol

	var visit func(m *symbols.Symbol)
	visit = func(m *symbols.Symbol) {
		if visited[m.Name] {
			return
		}
		visited[m.Name] = true
		out = append(out, m)

		for _, dep := range g.Callees(m.Name) {
			if next, ok := byName[dep]; ok {
				visit(next)
			}
		}
	}

	visit(start)
	return out
}
