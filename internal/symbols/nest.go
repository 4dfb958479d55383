package symbols

import "sort"

// Nest builds a forest from a flat list: each symbol becomes a child of the
// smallest preceding symbol whose range contains it. Ties on start order the
// wider range first.
func Nest(list []Symbol) []Symbol {
	flat := make([]Symbol, len(list))
	copy(flat, list)
	sort.SliceStable(flat, func(i, j int) bool {
		if c := flat[i].Range.Start.Compare(flat[j].Range.Start); c != 0 {
			return c < 0
		}
		return flat[i].Range.End.Compare(flat[j].Range.End) > 0
	})

	type node struct {
		sym      Symbol
		children []*node
	}
	var roots, stack []*node
	for _, s := range flat {
		n := &node{sym: s}
		for len(stack) > 0 && !stack[len(stack)-1].sym.Range.ContainsRange(s.Range) {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			top := stack[len(stack)-1]
			top.children = append(top.children, n)
		}
		stack = append(stack, n)
	}

	var build func([]*node) []Symbol
	build = func(ns []*node) []Symbol {
		if len(ns) == 0 {
			return nil
		}
		out := make([]Symbol, len(ns))
		for i, n := range ns {
			out[i] = n.sym
			out[i].Children = build(n.children)
		}
		return out
	}
	return build(roots)
}
