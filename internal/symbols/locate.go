package symbols

import (
	"sort"

	"codeaxe/internal/textdoc"
)

// DefaultSentinel is the name some providers give constructors.
const DefaultSentinel = ".ctor"

// Options controls which function-like symbols qualify as methods.
type Options struct {
	// ExcludeSentinel drops symbols named Sentinel.
	ExcludeSentinel bool
	Sentinel        string
}

// DefaultOptions excludes ".ctor".
func DefaultOptions() Options {
	return Options{ExcludeSentinel: true, Sentinel: DefaultSentinel}
}

// Qualifies reports whether s is a function-like symbol that is not the
// excluded constructor sentinel.
func (o Options) Qualifies(s *Symbol) bool {
	if !s.Kind.IsFunctionLike() {
		return false
	}
	return !(o.ExcludeSentinel && s.Name == o.Sentinel)
}

// Locate returns the innermost qualifying symbol whose range contains pos,
// or nil. The returned pointer aliases the forest.
func Locate(forest []Symbol, pos textdoc.Position, opts Options) *Symbol {
	for i := range forest {
		s := &forest[i]
		if !s.Range.Contains(pos) {
			continue
		}
		if opts.Qualifies(s) {
			if inner := Locate(s.Children, pos, opts); inner != nil {
				return inner
			}
			return s
		}
		if inner := Locate(s.Children, pos, opts); inner != nil {
			return inner
		}
	}
	return nil
}

// Parent returns the symbol whose Children holds target, or nil when target
// is a root of the forest or not part of it.
func Parent(forest []Symbol, target *Symbol) *Symbol {
	var parent *Symbol
	Walk(forest, func(s *Symbol, _ int) bool {
		if parent != nil {
			return false
		}
		for i := range s.Children {
			if &s.Children[i] == target {
				parent = s
				return false
			}
		}
		return true
	})
	return parent
}

// Siblings returns the qualifying symbols that share target's parent,
// target included, in document order.
func Siblings(forest []Symbol, target *Symbol, opts Options) []*Symbol {
	list := forest
	if p := Parent(forest, target); p != nil {
		list = p.Children
	}
	var out []*Symbol
	for i := range list {
		if opts.Qualifies(&list[i]) {
			out = append(out, &list[i])
		}
	}
	sortByStart(out)
	return out
}

// Methods flattens every qualifying symbol of the forest. Each level is
// visited in start-line order and a symbol precedes its nested functions.
func Methods(forest []Symbol, opts Options) []*Symbol {
	var out []*Symbol
	var traverse func([]Symbol)
	traverse = func(list []Symbol) {
		level := make([]*Symbol, len(list))
		for i := range list {
			level[i] = &list[i]
		}
		sortByStart(level)
		for _, s := range level {
			if opts.Qualifies(s) {
				out = append(out, s)
			}
			traverse(s.Children)
		}
	}
	traverse(forest)
	return out
}

func sortByStart(list []*Symbol) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Range.Start.Line < list[j].Range.Start.Line
	})
}
