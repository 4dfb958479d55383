// Package symbols models the hierarchical symbol tree reported by a symbol
// provider and locates the function-like symbol enclosing a position.
package symbols

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"codeaxe/internal/textdoc"
)

// Kind classifies a symbol. Only the function-like kinds matter to the
// locator and the call graph; everything else is KindOther.
type Kind int

const (
	KindOther Kind = iota
	KindFunction
	KindMethod
	KindConstructor
)

// LSP SymbolKind values for the function-like kinds.
const (
	lspMethod      = 6
	lspConstructor = 9
	lspFunction    = 12
)

// FromLSPKind maps an LSP SymbolKind number to a Kind.
func FromLSPKind(n int) Kind {
	switch n {
	case lspFunction:
		return KindFunction
	case lspMethod:
		return KindMethod
	case lspConstructor:
		return KindConstructor
	}
	return KindOther
}

// IsFunctionLike reports whether k is Function, Method or Constructor.
func (k Kind) IsFunctionLike() bool {
	return k == KindFunction || k == KindMethod || k == KindConstructor
}

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	}
	return "other"
}

// ParseKind parses a kind name or an LSP SymbolKind number. Unknown names
// such as "class" or "field" parse as KindOther.
func ParseKind(s string) Kind {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		return FromLSPKind(n)
	}
	switch s {
	case "function", "func":
		return KindFunction
	case "method":
		return KindMethod
	case "constructor", "ctor":
		return KindConstructor
	}
	return KindOther
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}

func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: symbol kind must be a scalar", value.Line)
	}
	*k = ParseKind(value.Value)
	return nil
}

// Symbol is one node of a document's symbol tree. A symbol's range contains
// the ranges of all of its children.
type Symbol struct {
	Name     string        `json:"name" yaml:"name"`
	Kind     Kind          `json:"kind" yaml:"kind"`
	Range    textdoc.Range `json:"range" yaml:"range"`
	Children []Symbol      `json:"children,omitempty" yaml:"children,omitempty"`
}

// Provider produces a fresh symbol forest for a document.
type Provider interface {
	DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]Symbol, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, doc *textdoc.Document) ([]Symbol, error)

func (f ProviderFunc) DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]Symbol, error) {
	return f(ctx, doc)
}

// Walk calls fn for every symbol in the forest in pre-order. Returning false
// from fn skips the symbol's children.
func Walk(forest []Symbol, fn func(s *Symbol, depth int) bool) {
	var walk func([]Symbol, int)
	walk = func(list []Symbol, depth int) {
		for i := range list {
			if fn(&list[i], depth) {
				walk(list[i].Children, depth+1)
			}
		}
	}
	walk(forest, 0)
}

// Count returns the number of symbols in the forest.
func Count(forest []Symbol) int {
	n := 0
	Walk(forest, func(*Symbol, int) bool {
		n++
		return true
	})
	return n
}
