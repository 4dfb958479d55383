//go:build !cgo

package symbols

import (
	"context"

	"codeaxe/internal/errors"
	"codeaxe/internal/syntax"
	"codeaxe/internal/textdoc"
)

// TreeSitterProvider builds symbol trees with tree-sitter.
// This stub is used when CGO is not available and always fails.
type TreeSitterProvider struct {
	SentinelConstructors bool
	Sentinel             string
}

var _ Provider = (*TreeSitterProvider)(nil)

// NewTreeSitterProvider creates a tree-sitter symbol provider.
func NewTreeSitterProvider() *TreeSitterProvider {
	return &TreeSitterProvider{Sentinel: DefaultSentinel}
}

// Supports always reports false without CGO.
func (p *TreeSitterProvider) Supports(doc *textdoc.Document) bool {
	return false
}

func (p *TreeSitterProvider) DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]Symbol, error) {
	return nil, errors.New(errors.UnsupportedLanguage, "tree-sitter symbols unavailable", syntax.ErrNoCGO)
}
