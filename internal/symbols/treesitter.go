//go:build cgo

package symbols

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"codeaxe/internal/errors"
	"codeaxe/internal/syntax"
	"codeaxe/internal/textdoc"
)

// TreeSitterProvider builds symbol trees by parsing the document with
// tree-sitter.
type TreeSitterProvider struct {
	// SentinelConstructors names constructors Sentinel instead of the
	// class name, the way some language servers report them.
	SentinelConstructors bool
	Sentinel             string

	parser *syntax.Parser
}

var _ Provider = (*TreeSitterProvider)(nil)

// NewTreeSitterProvider creates a tree-sitter symbol provider.
func NewTreeSitterProvider() *TreeSitterProvider {
	return &TreeSitterProvider{
		Sentinel: DefaultSentinel,
		parser:   syntax.NewParser(),
	}
}

// Supports reports whether the document's language has a grammar.
func (p *TreeSitterProvider) Supports(doc *textdoc.Document) bool {
	_, ok := syntax.LanguageFromPath(doc.Path)
	return ok
}

func (p *TreeSitterProvider) DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]Symbol, error) {
	lang, ok := syntax.LanguageFromPath(doc.Path)
	if !ok {
		return nil, errors.New(errors.UnsupportedLanguage, "no tree-sitter grammar for "+doc.Path, nil)
	}

	source := []byte(doc.Text())
	root, err := p.parser.Parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}

	b := &treeBuilder{lang: lang, source: source, provider: p}
	return b.collect(root, false), nil
}

type treeBuilder struct {
	lang     syntax.Language
	source   []byte
	provider *TreeSitterProvider
}

// collect returns the symbols found below node. inContainer is true when the
// nearest enclosing symbol is a class-like container.
func (b *treeBuilder) collect(node *sitter.Node, inContainer bool) []Symbol {
	var out []Symbol
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		out = append(out, b.visit(child, inContainer)...)
	}
	return out
}

func (b *treeBuilder) visit(node *sitter.Node, inContainer bool) []Symbol {
	nodeType := node.Type()

	if contains(containerNodeTypes(b.lang), nodeType) {
		name := b.containerName(node)
		if name == "" {
			return b.collect(node, inContainer)
		}
		return []Symbol{{
			Name:     name,
			Kind:     KindOther,
			Range:    b.declRange(node),
			Children: b.collect(node, true),
		}}
	}

	if kind, ok := b.functionKind(node, inContainer); ok {
		name := b.functionName(node, kind)
		if name == "" {
			return b.collect(node, false)
		}
		return []Symbol{{
			Name:     name,
			Kind:     kind,
			Range:    b.declRange(node),
			Children: b.collect(node, false),
		}}
	}

	if sym, ok := b.assignedFunction(node); ok {
		return []Symbol{sym}
	}

	return b.collect(node, inContainer)
}

// functionKind classifies function-like nodes.
func (b *treeBuilder) functionKind(node *sitter.Node, inContainer bool) (Kind, bool) {
	nodeType := node.Type()
	switch b.lang {
	case syntax.LangGo:
		switch nodeType {
		case "function_declaration":
			return KindFunction, true
		case "method_declaration":
			return KindMethod, true
		}
	case syntax.LangJavaScript, syntax.LangTypeScript, syntax.LangTSX:
		switch nodeType {
		case "function_declaration", "generator_function_declaration":
			return KindFunction, true
		case "method_definition":
			if b.fieldText(node, "name") == "constructor" {
				return KindConstructor, true
			}
			return KindMethod, true
		}
	case syntax.LangPython:
		if nodeType == "function_definition" {
			if !inContainer {
				return KindFunction, true
			}
			if b.fieldText(node, "name") == "__init__" {
				return KindConstructor, true
			}
			return KindMethod, true
		}
	case syntax.LangRust:
		if nodeType == "function_item" {
			if inContainer {
				return KindMethod, true
			}
			return KindFunction, true
		}
	case syntax.LangJava:
		switch nodeType {
		case "method_declaration":
			return KindMethod, true
		case "constructor_declaration":
			return KindConstructor, true
		}
	case syntax.LangKotlin:
		switch nodeType {
		case "function_declaration":
			if inContainer {
				return KindMethod, true
			}
			return KindFunction, true
		case "secondary_constructor":
			return KindConstructor, true
		}
	case syntax.LangCSharp:
		switch nodeType {
		case "method_declaration":
			return KindMethod, true
		case "constructor_declaration":
			return KindConstructor, true
		case "local_function_statement":
			return KindFunction, true
		}
	}
	return KindOther, false
}

// assignedFunction recognizes `const name = () => {}` and
// `const name = function () {}` in JavaScript and TypeScript.
func (b *treeBuilder) assignedFunction(node *sitter.Node) (Symbol, bool) {
	switch b.lang {
	case syntax.LangJavaScript, syntax.LangTypeScript, syntax.LangTSX:
	default:
		return Symbol{}, false
	}
	if node.Type() != "lexical_declaration" && node.Type() != "variable_declaration" {
		return Symbol{}, false
	}
	if node.NamedChildCount() != 1 {
		return Symbol{}, false
	}
	decl := node.NamedChild(0)
	if decl == nil || decl.Type() != "variable_declarator" {
		return Symbol{}, false
	}
	value := decl.ChildByFieldName("value")
	if value == nil {
		return Symbol{}, false
	}
	switch value.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
	default:
		return Symbol{}, false
	}
	name := b.fieldText(decl, "name")
	if name == "" {
		return Symbol{}, false
	}
	return Symbol{
		Name:     name,
		Kind:     KindFunction,
		Range:    nodeRange(node),
		Children: b.collect(value, false),
	}, true
}

func (b *treeBuilder) functionName(node *sitter.Node, kind Kind) string {
	if kind == KindConstructor && b.provider.SentinelConstructors && b.lang == syntax.LangCSharp {
		return b.provider.Sentinel
	}
	switch b.lang {
	case syntax.LangKotlin:
		if node.Type() == "secondary_constructor" {
			return "constructor"
		}
		return b.childText(node, "simple_identifier")
	case syntax.LangGo:
		if name := b.fieldText(node, "name"); name != "" {
			return name
		}
		return b.childText(node, "identifier")
	}
	return b.fieldText(node, "name")
}

func (b *treeBuilder) containerName(node *sitter.Node) string {
	switch b.lang {
	case syntax.LangGo:
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child != nil && child.Type() == "type_spec" {
				return b.fieldText(child, "name")
			}
		}
		return ""
	case syntax.LangRust:
		if node.Type() == "impl_item" {
			if name := b.fieldText(node, "type"); name != "" {
				return name
			}
			return b.childText(node, "type_identifier")
		}
	case syntax.LangKotlin:
		if node.Type() == "companion_object" {
			if name := b.childText(node, "type_identifier"); name != "" {
				return name
			}
			return "Companion"
		}
		return b.childText(node, "type_identifier")
	}
	if name := b.fieldText(node, "name"); name != "" {
		return name
	}
	return b.childText(node, "identifier")
}

// containerNodeTypes returns node types for classes/types/modules that
// group functions.
func containerNodeTypes(lang syntax.Language) []string {
	switch lang {
	case syntax.LangGo:
		return []string{"type_declaration"}
	case syntax.LangJavaScript:
		return []string{"class_declaration"}
	case syntax.LangTypeScript, syntax.LangTSX:
		return []string{"class_declaration", "abstract_class_declaration", "interface_declaration", "internal_module"}
	case syntax.LangPython:
		return []string{"class_definition"}
	case syntax.LangRust:
		return []string{"impl_item", "trait_item", "mod_item"}
	case syntax.LangJava:
		return []string{"class_declaration", "interface_declaration", "enum_declaration", "record_declaration"}
	case syntax.LangKotlin:
		return []string{"class_declaration", "object_declaration", "companion_object"}
	case syntax.LangCSharp:
		return []string{"class_declaration", "struct_declaration", "interface_declaration", "record_declaration", "namespace_declaration"}
	default:
		return nil
	}
}

// declRange is the range of node widened to the decorators or attributes
// written above it, which the grammars keep outside the declaration node.
func (b *treeBuilder) declRange(node *sitter.Node) textdoc.Range {
	r := nodeRange(node)
	var marker string
	switch b.lang {
	case syntax.LangPython:
		if parent := node.Parent(); parent != nil && parent.Type() == "decorated_definition" {
			r.Start = nodeRange(parent).Start
		}
		return r
	case syntax.LangJavaScript, syntax.LangTypeScript, syntax.LangTSX:
		marker = "decorator"
	case syntax.LangRust:
		marker = "attribute_item"
	default:
		return r
	}
	for prev := node.PrevNamedSibling(); prev != nil && prev.Type() == marker; prev = prev.PrevNamedSibling() {
		r.Start = nodeRange(prev).Start
	}
	return r
}

func (b *treeBuilder) fieldText(node *sitter.Node, field string) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return string(b.source[child.StartByte():child.EndByte()])
}

func (b *treeBuilder) childText(node *sitter.Node, nodeType string) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == nodeType {
			return string(b.source[child.StartByte():child.EndByte()])
		}
	}
	return ""
}

func nodeRange(node *sitter.Node) textdoc.Range {
	start, end := node.StartPoint(), node.EndPoint()
	return textdoc.Range{
		Start: textdoc.Position{Line: int(start.Row), Character: int(start.Column)},
		End:   textdoc.Position{Line: int(end.Row), Character: int(end.Column)},
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
