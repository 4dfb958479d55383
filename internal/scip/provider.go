package scip

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"

	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

// Provider reports definitions recorded in a SCIP index as document symbols.
// Definitions without an enclosing range extend to the line before the next
// definition, since several indexers leave enclosing_range empty.
type Provider struct {
	IndexPath string
	Root      string
	Logger    *slog.Logger

	mu    sync.Mutex
	index *Index
}

var _ symbols.Provider = (*Provider)(nil)

// NewProvider creates a provider that lazily loads indexPath.
func NewProvider(root, indexPath string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{IndexPath: indexPath, Root: root, Logger: logger}
}

// NewProviderFromIndex creates a provider over an already loaded index.
func NewProviderFromIndex(root string, idx *Index) *Provider {
	return &Provider{Root: root, Logger: slog.New(slog.DiscardHandler), index: idx}
}

func (p *Provider) load() (*Index, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index != nil {
		return p.index, nil
	}
	idx, err := LoadIndex(p.IndexPath)
	if err != nil {
		return nil, err
	}
	p.Logger.Debug("Loaded SCIP index", "path", p.IndexPath, "documents", len(idx.documents))
	p.index = idx
	return idx, nil
}

// Contains reports whether the index can be loaded and has doc.
func (p *Provider) Contains(doc *textdoc.Document) bool {
	idx, err := p.load()
	if err != nil {
		return false
	}
	return idx.Document(doc.Path, p.Root) != nil
}

func (p *Provider) DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]symbols.Symbol, error) {
	idx, err := p.load()
	if err != nil {
		return nil, err
	}
	sd := idx.Document(doc.Path, p.Root)
	if sd == nil {
		p.Logger.Debug("Document not in SCIP index", "path", doc.Path)
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos := make(map[string]*scippb.SymbolInformation, len(sd.Symbols))
	for _, info := range sd.Symbols {
		infos[info.Symbol] = info
	}

	type definition struct {
		sym      symbols.Symbol
		explicit bool
	}
	var defs []definition
	seen := make(map[string]bool)
	for _, occ := range sd.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 || seen[occ.Symbol] {
			continue
		}
		d, ok := parseDescriptor(occ.Symbol)
		if !ok {
			continue
		}
		kind, ok := classify(d, infos[occ.Symbol])
		if !ok {
			continue
		}
		seen[occ.Symbol] = true

		def := definition{sym: symbols.Symbol{Name: d.name, Kind: kind}}
		if len(occ.EnclosingRange) >= 3 {
			def.sym.Range = convertRange(doc, sd, occ.EnclosingRange)
			def.explicit = true
		} else {
			def.sym.Range = convertRange(doc, sd, occ.Range)
		}
		defs = append(defs, def)
	}

	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].sym.Range.Start.Compare(defs[j].sym.Range.Start) < 0
	})

	starts := make([]int, len(defs))
	for i, def := range defs {
		starts[i] = def.sym.Range.Start.Line
	}

	flat := make([]symbols.Symbol, len(defs))
	for i, def := range defs {
		flat[i] = def.sym
		if def.explicit {
			continue
		}
		flat[i].Range = textdoc.Range{
			Start: textdoc.Position{Line: def.sym.Range.Start.Line},
			End:   fallbackEnd(doc, starts[i], nextStart(starts[i+1:], starts[i])),
		}
	}
	return symbols.Nest(flat), nil
}

// nextStart returns the first start line after line, or -1.
func nextStart(starts []int, line int) int {
	for _, s := range starts {
		if s > line {
			return s
		}
	}
	return -1
}

// fallbackEnd ends a definition before next (or at the end of the document),
// giving trailing blank lines to whatever follows.
func fallbackEnd(doc *textdoc.Document, start, next int) textdoc.Position {
	if next < 0 {
		end := doc.FullRange().End
		last := end.Line
		if end.Character == 0 {
			last--
		}
		for last > start && strings.TrimSpace(doc.LineText(last)) == "" {
			last--
		}
		return doc.LineEnd(last)
	}
	last := next - 1
	for last > start && strings.TrimSpace(doc.LineText(last)) == "" {
		last--
	}
	return doc.LineEnd(last)
}

func classify(d descriptor, info *scippb.SymbolInformation) (symbols.Kind, bool) {
	if info != nil {
		switch info.Kind {
		case scippb.SymbolInformation_Method:
			return symbols.KindMethod, true
		case scippb.SymbolInformation_Function:
			return symbols.KindFunction, true
		case scippb.SymbolInformation_Constructor:
			return symbols.KindConstructor, true
		case scippb.SymbolInformation_Class, scippb.SymbolInformation_Struct,
			scippb.SymbolInformation_Interface, scippb.SymbolInformation_Enum,
			scippb.SymbolInformation_Trait, scippb.SymbolInformation_Object,
			scippb.SymbolInformation_Module, scippb.SymbolInformation_Namespace:
			return symbols.KindOther, true
		case scippb.SymbolInformation_UnspecifiedKind:
		default:
			return symbols.KindOther, false
		}
	}

	switch d.kind {
	case descriptorMethod:
		switch {
		case isConstructorName(d.name):
			return symbols.KindConstructor, true
		case d.inType:
			return symbols.KindMethod, true
		default:
			return symbols.KindFunction, true
		}
	case descriptorType:
		return symbols.KindOther, true
	}
	return symbols.KindOther, false
}

func isConstructorName(name string) bool {
	switch name {
	case "constructor", "<init>", "<constructor>", "__init__":
		return true
	}
	return false
}

func convertRange(doc *textdoc.Document, sd *scippb.Document, r []int32) textdoc.Range {
	var out textdoc.Range
	switch len(r) {
	case 3:
		out.Start = textdoc.Position{Line: int(r[0]), Character: int(r[1])}
		out.End = textdoc.Position{Line: int(r[0]), Character: int(r[2])}
	case 4:
		out.Start = textdoc.Position{Line: int(r[0]), Character: int(r[1])}
		out.End = textdoc.Position{Line: int(r[2]), Character: int(r[3])}
	default:
		return out
	}
	if sd.PositionEncoding == scippb.PositionEncoding_UTF16CodeUnitOffsetFromLineStart {
		out.Start = doc.FromUTF16(out.Start)
		out.End = doc.FromUTF16(out.End)
	}
	return out
}
