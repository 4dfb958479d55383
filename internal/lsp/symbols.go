package lsp

import (
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

type wirePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

type wireLocation struct {
	URI   string    `json:"uri"`
	Range wireRange `json:"range"`
}

// wireSymbol decodes both DocumentSymbol (range, children) and
// SymbolInformation (location) replies.
type wireSymbol struct {
	Name     string        `json:"name"`
	Kind     int           `json:"kind"`
	Range    *wireRange    `json:"range,omitempty"`
	Children []wireSymbol  `json:"children,omitempty"`
	Location *wireLocation `json:"location,omitempty"`
}

// convertSymbols turns a documentSymbol reply into a symbol forest with
// byte-column positions. Flat SymbolInformation lists are nested by range
// containment.
func convertSymbols(doc *textdoc.Document, reply []wireSymbol) []symbols.Symbol {
	flat := false
	for _, ws := range reply {
		if ws.Range == nil && ws.Location != nil {
			flat = true
			break
		}
	}
	if !flat {
		return convertTree(doc, reply)
	}

	list := make([]symbols.Symbol, 0, len(reply))
	for _, ws := range reply {
		if ws.Location == nil {
			continue
		}
		list = append(list, symbols.Symbol{
			Name:  ws.Name,
			Kind:  symbols.FromLSPKind(ws.Kind),
			Range: toRange(doc, ws.Location.Range),
		})
	}
	return symbols.Nest(list)
}

func convertTree(doc *textdoc.Document, in []wireSymbol) []symbols.Symbol {
	if len(in) == 0 {
		return nil
	}
	out := make([]symbols.Symbol, 0, len(in))
	for _, ws := range in {
		if ws.Range == nil {
			continue
		}
		out = append(out, symbols.Symbol{
			Name:     ws.Name,
			Kind:     symbols.FromLSPKind(ws.Kind),
			Range:    toRange(doc, *ws.Range),
			Children: convertTree(doc, ws.Children),
		})
	}
	return out
}

func toRange(doc *textdoc.Document, r wireRange) textdoc.Range {
	return textdoc.Range{
		Start: doc.FromUTF16(textdoc.Position{Line: r.Start.Line, Character: r.Start.Character}),
		End:   doc.FromUTF16(textdoc.Position{Line: r.End.Line, Character: r.End.Character}),
	}
}
