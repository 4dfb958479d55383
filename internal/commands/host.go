package commands

import (
	"context"

	"codeaxe/internal/edit"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

// Host is the editor-side collaborator the commands run against.
type Host interface {
	// Active returns the current document and cursor. It fails with
	// NO_ACTIVE_CONTEXT when there is no open document.
	Active(ctx context.Context) (*textdoc.Document, textdoc.Position, error)
	DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]symbols.Symbol, error)
	// ApplyEdits applies the whole edit set or nothing. command names the
	// operation for the host's history.
	ApplyEdits(ctx context.Context, doc *textdoc.Document, command string, edits []edit.Edit) error
	WriteClipboard(ctx context.Context, text string) error
	SetSelection(ctx context.Context, r textdoc.Range) error
}

// Formatter is implemented by hosts that can normalize a document after
// methods were moved.
type Formatter interface {
	FormatDocument(ctx context.Context, path string) error
}
