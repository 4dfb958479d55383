// Package host runs the commands against a file on disk, standing in for an
// editor: the cursor comes from flags, edits are written back atomically and
// the clipboard is a writer.
package host

import (
	"context"
	"fmt"
	"go/format"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"codeaxe/internal/commands"
	"codeaxe/internal/edit"
	"codeaxe/internal/errors"
	"codeaxe/internal/history"
	"codeaxe/internal/paths"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

// FileHost is a commands.Host over a single file.
type FileHost struct {
	Root string
	Path string
	// Cursor is zero-based with a byte column. Nil means no cursor.
	Cursor    *textdoc.Position
	Symbols   symbols.Provider
	History   *history.Store
	Clipboard io.Writer
	// DryRun keeps edits in memory; Text returns the result.
	DryRun bool
	Logger *slog.Logger

	doc       *textdoc.Document
	selection *textdoc.Range
}

var (
	_ commands.Host      = (*FileHost)(nil)
	_ commands.Formatter = (*FileHost)(nil)
)

// CursorFromFlags converts a 1-based line and column to a zero-based cursor.
func CursorFromFlags(line, col int) *textdoc.Position {
	if line <= 0 {
		return nil
	}
	if col <= 0 {
		col = 1
	}
	return &textdoc.Position{Line: line - 1, Character: col - 1}
}

func (h *FileHost) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.Logger
}

func (h *FileHost) load() (*textdoc.Document, error) {
	if h.doc != nil {
		return h.doc, nil
	}
	if h.Path == "" {
		return nil, errors.New(errors.NoActiveContext, "no file given", nil)
	}
	data, err := os.ReadFile(h.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.NoActiveContext, fmt.Sprintf("file not found: %s", h.Path), err)
		}
		return nil, errors.New(errors.ProviderFailure, "read "+h.Path, err)
	}
	h.doc = textdoc.New(h.Path, string(data))
	return h.doc, nil
}

func (h *FileHost) Active(ctx context.Context) (*textdoc.Document, textdoc.Position, error) {
	doc, err := h.load()
	if err != nil {
		return nil, textdoc.Position{}, err
	}
	if h.Cursor == nil {
		return nil, textdoc.Position{}, errors.New(errors.NoActiveContext, "no cursor position given", nil)
	}
	pos := *h.Cursor
	if pos.Line < 0 || pos.Line >= doc.LineCount() {
		return nil, textdoc.Position{}, errors.New(errors.InvalidPosition,
			fmt.Sprintf("line %d outside %s (%d lines)", pos.Line+1, h.Path, doc.LineCount()), nil)
	}
	if pos.Character < 0 || pos.Character > len(doc.LineText(pos.Line)) {
		return nil, textdoc.Position{}, errors.New(errors.InvalidPosition,
			fmt.Sprintf("column %d outside line %d", pos.Character+1, pos.Line+1), nil)
	}
	return doc, pos, nil
}

func (h *FileHost) DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]symbols.Symbol, error) {
	if h.Symbols == nil {
		return nil, errors.New(errors.ProviderFailure, "no symbol provider configured", nil)
	}
	return h.Symbols.DocumentSymbols(ctx, doc)
}

// ApplyEdits applies edits to doc. Outside dry-run mode the file is replaced
// atomically and the change is recorded in the history store.
func (h *FileHost) ApplyEdits(ctx context.Context, doc *textdoc.Document, command string, edits []edit.Edit) error {
	before := doc.Text()
	after, err := edit.Apply(before, edits)
	if err != nil {
		return err
	}
	return h.commit(ctx, command, before, after, len(edits))
}

func (h *FileHost) commit(ctx context.Context, command, before, after string, editCount int) error {
	if !h.DryRun {
		if err := WriteFileAtomic(h.Path, []byte(after)); err != nil {
			return errors.New(errors.ProviderFailure, "write "+h.Path, err)
		}
		if h.History != nil {
			g, err := h.History.Record(ctx, HistoryKey(h.Root, h.Path), command, before, after, editCount)
			if err != nil {
				h.logger().Warn("Failed to record edit history", "path", h.Path, "error", err)
			} else {
				h.logger().Debug("Recorded edit group", "id", g.ID, "command", command, "edits", editCount)
			}
		}
	}
	h.doc = textdoc.New(h.Path, after)
	return nil
}

// Text returns the current contents of the document, including any edits
// applied in dry-run mode.
func (h *FileHost) Text() (string, error) {
	doc, err := h.load()
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

func (h *FileHost) WriteClipboard(ctx context.Context, text string) error {
	if h.Clipboard == nil {
		return nil
	}
	_, err := io.WriteString(h.Clipboard, text)
	return err
}

func (h *FileHost) SetSelection(ctx context.Context, r textdoc.Range) error {
	h.selection = &r
	return nil
}

// Selection returns the last range selected by a command.
func (h *FileHost) Selection() (textdoc.Range, bool) {
	if h.selection == nil {
		return textdoc.Range{}, false
	}
	return *h.selection, true
}

// FormatDocument runs gofmt over Go files. Other languages are left alone.
func (h *FileHost) FormatDocument(ctx context.Context, path string) error {
	if filepath.Ext(path) != ".go" {
		return nil
	}
	doc, err := h.load()
	if err != nil {
		return err
	}
	formatted, err := format.Source([]byte(doc.Text()))
	if err != nil {
		return err
	}
	if string(formatted) == doc.Text() {
		return nil
	}
	return h.commit(ctx, "format", doc.Text(), string(formatted), 1)
}

// Undo reverts the last recorded command on the file.
func (h *FileHost) Undo(ctx context.Context) (history.Group, error) {
	if h.History == nil {
		return history.Group{}, errors.New(errors.ConfigError, "edit history is disabled", nil)
	}
	if h.DryRun {
		return history.Group{}, errors.New(errors.InvalidArgument, "undo cannot run as a dry run", nil)
	}
	doc, err := h.load()
	if err != nil {
		return history.Group{}, err
	}
	write := func(text string) error {
		if err := WriteFileAtomic(h.Path, []byte(text)); err != nil {
			return errors.New(errors.ProviderFailure, "write "+h.Path, err)
		}
		return nil
	}
	restored, g, err := h.History.Undo(ctx, HistoryKey(h.Root, h.Path), doc.Text(), write)
	if err != nil {
		return history.Group{}, err
	}
	h.doc = textdoc.New(h.Path, restored)
	return g, nil
}

// HistoryKey names path in the history store: relative to root when the
// file is inside it, absolute otherwise.
func HistoryKey(root, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if root != "" && paths.IsWithinRepo(abs, root) {
		if rel, err := paths.CanonicalizePath(abs, root); err == nil {
			return rel
		}
	}
	return filepath.ToSlash(abs)
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory, keeping the original permissions.
func WriteFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
