package host

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeaxe/internal/commands"
	"codeaxe/internal/config"
	"codeaxe/internal/edit"
	"codeaxe/internal/errors"
	"codeaxe/internal/history"
	"codeaxe/internal/lsp"
	"codeaxe/internal/scip"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

const depsSource = "function C() {}\n" +
	"\n" +
	"// calls C\n" +
	"function B() {\n" +
	"  C();\n" +
	"}\n" +
	"\n" +
	"function A() {\n" +
	"  B();\n" +
	"  C();\n" +
	"}\n"

const depsSymbols = `symbols:
  - name: C
    kind: function
    range: {start: {line: 0, character: 0}, end: {line: 0, character: 15}}
  - name: B
    kind: function
    range: {start: {line: 3, character: 0}, end: {line: 5, character: 1}}
  - name: A
    kind: function
    range: {start: {line: 7, character: 0}, end: {line: 10, character: 1}}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestActiveErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	writeFile(t, path, "function a() {}\n")

	tests := []struct {
		name string
		host *FileHost
		want errors.ErrorCode
	}{
		{"no file", &FileHost{}, errors.NoActiveContext},
		{"missing file", &FileHost{Path: filepath.Join(dir, "none.js"), Cursor: CursorFromFlags(1, 1)}, errors.NoActiveContext},
		{"no cursor", &FileHost{Path: path}, errors.NoActiveContext},
		{"line past end", &FileHost{Path: path, Cursor: CursorFromFlags(9, 1)}, errors.InvalidPosition},
		{"column past end", &FileHost{Path: path, Cursor: CursorFromFlags(1, 40)}, errors.InvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.host.Active(context.Background())
			if got := errors.CodeOf(err); got != tt.want {
				t.Errorf("Active() code = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestActiveConvertsCursor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js")
	writeFile(t, path, "function a() {\n  return 1;\n}\n")
	h := &FileHost{Path: path, Cursor: CursorFromFlags(2, 3)}
	doc, pos, err := h.Active(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if pos != (textdoc.Position{Line: 1, Character: 2}) {
		t.Errorf("pos = %v", pos)
	}
	if doc.LineCount() != 4 {
		t.Errorf("LineCount() = %d", doc.LineCount())
	}
}

func TestSortWritesFileAndUndo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deps.ts")
	dump := filepath.Join(dir, "deps.yaml")
	writeFile(t, path, depsSource)
	writeFile(t, dump, depsSymbols)

	store, err := history.Open(filepath.Join(dir, "history.db"), true, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	provider, err := NewProvider(config.DefaultConfig(), dir, "", dump, nil)
	if err != nil {
		t.Fatal(err)
	}
	h := &FileHost{Root: dir, Path: path, Cursor: CursorFromFlags(9, 3), Symbols: provider, History: store}

	res, err := commands.New(h, commands.DefaultOptions(), nil).SortDescendants(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.EditCount == 0 {
		t.Fatal("expected edits")
	}
	want := "function A() {\n  B();\n  C();\n}\n" +
		"\n" +
		"// calls C\nfunction B() {\n  C();\n}\n" +
		"\n" +
		"function C() {}\n" +
		"\n"
	if got := readFile(t, path); got != want {
		t.Errorf("file after sort:\n%q\nwant:\n%q", got, want)
	}

	groups, err := store.List(context.Background(), HistoryKey(dir, path), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].Command != commands.CommandSort || groups[0].DocPath != "deps.ts" {
		t.Fatalf("history = %+v", groups)
	}

	fresh := &FileHost{Root: dir, Path: path, History: store}
	if _, err := fresh.Undo(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != depsSource {
		t.Errorf("file after undo = %q", got)
	}
}

func TestUndoWriteFailureKeepsHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	writeFile(t, path, "v2")

	store, err := history.Open(filepath.Join(dir, "history.db"), false, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()
	if _, err := store.Record(ctx, HistoryKey(dir, path), commands.CommandSort, "v1", "v2", 1); err != nil {
		t.Fatal(err)
	}

	h := &FileHost{Root: dir, Path: path, History: store}
	if _, err := h.Text(); err != nil {
		t.Fatal(err)
	}
	// A non-empty directory at path makes the final rename fail.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(path, "keep"), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := h.Undo(ctx); !errors.Is(err, errors.ProviderFailure) {
		t.Fatalf("Undo() error = %v, want PROVIDER_FAILURE", err)
	}
	groups, err := store.List(ctx, HistoryKey(dir, path), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].Undone {
		t.Errorf("history after failed undo = %+v", groups)
	}
}

func TestDryRunLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js")
	writeFile(t, path, "function a() {}\n")
	h := &FileHost{Path: path, Cursor: CursorFromFlags(1, 1), DryRun: true}

	doc, _, err := h.Active(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := h.ApplyEdits(context.Background(), doc, commands.CommandCut, []edit.Edit{edit.Delete(0, 15)}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != "function a() {}\n" {
		t.Errorf("file changed in dry run: %q", got)
	}
	if text, _ := h.Text(); text != "\n" {
		t.Errorf("Text() = %q", text)
	}
}

func TestApplyEditsRejectsOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js")
	writeFile(t, path, "abcdef\n")
	h := &FileHost{Path: path, Cursor: CursorFromFlags(1, 1)}
	doc, _, err := h.Active(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	err = h.ApplyEdits(context.Background(), doc, commands.CommandSort, []edit.Edit{edit.Delete(0, 4), edit.Delete(2, 5)})
	if !errors.Is(err, errors.OverlappingEdits) {
		t.Errorf("err = %v", err)
	}
	if got := readFile(t, path); got != "abcdef\n" {
		t.Errorf("file = %q", got)
	}
}

func TestFormatDocument(t *testing.T) {
	dir := t.TempDir()
	goPath := filepath.Join(dir, "p.go")
	writeFile(t, goPath, "package p\n\nfunc  A( ) {}\n")
	h := &FileHost{Path: goPath}
	if err := h.FormatDocument(context.Background(), goPath); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, goPath); got != "package p\n\nfunc A() {}\n" {
		t.Errorf("formatted = %q", got)
	}

	jsPath := filepath.Join(dir, "a.js")
	writeFile(t, jsPath, "function  a( ) {}\n")
	js := &FileHost{Path: jsPath}
	if err := js.FormatDocument(context.Background(), jsPath); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, jsPath); got != "function  a( ) {}\n" {
		t.Errorf("non-Go file changed: %q", got)
	}
}

func TestClipboardAndSelection(t *testing.T) {
	var clip bytes.Buffer
	h := &FileHost{Clipboard: &clip}
	if err := h.WriteClipboard(context.Background(), "text"); err != nil {
		t.Fatal(err)
	}
	if clip.String() != "text" {
		t.Errorf("clipboard = %q", clip.String())
	}
	if _, ok := h.Selection(); ok {
		t.Error("unexpected selection")
	}
	r := textdoc.Range{End: textdoc.Position{Line: 1}}
	_ = h.SetSelection(context.Background(), r)
	if got, ok := h.Selection(); !ok || got != r {
		t.Errorf("Selection() = %v, %v", got, ok)
	}
}

func TestNewProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		name     string
		provider string
		dump     string
		check    func(symbols.Provider) bool
		wantCode errors.ErrorCode
	}{
		{"dump wins", config.ProviderLsp, "syms.yaml", func(p symbols.Provider) bool { _, ok := p.(*symbols.FileProvider); return ok }, ""},
		{"default", "", "", func(p symbols.Provider) bool { _, ok := p.(*symbols.TreeSitterProvider); return ok }, ""},
		{"lsp", config.ProviderLsp, "", func(p symbols.Provider) bool { _, ok := p.(*lsp.Provider); return ok }, ""},
		{"scip", config.ProviderScip, "", func(p symbols.Provider) bool { _, ok := p.(*scip.Provider); return ok }, ""},
		{"auto", config.ProviderAuto, "", func(p symbols.Provider) bool { _, ok := p.(*Auto); return ok }, ""},
		{"file without dump", config.ProviderFile, "", nil, errors.ConfigError},
		{"unknown", "magic", "", nil, errors.ConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(cfg, "/work", tt.provider, tt.dump, nil)
			if tt.wantCode != "" {
				if errors.CodeOf(err) != tt.wantCode {
					t.Errorf("err = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(p) {
				t.Errorf("provider = %T", p)
			}
		})
	}
}

func TestAutoPick(t *testing.T) {
	cfg := config.DefaultConfig()
	p, err := NewProvider(cfg, t.TempDir(), config.ProviderAuto, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	auto := p.(*Auto)
	doc := textdoc.New("main.go", "package main\n")

	auto.lookPath = func(string) (string, error) { return "/usr/bin/gopls", nil }
	if _, name := auto.pick(doc); name != config.ProviderLsp {
		t.Errorf("installed server: picked %s", name)
	}

	auto.lookPath = func(string) (string, error) { return "", os.ErrNotExist }
	if _, name := auto.pick(doc); name != config.ProviderTreeSitter {
		t.Errorf("missing server and index: picked %s", name)
	}

	rs := textdoc.New("lib.rs", "fn main() {}\n")
	if _, name := auto.pick(rs); name != config.ProviderTreeSitter {
		t.Errorf("unconfigured language: picked %s", name)
	}
}

func TestHistoryKey(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "src", "a.go")
	if got := HistoryKey(root, inside); got != "src/a.go" {
		t.Errorf("HistoryKey(inside) = %q", got)
	}
	outside := filepath.Join(filepath.Dir(root), "elsewhere.go")
	if got := HistoryKey(root, outside); got != filepath.ToSlash(outside) {
		t.Errorf("HistoryKey(outside) = %q", got)
	}
}
