package commands

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"codeaxe/internal/config"
	"codeaxe/internal/edit"
	"codeaxe/internal/errors"
	"codeaxe/internal/profile"
	"codeaxe/internal/slogutil"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

type fakeHost struct {
	doc       *textdoc.Document
	pos       textdoc.Position
	forest    []symbols.Symbol
	symErr    error
	applyErr  error
	clipboard string
	selection *textdoc.Range
	applied   []string
	formatted []string
}

func (h *fakeHost) Active(context.Context) (*textdoc.Document, textdoc.Position, error) {
	if h.doc == nil {
		return nil, textdoc.Position{}, errors.New(errors.NoActiveContext, "no document", nil)
	}
	return h.doc, h.pos, nil
}

func (h *fakeHost) DocumentSymbols(context.Context, *textdoc.Document) ([]symbols.Symbol, error) {
	return h.forest, h.symErr
}

func (h *fakeHost) ApplyEdits(_ context.Context, doc *textdoc.Document, command string, edits []edit.Edit) error {
	if h.applyErr != nil {
		return h.applyErr
	}
	out, err := edit.Apply(doc.Text(), edits)
	if err != nil {
		return err
	}
	h.doc = textdoc.New(doc.Path, out)
	h.applied = append(h.applied, command)
	return nil
}

func (h *fakeHost) WriteClipboard(_ context.Context, text string) error {
	h.clipboard = text
	return nil
}

func (h *fakeHost) SetSelection(_ context.Context, r textdoc.Range) error {
	h.selection = &r
	return nil
}

func (h *fakeHost) FormatDocument(_ context.Context, path string) error {
	h.formatted = append(h.formatted, path)
	return nil
}

func fn(name string, sl, sc, el, ec int, children ...symbols.Symbol) symbols.Symbol {
	return symbols.Symbol{
		Name:     name,
		Kind:     symbols.KindFunction,
		Range:    textdoc.Range{Start: textdoc.Position{Line: sl, Character: sc}, End: textdoc.Position{Line: el, Character: ec}},
		Children: children,
	}
}

// A calls B, nothing calls C.
const abcSource = "function A() {\n  B();\n}\n\nfunction B() {}\n\nfunction C() {}\n"

func abcHost(line, char int) *fakeHost {
	return &fakeHost{
		doc: textdoc.New("abc.js", abcSource),
		pos: textdoc.Position{Line: line, Character: char},
		forest: []symbols.Symbol{
			fn("A", 0, 0, 2, 1),
			fn("B", 4, 0, 4, 15),
			fn("C", 6, 0, 6, 15),
		},
	}
}

func TestExpandSelectsEnclosingFunction(t *testing.T) {
	host := abcHost(1, 3)
	res, err := New(host, DefaultOptions(), nil).Expand(context.Background())
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if host.selection == nil || *host.selection != host.forest[0].Range {
		t.Errorf("selection = %v, want %v", host.selection, host.forest[0].Range)
	}
	if res.Function != "A" || !reflect.DeepEqual(res.Messages, []string{"Found function: A"}) {
		t.Errorf("result = %+v", res)
	}
}

func TestExpandOnBlankLine(t *testing.T) {
	host := abcHost(3, 0)
	res, err := New(host, DefaultOptions(), nil).Expand(context.Background())
	if !errors.Is(err, errors.NoEnclosingFunction) || !errors.IsNonFatal(err) {
		t.Fatalf("Expand() error = %v, want NO_ENCLOSING_FUNCTION", err)
	}
	if host.selection != nil {
		t.Error("selection must be left unchanged")
	}
	if len(res.Messages) != 1 || res.Messages[0] != "No function found containing cursor position" {
		t.Errorf("messages = %v", res.Messages)
	}
}

func TestNonFatalConditions(t *testing.T) {
	tests := []struct {
		name    string
		host    *fakeHost
		code    errors.ErrorCode
		message string
	}{
		{"no document", &fakeHost{}, errors.NoActiveContext, "No active editor"},
		{"no symbols", &fakeHost{doc: textdoc.New("a.js", "x")}, errors.NoSymbols, "No symbols found in the document"},
		{"provider error", &fakeHost{doc: textdoc.New("a.js", "x"), symErr: stderrors.New("server crashed")},
			errors.ProviderFailure, "Error expanding to function: server crashed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(tt.host, DefaultOptions(), nil).Copy(context.Background())
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if !errors.IsNonFatal(err) {
				t.Errorf("%s should be non-fatal", tt.code)
			}
			if len(res.Messages) == 0 || res.Messages[0] != tt.message {
				t.Errorf("messages = %v, want %q", res.Messages, tt.message)
			}
			if tt.host.clipboard != "" {
				t.Error("clipboard must not be written")
			}
		})
	}
}

func TestCopyAndCut(t *testing.T) {
	host := abcHost(4, 5)
	f := New(host, DefaultOptions(), nil)

	res, err := f.Copy(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if host.clipboard != "function B() {}" || res.Text != host.clipboard {
		t.Errorf("clipboard = %q", host.clipboard)
	}
	if host.doc.Text() != abcSource {
		t.Error("copy must not modify the document")
	}

	res, err = f.Cut(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := "function A() {\n  B();\n}\n\n\n\nfunction C() {}\n"
	if host.doc.Text() != want {
		t.Errorf("after cut = %q, want %q", host.doc.Text(), want)
	}
	if res.EditCount != 1 || !reflect.DeepEqual(host.applied, []string{CommandCut}) {
		t.Errorf("result = %+v, applied = %v", res, host.applied)
	}
}

func TestCutApplyFailureLeavesDocument(t *testing.T) {
	host := abcHost(1, 0)
	host.applyErr = stderrors.New("read-only")
	_, err := New(host, DefaultOptions(), nil).Cut(context.Background())
	if !errors.Is(err, errors.ProviderFailure) {
		t.Fatalf("error = %v, want PROVIDER_FAILURE", err)
	}
	if host.doc.Text() != abcSource {
		t.Error("document changed despite failed apply")
	}
}

func TestSortLeavesUnreachedMethod(t *testing.T) {
	host := abcHost(1, 2)
	res, err := New(host, DefaultOptions(), nil).SortDescendants(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	wantGraph := map[string][]string{"A": {"B"}, "B": {}, "C": {}}
	if !reflect.DeepEqual(res.Graph, wantGraph) {
		t.Errorf("graph = %v, want %v", res.Graph, wantGraph)
	}
	if !reflect.DeepEqual(res.Order, []string{"A", "B"}) {
		t.Errorf("order = %v", res.Order)
	}
	if host.doc.Text() != abcSource {
		t.Errorf("already ordered document changed:\n%s", host.doc.Text())
	}
	if !strings.Contains(strings.Join(res.Messages, "\n"), "Recommended method order based on dependencies:\n- A\n- B") {
		t.Errorf("messages = %v", res.Messages)
	}
}

func TestSortDepthFirstWithComments(t *testing.T) {
	src := "function C() {}\n" +
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
	host := &fakeHost{
		doc: textdoc.New("deps.ts", src),
		pos: textdoc.Position{Line: 8, Character: 2},
		forest: []symbols.Symbol{
			fn("C", 0, 0, 0, 15),
			fn("B", 3, 0, 5, 1),
			fn("A", 7, 0, 10, 1),
		},
	}
	opts := DefaultOptions()
	opts.Format = true

	res, err := New(host, opts, nil).SortDescendants(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Order, []string{"A", "B", "C"}) {
		t.Errorf("order = %v", res.Order)
	}
	want := "function A() {\n  B();\n  C();\n}\n" +
		"\n" +
		"// calls C\nfunction B() {\n  C();\n}\n" +
		"\n" +
		"function C() {}\n" +
		"\n"
	if host.doc.Text() != want {
		t.Errorf("sorted document:\n%q\nwant:\n%q", host.doc.Text(), want)
	}
	if !reflect.DeepEqual(host.formatted, []string{"deps.ts"}) {
		t.Errorf("formatted = %v", host.formatted)
	}
}

func TestSortScope(t *testing.T) {
	// Two classes with a same-named helper; sibling scope only sees the
	// anchor's class.
	src := "class P {\n" +
		"  run() { this.help(); }\n" +
		"  help() {}\n" +
		"}\n" +
		"class Q {\n" +
		"  help() {}\n" +
		"  other() { this.help(); }\n" +
		"}\n"
	method := func(name string, line int) symbols.Symbol {
		s := fn(name, line, 2, line, len(strings.Split(src, "\n")[line]))
		s.Kind = symbols.KindMethod
		return s
	}
	class := func(name string, sl, el int, children ...symbols.Symbol) symbols.Symbol {
		s := fn(name, sl, 0, el, 1, children...)
		s.Kind = symbols.KindOther
		return s
	}
	forest := []symbols.Symbol{
		class("P", 0, 3, method("run", 1), method("help", 2)),
		class("Q", 4, 7, method("help", 5), method("other", 6)),
	}

	for _, tc := range []struct {
		scope     string
		wantGraph int
	}{
		{config.ScopeSiblings, 2},
		{config.ScopeDocument, 3},
	} {
		host := &fakeHost{doc: textdoc.New("pq.ts", src), pos: textdoc.Position{Line: 1, Character: 4}, forest: forest}
		opts := DefaultOptions()
		opts.Scope = tc.scope
		res, err := New(host, opts, nil).SortDescendants(context.Background())
		if err != nil {
			t.Fatalf("%s: %v", tc.scope, err)
		}
		if len(res.Graph) != tc.wantGraph {
			t.Errorf("%s: graph = %v", tc.scope, res.Graph)
		}
		if !reflect.DeepEqual(res.Order, []string{"run", "help"}) {
			t.Errorf("%s: order = %v", tc.scope, res.Order)
		}
	}
}

func TestSortSingleMethodIsNoop(t *testing.T) {
	host := abcHost(6, 3)
	res, err := New(host, DefaultOptions(), nil).SortDescendants(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.EditCount != 0 || len(host.applied) != 0 {
		t.Errorf("sorting C applied edits: %+v", res)
	}
}

func TestMessagesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slogutil.NewLogger(&buf, slog.LevelInfo)
	if _, err := New(abcHost(1, 2), DefaultOptions(), logger).Expand(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[info] Found function: A") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Scope = config.ScopeDocument
	cfg.Analysis.ExcludeConstructorSentinel = false
	opts := OptionsFromConfig(cfg, nil)
	if opts.Scope != config.ScopeDocument || opts.Locate.ExcludeSentinel || !opts.Format || opts.Profiles == nil {
		t.Errorf("options = %+v", opts)
	}
}

func TestSentinelFromLanguageProfile(t *testing.T) {
	profiles, err := profile.Parse(`
[default]
constructor_sentinel = ".ctor"

[languages.csharp]
constructor_sentinel = "<init>"
`)
	if err != nil {
		t.Fatal(err)
	}
	src := "Widget() {\n  x();\n}\n"
	tests := []struct {
		name     string
		path     string
		override string
		want     errors.ErrorCode
	}{
		{"profile sentinel excluded", "Widget.cs", "", errors.NoEnclosingFunction},
		{"default sentinel elsewhere", "widget.js", "", ""},
		{"configured sentinel wins", "widget.js", "<init>", errors.NoEnclosingFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &fakeHost{
				doc:    textdoc.New(tt.path, src),
				pos:    textdoc.Position{Line: 1, Character: 2},
				forest: []symbols.Symbol{fn("<init>", 0, 0, 2, 1)},
			}
			opts := DefaultOptions()
			opts.Profiles = profiles
			opts.Locate.Sentinel = tt.override
			res, err := New(host, opts, nil).Expand(context.Background())
			if tt.want == "" {
				if err != nil || res.Function != "<init>" {
					t.Fatalf("Expand() = %+v, %v", res, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expand() error = %v, want %s", err, tt.want)
			}
		})
	}
}
