// Package commands implements the expand, copy, cut and sort operations on
// top of a Host.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"codeaxe/internal/callgraph"
	"codeaxe/internal/config"
	"codeaxe/internal/edit"
	"codeaxe/internal/errors"
	"codeaxe/internal/profile"
	"codeaxe/internal/relocate"
	"codeaxe/internal/symbols"
	"codeaxe/internal/syntax"
	"codeaxe/internal/textdoc"
)

// Messages reported to the user.
const (
	msgFound          = "Found function: %s"
	msgNoSymbols      = "No symbols found in the document"
	msgNoFunction     = "No function found containing cursor position"
	msgExpandError    = "Error expanding to function: %v"
	msgRecommended    = "Recommended method order based on dependencies:"
	msgNothingToSort  = "Nothing to reorder: %s has no dependencies among its sibling methods"
	msgNoActiveEditor = "No active editor"
)

// Command names recorded with applied edits.
const (
	CommandCut  = "cut"
	CommandSort = "sort"
)

// Options configures the facade.
type Options struct {
	// Scope is config.ScopeSiblings or config.ScopeDocument.
	Scope string
	// Locate.Sentinel may be empty; the document's language profile then
	// names the constructor sentinel.
	Locate   symbols.Options
	Profiles *profile.Set
	// Format runs the host Formatter after sorting, when the host has one.
	Format bool
}

// DefaultOptions returns sibling scope with the default profiles.
func DefaultOptions() Options {
	return Options{
		Scope:    config.ScopeSiblings,
		Locate:   symbols.Options{ExcludeSentinel: true},
		Profiles: profile.Default(),
	}
}

// OptionsFromConfig derives facade options from the analysis and
// relocation sections.
func OptionsFromConfig(cfg *config.Config, profiles *profile.Set) Options {
	opts := DefaultOptions()
	opts.Scope = cfg.Analysis.Scope
	opts.Locate = symbols.Options{
		ExcludeSentinel: cfg.Analysis.ExcludeConstructorSentinel,
		Sentinel:        cfg.Analysis.ConstructorSentinel,
	}
	if profiles != nil {
		opts.Profiles = profiles
	}
	opts.Format = cfg.Relocation.Format
	return opts
}

// Result describes what a command did. Messages repeats the informational
// lines that were logged.
type Result struct {
	Path      string              `json:"path,omitempty"`
	Function  string              `json:"function,omitempty"`
	Range     *textdoc.Range      `json:"range,omitempty"`
	Text      string              `json:"text,omitempty"`
	Order     []string            `json:"order,omitempty"`
	Graph     map[string][]string `json:"graph,omitempty"`
	EditCount int                 `json:"editCount"`
	Messages  []string            `json:"messages"`
}

func (r *Result) say(logger *slog.Logger, level slog.Level, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	r.Messages = append(r.Messages, msg)
	logger.Log(context.Background(), level, msg)
}

// Facade runs commands against a host.
type Facade struct {
	host   Host
	opts   Options
	logger *slog.Logger
}

// New creates a facade.
func New(host Host, opts Options, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Profiles == nil {
		opts.Profiles = profile.Default()
	}
	if opts.Scope == "" {
		opts.Scope = config.ScopeSiblings
	}
	return &Facade{host: host, opts: opts, logger: logger}
}

// target is the resolved command context.
type target struct {
	doc    *textdoc.Document
	forest []symbols.Symbol
	fn     *symbols.Symbol
	prof   profile.Profile
	locate symbols.Options
}

// enclosing resolves the function at the cursor, reporting the
// non-fatal conditions through res.
func (f *Facade) enclosing(ctx context.Context, res *Result) (*target, error) {
	doc, pos, err := f.host.Active(ctx)
	if err != nil {
		if errors.CodeOf(err) == "" {
			err = errors.New(errors.NoActiveContext, msgNoActiveEditor, err)
		}
		if errors.Is(err, errors.NoActiveContext) {
			res.say(f.logger, slog.LevelInfo, msgNoActiveEditor)
		} else {
			res.say(f.logger, slog.LevelWarn, "%v", err)
		}
		return nil, err
	}
	res.Path = doc.Path

	forest, err := f.host.DocumentSymbols(ctx, doc)
	if err != nil {
		res.say(f.logger, slog.LevelError, msgExpandError, err)
		if errors.CodeOf(err) == "" {
			err = errors.New(errors.ProviderFailure, "symbol provider failed", err)
		}
		return nil, err
	}
	if len(forest) == 0 {
		res.say(f.logger, slog.LevelInfo, msgNoSymbols)
		return nil, errors.New(errors.NoSymbols, msgNoSymbols, nil)
	}

	prof := f.profileFor(doc)
	locate := f.locateOptions(prof)
	fn := symbols.Locate(forest, pos, locate)
	if fn == nil {
		res.say(f.logger, slog.LevelInfo, msgNoFunction)
		return nil, errors.New(errors.NoEnclosingFunction, msgNoFunction, nil).
			WithDetails(map[string]any{"position": pos})
	}

	res.say(f.logger, slog.LevelInfo, msgFound, fn.Name)
	res.Function = fn.Name
	r := fn.Range
	res.Range = &r
	return &target{doc: doc, forest: forest, fn: fn, prof: prof, locate: locate}, nil
}

// Expand selects the function enclosing the cursor.
func (f *Facade) Expand(ctx context.Context) (*Result, error) {
	res := &Result{}
	t, err := f.enclosing(ctx, res)
	if err != nil {
		return res, err
	}
	if err := f.host.SetSelection(ctx, t.fn.Range); err != nil {
		return res, f.providerFailure(res, err)
	}
	return res, nil
}

// Copy writes the enclosing function's text to the clipboard.
func (f *Facade) Copy(ctx context.Context) (*Result, error) {
	res := &Result{}
	t, err := f.enclosing(ctx, res)
	if err != nil {
		return res, err
	}
	res.Text = t.doc.GetText(t.fn.Range)
	if err := f.host.WriteClipboard(ctx, res.Text); err != nil {
		return res, f.providerFailure(res, err)
	}
	return res, nil
}

// Cut copies the enclosing function and deletes its range.
func (f *Facade) Cut(ctx context.Context) (*Result, error) {
	res := &Result{}
	t, err := f.enclosing(ctx, res)
	if err != nil {
		return res, err
	}
	res.Text = t.doc.GetText(t.fn.Range)
	if err := f.host.WriteClipboard(ctx, res.Text); err != nil {
		return res, f.providerFailure(res, err)
	}

	start, end := t.doc.OffsetAt(t.fn.Range.Start), t.doc.OffsetAt(t.fn.Range.End)
	edits := []edit.Edit{edit.Delete(start, end)}
	if err := f.host.ApplyEdits(ctx, t.doc, CommandCut, edits); err != nil {
		return res, f.providerFailure(res, err)
	}
	res.EditCount = len(edits)
	return res, nil
}

// SortDescendants reorders the methods in scope so that each one is
// followed by the methods it calls, starting from the function at the
// cursor.
func (f *Facade) SortDescendants(ctx context.Context) (*Result, error) {
	res := &Result{}
	t, err := f.enclosing(ctx, res)
	if err != nil {
		return res, err
	}

	prof := t.prof
	methods := f.scope(t)
	detector := callgraph.NewRegexDetector(prof)
	graph := callgraph.NewBuilder(detector).Build(methods, func(m *symbols.Symbol) string {
		return t.doc.GetText(m.Range)
	})
	ordered := callgraph.Order(t.fn, graph, methods)
	res.Graph = graph.Map()

	res.say(f.logger, slog.LevelInfo, msgRecommended)
	for _, m := range ordered {
		res.Order = append(res.Order, m.Name)
		res.say(f.logger, slog.LevelInfo, "- %s", m.Name)
	}
	f.logger.Debug("Built call graph", "methods", len(methods), "graph", graph.String())

	if len(ordered) <= 1 {
		res.say(f.logger, slog.LevelInfo, msgNothingToSort, t.fn.Name)
		return res, nil
	}

	edits, err := relocate.Relocate(t.doc, ordered, t.fn, relocate.Options{LineComment: prof.LineComment})
	if err != nil {
		return res, err
	}
	if err := f.host.ApplyEdits(ctx, t.doc, CommandSort, edits); err != nil {
		return res, f.providerFailure(res, err)
	}
	res.EditCount = len(edits)

	if fm, ok := f.host.(Formatter); ok && f.opts.Format {
		if err := fm.FormatDocument(ctx, t.doc.Path); err != nil {
			f.logger.Warn("Format after sort failed", "path", t.doc.Path, "error", err)
		}
	}
	return res, nil
}

// scope returns the methods taking part in the dependency analysis.
func (f *Facade) scope(t *target) []*symbols.Symbol {
	if f.opts.Scope == config.ScopeDocument {
		return symbols.Methods(t.forest, t.locate)
	}
	return symbols.Siblings(t.forest, t.fn, t.locate)
}

// locateOptions fills in the constructor sentinel from prof when the
// options leave it unset.
func (f *Facade) locateOptions(prof profile.Profile) symbols.Options {
	opts := f.opts.Locate
	if opts.Sentinel == "" {
		opts.Sentinel = prof.ConstructorSentinel
	}
	if opts.Sentinel == "" {
		opts.Sentinel = symbols.DefaultSentinel
	}
	return opts
}

func (f *Facade) profileFor(doc *textdoc.Document) profile.Profile {
	lang, _ := syntax.LanguageFromPath(doc.Path)
	return f.opts.Profiles.For(string(lang))
}

func (f *Facade) providerFailure(res *Result, err error) error {
	res.say(f.logger, slog.LevelError, msgExpandError, err)
	if errors.CodeOf(err) != "" {
		return err
	}
	return errors.New(errors.ProviderFailure, "host operation failed", err)
}
