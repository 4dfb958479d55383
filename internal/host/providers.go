package host

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	"codeaxe/internal/config"
	"codeaxe/internal/errors"
	"codeaxe/internal/lsp"
	"codeaxe/internal/scip"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

// NewProvider builds the symbol provider named by name, falling back to the
// configured default when name is empty. A non-empty dumpPath always wins
// and serves symbols from that file.
func NewProvider(cfg *config.Config, root, name, dumpPath string, logger *slog.Logger) (symbols.Provider, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if dumpPath != "" {
		return &symbols.FileProvider{Path: dumpPath}, nil
	}
	if name == "" {
		name = cfg.Provider.Default
	}

	switch name {
	case config.ProviderTreeSitter:
		return newTreeSitter(cfg), nil
	case config.ProviderLsp:
		return lsp.NewProvider(root, cfg.Provider.Lsp, logger), nil
	case config.ProviderScip:
		return scip.NewProvider(root, config.ResolvePath(root, cfg.Provider.Scip.IndexPath), logger), nil
	case config.ProviderAuto:
		return &Auto{
			Lsp:        lsp.NewProvider(root, cfg.Provider.Lsp, logger),
			Scip:       scip.NewProvider(root, config.ResolvePath(root, cfg.Provider.Scip.IndexPath), logger),
			TreeSitter: newTreeSitter(cfg),
			Logger:     logger,
			lookPath:   exec.LookPath,
		}, nil
	case config.ProviderFile:
		return nil, errors.New(errors.ConfigError, "the file provider needs --symbols", nil)
	default:
		return nil, errors.New(errors.ConfigError, "unknown provider "+name, nil)
	}
}

func newTreeSitter(cfg *config.Config) *symbols.TreeSitterProvider {
	p := symbols.NewTreeSitterProvider()
	p.SentinelConstructors = cfg.Provider.TreeSitter.SentinelConstructors
	if cfg.Analysis.ConstructorSentinel != "" {
		p.Sentinel = cfg.Analysis.ConstructorSentinel
	}
	return p
}

// Auto picks a provider per document: a language server when one is
// configured and installed, then a SCIP index that covers the document,
// then tree-sitter.
type Auto struct {
	Lsp        *lsp.Provider
	Scip       *scip.Provider
	TreeSitter *symbols.TreeSitterProvider
	Logger     *slog.Logger

	lookPath func(string) (string, error)
}

var _ symbols.Provider = (*Auto)(nil)

func (a *Auto) DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]symbols.Symbol, error) {
	p, name := a.pick(doc)
	a.Logger.Debug("Selected symbol provider", "provider", name, "path", doc.Path)
	return p.DocumentSymbols(ctx, doc)
}

func (a *Auto) pick(doc *textdoc.Document) (symbols.Provider, string) {
	if a.Lsp != nil && a.Lsp.Supports(doc) && a.serverInstalled(doc) {
		return a.Lsp, config.ProviderLsp
	}
	if a.Scip != nil {
		if _, err := os.Stat(a.Scip.IndexPath); err == nil && a.Scip.Contains(doc) {
			return a.Scip, config.ProviderScip
		}
	}
	return a.TreeSitter, config.ProviderTreeSitter
}

func (a *Auto) serverInstalled(doc *textdoc.Document) bool {
	server, ok := a.Lsp.Server(doc)
	if !ok {
		return false
	}
	lookPath := a.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(server.Command)
	return err == nil
}
