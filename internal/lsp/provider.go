// Package lsp obtains document symbols from an external language server
// speaking the Language Server Protocol over stdio.
package lsp

import (
	"context"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"codeaxe/internal/config"
	"codeaxe/internal/errors"
	"codeaxe/internal/symbols"
	"codeaxe/internal/syntax"
	"codeaxe/internal/textdoc"
)

// DefaultTimeout bounds a whole symbol request including server startup.
const DefaultTimeout = 30 * time.Second

// Provider starts the configured server for the document's language, asks
// for its symbols and shuts the server down again.
type Provider struct {
	Root    string
	Servers map[string]config.LspServerConfig
	Timeout time.Duration
	Logger  *slog.Logger

	start func(ctx context.Context, server config.LspServerConfig, root string, logger *slog.Logger) (*Client, error)
}

var _ symbols.Provider = (*Provider)(nil)

// NewProvider creates a provider from the lsp section of the config.
func NewProvider(root string, cfg config.LspConfig, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := DefaultTimeout
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &Provider{
		Root:    root,
		Servers: cfg.Servers,
		Timeout: timeout,
		Logger:  logger,
		start:   Start,
	}
}

// Supports reports whether a server is configured for the document.
func (p *Provider) Supports(doc *textdoc.Document) bool {
	_, _, ok := p.serverFor(doc)
	return ok
}

func (p *Provider) DocumentSymbols(ctx context.Context, doc *textdoc.Document) ([]symbols.Symbol, error) {
	server, languageID, ok := p.serverFor(doc)
	if !ok {
		return nil, errors.New(errors.UnsupportedLanguage, "no language server configured for "+doc.Path, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	client, err := p.start(ctx, server, p.Root, p.Logger)
	if err != nil {
		return nil, errors.New(errors.ProviderFailure, "failed to start language server", err)
	}
	defer func() { _ = client.Close(context.Background()) }()

	if err := client.Initialize(ctx, fileURI(p.Root)); err != nil {
		return nil, errors.New(errors.ProviderFailure, "language server initialization failed", err)
	}

	uri := fileURI(p.absPath(doc.Path))
	if err := client.DidOpen(uri, languageID, doc.Text()); err != nil {
		return nil, errors.New(errors.ProviderFailure, "failed to open document in language server", err)
	}

	reply, err := client.DocumentSymbols(ctx, uri)
	if err != nil {
		return nil, errors.New(errors.ProviderFailure, "document symbol request failed", err)
	}
	p.Logger.Debug("Received document symbols", "path", doc.Path, "count", len(reply), "command", server.Command)
	return convertSymbols(doc, reply), nil
}

// Server returns the server configured for the document's language.
func (p *Provider) Server(doc *textdoc.Document) (config.LspServerConfig, bool) {
	server, _, ok := p.serverFor(doc)
	return server, ok
}

// serverFor maps the document language to a configured server and the LSP
// language identifier to announce.
func (p *Provider) serverFor(doc *textdoc.Document) (config.LspServerConfig, string, bool) {
	lang, ok := syntax.LanguageFromPath(doc.Path)
	if !ok {
		return config.LspServerConfig{}, "", false
	}
	languageID := string(lang)
	keys := []string{string(lang)}
	switch lang {
	case syntax.LangTSX:
		languageID = "typescriptreact"
		keys = append(keys, string(syntax.LangTypeScript))
	case syntax.LangJavaScript:
		keys = append(keys, string(syntax.LangTypeScript))
	}
	for _, k := range keys {
		if server, ok := p.Servers[k]; ok && server.Command != "" {
			return server, languageID, true
		}
	}
	return config.LspServerConfig{}, "", false
}

func (p *Provider) absPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if p.Root != "" {
		return filepath.Join(p.Root, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func fileURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
