package lsp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"codeaxe/internal/config"
)

// Client is a short-lived session with one language server process.
type Client struct {
	conn   *Conn
	stdin  io.Closer
	cmd    *exec.Cmd
	logger *slog.Logger

	Capabilities map[string]any
}

// Start spawns the configured server in root.
func Start(ctx context.Context, server config.LspServerConfig, root string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cmd := exec.Command(server.Command, server.Args...)
	cmd.Dir = root
	cmd.Stderr = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", server.Command, err)
	}
	logger.Debug("Started language server", "command", server.Command, "pid", cmd.Process.Pid)

	c := NewClient(stdout, stdin, logger)
	c.cmd = cmd
	return c, nil
}

// NewClient creates a client over an existing stream pair.
func NewClient(r io.Reader, w io.WriteCloser, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		conn:   NewConn(r, w, logger),
		stdin:  w,
		logger: logger,
	}
}

// Initialize performs the initialize handshake for rootURI.
func (c *Client) Initialize(ctx context.Context, rootURI string) error {
	params := map[string]any{
		"processId": os.Getpid(),
		"rootUri":   rootURI,
		"workspaceFolders": []map[string]any{
			{"uri": rootURI, "name": "root"},
		},
		"capabilities": map[string]any{
			"general": map[string]any{
				"positionEncodings": []string{"utf-16"},
			},
			"textDocument": map[string]any{
				"documentSymbol": map[string]any{
					"hierarchicalDocumentSymbolSupport": true,
				},
				"synchronization": map[string]any{},
			},
		},
	}

	var result struct {
		Capabilities map[string]any `json:"capabilities"`
	}
	if err := c.conn.Call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("initialize request failed: %w", err)
	}
	c.Capabilities = result.Capabilities

	if err := c.conn.Notify("initialized", map[string]any{}); err != nil {
		return fmt.Errorf("initialized notification failed: %w", err)
	}
	return nil
}

// DidOpen announces the document's content to the server.
func (c *Client) DidOpen(uri, languageID, text string) error {
	return c.conn.Notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": languageID,
			"version":    1,
			"text":       text,
		},
	})
}

// DocumentSymbols requests textDocument/documentSymbol for uri.
func (c *Client) DocumentSymbols(ctx context.Context, uri string) ([]wireSymbol, error) {
	var result []wireSymbol
	err := c.conn.Call(ctx, "textDocument/documentSymbol", map[string]any{
		"textDocument": map[string]any{"uri": uri},
	}, &result)
	return result, err
}

// Close sends shutdown and exit, then reaps the process.
func (c *Client) Close(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.conn.Call(shutdownCtx, "shutdown", nil, nil); err != nil {
		c.logger.Debug("LSP shutdown failed", "error", err)
	}
	_ = c.conn.Notify("exit", nil)
	_ = c.stdin.Close()

	if c.cmd == nil {
		return nil
	}
	waited := make(chan error, 1)
	go func() { waited <- c.cmd.Wait() }()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		_ = c.cmd.Process.Kill()
		<-waited
	}
	return nil
}
