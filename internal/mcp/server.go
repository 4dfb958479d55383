// Package mcp exposes the codeaxe commands as Model Context Protocol tools
// over stdio.
package mcp

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"

	"codeaxe/internal/commands"
	"codeaxe/internal/config"
	"codeaxe/internal/history"
	"codeaxe/internal/symbols"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// Workspace is what tool calls share.
type Workspace struct {
	Root    string
	Config  *config.Config
	Options commands.Options
	// History is optional.
	History *history.Store
	// Provider builds the symbol provider for a call. name is empty unless
	// the caller asked for a specific provider.
	Provider func(name string) (symbols.Provider, error)
}

// Server is the MCP server.
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *slog.Logger
	version string
	ws      *Workspace
	tools   map[string]ToolHandler
}

// NewServer creates a server reading stdin and writing stdout.
func NewServer(version string, ws *Workspace, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		logger:  logger,
		version: version,
		ws:      ws,
		tools:   make(map[string]ToolHandler),
	}
	s.RegisterTools()
	return s
}

// Start processes messages until stdin is exhausted or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("MCP server starting", "version", s.version, "root", s.ws.Root)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.readMessage()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				s.logger.Info("MCP server shutting down (EOF)")
				return nil
			}
			s.logger.Error("Error reading message", "error", err.Error())
			if s.scanner.Err() != nil {
				return err
			}
			if werr := s.writeMessage(failure(nil, ParseError, err.Error())); werr != nil {
				return werr
			}
			continue
		}

		if response := s.handleMessage(ctx, msg); response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response", "error", err.Error())
			}
		}
	}
}

// SetStdin sets the input stream (for testing)
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil
}

// SetStdout sets the output stream (for testing)
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}
