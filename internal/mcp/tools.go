package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"codeaxe/internal/commands"
	"codeaxe/internal/envelope"
	"codeaxe/internal/errors"
	"codeaxe/internal/host"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

// Tool describes a tool in tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler runs a tool call. Failures are carried in the envelope.
type ToolHandler func(ctx context.Context, args map[string]interface{}) *envelope.Response

func cursorSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "File path, absolute or relative to the workspace root",
		},
		"line": map[string]interface{}{
			"type":        "integer",
			"description": "1-based cursor line",
		},
		"column": map[string]interface{}{
			"type":        "integer",
			"default":     1,
			"description": "1-based cursor column in bytes",
		},
		"provider": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"auto", "treesitter", "lsp", "scip"},
			"description": "Symbol provider; defaults to the configured one",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   []string{"path", "line"},
	}
}

var dryRunProperty = map[string]interface{}{
	"dryRun": map[string]interface{}{
		"type":        "boolean",
		"default":     false,
		"description": "Return the edited text instead of writing the file",
	},
}

// GetToolDefinitions returns all tool definitions
func (s *Server) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "expandMethod",
			Description: "Find the innermost function, method or constructor enclosing the cursor and return its range",
			InputSchema: cursorSchema(nil),
		},
		{
			Name:        "copyMethod",
			Description: "Return the full text of the function enclosing the cursor",
			InputSchema: cursorSchema(nil),
		},
		{
			Name:        "cutMethod",
			Description: "Remove the function enclosing the cursor from the file and return its text",
			InputSchema: cursorSchema(dryRunProperty),
		},
		{
			Name:        "sortMethods",
			Description: "Reorder the methods next to the one at the cursor so each is followed by the methods it calls, depth first",
			InputSchema: cursorSchema(dryRunProperty),
		},
		{
			Name:        "listSymbols",
			Description: "List the symbol tree of a file as the configured provider reports it",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     map[string]interface{}{"type": "string"},
					"provider": map[string]interface{}{"type": "string"},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "undo",
			Description: "Revert the last cut or sort applied to a file",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{"type": "string"},
				},
				"required": []string{"path"},
			},
		},
	}
}

// RegisterTools registers all tool handlers
func (s *Server) RegisterTools() {
	s.tools["expandMethod"] = s.toolExpandMethod
	s.tools["copyMethod"] = s.toolCopyMethod
	s.tools["cutMethod"] = s.toolCutMethod
	s.tools["sortMethods"] = s.toolSortMethods
	s.tools["listSymbols"] = s.toolListSymbols
	s.tools["undo"] = s.toolUndo
}

// session builds a file host and facade for one call.
func (s *Server) session(args map[string]interface{}, needCursor bool) (*host.FileHost, *commands.Facade, string, error) {
	path, err := stringArg(args, "path", true)
	if err != nil {
		return nil, nil, "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.ws.Root, path)
	}

	h := &host.FileHost{
		Root:    s.ws.Root,
		Path:    path,
		History: s.ws.History,
		DryRun:  boolArg(args, "dryRun"),
		Logger:  s.logger,
	}
	if needCursor {
		line, err := intArg(args, "line", 0)
		if err != nil {
			return nil, nil, "", err
		}
		column, err := intArg(args, "column", 1)
		if err != nil {
			return nil, nil, "", err
		}
		h.Cursor = host.CursorFromFlags(line, column)
	}

	providerName, _ := stringArg(args, "provider", false)
	provider, err := s.ws.Provider(providerName)
	if err != nil {
		return nil, nil, "", err
	}
	h.Symbols = provider
	if providerName == "" && s.ws.Config != nil {
		providerName = s.ws.Config.Provider.Default
	}
	return h, commands.New(h, s.ws.Options, s.logger), providerName, nil
}

type commandFunc func(*commands.Facade, context.Context) (*commands.Result, error)

func (s *Server) runCommand(ctx context.Context, args map[string]interface{}, run commandFunc) *envelope.Response {
	h, facade, providerName, err := s.session(args, true)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	res, err := run(facade, ctx)
	b := envelope.New().Provider(providerName)
	if res != nil {
		if h.DryRun && res.EditCount > 0 {
			text, _ := h.Text()
			b.Data(dryRunResult{Result: res, Preview: text})
		} else {
			b.Data(res)
		}
	}
	return b.Error(err).Build()
}

type dryRunResult struct {
	*commands.Result
	Preview string `json:"preview"`
}

func (s *Server) toolExpandMethod(ctx context.Context, args map[string]interface{}) *envelope.Response {
	return s.runCommand(ctx, args, (*commands.Facade).Expand)
}

func (s *Server) toolCopyMethod(ctx context.Context, args map[string]interface{}) *envelope.Response {
	return s.runCommand(ctx, args, (*commands.Facade).Copy)
}

func (s *Server) toolCutMethod(ctx context.Context, args map[string]interface{}) *envelope.Response {
	return s.runCommand(ctx, args, (*commands.Facade).Cut)
}

func (s *Server) toolSortMethods(ctx context.Context, args map[string]interface{}) *envelope.Response {
	return s.runCommand(ctx, args, (*commands.Facade).SortDescendants)
}

func (s *Server) toolListSymbols(ctx context.Context, args map[string]interface{}) *envelope.Response {
	h, _, providerName, err := s.session(args, false)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	text, err := h.Text()
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	forest, err := h.DocumentSymbols(ctx, textdoc.New(h.Path, text))
	if err != nil {
		return envelope.New().Provider(providerName).Error(err).Build()
	}
	return envelope.New().Provider(providerName).Data(map[string]interface{}{
		"path":    h.Path,
		"count":   symbols.Count(forest),
		"symbols": forest,
	}).Build()
}

func (s *Server) toolUndo(ctx context.Context, args map[string]interface{}) *envelope.Response {
	path, err := stringArg(args, "path", true)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.ws.Root, path)
	}
	h := &host.FileHost{Root: s.ws.Root, Path: path, History: s.ws.History, Logger: s.logger}
	g, err := h.Undo(ctx)
	if err != nil {
		return envelope.New().Error(err).Build()
	}
	return envelope.New().
		Data(g).
		Messages(fmt.Sprintf("Undid %s on %s", g.Command, g.DocPath)).
		Build()
}

func stringArg(args map[string]interface{}, name string, required bool) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		if required {
			return "", errors.New(errors.InvalidArgument, fmt.Sprintf("%s is required", name), nil)
		}
		return "", nil
	}
	return v, nil
}

// intArg reads a JSON number. def is returned when the argument is absent;
// a zero def makes the argument required.
func intArg(args map[string]interface{}, name string, def int) (int, error) {
	raw, ok := args[name]
	if !ok {
		if def == 0 {
			return 0, errors.New(errors.InvalidArgument, fmt.Sprintf("%s is required", name), nil)
		}
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) || v < 1 {
			return 0, errors.New(errors.InvalidArgument, fmt.Sprintf("%s must be a positive integer", name), nil)
		}
		return int(v), nil
	default:
		return 0, errors.New(errors.InvalidArgument, fmt.Sprintf("%s must be a number", name), nil)
	}
}

func boolArg(args map[string]interface{}, name string) bool {
	v, _ := args[name].(bool)
	return v
}
