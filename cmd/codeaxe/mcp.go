package main

import (
	"github.com/spf13/cobra"

	"codeaxe/internal/mcp"
	"codeaxe/internal/symbols"
	"codeaxe/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start a Model Context Protocol server speaking newline-delimited
JSON-RPC 2.0 on stdin/stdout. Logs go to stderr and the configured log file.

Tools:
  - expandMethod: range of the function enclosing a position
  - copyMethod:   text of that function
  - cutMethod:    remove that function from the file
  - sortMethods:  reorder methods by call dependency
  - listSymbols:  symbol tree of a file
  - undo:         revert the last cut or sort of a file`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment("", true)
	if err != nil {
		return err
	}
	defer env.Close()

	ws := &mcp.Workspace{
		Root:    env.root,
		Config:  env.cfg,
		Options: env.options(),
		History: env.history,
		Provider: func(name string) (symbols.Provider, error) {
			return env.provider(name)
		},
	}
	server := mcp.NewServer(version.Version, ws, env.logger)
	server.SetStdin(cmd.InOrStdin())
	server.SetStdout(cmd.OutOrStdout())

	ctx, cancel := newContext()
	defer cancel()
	if err := server.Start(ctx); err != nil {
		env.logger.Error("MCP server error", "error", err.Error())
		return err
	}
	return nil
}
