package main

import (
	"github.com/spf13/cobra"

	"codeaxe/internal/version"
)

var (
	providerFlag string
	symbolsFlag  string
	formatFlag   string
	configFlag   string
	verboseFlag  int
	quietFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "codeaxe",
	Short: "codeaxe - select, move and dependency-sort functions in source files",
	Long: `codeaxe finds the function enclosing a cursor position and can select,
copy or cut it, or reorder the methods around it so that every method is
followed by the methods it calls.

Symbols come from tree-sitter, a language server, a SCIP index or a symbol
dump file. Lines and columns are 1-based.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("codeaxe version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&providerFlag, "provider", "", "Symbol provider: auto, treesitter, lsp, scip (default from config)")
	flags.StringVar(&symbolsFlag, "symbols", "", "Read symbols from a YAML/JSON dump instead of a provider")
	flags.StringVar(&formatFlag, "format", "human", "Output format (json, human)")
	flags.StringVar(&configFlag, "config", "", "Config file (default .codeaxe/config.json in the workspace)")
	flags.CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.BoolVar(&quietFlag, "quiet", false, "Silence log output")
}
