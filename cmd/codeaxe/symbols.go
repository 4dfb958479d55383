package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeaxe/internal/envelope"
	"codeaxe/internal/symbols"
	"codeaxe/internal/textdoc"
)

var symbolsDump bool

var symbolsCmd = &cobra.Command{
	Use:   "symbols FILE",
	Short: "Print the symbol tree the provider reports for FILE",
	Long: `Print the symbol tree of FILE as the selected provider reports it.

With --dump the tree is written in the YAML format accepted by --symbols,
which is useful for pinning a provider's output in tests.`,
	Args: cobra.ExactArgs(1),
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().BoolVar(&symbolsDump, "dump", false, "Write a YAML symbol dump")
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(args[0], false)
	if err != nil {
		return err
	}
	defer env.Close()

	provider, err := env.provider("")
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	ctx, cancel := newContext()
	defer cancel()
	forest, err := provider.DocumentSymbols(ctx, textdoc.New(path, string(data)))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if symbolsDump {
		return symbols.WriteDump(w, forest)
	}
	switch OutputFormat(formatFlag) {
	case FormatJSON:
		s, err := formatJSON(envelope.New().Data(forest).Provider(env.providerName()).Build())
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
	default:
		fmt.Fprint(w, formatSymbolsHuman(forest))
	}
	return nil
}
