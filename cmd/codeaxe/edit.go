package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codeaxe/internal/commands"
	"codeaxe/internal/envelope"
	"codeaxe/internal/errors"
	"codeaxe/internal/host"
)

var (
	lineFlag   int
	colFlag    int
	outFlag    string
	dryRunFlag bool
)

var expandCmd = &cobra.Command{
	Use:   "expand FILE --line L [--col C]",
	Short: "Show the range of the function enclosing the cursor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEditCommand(cmd, args[0], (*commands.Facade).Expand)
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy FILE --line L [--col C] [--out PATH]",
	Short: "Print the function enclosing the cursor",
	Long: `Print the full text of the function enclosing the cursor, or write it
to --out. The text is exactly the function's range, without its comments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEditCommand(cmd, args[0], (*commands.Facade).Copy)
	},
}

var cutCmd = &cobra.Command{
	Use:   "cut FILE --line L [--col C] [--out PATH] [--dry-run]",
	Short: "Remove the function enclosing the cursor",
	Long: `Remove the function enclosing the cursor from FILE. The removed text is
printed (or written to --out). With --dry-run the file is left alone and
the edited document is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEditCommand(cmd, args[0], (*commands.Facade).Cut)
	},
}

var sortCmd = &cobra.Command{
	Use:   "sort FILE --line L [--col C] [--dry-run]",
	Short: "Reorder methods by call dependency starting at the cursor",
	Long: `Reorder the methods around the one at the cursor so that each method is
followed by the methods it calls, depth first. Methods not reachable from
the starting method stay where they are.

Examples:
  codeaxe sort src/widget.ts --line 42
  codeaxe sort main.go --line 10 --dry-run --provider lsp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEditCommand(cmd, args[0], (*commands.Facade).SortDescendants)
	},
}

func init() {
	for _, c := range []*cobra.Command{expandCmd, copyCmd, cutCmd, sortCmd} {
		c.Flags().IntVarP(&lineFlag, "line", "l", 0, "Cursor line (1-based)")
		c.Flags().IntVarP(&colFlag, "col", "c", 1, "Cursor column (1-based, bytes)")
		_ = c.MarkFlagRequired("line")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{copyCmd, cutCmd} {
		c.Flags().StringVarP(&outFlag, "out", "o", "", "Write the function text to this file instead of stdout")
	}
	for _, c := range []*cobra.Command{cutCmd, sortCmd} {
		c.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Print the edited document instead of writing it")
	}
}

type commandFunc func(*commands.Facade, context.Context) (*commands.Result, error)

func runEditCommand(cmd *cobra.Command, file string, run commandFunc) error {
	env, err := newEnvironment(file, !dryRunFlag)
	if err != nil {
		return err
	}
	defer env.Close()

	h, err := env.fileHost(file, lineFlag, colFlag)
	if err != nil {
		return err
	}
	h.DryRun = dryRunFlag

	clip, closeClip, err := clipboardWriter(cmd)
	if err != nil {
		return err
	}
	defer closeClip()
	h.Clipboard = clip

	ctx, cancel := newContext()
	defer cancel()

	res, runErr := run(commands.New(h, env.options(), env.logger), ctx)
	return report(cmd.OutOrStdout(), h, env.providerName(), res, runErr)
}

// clipboardWriter returns where copied text goes: --out when set, stdout
// for human output unless a dry-run document is printed there, otherwise
// nowhere (JSON output carries the text itself).
func clipboardWriter(cmd *cobra.Command) (io.Writer, func(), error) {
	if outFlag != "" {
		f, err := os.Create(outFlag)
		if err != nil {
			return nil, func() {}, fmt.Errorf("create %s: %w", outFlag, err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	if OutputFormat(formatFlag) == FormatHuman && !dryRunFlag {
		return cmd.OutOrStdout(), func() {}, nil
	}
	return nil, func() {}, nil
}

// editOutput is the JSON shape of an edit command.
type editOutput struct {
	*commands.Result
	Preview string `json:"preview,omitempty"`
}

func report(w io.Writer, h *host.FileHost, providerName string, res *commands.Result, runErr error) error {
	out := editOutput{Result: res}
	if h.DryRun && res != nil && res.EditCount > 0 {
		out.Preview, _ = h.Text()
	}

	switch OutputFormat(formatFlag) {
	case FormatJSON:
		resp := envelope.New().Data(out).Provider(providerName).Error(runErr).Build()
		s, err := formatJSON(resp)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
		if runErr != nil {
			return silentError{runErr}
		}
		return nil
	case FormatHuman:
		fmt.Fprint(os.Stderr, formatEditHuman(out))
		if out.Preview != "" {
			fmt.Fprint(w, out.Preview)
		}
		if runErr != nil && errors.IsNonFatal(runErr) && res != nil && len(res.Messages) > 0 {
			return silentError{runErr}
		}
		return runErr
	default:
		return fmt.Errorf("unsupported format: %s", formatFlag)
	}
}

// silentError carries an exit status for an error already reported on
// stdout.
type silentError struct{ err error }

func (e silentError) Error() string { return e.err.Error() }
func (e silentError) Unwrap() error { return e.err }
