package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeaxe/internal/errors"
	"codeaxe/internal/host"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and revert recorded edits",
	Long:  "Every cut and sort applied to a file is recorded in .codeaxe/history.db and can be reverted.",
}

var historyListCmd = &cobra.Command{
	Use:   "list [FILE]",
	Short: "List recorded edits, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryList,
}

var historyUndoCmd = &cobra.Command{
	Use:   "undo FILE",
	Short: "Revert the last recorded edit of FILE",
	Long: `Revert the last cut or sort applied to FILE. The file must still hold
exactly what that command produced; otherwise nothing is changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryUndo,
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries (0 for all)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyUndoCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	env, err := newEnvironment(target, true)
	if err != nil {
		return err
	}
	defer env.Close()
	if env.history == nil {
		return errors.New(errors.ConfigError, "edit history is disabled", nil)
	}

	docPath := ""
	if target != "" {
		docPath = host.HistoryKey(env.root, target)
	}
	ctx, cancel := newContext()
	defer cancel()
	groups, err := env.history.List(ctx, docPath, historyLimit)
	if err != nil {
		return err
	}

	if OutputFormat(formatFlag) == FormatJSON {
		s, err := formatJSON(groups)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), formatHistoryHuman(groups))
	return nil
}

func runHistoryUndo(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(args[0], true)
	if err != nil {
		return err
	}
	defer env.Close()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	h := &host.FileHost{Root: env.root, Path: path, History: env.history, Logger: env.logger}

	ctx, cancel := newContext()
	defer cancel()
	g, err := h.Undo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Undid %s (%s) on %s\n", g.Command, g.ID, g.DocPath)
	return nil
}
