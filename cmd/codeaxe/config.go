package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeaxe/internal/config"
	"codeaxe/internal/errors"
	"codeaxe/internal/paths"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage codeaxe configuration",
	Long:  "View and manage the configuration stored in .codeaxe/config.json",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long:  "Creates .codeaxe/config.json with the default settings in the workspace root.",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.New(errors.InternalError, "failed to get current directory", err)
	}
	root := paths.FindWorkspaceRoot(cwd)
	configPath := paths.ConfigPath(root)

	if _, statErr := os.Stat(configPath); statErr == nil && !configForce {
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s\n", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "Run 'codeaxe config init --force' to overwrite it.")
		return nil
	}

	if err := config.DefaultConfig().Save(root); err != nil {
		return errors.New(errors.InternalError, "failed to write config file", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment("", false)
	if err != nil {
		return err
	}
	defer env.Close()

	s, err := formatJSON(env.cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}
