// Package main implements the todolist CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var silent exitError
		if !errors.As(err, &silent) || silent.err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "todolist",
	Short: "A deadline-aware todo list",
	Long: `A deadline-aware todo list.

Run without a subcommand to open the interactive UI. Items are shown
dated first (earliest deadline first), then by priority (1 is most
urgent, 256 least), then by name. Commands that take an <index> use
the position shown by "todolist list".`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var (
	rootConfigPath string
	rootStorePath  string
	rootBackend    string
	rootLogLevel   string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "Project config file (default ./todolist.toml)")
	flags.StringVar(&rootStorePath, "store", "", "Data file for the storage backend")
	flags.StringVar(&rootBackend, "backend", "", "Storage backend (file, sqlite, memory)")
	flags.StringVar(&rootLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}
