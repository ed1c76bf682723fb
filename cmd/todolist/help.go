package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CrocodileWoodGordon/todolist/internal/config"
	"github.com/CrocodileWoodGordon/todolist/internal/kv"
	"github.com/CrocodileWoodGordon/todolist/internal/todoenv"
	"github.com/CrocodileWoodGordon/todolist/internal/validation"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Help about any command",
	Args:  cobra.ArbitraryArgs,
	RunE:  runHelp,
}

var helpConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config files, settings and environment overrides",
	Args:  cobra.NoArgs,
	RunE:  runHelpConfig,
}

func init() {
	rootCmd.SetHelpCommand(helpCmd)
	helpCmd.AddCommand(helpConfigCmd)
}

func runHelp(cmd *cobra.Command, args []string) error {
	root := cmd.Root()
	if len(args) == 0 {
		return root.Help()
	}

	target, _, err := root.Find(args)
	if err != nil || target == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown help topic %q\n", strings.Join(args, " "))
		return root.Help()
	}

	return target.Help()
}

func runHelpConfig(cmd *cobra.Command, args []string) error {
	globalPath, err := config.GlobalPath()
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("Files (project keys win):\n")
	fmt.Fprintf(&builder, "  %s\n", globalPath)
	fmt.Fprintf(&builder, "  ./%s\n", config.ProjectFile)
	builder.WriteString("\nSettings:\n")
	fmt.Fprintf(&builder, "  storage.backend  %s (default %s)\n", validation.FormatValidValues(kv.Backends), config.DefaultBackend)
	builder.WriteString("  storage.path     data file (default under ~/.local/share/todolist)\n")
	fmt.Fprintf(&builder, "  storage.key      key holding the list (default %s)\n", config.DefaultKey)
	fmt.Fprintf(&builder, "  export.dir       export directory (default %s)\n", config.DefaultExport)
	fmt.Fprintf(&builder, "  log.level        debug, info, warn, error (default %s)\n", config.DefaultLogLevel)
	builder.WriteString("  log.file         TUI log file (default ~/.local/state/todolist/todolist.log)\n")
	builder.WriteString("\nEnvironment (overrides files, overridden by flags):\n")
	for _, name := range []string{todoenv.BackendEnvVar, todoenv.StoreEnvVar, todoenv.ExportDirEnvVar, todoenv.LogLevelEnvVar} {
		fmt.Fprintf(&builder, "  %s\n", name)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), builder.String())
	return err
}
