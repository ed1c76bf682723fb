package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CrocodileWoodGordon/todolist/internal/download"
	"github.com/CrocodileWoodGordon/todolist/todo"
)

// export
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all todos to a JSON file",
	Long: `Export all todos to a JSON file named todolist-export-<millis>.json.

The file is written to --dir, or to export.dir from the config file.
Use --stdout to print the document instead.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportDir    string
	exportStdout bool
)

// import
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all todos with the contents of an export file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var importYes bool

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Directory to write the export to")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the export to stdout")

	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Replace without asking for confirmation")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	now := s.store.Now()
	if exportStdout {
		_, err := s.store.Export(download.Writer{W: cmd.OutOrStdout()}, now)
		return err
	}

	dir := s.cfg.Export.Dir
	if cmd.Flags().Changed("dir") {
		dir = exportDir
	}
	dest := &download.Dir{Path: dir}
	if _, err := s.store.Export(dest, now); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d todos to %s\n", s.store.Len(), dest.Saved)
	return nil
}

// confirmAll answers yes without asking.
type confirmAll struct{}

func (confirmAll) Confirm(string) (bool, error) {
	return true, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := todo.ReadImportFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	var prompter todo.Prompter = todo.StdioPrompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	if importYes {
		prompter = confirmAll{}
	}
	notifier := todo.NotifierFunc(func(message string) {
		fmt.Fprintln(cmd.OutOrStdout(), message)
	})

	result, err := s.store.Import(data, prompter, notifier)
	if err != nil {
		// Already reported through the notifier.
		return exitError{code: 1}
	}
	if result.Declined {
		fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
	}
	return nil
}
