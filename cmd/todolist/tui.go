package main

import (
	"github.com/spf13/cobra"

	"github.com/CrocodileWoodGordon/todolist/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive UI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	return tui.Run(cmd.Context(), s.store, tui.Options{
		ExportDir: s.cfg.Export.Dir,
		Logger:    s.logger,
	})
}
