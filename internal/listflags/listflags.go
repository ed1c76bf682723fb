// Package listflags holds flags shared by commands that print the list.
package listflags

import "github.com/spf13/cobra"

// AddPendingFlag adds --pending, which hides completed todos.
func AddPendingFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "pending", false, "Hide completed todos")
}

// AddJSONFlag adds --json for machine-readable output.
func AddJSONFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "json", false, "Output as JSON")
}
