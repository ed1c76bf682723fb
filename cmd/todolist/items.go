package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CrocodileWoodGordon/todolist/internal/editor"
	"github.com/CrocodileWoodGordon/todolist/internal/listflags"
	"github.com/CrocodileWoodGordon/todolist/internal/markdown"
	"github.com/CrocodileWoodGordon/todolist/todo"
)

// add
var addCmd = &cobra.Command{
	Use:   "add [name...]",
	Short: "Add a todo",
	Long: `Add a todo.

Without a name, opens $EDITOR on a TOML template when running
interactively. Use --edit to open the editor even when a name is given.`,
	RunE: runAdd,
}

var (
	addDeadline string
	addPriority string
	addEdit     bool
)

// list
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List todos in display order",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var (
	listJSON    bool
	listPending bool
)

// show
var showCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Show one todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showJSON bool

// toggle
var toggleCmd = &cobra.Command{
	Use:     "toggle <index>",
	Short:   "Mark a todo done, or pending again",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE:    runToggle,
}

// delete
var deleteCmd = &cobra.Command{
	Use:     "delete <index>",
	Short:   "Delete a todo",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

const detailLineWidth = 80

func init() {
	rootCmd.AddCommand(addCmd, listCmd, showCmd, toggleCmd, deleteCmd)

	addItemFlagAliases(addCmd)
	addCmd.Flags().StringVarP(&addDeadline, "deadline", "d", "", "Deadline as YYYY-MM-DD")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority from 1 (most urgent) to 256, or High/Medium/Low (default 128)")
	addCmd.Flags().BoolVarP(&addEdit, "edit", "e", false, "Open $EDITOR (default if interactive and no name is given)")

	listflags.AddJSONFlag(listCmd, &listJSON)
	listflags.AddPendingFlag(listCmd, &listPending)

	listflags.AddJSONFlag(showCmd, &showJSON)
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	var priority any = todo.PriorityDefault
	if cmd.Flags().Changed("priority") {
		priority = addPriority
	}
	deadline := addDeadline

	if shouldUseEditor(len(args) > 0, addEdit, editor.IsInteractive()) {
		data := editor.DefaultCreateData()
		data.Name = name
		data.Deadline = deadline
		data.Priority = todo.NormalizePriority(priority)

		parsed, err := editor.EditItem(data)
		if err != nil {
			return err
		}
		name = parsed.Name
		deadline = string(parsed.Deadline)
		priority = parsed.Priority
	}

	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	item, err := s.store.Add(name, deadline, priority)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (priority %d)\n", item.Name, item.Priority)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	now := s.store.Now()
	entries := s.store.View(now)
	if listPending {
		entries = pendingEntries(entries)
	}

	if listJSON {
		if entries == nil {
			entries = []todo.Entry{}
		}
		return encodeJSON(cmd.OutOrStdout(), entries)
	}
	printItemTable(cmd.OutOrStdout(), entries, now)
	return nil
}

// pendingEntries drops completed rows. Indices are left alone so they still
// address the full display order.
func pendingEntries(entries []todo.Entry) []todo.Entry {
	pending := make([]todo.Entry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Item.Completed {
			pending = append(pending, entry)
		}
	}
	return pending
}

func runShow(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	entries := s.store.View(s.store.Now())
	if index >= len(entries) {
		return noItemAt(index)
	}
	entry := entries[index]

	if showJSON {
		return encodeJSON(cmd.OutOrStdout(), entry)
	}
	rendered := markdown.SafeRender(detailLineWidth, 0, []byte(markdown.ItemDetail(entry)))
	fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	item, ok, err := s.store.ToggleAt(index)
	if err != nil {
		return err
	}
	if !ok {
		return noItemAt(index)
	}
	if item.Completed {
		fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", item.Name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s\n", item.Name)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	item, ok, err := s.store.DeleteAt(index)
	if err != nil {
		return err
	}
	if !ok {
		return noItemAt(index)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", item.Name)
	return nil
}

// parseIndex reads a display index. Negative values are reported as missing.
func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", arg)
	}
	if index < 0 {
		return 0, noItemAt(index)
	}
	return index, nil
}
