package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/CrocodileWoodGordon/todolist/internal/ui"
	"github.com/CrocodileWoodGordon/todolist/todo"
)

// printItemTable prints entries in a table format.
func printItemTable(w io.Writer, entries []todo.Entry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No todos found.")
		return
	}

	fmt.Fprint(w, formatItemTable(entries, now))
}

func formatItemTable(entries []todo.Entry, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"#", "DEADLINE", "DUE", "PRI", "STATUS", "NAME"}, len(entries))
	builder.SetAlign(0, ui.AlignRight).SetAlign(3, ui.AlignRight)

	for _, entry := range entries {
		due := "-"
		if !entry.Item.Completed {
			due = ui.FormatDueIn(entry.Item.Deadline, now)
		}
		builder.AddRow([]string{
			strconv.Itoa(entry.Index),
			ui.FormatDeadline(entry),
			due,
			ui.FormatPriority(entry.Item.Priority),
			ui.FormatStatus(entry.Item.Completed),
			ui.TruncateTableCell(entry.Item.Name),
		})
	}

	return builder.String()
}
