package ui

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/CrocodileWoodGordon/todolist/internal/age"
	"github.com/CrocodileWoodGordon/todolist/todo"
)

const (
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiReset  = "\x1b[0m"
)

// ansiEnabled is swapped out by tests.
var ansiEnabled = func() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func paint(code, value string) string {
	if value == "" || !ansiEnabled() {
		return value
	}
	return code + value + ansiReset
}

// FormatPriority renders a priority number colored by its bucket.
func FormatPriority(priority int) string {
	value := fmt.Sprint(priority)
	switch todo.PriorityBucket(priority) {
	case todo.BucketHigh:
		return paint(ansiBold+ansiRed, value)
	case todo.BucketMedium:
		return paint(ansiYellow, value)
	default:
		return paint(ansiGreen, value)
	}
}

// FormatStatus renders the completion checkbox.
func FormatStatus(completed bool) string {
	if completed {
		return paint(ansiDim, "[x]")
	}
	return "[ ]"
}

// FormatDeadline renders an entry's deadline with the expiry marker.
func FormatDeadline(entry todo.Entry) string {
	value := entry.Item.Deadline.String()
	if entry.Expired {
		return paint(ansiRed, value+" · Expired")
	}
	return value
}

// FormatDueIn describes how far a deadline is from now's day, e.g. "in 3d",
// "today" or "2d ago". It returns "-" without a deadline.
func FormatDueIn(deadline todo.Deadline, now time.Time) string {
	day, ok := deadline.Day(now.Location())
	if !ok {
		return "-"
	}
	days := age.DaysUntil(day, now)
	switch {
	case days == 0:
		return "today"
	case days > 0:
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("%dd ago", -days)
	}
}
