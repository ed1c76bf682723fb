// Package todo implements a deadline-aware todo list.
//
// Items live in an insertion-ordered canonical sequence that is mirrored to a
// key-value store on every mutation. Display order is always derived from
// that sequence (see Order) and is what user-facing indices refer to.
//
// The public API mirrors the CLI commands:
//   - Add, DeleteAt, ToggleAt for item lifecycle
//   - View, Items for querying
//   - Export, Import for bulk transfer
package todo

import (
	"encoding/json"
	"fmt"
	"time"
)

// Item is a single task record.
type Item struct {
	// ID is an opaque process-local identifier. It is never persisted or exported.
	ID string `json:"-"`

	// Name is the trimmed, non-empty label of the item.
	Name string `json:"name"`

	// Deadline is the optional calendar day the item is due.
	Deadline Deadline `json:"deadline"`

	// Priority is the normalized urgency in [PriorityMin, PriorityMax]; lower is more urgent.
	Priority int `json:"priority"`

	// Completed reports whether the item has been checked off.
	Completed bool `json:"completed"`
}

// DeadlineLayout is the on-disk and on-screen format of a deadline.
const DeadlineLayout = "2006-01-02"

// Deadline is a calendar day, written as zero-padded YYYY-MM-DD by Add.
// Stored and imported text is kept verbatim, so Day can fail. The empty
// value means no deadline.
type Deadline string

// NoDeadline is the absent deadline.
const NoDeadline Deadline = ""

// IsSet reports whether a deadline is present.
func (d Deadline) IsSet() bool {
	return d != NoDeadline
}

// String returns the day, or "No Deadline" when absent.
func (d Deadline) String() string {
	if !d.IsSet() {
		return "No Deadline"
	}
	return string(d)
}

// Day parses the deadline as midnight in loc.
func (d Deadline) Day(loc *time.Location) (time.Time, bool) {
	if !d.IsSet() {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(DeadlineLayout, string(d), loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// MarshalJSON writes an absent deadline as null.
func (d Deadline) MarshalJSON() ([]byte, error) {
	if !d.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON reads null and "" as an absent deadline.
func (d *Deadline) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = NoDeadline
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("deadline: %w", err)
	}
	*d = Deadline(value)
	return nil
}

// ParseDeadline validates user input. Blank input yields NoDeadline.
func ParseDeadline(value string) (Deadline, error) {
	if value == "" {
		return NoDeadline, nil
	}
	day, err := time.Parse(DeadlineLayout, value)
	if err != nil {
		return NoDeadline, fmt.Errorf("%w: %q", ErrInvalidDeadline, value)
	}
	// Reject non-canonical spellings so lexical order stays chronological.
	if day.Format(DeadlineLayout) != value {
		return NoDeadline, fmt.Errorf("%w: %q", ErrInvalidDeadline, value)
	}
	return Deadline(value), nil
}

// Entry is one row of the read-only display view handed to renderers.
type Entry struct {
	// Index is the display-order position used by DeleteAt and ToggleAt.
	Index int `json:"index"`

	Item Item `json:"item"`

	// Expired is true for incomplete items whose deadline day has passed.
	Expired bool `json:"expired"`

	// Bucket is the priority display label.
	Bucket Bucket `json:"bucket"`
}

// MarshalJSON flattens the item fields into the entry object.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index     int      `json:"index"`
		Name      string   `json:"name"`
		Deadline  Deadline `json:"deadline"`
		Priority  int      `json:"priority"`
		Completed bool     `json:"completed"`
		Expired   bool     `json:"expired"`
		Bucket    Bucket   `json:"bucket"`
	}{
		Index:     e.Index,
		Name:      e.Item.Name,
		Deadline:  e.Item.Deadline,
		Priority:  e.Item.Priority,
		Completed: e.Item.Completed,
		Expired:   e.Expired,
		Bucket:    e.Bucket,
	})
}
