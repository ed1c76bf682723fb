package todo

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/CrocodileWoodGordon/todolist/internal/age"
)

// Order returns items in display order without modifying the input:
// items with a deadline first, earlier deadlines first, then lower priority
// numbers, then names in locale order. Ties keep their canonical order.
func Order(items []Item) []Item {
	ordered := make([]Item, len(items))
	copy(ordered, items)

	names := newNameCollator()
	sort.SliceStable(ordered, func(i, j int) bool {
		return compareItems(names, ordered[i], ordered[j]) < 0
	})
	return ordered
}

// newNameCollator returns a root-locale collator. Collators are not safe for
// concurrent use, so each Order call builds its own.
func newNameCollator() *collate.Collator {
	return collate.New(language.Und)
}

func compareItems(names *collate.Collator, a, b Item) int {
	if a.Deadline.IsSet() != b.Deadline.IsSet() {
		if a.Deadline.IsSet() {
			return -1
		}
		return 1
	}
	if c := strings.Compare(string(a.Deadline), string(b.Deadline)); c != 0 {
		return c
	}
	pa, pb := ClampPriority(a.Priority), ClampPriority(b.Priority)
	if pa != pb {
		if pa < pb {
			return -1
		}
		return 1
	}
	if c := names.CompareString(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// IsExpired reports whether an incomplete item's deadline day is before the
// day of now, using now's location for the day boundary.
func IsExpired(item Item, now time.Time) bool {
	if item.Completed {
		return false
	}
	day, ok := item.Deadline.Day(now.Location())
	if !ok {
		return false
	}
	return day.Before(age.StartOfDay(now))
}

// BuildView orders items and annotates each row for rendering.
func BuildView(items []Item, now time.Time) []Entry {
	ordered := Order(items)
	entries := make([]Entry, len(ordered))
	for i, item := range ordered {
		entries[i] = Entry{
			Index:   i,
			Item:    item,
			Expired: IsExpired(item, now),
			Bucket:  PriorityBucket(item.Priority),
		}
	}
	return entries
}
