package todo

import (
	"errors"
	"fmt"

	internalstrings "github.com/CrocodileWoodGordon/todolist/internal/strings"
)

var (
	// ErrValidation is the category for rejected user or import input.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyName is returned when an item name is blank after trimming.
	ErrEmptyName = fmt.Errorf("%w: name is required", ErrValidation)

	// ErrInvalidDeadline is returned when a deadline is not a YYYY-MM-DD day.
	ErrInvalidDeadline = fmt.Errorf("%w: invalid deadline", ErrValidation)

	// ErrParse is returned when import data is not valid JSON.
	ErrParse = errors.New("invalid JSON")

	// ErrFormat is returned when import data is not an export envelope.
	ErrFormat = errors.New("invalid format")

	// ErrNotJSONFile is returned when an import file name does not end in .json.
	ErrNotJSONFile = errors.New("please select a JSON file")

	// ErrItemNotFound is returned when an item with the given ID doesn't exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrPersistenceRead marks a stored value that could not be loaded.
	// Load logs it and continues with an empty list.
	ErrPersistenceRead = errors.New("stored todos unreadable")
)

// ValidateName trims name and checks that something is left.
func ValidateName(name string) (string, error) {
	if internalstrings.IsBlank(name) {
		return "", ErrEmptyName
	}
	return internalstrings.TrimSpace(name), nil
}

// ValidatePriority checks if the priority is within [PriorityMin, PriorityMax].
func ValidatePriority(priority int) error {
	if priority < PriorityMin || priority > PriorityMax {
		return fmt.Errorf("%w: priority %d out of range", ErrValidation, priority)
	}
	return nil
}
