package editor

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/BurntSushi/toml"

	"github.com/CrocodileWoodGordon/todolist/todo"
)

// ItemData represents the data used to render the TOML template.
type ItemData struct {
	Name     string
	Deadline string
	Priority int
}

// DefaultCreateData returns ItemData with default values for a new item.
func DefaultCreateData() ItemData {
	return ItemData{Priority: todo.PriorityDefault}
}

var itemTemplate = template.Must(template.New("item").Parse(`# Lines starting with # are ignored.
name = {{ printf "%q" .Name }}
deadline = {{ printf "%q" .Deadline }} # YYYY-MM-DD, empty for none
priority = {{ .Priority }} # 1 (most urgent) to 256, or "High", "Medium", "Low"
`))

// RenderItemTOML renders the item data as a TOML string for editing.
func RenderItemTOML(data ItemData) (string, error) {
	var buf bytes.Buffer
	if err := itemTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedItem is the validated result of an edit session.
type ParsedItem struct {
	Name     string
	Deadline todo.Deadline
	Priority int
}

type rawItem struct {
	Name     string `toml:"name"`
	Deadline string `toml:"deadline"`
	Priority any    `toml:"priority"`
}

// ParseItemTOML parses and validates the TOML content from the editor.
func ParseItemTOML(content string) (*ParsedItem, error) {
	var raw rawItem
	meta, err := toml.Decode(content, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}

	name, err := todo.ValidateName(raw.Name)
	if err != nil {
		return nil, err
	}
	deadline, err := todo.ParseDeadline(raw.Deadline)
	if err != nil {
		return nil, err
	}
	priority := todo.PriorityDefault
	if meta.IsDefined("priority") {
		priority = todo.NormalizePriority(raw.Priority)
	}

	return &ParsedItem{Name: name, Deadline: deadline, Priority: priority}, nil
}

// EditItem opens the editor pre-populated with data and returns the parsed result.
func EditItem(data ItemData) (*ParsedItem, error) {
	content, err := RenderItemTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "todolist-item-*.toml")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}

	return ParseItemTOML(string(edited))
}
