package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrocodileWoodGordon/todolist/todo"
)

// nameErrorDelay is how long the "Name is required" hint stays on screen.
const nameErrorDelay = 1800 * time.Millisecond

const nameRequiredText = "Name is required"

type formField int

const (
	fieldName formField = iota
	fieldDeadline
	fieldPriority
)

var formLabels = []string{"Name", "Deadline", "Priority"}

type addForm struct {
	inputs    []textinput.Model
	index     int
	nameError string
	errorSeq  int
}

type clearNameErrorMsg struct {
	seq int
}

func newAddForm() addForm {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "What needs doing?"

	deadline := textinput.New()
	deadline.Prompt = ""
	deadline.Placeholder = todo.DeadlineLayout
	deadline.CharLimit = len(todo.DeadlineLayout)

	priority := textinput.New()
	priority.Prompt = ""
	priority.SetValue(strconv.Itoa(todo.PriorityDefault))
	priority.CharLimit = 8

	form := addForm{inputs: []textinput.Model{name, deadline, priority}}
	form.inputs[fieldName].Focus()
	return form
}

func (f addForm) SetWidth(width int) addForm {
	if width < 10 {
		width = 10
	}
	for i := range f.inputs {
		f.inputs[i].Width = width
	}
	return f
}

func (f addForm) advance(delta int) addForm {
	f.inputs[f.index].Blur()
	f.index = (f.index + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.index].Focus()
	return f
}

func (f addForm) Update(msg tea.Msg) (addForm, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			return f.advance(1), nil
		case "shift+tab", "backtab", "up":
			return f.advance(-1), nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
	return f, cmd
}

func (f addForm) values() (name, deadline, priority string) {
	return f.inputs[fieldName].Value(),
		strings.TrimSpace(f.inputs[fieldDeadline].Value()),
		f.inputs[fieldPriority].Value()
}

// showNameError sets the inline hint and schedules its removal. Only the
// most recent timer clears it.
func (f addForm) showNameError() (addForm, tea.Cmd) {
	f.errorSeq++
	f.nameError = nameRequiredText
	seq := f.errorSeq
	return f, tea.Tick(nameErrorDelay, func(time.Time) tea.Msg {
		return clearNameErrorMsg{seq: seq}
	})
}

func (f addForm) clearNameError(msg clearNameErrorMsg) addForm {
	if msg.seq == f.errorSeq {
		f.nameError = ""
	}
	return f
}

func (f addForm) View() string {
	lines := make([]string, 0, len(f.inputs)+4)
	lines = append(lines, labelStyle.Render("New todo"), "")
	for i, input := range f.inputs {
		label := labelStyle.Render(formLabels[i])
		if i == f.index {
			label = selectedBorder.Render("> ") + label
		} else {
			label = "  " + label
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, input.View()))
		if formField(i) == fieldName && f.nameError != "" {
			lines = append(lines, "    "+statusErrorStyle.Render(f.nameError))
		}
	}
	lines = append(lines, "", valueMuted.Render("enter save | tab next field | esc cancel"))
	return strings.Join(lines, "\n")
}

type importPrompt struct {
	input textinput.Model
}

func newImportPrompt() importPrompt {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "path/to/todolist-export.json"
	input.Focus()
	return importPrompt{input: input}
}

func (p importPrompt) Update(msg tea.Msg) (importPrompt, tea.Cmd) {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p importPrompt) Path() string {
	return strings.TrimSpace(p.input.Value())
}

func (p importPrompt) View() string {
	lines := []string{
		labelStyle.Render("Import todos"),
		"",
		fmt.Sprintf("%s: %s", labelStyle.Render("File"), p.input.View()),
		"",
		valueMuted.Render("enter open | esc cancel"),
	}
	return strings.Join(lines, "\n")
}
