package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/CrocodileWoodGordon/todolist/internal/markdown"
	"github.com/CrocodileWoodGordon/todolist/todo"
)

type entryItem struct {
	entry todo.Entry
}

func (item entryItem) FilterValue() string {
	return item.entry.Item.Name
}

type entryDelegate struct {
	normalStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	doneStyle     lipgloss.Style
}

func newEntryDelegate() entryDelegate {
	return entryDelegate{
		normalStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")),
		doneStyle:     valueMuted.Strikethrough(true),
	}
}

func (d entryDelegate) Height() int                             { return 1 }
func (d entryDelegate) Spacing() int                            { return 0 }
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d entryDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(entryItem)
	if !ok {
		return
	}

	style := d.normalStyle
	if index == m.Index() {
		style = d.selectedStyle
	} else if item.entry.Item.Completed {
		style = d.doneStyle
	}
	fmt.Fprint(w, formatEntry(item.entry, m.Width(), style))
}

// formatEntry lays out "[x] name  deadline  Priority N", shrinking the name
// first when the row does not fit.
func formatEntry(entry todo.Entry, width int, style lipgloss.Style) string {
	check := "[ ]"
	if entry.Item.Completed {
		check = "[x]"
	}
	deadline := valueMuted.Render(entry.Item.Deadline.String())
	if entry.Expired {
		deadline = valueMuted.Render(entry.Item.Deadline.String()+" · ") + expiredStyle.Render("Expired")
	}
	badge := priorityStyle(entry.Bucket).Render(fmt.Sprintf(" Priority %d ", entry.Item.Priority))

	suffix := "  " + deadline + "  " + badge
	name := entry.Item.Name
	if width > 0 {
		room := width - runewidth.StringWidth(check) - 1 - lipgloss.Width(suffix)
		if room < 4 {
			return style.Render(truncateText(check+" "+name, width))
		}
		name = truncateText(name, room)
	}
	return style.Render(check+" "+name) + suffix
}

type detailModel struct {
	entry    todo.Entry
	selected bool
	viewport viewport.Model
}

func newDetailModel() detailModel {
	return detailModel{viewport: viewport.New(0, 0)}
}

func (model *detailModel) SetEntry(entry todo.Entry) {
	model.entry = entry
	model.selected = true
	model.refresh(true)
}

func (model *detailModel) Clear() {
	model.entry = todo.Entry{}
	model.selected = false
	model.refresh(true)
}

func (model *detailModel) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	model.viewport.Width = width
	model.viewport.Height = height
	model.refresh(false)
}

func (model detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	var cmd tea.Cmd
	model.viewport, cmd = model.viewport.Update(msg)
	return model, cmd
}

func (model detailModel) View() string {
	return model.viewport.View()
}

func (model *detailModel) refresh(reset bool) {
	model.viewport.SetContent(model.renderContent())
	if reset {
		model.viewport.GotoTop()
	}
}

func (model detailModel) renderContent() string {
	if !model.selected {
		return valueMuted.Render("No todo selected")
	}
	width := model.viewport.Width
	if width <= 0 {
		width = 40
	}
	rendered := markdown.SafeRender(width, 0, []byte(markdown.ItemDetail(model.entry)))
	return strings.TrimRight(string(rendered), "\n")
}

func truncateText(value string, width int) string {
	if width <= 0 {
		return value
	}
	return runewidth.Truncate(value, width, "...")
}
