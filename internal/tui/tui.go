// Package tui is the interactive terminal front end for a todo.Store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/CrocodileWoodGordon/todolist/internal/download"
	internalstrings "github.com/CrocodileWoodGordon/todolist/internal/strings"
	"github.com/CrocodileWoodGordon/todolist/todo"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeImport
)

type statusLevel int

const (
	statusNone statusLevel = iota
	statusInfo
	statusError
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalImport
)

// Options configures Run.
type Options struct {
	// ExportDir receives export files. Defaults to the working directory.
	ExportDir string

	Logger *slog.Logger
}

type model struct {
	ctx         context.Context
	store       *todo.Store
	opts        Options
	logger      *slog.Logger
	width       int
	height      int
	mode        mode
	list        list.Model
	detail      detailModel
	form        addForm
	prompt      importPrompt
	modal       confirmModal
	pending     []todo.Item
	status      string
	statusLevel statusLevel
	selectedID  string
}

type confirmModal struct {
	kind        modalKind
	message     string
	confirmText string
	cancelText  string
	selected    int
}

type entriesLoadedMsg struct {
	entries []todo.Entry
}

type importReadMsg struct {
	path string
	data []byte
	err  error
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, store *todo.Store, opts Options) error {
	if store == nil {
		return fmt.Errorf("todo store is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	program := tea.NewProgram(newModel(ctx, store, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func newModel(ctx context.Context, store *todo.Store, opts Options) model {
	entries := list.New(nil, newEntryDelegate(), 0, 0)
	entries.Title = "Todos"
	entries.SetShowStatusBar(false)
	entries.SetFilteringEnabled(false)
	entries.SetShowHelp(false)
	entries.SetShowPagination(false)

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return model{
		ctx:    ctx,
		store:  store,
		opts:   opts,
		logger: logger,
		list:   entries,
		detail: newDetailModel(),
		form:   newAddForm(),
		prompt: newImportPrompt(),
		modal:  confirmModal{kind: modalNone},
	}
}

func (m model) Init() tea.Cmd {
	return m.loadEntriesCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.modal.kind != modalNone {
		return m.updateModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case entriesLoadedMsg:
		m.setEntries(msg.entries)
		return m, nil
	case clearNameErrorMsg:
		m.form = m.form.clearNameError(msg)
		return m, nil
	case importReadMsg:
		return m.handleImportRead(msg)
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAddForm(msg)
		case modeImport:
			return m.updateImportPrompt(msg)
		}
		updated, cmd, handled := m.handleKey(msg)
		if handled {
			return updated, cmd
		}
		m = updated
	}

	switch m.mode {
	case modeAdd:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case modeImport:
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading todos..."
	}
	contentHeight := m.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	leftWidth, rightWidth := splitWidths(m.width)

	right := m.detail.View()
	switch m.mode {
	case modeAdd:
		right = m.form.View()
	case modeImport:
		right = m.prompt.View()
	}

	listPane := m.renderPane(m.list.View(), leftWidth, contentHeight, m.mode == modeList)
	detailPane := m.renderPane(right, rightWidth, contentHeight, m.mode != modeList)
	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	view := strings.Join([]string{m.renderTitle(), m.renderHelpLine(), content, m.renderStatusLine()}, "\n")
	if m.modal.kind != modalNone {
		view = m.renderModalOverlay(view)
	}
	return view
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	key := msg.String()
	if key == "?" {
		return m.openHelp(), nil, true
	}

	if updated, cmd, handled := m.handleListNavigation(key); handled {
		return updated, cmd, true
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit, true
	case "a":
		m.form = newAddForm().SetWidth(m.inputWidth())
		m.mode = modeAdd
		return m, nil, true
	case " ", "enter":
		return m.toggleSelected(), nil, true
	case "d", "x":
		return m.deleteSelected(), nil, true
	case "e":
		return m.export(), nil, true
	case "i":
		m.prompt = newImportPrompt()
		m.prompt.input.Width = m.inputWidth()
		m.mode = modeImport
		return m, nil, true
	}
	return m, nil, false
}

func (m model) updateAddForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeList
		return m, nil
	case "enter":
		return m.submitAddForm()
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m model) submitAddForm() (tea.Model, tea.Cmd) {
	name, deadline, priority := m.form.values()
	item, err := m.store.Add(name, deadline, priority)
	switch {
	case errors.Is(err, todo.ErrEmptyName):
		var cmd tea.Cmd
		m.form, cmd = m.form.showNameError()
		return m, cmd
	case err != nil:
		m.logger.Warn("add todo failed", "error", err)
		m.setStatus(err.Error(), statusError)
		return m, nil
	}
	m.mode = modeList
	m.selectedID = item.ID
	m.refresh()
	m.setStatus(fmt.Sprintf("Added %s", item.Name), statusInfo)
	return m, nil
}

func (m model) updateImportPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeList
		return m, nil
	case "enter":
		path := m.prompt.Path()
		if err := todo.CheckImportFilename(path); err != nil {
			m.setStatus("Please select a JSON file", statusError)
			return m, nil
		}
		m.mode = modeList
		m.setStatus("Reading "+path+"...", statusNone)
		return m, m.readImportCmd(path)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m model) handleImportRead(msg importReadMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		todo.NotifyImportFailure(todo.NotifierFunc(m.notify), msg.err)
		return m, nil
	}
	items, err := todo.PrepareImport(msg.data, todo.NotifierFunc(m.notify))
	if err != nil {
		return m, nil
	}
	m.pending = items
	m.status = ""
	m.modal = confirmModal{
		kind:        modalImport,
		message:     wordwrap.String(todo.ImportConfirmMessage, m.modalTextWidth()),
		confirmText: "Import",
		cancelText:  "Cancel",
	}
	return m, nil
}

func (m model) toggleSelected() model {
	id, ok := m.store.ResolveDisplayIndex(m.list.Index())
	if !ok {
		return m
	}
	item, err := m.store.Toggle(id)
	if err != nil {
		m.logger.Warn("toggle todo failed", "id", id, "error", err)
		m.setStatus(err.Error(), statusError)
		return m
	}
	m.selectedID = item.ID
	m.refresh()
	return m
}

func (m model) deleteSelected() model {
	index := m.list.Index()
	id, ok := m.store.ResolveDisplayIndex(index)
	if !ok {
		return m
	}
	item, err := m.store.Delete(id)
	if err != nil {
		m.logger.Warn("delete todo failed", "id", id, "error", err)
		m.setStatus(err.Error(), statusError)
		return m
	}
	m.selectedID = ""
	m.refresh()
	if len(m.list.Items()) > 0 {
		if index >= len(m.list.Items()) {
			index = len(m.list.Items()) - 1
		}
		m.list.Select(index)
		m.updateSelection()
	}
	m.setStatus(fmt.Sprintf("Deleted %s", item.Name), statusInfo)
	return m
}

func (m model) export() model {
	dest := &download.Dir{Path: m.opts.ExportDir}
	if _, err := m.store.Export(dest, m.store.Now()); err != nil {
		m.logger.Warn("export failed", "error", err)
		m.setStatus("Export failed: "+err.Error(), statusError)
		return m
	}
	m.setStatus("Exported to "+dest.Saved, statusInfo)
	return m
}

func (m model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if size, isSize := msg.(tea.WindowSizeMsg); isSize {
			m.width = size.Width
			m.height = size.Height
			m.resize()
		}
		return m, nil
	}
	if m.modal.kind == modalHelp {
		switch key.String() {
		case "?", "esc":
			m.modal = confirmModal{kind: modalNone}
			return m, nil
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil
	}
	switch key.String() {
	case "left", "right", "tab", "shift+tab", "backtab":
		m.modal.selected = 1 - m.modal.selected
		return m, nil
	case "y":
		return m.resolveModal(true)
	case "n", "esc":
		return m.resolveModal(false)
	case "enter":
		return m.resolveModal(m.modal.selected == 0)
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) resolveModal(confirm bool) (tea.Model, tea.Cmd) {
	kind := m.modal.kind
	m.modal = confirmModal{kind: modalNone}
	if kind != modalImport {
		return m, nil
	}
	items := m.pending
	m.pending = nil
	if !confirm {
		m.logger.Debug("import declined")
		return m, nil
	}
	if _, err := m.store.ApplyImport(items, todo.NotifierFunc(m.notify)); err != nil {
		return m, nil
	}
	m.selectedID = ""
	m.refresh()
	return m, nil
}

// notify shows an import outcome on the status line.
func (m *model) notify(message string) {
	level := statusInfo
	if strings.HasPrefix(message, todo.ImportFailedPrefix) {
		level = statusError
	}
	m.setStatus(message, level)
}

func (m *model) refresh() {
	m.setEntries(m.store.View(m.store.Now()))
}

// setEntries swaps in a fresh view and keeps the cursor on the same item
// when it is still present.
func (m *model) setEntries(entries []todo.Entry) {
	items := make([]list.Item, 0, len(entries))
	selected := -1
	for i, entry := range entries {
		items = append(items, entryItem{entry: entry})
		if entry.Item.ID == m.selectedID {
			selected = i
		}
	}
	m.list.SetItems(items)
	if selected < 0 {
		selected = m.list.Index()
	}
	if selected >= len(items) {
		selected = len(items) - 1
	}
	if selected >= 0 {
		m.list.Select(selected)
	}
	m.updateSelection()
}

func (m *model) updateSelection() {
	item, ok := m.list.SelectedItem().(entryItem)
	if !ok {
		m.selectedID = ""
		m.detail.Clear()
		return
	}
	m.selectedID = item.entry.Item.ID
	m.detail.SetEntry(item.entry)
}

func (m model) loadEntriesCmd() tea.Cmd {
	return func() tea.Msg {
		return entriesLoadedMsg{entries: m.store.View(m.store.Now())}
	}
}

func (m model) readImportCmd(path string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		data, err := todo.ReadImportFile(ctx, path)
		return importReadMsg{path: path, data: data, err: err}
	}
}

func (m model) handleListNavigation(key string) (model, tea.Cmd, bool) {
	switch key {
	case "up", "k":
		return m.moveListSelection(-1)
	case "down", "j":
		return m.moveListSelection(1)
	case "home":
		return m.moveListSelection(-len(m.list.Items()))
	case "end":
		return m.moveListSelection(len(m.list.Items()))
	}
	return m, nil, false
}

func (m model) moveListSelection(delta int) (model, tea.Cmd, bool) {
	count := len(m.list.Items())
	if count == 0 {
		return m, nil, true
	}
	current := m.list.Index()
	next := min(max(current+delta, 0), count-1)
	if next == current {
		return m, nil, true
	}
	m.list.Select(next)
	m.updateSelection()
	return m, nil, true
}

func (m *model) resize() {
	contentHeight := m.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	leftWidth, rightWidth := splitWidths(m.width)
	m.list.SetSize(max(leftWidth-4, 1), max(contentHeight-2, 1))
	m.detail.SetSize(max(rightWidth-4, 1), max(contentHeight-2, 1))
	m.form = m.form.SetWidth(m.inputWidth())
	m.prompt.input.Width = m.inputWidth()
}

func (m model) inputWidth() int {
	_, rightWidth := splitWidths(m.width)
	return rightWidth - 20
}

func (m model) modalTextWidth() int {
	return max(min(m.width-10, 48), 10)
}

func splitWidths(width int) (int, int) {
	left := width / 2
	if left < 40 {
		left = 40
	}
	if left > width-20 {
		left = width / 2
	}
	right := width - left
	if right < 20 {
		right = 20
		left = width - right
	}
	return left, right
}

func (m model) renderTitle() string {
	title := titleBarStyle.Render("todolist")
	pending := 0
	for _, listItem := range m.list.Items() {
		if item, ok := listItem.(entryItem); ok && !item.entry.Item.Completed {
			pending++
		}
	}
	counts := valueMuted.Render(fmt.Sprintf("%d pending / %d total", pending, len(m.list.Items())))
	spacer := strings.Repeat(" ", max(m.width-lipgloss.Width(title)-lipgloss.Width(counts), 1))
	return title + spacer + counts
}

func (m model) renderPane(content string, width, height int, focused bool) string {
	style := paneStyle
	if focused {
		style = paneActiveStyle
	}
	return style.Width(max(width, 0)).Height(max(height, 0)).Render(content)
}

func (m model) renderStatusLine() string {
	text := m.status
	if internalstrings.IsBlank(text) {
		return ""
	}
	style := valueMuted
	switch m.statusLevel {
	case statusError:
		style = statusErrorStyle
	case statusInfo:
		style = statusSuccessStyle
	}
	return style.Render(truncateText(text, m.width))
}

func (m model) renderHelpLine() string {
	return helpBarStyle.Width(m.width).Render(truncateText(m.helpSummary(), m.width))
}

func (m model) helpSummary() string {
	switch m.mode {
	case modeAdd:
		return "Keys: tab next field | shift+tab prev | enter save | esc cancel"
	case modeImport:
		return "Keys: enter open file | esc cancel"
	}
	return "Keys: up/down move | a add | space toggle | d delete | e export | i import | ? help | q quit"
}

func (m *model) setStatus(text string, level statusLevel) {
	m.status = text
	m.statusLevel = level
}

func (m model) renderModalOverlay(content string) string {
	if m.modal.kind == modalNone {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modalView())
}

func (m model) modalView() string {
	if m.modal.kind == modalHelp {
		return modalStyle.Render(m.helpContent())
	}
	options := []string{m.modal.confirmText, m.modal.cancelText}
	buttons := make([]string, 0, len(options))
	for i, option := range options {
		style := valueMuted
		if i == m.modal.selected {
			style = selectedBorder
		}
		buttons = append(buttons, style.Render("["+option+"]"))
	}
	content := strings.Join([]string{m.modal.message, "", strings.Join(buttons, " ")}, "\n")
	return modalStyle.Render(content)
}

func (m model) openHelp() model {
	m.modal = confirmModal{kind: modalHelp}
	return m
}

func (m model) helpContent() string {
	sections := []string{
		labelStyle.Render("Global"),
		"q or ctrl+c: quit",
		"?: toggle help",
		"",
		labelStyle.Render("Navigation"),
		"up/down or j/k: move selection",
		"home/end: first/last todo",
		"pgup/pgdown: scroll detail",
		"",
		labelStyle.Render("Todos"),
		"a: add todo",
		"space or enter: toggle completed",
		"d or x: delete",
		"",
		labelStyle.Render("Transfer"),
		"e: export to a JSON file",
		"i: import from a JSON file (replaces all todos)",
		"",
		labelStyle.Render("Help"),
		"press ? or esc to close",
	}
	return strings.Join(sections, "\n")
}

