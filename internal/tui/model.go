// Package tui is the full-screen terminal front end: a record table, an
// entry form, a search field, and a status line. Key shortcuts stand in for
// the File and Edit menus.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pustaka/internal/catalog"
	"github.com/mesh-intelligence/pustaka/pkg/types"
)

type focusArea int

const (
	focusTitle focusArea = iota
	focusAuthor
	focusYear
	focusSearch
	focusTable
	focusCount
)

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeConfirmDelete
	modeExport
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// Model is the bubbletea model for the catalog window.
type Model struct {
	view *catalog.View
	form *catalog.Form
	log  *zap.Logger

	table  table.Model
	fields [3]textinput.Model // title, author, year
	search textinput.Model
	prompt textinput.Model

	focus  focusArea
	mode   mode
	column types.Column

	pendingEdit   catalog.EditRequest
	pendingDelete catalog.DeleteRequest

	status     string
	statusKind statusKind

	width  int
	height int
}

// New builds the model over an already loaded view and its form.
func New(view *catalog.View, form *catalog.Form, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}

	m := &Model{
		view:   view,
		form:   form,
		log:    log.Named("tui"),
		column: types.ColumnTitle,
		status: "ctrl+s save · ctrl+v paste · ctrl+d delete · ctrl+e export · ctrl+f search · ctrl+q quit",
	}

	placeholders := [3]string{"Title", "Author", "Year"}
	for i := range m.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		m.fields[i] = ti
	}

	m.search = textinput.New()
	m.search.Prompt = ""
	m.search.Placeholder = "Search titles"

	m.prompt = textinput.New()
	m.prompt.Prompt = ""

	m.table = table.New(
		table.WithColumns(m.tableColumns()),
		table.WithHeight(12),
	)
	m.table.SetStyles(tableStyles())
	m.refreshTable()
	m.setFocus(focusTitle)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 12; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			return m, tea.Quit
		}
		switch m.mode {
		case modeEdit:
			return m, m.updateEdit(msg)
		case modeConfirmDelete:
			return m, m.updateConfirmDelete(msg)
		case modeExport:
			return m, m.updateExport(msg)
		}
		return m, m.updateNormal(msg)
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		m.save()
		return nil
	case "ctrl+v":
		m.paste()
		return nil
	case "ctrl+d":
		m.requestDelete()
		return nil
	case "ctrl+e":
		return m.openPrompt(modeExport, "books.csv", "")
	case "ctrl+f":
		return m.setFocus(focusSearch)
	case "tab":
		return m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	}

	switch m.focus {
	case focusTable:
		return m.updateTable(msg)
	case focusSearch:
		var cmd tea.Cmd
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			if err := m.view.SetFilter(m.search.Value()); err != nil {
				m.fail(err)
			}
			m.refreshTable()
		}
		return cmd
	default:
		if msg.String() == "enter" {
			m.save()
			return nil
		}
		var cmd tea.Cmd
		m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
		return cmd
	}
}

func (m *Model) updateTable(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left":
		if m.column > types.ColumnID {
			m.column--
			m.table.SetColumns(m.tableColumns())
		}
		return nil
	case "right":
		if m.column < types.ColumnYear {
			m.column++
			m.table.SetColumns(m.tableColumns())
		}
		return nil
	case "enter":
		return m.beginEdit()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.view.Select(m.table.Cursor())
	return cmd
}

func (m *Model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.commitEdit(m.prompt.Value(), true)
		return nil
	case "esc":
		m.commitEdit("", false)
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.confirmDelete(true)
	case "n", "esc":
		m.confirmDelete(false)
	}
	return nil
}

func (m *Model) updateExport(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.export(m.prompt.Value())
		return nil
	case "esc":
		m.closePrompt()
		m.setStatus(statusInfo, "Export cancelled.")
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) save() {
	m.form.Title = m.fields[0].Value()
	m.form.Author = m.fields[1].Value()
	m.form.Year = m.fields[2].Value()

	id, err := m.form.Save()
	if err != nil {
		m.fail(err)
		return
	}
	for i := range m.fields {
		m.fields[i].SetValue("")
	}
	m.refreshTable()
	m.setStatus(statusInfo, fmt.Sprintf("Saved book ID %d.", id))
}

func (m *Model) paste() {
	ok, err := m.form.PasteFromClipboard()
	if err != nil {
		m.fail(err)
		return
	}
	if !ok {
		m.setStatus(statusWarn, "Clipboard must hold: title, author, year")
		return
	}
	m.fields[0].SetValue(m.form.Title)
	m.fields[1].SetValue(m.form.Author)
	m.fields[2].SetValue(m.form.Year)
	m.setStatus(statusInfo, "Pasted from clipboard.")
}

func (m *Model) requestDelete() {
	req, err := m.form.RequestDelete()
	if err != nil {
		m.fail(err)
		return
	}
	m.pendingDelete = req
	m.mode = modeConfirmDelete
	m.setStatus(statusWarn, req.Prompt+" (y/n)")
}

func (m *Model) confirmDelete(confirmed bool) {
	m.mode = modeNormal
	deleted, err := m.form.ConfirmDelete(m.pendingDelete, confirmed)
	if err != nil {
		m.fail(err)
		return
	}
	if !deleted {
		m.setStatus(statusInfo, "Delete cancelled.")
		return
	}
	m.refreshTable()
	m.setStatus(statusInfo, fmt.Sprintf("Deleted book ID %d.", m.pendingDelete.ID))
}

func (m *Model) beginEdit() tea.Cmd {
	m.view.Select(m.table.Cursor())
	req, err := m.view.BeginEdit(m.table.Cursor(), m.column)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.pendingEdit = req
	return m.openPrompt(modeEdit, req.Current, req.Current)
}

func (m *Model) commitEdit(value string, ok bool) {
	m.closePrompt()
	applied, err := m.view.CommitEdit(m.pendingEdit, value, ok)
	if err != nil {
		m.fail(err)
		return
	}
	if !applied {
		m.setStatus(statusInfo, "Edit cancelled.")
		return
	}
	m.refreshTable()
	m.setStatus(statusInfo, fmt.Sprintf("Updated %s of book ID %d.", strings.ToLower(m.pendingEdit.Label), m.pendingEdit.ID))
}

func (m *Model) export(path string) {
	m.closePrompt()
	written, err := m.form.Export(path)
	if err != nil {
		m.fail(err)
		return
	}
	m.setStatus(statusInfo, "Exported to "+written)
}

// fail reports err on the status line. User mistakes are warnings; anything
// else is logged and shown as an error.
func (m *Model) fail(err error) {
	switch {
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrNoSelection),
		errors.Is(err, types.ErrReadOnlyColumn):
		m.setStatus(statusWarn, capitalize(err.Error()))
	default:
		m.log.Error("command failed", zap.Error(err))
		m.setStatus(statusError, "Error: "+err.Error())
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *Model) openPrompt(next mode, placeholder, value string) tea.Cmd {
	m.mode = next
	m.prompt.Placeholder = placeholder
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	m.blurAll()
	return m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.mode = modeNormal
	m.prompt.Blur()
	m.prompt.SetValue("")
	m.setFocus(m.focus)
}

func (m *Model) blurAll() {
	for i := range m.fields {
		m.fields[i].Blur()
	}
	m.search.Blur()
	m.table.Blur()
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.blurAll()
	switch f {
	case focusTable:
		m.table.Focus()
		if m.view.Len() > 0 {
			m.view.Select(m.table.Cursor())
		}
		return nil
	case focusSearch:
		return m.search.Focus()
	default:
		return m.fields[f].Focus()
	}
}

// refreshTable copies the view's rows into the table and keeps the cursor
// on the view's selection.
func (m *Model) refreshTable() {
	rows := make([]table.Row, m.view.Len())
	for i, book := range m.view.Rows() {
		rows[i] = table.Row(book.Row())
	}
	m.table.SetRows(rows)
	if sel := m.view.SelectedIndex(); sel >= 0 {
		m.table.SetCursor(sel)
	}
}

func (m *Model) tableColumns() []table.Column {
	widths := map[types.Column]int{
		types.ColumnID:     6,
		types.ColumnTitle:  32,
		types.ColumnAuthor: 24,
		types.ColumnYear:   6,
	}
	cols := make([]table.Column, len(types.Columns))
	for i, c := range types.Columns {
		title := c.Label()
		if c == m.column {
			title = "›" + title
		}
		cols[i] = table.Column{Title: title, Width: widths[c]}
	}
	return cols
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
