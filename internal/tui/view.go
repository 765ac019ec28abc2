package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Width(8).Foreground(lipgloss.Color("245"))
	focusedLabel = labelStyle.Foreground(lipgloss.Color("205")).Bold(true)
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activePane   = paneStyle.BorderForeground(lipgloss.Color("205"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	return s
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Pustaka"))
	b.WriteString("\n")

	search := m.line("Search", m.search.View(), m.focus == focusSearch)
	b.WriteString(search)
	b.WriteString("\n")

	tablePane := paneStyle
	if m.focus == focusTable && m.mode == modeNormal {
		tablePane = activePane
	}

	formPane := paneStyle
	if m.focus <= focusYear && m.mode == modeNormal {
		formPane = activePane
	}
	form := lipgloss.JoinVertical(lipgloss.Left,
		m.line("Title", m.fields[0].View(), m.focus == focusTitle),
		m.line("Author", m.fields[1].View(), m.focus == focusAuthor),
		m.line("Year", m.fields[2].View(), m.focus == focusYear),
	)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		tablePane.Render(m.table.View()),
		formPane.Render(form),
	))
	b.WriteString("\n")

	switch m.mode {
	case modeEdit:
		b.WriteString(m.line("Edit", m.pendingEdit.Prompt()+" "+m.prompt.View(), true))
		b.WriteString("\n")
	case modeExport:
		b.WriteString(m.line("Export", m.prompt.View(), true))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) line(label, value string, focused bool) string {
	style := labelStyle
	if focused {
		style = focusedLabel
	}
	return style.Render(label) + " " + value
}

func (m *Model) statusLine() string {
	switch m.statusKind {
	case statusWarn:
		return warnStyle.Render(m.status)
	case statusError:
		return errorStyle.Render(m.status)
	default:
		return infoStyle.Render(m.status)
	}
}
