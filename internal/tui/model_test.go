package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pustaka/internal/catalog"
	"github.com/mesh-intelligence/pustaka/internal/sqlite"
	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// setupModel returns a model over a fresh catalog seeded with books.
func setupModel(t *testing.T, clip catalog.Clipboard, books ...[3]string) (*Model, *sqlite.Backend) {
	t.Helper()
	b := sqlite.NewBackend(nil)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	for _, bk := range books {
		_, err := b.Create(bk[0], bk[1], bk[2])
		require.NoError(t, err)
	}
	view := catalog.NewView(b)
	require.NoError(t, view.Reload())
	return New(view, catalog.NewForm(b, view, clip), nil), b
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestModel_SaveFromForm(t *testing.T) {
	m, b := setupModel(t, nil)

	typeText(m, "Laskar Pelangi")
	m.Update(key(tea.KeyTab))
	typeText(m, "Andrea Hirata")
	m.Update(key(tea.KeyTab))
	typeText(m, "2005")
	m.Update(key(tea.KeyCtrlS))

	books, err := b.List("")
	require.NoError(t, err)
	assert.Equal(t, []types.Book{{ID: 1, Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2005}}, books)
	assert.Equal(t, "Saved book ID 1.", m.status)
	assert.Empty(t, m.fields[0].Value())
	assert.Len(t, m.table.Rows(), 1)
}

func TestModel_SaveValidationKeepsInput(t *testing.T) {
	m, b := setupModel(t, nil)

	typeText(m, "Laskar Pelangi")
	m.Update(key(tea.KeyCtrlS))

	assert.Equal(t, statusWarn, m.statusKind)
	assert.Equal(t, "Fill all fields; year must be numeric", m.status)
	assert.Equal(t, "Laskar Pelangi", m.fields[0].Value())
	books, err := b.List("")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestModel_Paste(t *testing.T) {
	t.Run("three parts fill the form", func(t *testing.T) {
		m, _ := setupModel(t, catalog.StaticClipboard("A, B, 2020"))
		m.Update(key(tea.KeyCtrlV))

		assert.Equal(t, "A", m.fields[0].Value())
		assert.Equal(t, "B", m.fields[1].Value())
		assert.Equal(t, "2020", m.fields[2].Value())
	})

	t.Run("one part changes nothing", func(t *testing.T) {
		m, _ := setupModel(t, catalog.StaticClipboard("onlyonefield"))
		typeText(m, "kept")
		m.Update(key(tea.KeyCtrlV))

		assert.Equal(t, "kept", m.fields[0].Value())
		assert.Empty(t, m.fields[1].Value())
		assert.Equal(t, statusWarn, m.statusKind)
	})
}

func TestModel_PasteLongValuesSavesThemWhole(t *testing.T) {
	title := strings.Repeat("x", 150)
	m, b := setupModel(t, catalog.StaticClipboard(title+", B, 123456789"))

	m.Update(key(tea.KeyCtrlV))
	m.Update(key(tea.KeyCtrlS))

	assert.Equal(t, "Saved book ID 1.", m.status)
	books, err := b.List("")
	require.NoError(t, err)
	assert.Equal(t, []types.Book{{ID: 1, Title: title, Author: "B", Year: 123456789}}, books)
}

func TestModel_EditPromptKeepsLongValue(t *testing.T) {
	author := strings.Repeat("Andrea Hirata ", 30)
	author = strings.TrimSpace(author)
	m, b := setupModel(t, nil, [3]string{"Laskar Pelangi", author, "2005"})
	m.Update(key(tea.KeyShiftTab))
	m.Update(key(tea.KeyRight))
	require.Equal(t, types.ColumnAuthor, m.column)

	m.Update(key(tea.KeyEnter))
	require.Equal(t, modeEdit, m.mode)
	assert.Equal(t, author, m.prompt.Value())

	typeText(m, "!")
	m.Update(key(tea.KeyEnter))

	got, err := b.Get(1)
	require.NoError(t, err)
	assert.Equal(t, author+"!", got.Author)
}

func TestModel_Search(t *testing.T) {
	m, _ := setupModel(t, nil,
		[3]string{"Laskar Pelangi", "Andrea Hirata", "2005"},
		[3]string{"Bumi Manusia", "Pramoedya", "1980"},
	)
	require.Len(t, m.table.Rows(), 2)

	m.Update(key(tea.KeyCtrlF))
	typeText(m, "Bumi")

	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "Bumi Manusia", m.table.Rows()[0][types.ColumnTitle])
	assert.Equal(t, "Bumi", m.view.Keyword())
}

func TestModel_DeleteNeedsSelection(t *testing.T) {
	m, _ := setupModel(t, nil, [3]string{"A", "B", "1"})

	m.Update(key(tea.KeyCtrlD))

	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, statusWarn, m.statusKind)
	assert.Equal(t, "Select the row to delete", m.status)
}

func TestModel_DeleteWithConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		wantCount int
	}{
		{"declined", "n", 2},
		{"confirmed", "y", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, b := setupModel(t, nil, [3]string{"A", "B", "1"}, [3]string{"C", "D", "2"})
			m.Update(key(tea.KeyShiftTab)) // focus the table
			require.Equal(t, focusTable, m.focus)
			m.Update(key(tea.KeyDown))

			m.Update(key(tea.KeyCtrlD))
			require.Equal(t, modeConfirmDelete, m.mode)
			assert.Equal(t, "Delete book ID 2? (y/n)", m.status)

			typeText(m, tt.answer)
			assert.Equal(t, modeNormal, m.mode)

			books, err := b.List("")
			require.NoError(t, err)
			assert.Len(t, books, tt.wantCount)
			assert.Len(t, m.table.Rows(), tt.wantCount)
		})
	}
}

func TestModel_EditCell(t *testing.T) {
	m, b := setupModel(t, nil, [3]string{"Laskar Pelangi", "Andrea Hirata", "2005"})
	m.Update(key(tea.KeyShiftTab))

	// Move from title to year.
	m.Update(key(tea.KeyRight))
	m.Update(key(tea.KeyRight))
	require.Equal(t, types.ColumnYear, m.column)

	m.Update(key(tea.KeyEnter))
	require.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "2005", m.prompt.Value())

	m.prompt.SetValue("")
	typeText(m, "2006")
	m.Update(key(tea.KeyEnter))

	assert.Equal(t, modeNormal, m.mode)
	got, err := b.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 2006, got.Year)
	assert.Equal(t, "2006", m.table.Rows()[0][types.ColumnYear])
}

func TestModel_EditRejectsBadYearAndReadOnlyID(t *testing.T) {
	m, b := setupModel(t, nil, [3]string{"Laskar Pelangi", "Andrea Hirata", "2005"})
	m.Update(key(tea.KeyShiftTab))

	m.Update(key(tea.KeyRight))
	m.Update(key(tea.KeyRight))
	m.Update(key(tea.KeyEnter))
	m.prompt.SetValue("soon")
	m.Update(key(tea.KeyEnter))
	assert.Equal(t, statusWarn, m.statusKind)

	m.Update(key(tea.KeyLeft))
	m.Update(key(tea.KeyLeft))
	m.Update(key(tea.KeyLeft))
	require.Equal(t, types.ColumnID, m.column)
	m.Update(key(tea.KeyEnter))
	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "Column is read-only", m.status)

	got, err := b.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 2005, got.Year)
}

func TestModel_EditCancel(t *testing.T) {
	m, b := setupModel(t, nil, [3]string{"Laskar Pelangi", "Andrea Hirata", "2005"})
	m.Update(key(tea.KeyShiftTab))
	m.Update(key(tea.KeyEnter))
	m.prompt.SetValue("Changed")
	m.Update(key(tea.KeyEsc))

	assert.Equal(t, "Edit cancelled.", m.status)
	got, err := b.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Laskar Pelangi", got.Title)
}

func TestModel_Export(t *testing.T) {
	m, _ := setupModel(t, nil, [3]string{"Laskar Pelangi", "Andrea Hirata", "2005"})
	path := filepath.Join(t.TempDir(), "out")

	m.Update(key(tea.KeyCtrlE))
	require.Equal(t, modeExport, m.mode)
	typeText(m, path)
	m.Update(key(tea.KeyEnter))

	assert.Equal(t, "Exported to "+path+".csv", m.status)
	data, err := os.ReadFile(path + ".csv")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Laskar Pelangi")
}

func TestModel_ExportFailureIsReported(t *testing.T) {
	m, _ := setupModel(t, nil)
	m.Update(key(tea.KeyCtrlE))
	typeText(m, filepath.Join(t.TempDir(), "missing", "out.csv"))
	m.Update(key(tea.KeyEnter))

	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, "export failed")
}

func TestModel_Quit(t *testing.T) {
	m, _ := setupModel(t, nil)
	_, cmd := m.Update(key(tea.KeyCtrlQ))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_ViewRenders(t *testing.T) {
	m, _ := setupModel(t, nil, [3]string{"Laskar Pelangi", "Andrea Hirata", "2005"})
	out := m.View()
	assert.Contains(t, out, "Pustaka")
	assert.Contains(t, out, "Laskar Pelangi")
	assert.Contains(t, out, "ctrl+s save")
}
