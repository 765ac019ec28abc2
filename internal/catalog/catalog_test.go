package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pustaka/internal/sqlite"
	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// setupCatalog returns an attached store with a loaded view and an empty
// form reading from clip.
func setupCatalog(t *testing.T, clip Clipboard) (*sqlite.Backend, *View, *Form) {
	t.Helper()
	b := sqlite.NewBackend(nil)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	v := NewView(b)
	require.NoError(t, v.Reload())
	return b, v, NewForm(b, v, clip)
}

func seed(t *testing.T, store types.Store, books ...[3]string) {
	t.Helper()
	for _, bk := range books {
		_, err := store.Create(bk[0], bk[1], bk[2])
		require.NoError(t, err)
	}
}

type errClipboard struct{ err error }

func (c errClipboard) ReadAll() (string, error) { return "", c.err }

func TestParseClipboardLine(t *testing.T) {
	tests := []struct {
		name                string
		input               string
		title, author, year string
		ok                  bool
	}{
		{"three parts", "A, B, 2020", "A", "B", "2020", true},
		{"extra parts ignored", " Laskar Pelangi ,Andrea Hirata,2005, Bentang, 529", "Laskar Pelangi", "Andrea Hirata", "2005", true},
		{"empty parts kept", ",,", "", "", "", true},
		{"single field", "onlyonefield", "", "", "", false},
		{"two fields", "A, B", "", "", "", false},
		{"empty", "", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, author, year, ok := ParseClipboardLine(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.author, author)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestForm_PasteFromClipboard(t *testing.T) {
	t.Run("fills fields from three parts", func(t *testing.T) {
		_, _, f := setupCatalog(t, StaticClipboard("A, B, 2020"))

		ok, err := f.PasteFromClipboard()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "A", f.Title)
		assert.Equal(t, "B", f.Author)
		assert.Equal(t, "2020", f.Year)
	})

	t.Run("single field leaves fields unchanged", func(t *testing.T) {
		_, _, f := setupCatalog(t, StaticClipboard("onlyonefield"))
		f.Title, f.Author, f.Year = "keep", "these", "1"

		ok, err := f.PasteFromClipboard()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "keep", f.Title)
		assert.Equal(t, "these", f.Author)
		assert.Equal(t, "1", f.Year)
	})

	t.Run("no clipboard", func(t *testing.T) {
		_, _, f := setupCatalog(t, nil)
		_, err := f.PasteFromClipboard()
		assert.ErrorIs(t, err, ErrNoClipboard)
	})

	t.Run("clipboard read error", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, f := setupCatalog(t, errClipboard{err: boom})
		_, err := f.PasteFromClipboard()
		assert.ErrorIs(t, err, boom)
	})
}

func TestForm_Save(t *testing.T) {
	b, v, f := setupCatalog(t, nil)
	f.Title, f.Author, f.Year = "  Laskar Pelangi ", "Andrea Hirata", " 2005 "

	id, err := f.Save()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Empty(t, f.Title+f.Author+f.Year, "fields are cleared after save")
	assert.Equal(t, []types.Book{{ID: 1, Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2005}}, v.Rows())

	got, err := b.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Laskar Pelangi", got.Title)
}

func TestForm_SaveValidationKeepsInput(t *testing.T) {
	_, v, f := setupCatalog(t, nil)
	f.Title, f.Author, f.Year = "", "Andrea Hirata", "2005"

	_, err := f.Save()
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, "fill all fields; year must be numeric", err.Error())
	assert.Equal(t, "Andrea Hirata", f.Author)
	assert.Equal(t, "2005", f.Year)
	assert.Empty(t, v.Rows())
}

func TestView_SetFilter(t *testing.T) {
	b, v, _ := setupCatalog(t, nil)
	seed(t, b,
		[3]string{"Laskar Pelangi", "Andrea Hirata", "2005"},
		[3]string{"Bumi Manusia", "Pramoedya Ananta Toer", "1980"},
		[3]string{"Sang Pemimpi", "Andrea Hirata", "2006"},
	)
	require.NoError(t, v.Reload())
	assert.Equal(t, 3, v.Len())

	require.NoError(t, v.SetFilter("Pe"))
	assert.Equal(t, "Pe", v.Keyword())
	require.Equal(t, 2, v.Len())
	assert.Equal(t, "Laskar Pelangi", v.Rows()[0].Title)
	assert.Equal(t, "Sang Pemimpi", v.Rows()[1].Title)

	require.NoError(t, v.SetFilter(""))
	assert.Equal(t, 3, v.Len())
}

func TestView_SelectionClampsOnReload(t *testing.T) {
	b, v, _ := setupCatalog(t, nil)
	seed(t, b, [3]string{"A", "B", "1"}, [3]string{"C", "D", "2"}, [3]string{"E", "F", "3"})
	require.NoError(t, v.Reload())

	v.Select(2)
	assert.Equal(t, 2, v.SelectedIndex())

	require.NoError(t, v.SetFilter("C"))
	assert.Equal(t, 0, v.SelectedIndex())

	require.NoError(t, v.SetFilter("nothing matches"))
	assert.Equal(t, NoSelection, v.SelectedIndex())
	_, ok := v.Selected()
	assert.False(t, ok)

	v.Select(5)
	assert.Equal(t, NoSelection, v.SelectedIndex())
}

func TestView_SelectID(t *testing.T) {
	b, v, _ := setupCatalog(t, nil)
	seed(t, b, [3]string{"A", "B", "1"}, [3]string{"C", "D", "2"})
	require.NoError(t, v.Reload())

	row, err := v.SelectID(2)
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	_, err = v.SelectID(99)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, NoSelection, v.SelectedIndex())
}

func TestView_Edit(t *testing.T) {
	tests := []struct {
		name    string
		column  types.Column
		value   string
		ok      bool
		wantErr error
		applied bool
		want    types.Book
	}{
		{"title", types.ColumnTitle, " Sang Pemimpi ", true, nil, true,
			types.Book{ID: 1, Title: "Sang Pemimpi", Author: "Andrea Hirata", Year: 2005}},
		{"year", types.ColumnYear, "2006", true, nil, true,
			types.Book{ID: 1, Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2006}},
		{"cancelled", types.ColumnAuthor, "Someone", false, nil, false,
			types.Book{ID: 1, Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2005}},
		{"blank value", types.ColumnAuthor, "   ", true, nil, false,
			types.Book{ID: 1, Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2005}},
		{"non-numeric year", types.ColumnYear, "soon", true, types.ErrValidation, false,
			types.Book{ID: 1, Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2005}},
		{"id is read-only", types.ColumnID, "7", true, types.ErrReadOnlyColumn, false,
			types.Book{ID: 1, Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2005}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, v, _ := setupCatalog(t, nil)
			seed(t, b, [3]string{"Laskar Pelangi", "Andrea Hirata", "2005"})
			require.NoError(t, v.Reload())

			var asked string
			prompt := PromptFunc(func(question, current string) (string, bool) {
				asked = question
				return tt.value, tt.ok
			})

			applied, err := v.Edit(0, tt.column, prompt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Contains(t, asked, "book ID 1")
			}
			assert.Equal(t, tt.applied, applied)

			got, err := b.Get(1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []types.Book{tt.want}, v.Rows())
		})
	}
}

func TestView_BeginEdit(t *testing.T) {
	b, v, _ := setupCatalog(t, nil)
	seed(t, b, [3]string{"Laskar Pelangi", "Andrea Hirata", "2005"})
	require.NoError(t, v.Reload())

	req, err := v.BeginEdit(0, types.ColumnYear)
	require.NoError(t, err)
	assert.Equal(t, EditRequest{ID: 1, Column: types.ColumnYear, Label: "Year", Current: "2005"}, req)

	_, err = v.BeginEdit(3, types.ColumnTitle)
	assert.ErrorIs(t, err, types.ErrNoSelection)
}

func TestForm_Delete(t *testing.T) {
	t.Run("no selection", func(t *testing.T) {
		b, v, f := setupCatalog(t, nil)
		seed(t, b, [3]string{"A", "B", "1"})
		require.NoError(t, v.Reload())

		_, err := f.RequestDelete()
		assert.ErrorIs(t, err, types.ErrNoSelection)
		assert.Equal(t, 1, v.Len())
	})

	t.Run("declined", func(t *testing.T) {
		b, v, f := setupCatalog(t, nil)
		seed(t, b, [3]string{"A", "B", "1"})
		require.NoError(t, v.Reload())
		v.Select(0)

		req, err := f.RequestDelete()
		require.NoError(t, err)
		assert.Equal(t, "Delete book ID 1?", req.Prompt)

		deleted, err := f.ConfirmDelete(req, false)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, 1, v.Len())
	})

	t.Run("confirmed", func(t *testing.T) {
		b, v, f := setupCatalog(t, nil)
		seed(t, b, [3]string{"A", "B", "1"}, [3]string{"C", "D", "2"})
		require.NoError(t, v.Reload())
		v.Select(1)

		req, err := f.RequestDelete()
		require.NoError(t, err)
		assert.Equal(t, int64(2), req.ID)

		deleted, err := f.ConfirmDelete(req, true)
		require.NoError(t, err)
		assert.True(t, deleted)
		require.Equal(t, 1, v.Len())
		assert.Equal(t, int64(1), v.Rows()[0].ID)
		assert.Equal(t, 0, v.SelectedIndex())
	})
}

func TestForm_Export(t *testing.T) {
	b, _, f := setupCatalog(t, nil)
	seed(t, b, [3]string{"Laskar Pelangi", "Andrea Hirata", "2005"})
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"appends extension", filepath.Join(dir, "books"), filepath.Join(dir, "books.csv")},
		{"keeps extension", filepath.Join(dir, "keep.csv"), filepath.Join(dir, "keep.csv")},
		{"extension is case-insensitive", filepath.Join(dir, "UPPER.CSV"), filepath.Join(dir, "UPPER.CSV")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Export(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			data, err := os.ReadFile(got)
			require.NoError(t, err)
			assert.Equal(t, "ID,Judul,Pengarang,Tahun\n1,Laskar Pelangi,Andrea Hirata,2005\n", string(data))
		})
	}

	t.Run("empty path", func(t *testing.T) {
		_, err := f.Export("  ")
		assert.ErrorIs(t, err, types.ErrExport)
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, err := f.Export(filepath.Join(dir, "missing", "books"))
		assert.ErrorIs(t, err, types.ErrExport)
	})
}
