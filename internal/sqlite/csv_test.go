// Tests for CSV export and import.
package sqlite

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pustaka/pkg/types"
)

func TestWriteCSV(t *testing.T) {
	b := setupBackend(t)
	_, err := b.Create("Laskar Pelangi", "Andrea Hirata", "2005")
	require.NoError(t, err)
	_, err = b.Create("Hello, World", `Said "Hi"`, "1999")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, b.WriteCSV(&buf))

	want := "ID,Judul,Pengarang,Tahun\n" +
		"1,Laskar Pelangi,Andrea Hirata,2005\n" +
		`2,"Hello, World","Said ""Hi""",1999` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_EmptyCatalogWritesHeader(t *testing.T) {
	b := setupBackend(t)

	var buf bytes.Buffer
	require.NoError(t, b.WriteCSV(&buf))
	assert.Equal(t, "ID,Judul,Pengarang,Tahun\n", buf.String())
}

func TestExportCSV_WritesAllRecords(t *testing.T) {
	b := setupBackend(t)
	for _, title := range []string{"Laskar Pelangi", "Bumi Manusia"} {
		_, err := b.Create(title, "Author", "2000")
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, b.ExportCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportCSV_OverwritesExisting(t *testing.T) {
	b := setupBackend(t)
	path := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, b.ExportCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,Judul,Pengarang,Tahun\n", string(data))
}

func TestExportCSV_UnwritablePath(t *testing.T) {
	b := setupBackend(t)
	path := filepath.Join(t.TempDir(), "missing", "books.csv")

	err := b.ExportCSV(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrExport)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVRoundTrip(t *testing.T) {
	src := setupBackend(t)
	seed := []types.Book{
		{Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2005},
		{Title: "Hello, World", Author: "Multi\nLine", Year: 1999},
		{Title: "Cantik Itu Luka", Author: "Eka Kurniawan", Year: 2002},
	}
	for _, book := range seed {
		_, err := src.Create(book.Title, book.Author, strconv.Itoa(book.Year))
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, src.ExportCSV(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	parsed, err := ReadCSV(f)
	require.NoError(t, err)

	want, err := src.List("")
	require.NoError(t, err)
	assert.Equal(t, want, parsed)

	dst := setupBackend(t)
	n, err := dst.ImportCSV(path)
	require.NoError(t, err)
	assert.Equal(t, len(seed), n)

	imported, err := dst.List("")
	require.NoError(t, err)
	assert.Equal(t, want, imported)
}

func TestReadCSV_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "id,title,author,year\n"},
		{"short row", "ID,Judul,Pengarang,Tahun\n1,A,B\n"},
		{"bad id", "ID,Judul,Pengarang,Tahun\nx,A,B,2020\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, types.ErrInvalidCSV)
		})
	}
}

func TestExportCSV_TextYear(t *testing.T) {
	b := setupBackend(t)
	_, err := b.Create("A", "B", "2020")
	require.NoError(t, err)
	_, err = b.Create("C", "D", "2021")
	require.NoError(t, err)
	require.NoError(t, b.Update(types.ColumnYear, "abc", 1))

	path := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, b.ExportCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,Judul,Pengarang,Tahun\n1,A,B,abc\n2,C,D,2021\n", string(data))

	parsed, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	want, err := b.List("")
	require.NoError(t, err)
	assert.Equal(t, want, parsed)

	// Import applies the create rules, so the text year is refused.
	dst := setupBackend(t)
	_, err = dst.ImportCSV(path)
	assert.ErrorIs(t, err, types.ErrInvalidCSV)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestImportCSV_RejectsInvalidRowsBeforeWriting(t *testing.T) {
	b := setupBackend(t)
	path := filepath.Join(t.TempDir(), "books.csv")
	input := "ID,Judul,Pengarang,Tahun\n1,A,B,2020\n2,,C,2021\n"
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	_, err := b.ImportCSV(path)
	assert.ErrorIs(t, err, types.ErrInvalidCSV)
	assert.ErrorIs(t, err, types.ErrValidation)

	books, err := b.List("")
	require.NoError(t, err)
	assert.Empty(t, books)
}
