// This file provides CSV export and import for the catalog, with atomic
// persistence of exported files.
package sqlite

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// WriteCSV writes every record, unfiltered and in store order, to w: the
// header row followed by one row per record. Quoting follows encoding/csv.
func (b *Backend) WriteCSV(w io.Writer) error {
	books, err := b.List("")
	if err != nil {
		return err
	}
	return writeBooksCSV(w, books)
}

// ExportCSV writes every record to path using the temp-file, fsync, rename
// pattern so a failed export never leaves a truncated file behind.
// Filesystem failures wrap ErrExport together with the underlying cause.
func (b *Backend) ExportCSV(path string) error {
	books, err := b.List("")
	if err != nil {
		return err
	}

	if err := writeFileAtomic(path, func(w io.Writer) error {
		return writeBooksCSV(w, books)
	}); err != nil {
		b.log.Error("export failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %w", types.ErrExport, err)
	}

	b.log.Info("catalog exported", zap.String("path", path), zap.Int("records", len(books)))
	return nil
}

// ImportCSV reads a file produced by ExportCSV and creates one record per
// row. IDs in the file are ignored; the store assigns new ones. Every row is
// validated before anything is written. Returns the number of records created.
func (b *Backend) ImportCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	books, err := ReadCSV(f)
	if err != nil {
		return 0, err
	}
	for i, book := range books {
		if err := types.ValidateFields(book.Title, book.Author, book.YearString()); err != nil {
			return 0, fmt.Errorf("%w: row %d: %w", types.ErrInvalidCSV, i+2, err)
		}
	}

	for i, book := range books {
		if _, err := b.Create(book.Title, book.Author, book.YearString()); err != nil {
			return i, fmt.Errorf("importing row %d: %w", i+2, err)
		}
	}

	b.log.Info("catalog imported", zap.String("path", path), zap.Int("records", len(books)))
	return len(books), nil
}

// ReadCSV parses an exported catalog. The header must match types.CSVHeader
// and every row must have an integer ID. A year that is not an integer is
// kept as text, as it was stored. Row numbers in errors are
// 1-based and count the header.
func ReadCSV(r io.Reader) ([]types.Book, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(types.CSVHeader)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", types.ErrInvalidCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", types.ErrInvalidCSV, err)
	}
	for i, name := range types.CSVHeader {
		if header[i] != name {
			return nil, fmt.Errorf("%w: header column %d is %q, want %q", types.ErrInvalidCSV, i+1, header[i], name)
		}
	}

	books := []types.Book{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrInvalidCSV, err)
		}

		id, err := strconv.ParseInt(record[types.ColumnID], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad ID %q", types.ErrInvalidCSV, line, record[types.ColumnID])
		}
		year, yearText := parseYear(record[types.ColumnYear])
		books = append(books, types.Book{
			ID:       id,
			Title:    record[types.ColumnTitle],
			Author:   record[types.ColumnAuthor],
			Year:     year,
			YearText: yearText,
		})
	}
	return books, nil
}

func writeBooksCSV(w io.Writer, books []types.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, book := range books {
		if err := cw.Write(book.Row()); err != nil {
			return fmt.Errorf("writing book %d: %w", book.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFileAtomic writes path through a temp file in the same directory,
// fsyncs it, and renames it into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		return fail(err)
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
