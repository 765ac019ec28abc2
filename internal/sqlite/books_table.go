// This file implements the record commands over the Buku table.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pustaka/pkg/types"
)

const selectBooks = "SELECT ID, Judul, Pengarang, Tahun FROM Buku"

// updateStatements maps each editable column to a fixed parameterized
// statement. Column names never reach SQL from user input.
var updateStatements = map[types.Column]string{
	types.ColumnTitle:  "UPDATE Buku SET Judul = ? WHERE ID = ?",
	types.ColumnAuthor: "UPDATE Buku SET Pengarang = ? WHERE ID = ?",
	types.ColumnYear:   "UPDATE Buku SET Tahun = ? WHERE ID = ?",
}

// likeEscaper escapes LIKE wildcards so a keyword is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Create validates the fields and inserts a new record. Nothing is written
// when validation fails. Returns the store-assigned ID.
func (b *Backend) Create(title, author, yearText string) (int64, error) {
	if err := types.ValidateFields(title, author, yearText); err != nil {
		return 0, err
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return 0, types.ErrValidation
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return 0, err
	}

	res, err := db.Exec(
		"INSERT INTO Buku (Judul, Pengarang, Tahun) VALUES (?, ?, ?)",
		title, author, year,
	)
	if err != nil {
		b.log.Error("insert failed", zap.String("title", title), zap.Error(err))
		return 0, fmt.Errorf("inserting book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading book id: %w", err)
	}

	b.log.Info("book created", zap.Int64("id", id), zap.String("title", title))
	return id, nil
}

// Update overwrites one column of the record with the given ID. The value is
// stored as given; callers validate it. A missing ID updates nothing.
func (b *Backend) Update(column types.Column, value string, id int64) error {
	stmt, ok := updateStatements[column]
	if !ok {
		return fmt.Errorf("%w %q (valid: title, author, year)", types.ErrUnknownColumn, column.String())
	}

	var arg any = value
	if column == types.ColumnYear {
		if year, err := strconv.ParseInt(value, 10, 64); err == nil {
			arg = year
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return err
	}

	res, err := db.Exec(stmt, arg, id)
	if err != nil {
		b.log.Error("update failed", zap.Int64("id", id), zap.Stringer("column", column), zap.Error(err))
		return fmt.Errorf("updating book %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	b.log.Info("book updated", zap.Int64("id", id), zap.Stringer("column", column), zap.Int64("rows", n))
	return nil
}

// Delete removes the record with the given ID. Deleting an ID that does not
// exist succeeds without changing anything.
func (b *Backend) Delete(id int64) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM Buku WHERE ID = ?", id)
	if err != nil {
		b.log.Error("delete failed", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("deleting book %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	b.log.Info("book deleted", zap.Int64("id", id), zap.Int64("rows", n))
	return nil
}

// List returns every record when keyword is empty, otherwise the records
// whose title contains keyword (SQLite LIKE semantics). Results are in ID
// order. Always returns a non-nil slice on success.
func (b *Backend) List(keyword string) ([]types.Book, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	query := selectBooks
	var args []any
	if keyword != "" {
		query += ` WHERE Judul LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(keyword)+"%")
	}
	query += " ORDER BY ID"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	books := []types.Book{}
	for rows.Next() {
		book, err := hydrateBook(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// Get retrieves a record by ID. Returns ErrNotFound if it does not exist.
func (b *Backend) Get(id int64) (types.Book, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return types.Book{}, err
	}

	book, err := hydrateBook(db.QueryRow(selectBooks+" WHERE ID = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Book{}, types.ErrNotFound
		}
		return types.Book{}, fmt.Errorf("getting book %d: %w", id, err)
	}
	return book, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateBook converts a single Buku row into a types.Book. Tahun is scanned
// loosely because Update stores year values unvalidated.
func hydrateBook(row scanner) (types.Book, error) {
	var book types.Book
	var year any
	if err := row.Scan(&book.ID, &book.Title, &book.Author, &year); err != nil {
		return types.Book{}, err
	}
	book.Year, book.YearText = parseYear(year)
	return book, nil
}

// parseYear maps a stored or exported year to Book.Year, or to
// Book.YearText when it is not an integer.
func parseYear(v any) (int, string) {
	switch y := v.(type) {
	case nil:
		return 0, ""
	case int64:
		return int(y), ""
	case float64:
		return 0, strconv.FormatFloat(y, 'f', -1, 64)
	case []byte:
		return parseYear(string(y))
	case string:
		if n, err := strconv.Atoi(y); err == nil && strconv.Itoa(n) == y {
			return n, ""
		}
		return 0, y
	}
	return 0, fmt.Sprint(v)
}
