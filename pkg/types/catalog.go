package types

import (
	"errors"
	"io"
)

// Store is the record store for book records. Front ends never talk to SQL
// directly; every mutation goes through one of these commands.
type Store interface {
	// Create validates the fields and inserts a new record. Returns the
	// store-assigned ID, or ErrValidation without writing anything.
	Create(title, author, yearText string) (int64, error)

	// Update overwrites a single column of the record with the given ID.
	// Returns ErrUnknownColumn for anything other than title, author, or year.
	// The value is not validated here. A missing ID is a no-op.
	Update(column Column, value string, id int64) error

	// Delete removes the record with the given ID. A missing ID is a no-op.
	Delete(id int64) error

	// List returns all records when keyword is empty, otherwise the records
	// whose title contains keyword. Records come back in ID order.
	List(keyword string) ([]Book, error)

	// Get returns the record with the given ID, or ErrNotFound.
	Get(id int64) (Book, error)

	// ExportCSV writes every record to path as CSV.
	ExportCSV(path string) error

	// WriteCSV writes every record to w as CSV.
	WriteCSV(w io.Writer) error
}

// Catalog is a Store with an explicit lifecycle. Callers attach once at
// startup, hand the Store to the view and form, and detach at shutdown.
type Catalog interface {
	Store

	// Attach opens the backend described by config. Creates the DataDir and
	// the table if they do not exist. Returns ErrAlreadyAttached if called
	// while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error
}

// Catalog lifecycle errors.
var (
	ErrCatalogDetached = errors.New("catalog is detached")
	ErrAlreadyAttached = errors.New("catalog is already attached")
)

// Record and command errors.
var (
	ErrValidation     = errors.New("fill all fields; year must be numeric")
	ErrNotFound       = errors.New("book not found")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrReadOnlyColumn = errors.New("column is read-only")
	ErrNoSelection    = errors.New("select the row to delete")
	ErrExport         = errors.New("export failed")
	ErrInvalidCSV     = errors.New("invalid CSV")
)

// ErrYearRange is returned for an all-digit year too large to store. It
// also matches ErrValidation.
var ErrYearRange error = yearRangeError{}

type yearRangeError struct{}

func (yearRangeError) Error() string { return "year is too large" }

func (yearRangeError) Is(target error) bool { return target == ErrValidation }
