package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Book is a single catalog record.
type Book struct {
	ID     int64  `json:"id"`     // Store-assigned, immutable.
	Title  string `json:"title"`  // Required, non-empty.
	Author string `json:"author"` // Required, non-empty.
	Year   int    `json:"year"`   // Publication year.

	// YearText holds a stored year that is not an integer. Edits made
	// directly through Store.Update are not validated, so the column can
	// contain text; it is shown and exported as stored.
	YearText string `json:"year_text,omitempty"`
}

// Column identifies one field of a Book as shown in the catalog table.
type Column int

// Columns in display order. The numeric value is the table column index.
const (
	ColumnID Column = iota
	ColumnTitle
	ColumnAuthor
	ColumnYear
)

// Columns lists every column in display order.
var Columns = []Column{ColumnID, ColumnTitle, ColumnAuthor, ColumnYear}

// CSVHeader is the header row of an exported catalog. The column names match
// the table schema and are kept for compatibility with existing exports.
var CSVHeader = []string{"ID", "Judul", "Pengarang", "Tahun"}

var columnNames = map[Column]string{
	ColumnID:     "id",
	ColumnTitle:  "title",
	ColumnAuthor: "author",
	ColumnYear:   "year",
}

var columnLabels = map[Column]string{
	ColumnID:     "ID",
	ColumnTitle:  "Title",
	ColumnAuthor: "Author",
	ColumnYear:   "Year",
}

// String returns the column identifier used on the command line.
func (c Column) String() string {
	if name, ok := columnNames[c]; ok {
		return name
	}
	return fmt.Sprintf("column(%d)", int(c))
}

// Label returns the human-readable column header.
func (c Column) Label() string {
	if label, ok := columnLabels[c]; ok {
		return label
	}
	return c.String()
}

// Editable reports whether the column may be changed after creation.
func (c Column) Editable() bool {
	return c == ColumnTitle || c == ColumnAuthor || c == ColumnYear
}

// ParseColumn maps a column identifier to a Column. Matching is
// case-insensitive and also accepts the CSV header names.
// Returns ErrUnknownColumn for anything else.
func ParseColumn(name string) (Column, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for c, id := range columnNames {
		if n == id || n == strings.ToLower(CSVHeader[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w %q (valid: title, author, year)", ErrUnknownColumn, name)
}

// Value returns the display text of column c for b.
func (b Book) Value(c Column) string {
	switch c {
	case ColumnID:
		return fmt.Sprintf("%d", b.ID)
	case ColumnTitle:
		return b.Title
	case ColumnAuthor:
		return b.Author
	case ColumnYear:
		return b.YearString()
	}
	return ""
}

// YearString returns the year as displayed and exported.
func (b Book) YearString() string {
	if b.YearText != "" {
		return b.YearText
	}
	return strconv.Itoa(b.Year)
}

// Row returns the display text of every column in display order.
func (b Book) Row() []string {
	row := make([]string, len(Columns))
	for i, c := range Columns {
		row[i] = b.Value(c)
	}
	return row
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateFields applies the record rules: title and author must not be blank
// and yearText must be all digits. Returns ErrValidation on failure.
// An all-digit year too large for an int returns ErrYearRange.
func ValidateFields(title, author, yearText string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(author) == "" {
		return ErrValidation
	}
	return validateYear(yearText)
}

func validateYear(text string) error {
	if !IsDigits(text) {
		return ErrValidation
	}
	if _, err := strconv.Atoi(text); err != nil {
		return ErrYearRange
	}
	return nil
}

// ValidateColumnValue applies the same rules to a single edited column.
func ValidateColumnValue(c Column, value string) error {
	switch c {
	case ColumnTitle, ColumnAuthor:
		if strings.TrimSpace(value) == "" {
			return ErrValidation
		}
		return nil
	case ColumnYear:
		return validateYear(value)
	}
	return fmt.Errorf("%w %q", ErrUnknownColumn, c.String())
}
