// Package catalog holds the command set shared by every pustaka front end:
// the Catalog View (record set, keyword filter, selection, in-place edit) and
// the Entry Form (new records, paste, delete, export). Neither type knows
// about a UI toolkit. Prompts and confirmations are split into begin and
// commit steps so that event-driven and line-oriented front ends can both
// drive them.
package catalog

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// NoSelection is the selected index when no row is selected.
const NoSelection = -1

// View is the current record set as shown to the user. Every mutation goes
// to the store and is followed by a full reload.
type View struct {
	store    types.Store
	keyword  string
	rows     []types.Book
	selected int
}

// NewView creates a View over store with an empty filter and no selection.
// Call Reload to populate it.
func NewView(store types.Store) *View {
	return &View{store: store, rows: []types.Book{}, selected: NoSelection}
}

// Keyword returns the current title filter.
func (v *View) Keyword() string { return v.keyword }

// Rows returns the displayed records in store order. The slice must not be
// modified.
func (v *View) Rows() []types.Book { return v.rows }

// Len returns the number of displayed rows.
func (v *View) Len() int { return len(v.rows) }

// SetFilter stores keyword and reloads. This is the Search command.
func (v *View) SetFilter(keyword string) error {
	v.keyword = keyword
	return v.Reload()
}

// Reload re-queries the store with the current keyword. The selection is
// kept when still in range and clamped to the last row otherwise.
func (v *View) Reload() error {
	rows, err := v.store.List(v.keyword)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	v.rows = rows
	if v.selected >= len(v.rows) {
		v.selected = len(v.rows) - 1
	}
	return nil
}

// Select selects row. An index outside the displayed rows clears the
// selection.
func (v *View) Select(row int) {
	if row < 0 || row >= len(v.rows) {
		v.selected = NoSelection
		return
	}
	v.selected = row
}

// SelectID selects the displayed row holding the record with the given ID
// and returns its index. Returns ErrNotFound when no displayed row matches;
// the selection is cleared in that case.
func (v *View) SelectID(id int64) (int, error) {
	for i, book := range v.rows {
		if book.ID == id {
			v.selected = i
			return i, nil
		}
	}
	v.selected = NoSelection
	return NoSelection, fmt.Errorf("%w: id %d", types.ErrNotFound, id)
}

// SelectedIndex returns the selected row index or NoSelection.
func (v *View) SelectedIndex() int { return v.selected }

// Selected returns the selected record, if any.
func (v *View) Selected() (types.Book, bool) {
	if v.selected < 0 || v.selected >= len(v.rows) {
		return types.Book{}, false
	}
	return v.rows[v.selected], true
}

// EditRequest describes a pending in-place edit of one cell.
type EditRequest struct {
	ID      int64
	Column  types.Column
	Label   string
	Current string
}

// Prompt is the question a front end shows for the request.
func (r EditRequest) Prompt() string {
	return fmt.Sprintf("New %s for book ID %d:", strings.ToLower(r.Label), r.ID)
}

// BeginEdit starts editing the cell at row and column. The ID column is
// read-only and returns ErrReadOnlyColumn.
func (v *View) BeginEdit(row int, column types.Column) (EditRequest, error) {
	if column == types.ColumnID {
		return EditRequest{}, types.ErrReadOnlyColumn
	}
	if !column.Editable() {
		return EditRequest{}, fmt.Errorf("%w %q", types.ErrUnknownColumn, column.String())
	}
	if row < 0 || row >= len(v.rows) {
		return EditRequest{}, fmt.Errorf("%w: row %d", types.ErrNoSelection, row)
	}
	book := v.rows[row]
	return EditRequest{
		ID:      book.ID,
		Column:  column,
		Label:   column.Label(),
		Current: book.Value(column),
	}, nil
}

// CommitEdit finishes an edit. Cancelling (ok false) or a blank value leaves
// the record unchanged and reports false. Otherwise the trimmed value must
// satisfy the create rules for the column, or ErrValidation is returned and
// nothing is written. On success the store is updated, the view reloads, and
// CommitEdit reports true.
func (v *View) CommitEdit(req EditRequest, value string, ok bool) (bool, error) {
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return false, nil
	}
	if err := types.ValidateColumnValue(req.Column, value); err != nil {
		return false, err
	}
	if err := v.store.Update(req.Column, value, req.ID); err != nil {
		return false, err
	}
	return true, v.Reload()
}

// Prompter asks the user for a replacement value. It returns false when the
// user cancels.
type Prompter interface {
	Prompt(question, current string) (string, bool)
}

// PromptFunc adapts a function to the Prompter interface.
type PromptFunc func(question, current string) (string, bool)

// Prompt calls f.
func (f PromptFunc) Prompt(question, current string) (string, bool) {
	return f(question, current)
}

// Edit runs BeginEdit, asks p for the new value, and runs CommitEdit.
func (v *View) Edit(row int, column types.Column, p Prompter) (bool, error) {
	req, err := v.BeginEdit(row, column)
	if err != nil {
		return false, err
	}
	value, ok := p.Prompt(req.Prompt(), req.Current)
	return v.CommitEdit(req, value, ok)
}
