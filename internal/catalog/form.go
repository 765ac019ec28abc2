package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// Form is the entry form for new records. Its fields hold raw user input.
type Form struct {
	Title  string
	Author string
	Year   string

	store types.Store
	view  *View
	clip  Clipboard
}

// NewForm creates an empty form that writes to store and reloads view after
// each mutation. clip may be nil when no clipboard is available.
func NewForm(store types.Store, view *View, clip Clipboard) *Form {
	return &Form{store: store, view: view, clip: clip}
}

// Clear empties all three fields.
func (f *Form) Clear() {
	f.Title, f.Author, f.Year = "", "", ""
}

// ParseClipboardLine splits text on commas and trims each part. With at
// least three parts it returns them as title, author and year; extra parts
// are ignored. Fewer than three parts report false.
func ParseClipboardLine(text string) (title, author, year string, ok bool) {
	parts := strings.Split(text, ",")
	if len(parts) < 3 {
		return "", "", "", false
	}
	for i := range parts[:3] {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts[0], parts[1], parts[2], true
}

// Paste fills the fields from a comma-separated line. The fields are left
// unchanged and Paste reports false when the line has fewer than three parts.
func (f *Form) Paste(text string) bool {
	title, author, year, ok := ParseClipboardLine(text)
	if !ok {
		return false
	}
	f.Title, f.Author, f.Year = title, author, year
	return true
}

// PasteFromClipboard reads the clipboard and passes its text to Paste.
func (f *Form) PasteFromClipboard() (bool, error) {
	if f.clip == nil {
		return false, ErrNoClipboard
	}
	text, err := f.clip.ReadAll()
	if err != nil {
		return false, fmt.Errorf("reading clipboard: %w", err)
	}
	return f.Paste(text), nil
}

// Save trims the fields and creates a record from them. On success the
// fields are cleared, the view reloads, and the new ID is returned. On
// ErrValidation the input is kept so the user can correct it.
func (f *Form) Save() (int64, error) {
	id, err := f.store.Create(
		strings.TrimSpace(f.Title),
		strings.TrimSpace(f.Author),
		strings.TrimSpace(f.Year),
	)
	if err != nil {
		return 0, err
	}
	f.Clear()
	return id, f.view.Reload()
}

// DeleteRequest is a pending deletion awaiting confirmation.
type DeleteRequest struct {
	ID     int64
	Prompt string
}

// RequestDelete starts deleting the selected row. Returns ErrNoSelection
// when nothing is selected.
func (f *Form) RequestDelete() (DeleteRequest, error) {
	book, ok := f.view.Selected()
	if !ok {
		return DeleteRequest{}, types.ErrNoSelection
	}
	return DeleteRequest{
		ID:     book.ID,
		Prompt: fmt.Sprintf("Delete book ID %d?", book.ID),
	}, nil
}

// ConfirmDelete deletes the requested record and reloads the view when
// confirmed is true. It reports whether anything was deleted.
func (f *Form) ConfirmDelete(req DeleteRequest, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}
	if err := f.store.Delete(req.ID); err != nil {
		return false, err
	}
	return true, f.view.Reload()
}

// Export writes the whole catalog to path, appending ".csv" when the path
// has no such extension. It returns the path actually written.
func (f *Form) Export(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: no file name given", types.ErrExport)
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		path += ".csv"
	}
	if err := f.store.ExportCSV(path); err != nil {
		return "", err
	}
	return path, nil
}
