package catalog

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrNoClipboard is returned by PasteFromClipboard when the form has no
// clipboard or the system clipboard cannot be used.
var ErrNoClipboard = errors.New("clipboard not available")

// Clipboard is a source of pasted text.
type Clipboard interface {
	ReadAll() (string, error)
}

// SystemClipboard reads the operating system clipboard.
type SystemClipboard struct{}

// NewSystemClipboard returns the system clipboard, or nil when the platform
// has no clipboard utility installed.
func NewSystemClipboard() Clipboard {
	if clipboard.Unsupported {
		return nil
	}
	return SystemClipboard{}
}

// ReadAll returns the current clipboard text.
func (SystemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

// StaticClipboard is a Clipboard holding fixed text. Front ends without
// access to the system clipboard, such as the web UI, use it for text the
// user pasted into a field.
type StaticClipboard string

// ReadAll returns the text.
func (c StaticClipboard) ReadAll() (string, error) {
	return string(c), nil
}
