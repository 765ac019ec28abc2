// Output helpers shared by the pustaka commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mesh-intelligence/pustaka/pkg/types"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// renderBooks renders books as a bordered table, one row per record.
func renderBooks(books []types.Book) string {
	headers := make([]string, len(types.Columns))
	for i, c := range types.Columns {
		headers[i] = c.Label()
	}
	rows := make([][]string, len(books))
	for i, book := range books {
		rows[i] = book.Row()
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysErr(fmt.Errorf("encode json: %w", err))
	}
	fmt.Fprintln(w, string(data))
	return nil
}
