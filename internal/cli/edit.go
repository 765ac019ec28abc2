package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pustaka/pkg/types"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <column> <value>",
		Short: "Change one column of a book",
		Long: `Change the title, author, or year of the book with the given ID.
The ID column cannot be edited. A blank value leaves the book unchanged.`,
		Example: `  pustaka edit 1 year 2006
  pustaka edit 3 title "Sang Pemimpi"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			column, err := types.ParseColumn(args[1])
			if err != nil {
				return userErr(err)
			}

			backend, view, _, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer backend.Detach()

			row, err := view.SelectID(id)
			if err != nil {
				return classify(err)
			}
			req, err := view.BeginEdit(row, column)
			if err != nil {
				return classify(err)
			}
			applied, err := view.CommitEdit(req, args[2], true)
			if err != nil {
				return classify(err)
			}
			if !applied {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: blank value; book unchanged")
				return nil
			}

			book, err := backend.Get(id)
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), book)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated book ID %d: %s = %s\n", id, column, book.Value(column))
			return nil
		},
	}
}

// parseID parses a book ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, userErr(fmt.Errorf("invalid book ID %q", arg))
	}
	return id, nil
}
