package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [keyword]",
		Short: "List books, optionally only those whose title contains keyword",
		Example: `  pustaka list
  pustaka list Pelangi
  pustaka list --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, view, _, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer backend.Detach()

			if len(args) == 1 {
				if err := view.SetFilter(args[0]); err != nil {
					return classify(err)
				}
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), view.Rows())
			}
			if view.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBooks(view.Rows()))
			return nil
		},
	}
}
