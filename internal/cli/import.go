package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Add every book from an exported CSV file",
		Long:  "Read a file written by export and add each row as a new book.\nIDs in the file are ignored; the catalog assigns new ones.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			n, err := backend.ImportCSV(args[0])
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"path": args[0], "records": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d books from %s\n", n, args[0])
			return nil
		},
	}
}
