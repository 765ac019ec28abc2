package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export the whole catalog to a CSV file",
		Long:  "Write every book to path as CSV with the header ID,Judul,Pengarang,Tahun.\n\".csv\" is appended when path has no such extension.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, view, form, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer backend.Detach()

			path, err := form.Export(args[0])
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"path": path, "records": view.Len()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d books to %s\n", view.Len(), path)
			return nil
		},
	}
}
