package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book after confirmation",
		Long:  "Delete the book with the given ID. Asks for confirmation on stdin unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			backend, view, form, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer backend.Detach()

			if _, err := view.SelectID(id); err != nil {
				return classify(err)
			}
			req, err := form.RequestDelete()
			if err != nil {
				return classify(err)
			}

			confirmed := yes
			if !confirmed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", req.Prompt)
				confirmed = readYes(bufio.NewReader(cmd.InOrStdin()))
			}

			deleted, err := form.ConfirmDelete(req, confirmed)
			if err != nil {
				return classify(err)
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted book ID %d\n", req.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// readYes reads one line and reports whether it is "y" or "yes".
// End of input counts as no.
func readYes(r *bufio.Reader) bool {
	line, _ := r.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
