package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var title, author, year string
	var paste bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Long: `Add a book. Title and author must not be blank and year must be all digits.

With --paste the fields are first filled from the clipboard, which must hold
"title, author, year". Flags given explicitly override pasted values.`,
		Example: `  pustaka add --title "Laskar Pelangi" --author "Andrea Hirata" --year 2005
  pustaka add --paste`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, form, err := a.openCatalog()
			if err != nil {
				return err
			}
			defer backend.Detach()

			if paste {
				ok, err := form.PasteFromClipboard()
				if err != nil {
					return classify(err)
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: clipboard does not hold \"title, author, year\"; ignoring it")
				}
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				form.Title = title
			}
			if flags.Changed("author") {
				form.Author = author
			}
			if flags.Changed("year") {
				form.Year = year
			}

			id, err := form.Save()
			if err != nil {
				return classify(err)
			}

			if a.flags.jsonMode {
				book, err := backend.Get(id)
				if err != nil {
					return classify(err)
				}
				return writeJSON(cmd.OutOrStdout(), book)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added book ID %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().StringVar(&year, "year", "", "publication year (digits only)")
	cmd.Flags().BoolVar(&paste, "paste", false, "fill fields from the clipboard first")
	return cmd
}
