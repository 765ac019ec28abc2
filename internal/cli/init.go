package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pustaka/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and the catalog database",
		Long:  "Create the configuration directory with a default config.yaml and the data\ndirectory holding perpustakaan.db. Existing files are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			dataDir := backend.DataDir()
			if err := backend.Detach(); err != nil {
				return sysErr(fmt.Errorf("finalize storage: %w", err))
			}

			dbPath := filepath.Join(dataDir, sqlite.DatabaseFileName)
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"config_dir": a.configDir,
					"data_dir":   dataDir,
					"database":   dbPath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog initialized at %s\n", dbPath)
			return nil
		},
	}
}
