package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pustaka/internal/backup"
	"github.com/mesh-intelligence/pustaka/internal/paths"
	"github.com/mesh-intelligence/pustaka/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog as a local web page",
		Long: `Serve the catalog over HTTP until interrupted.

The listen address comes from --addr, then serve.addr in config.yaml, then
PUSTAKA_SERVE_ADDR. When serve.backup_schedule holds a cron expression such as
"0 3 * * *" or "@daily", a timestamped CSV copy of the catalog is written to
serve.backup_dir (default: <data_dir>/backups) on that schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.GetString(cfgKeyServeAddr)
			}
			schedule := a.cfg.GetString(cfgKeyBackupSchedule)
			if schedule != "" {
				if err := backup.ValidateSchedule(schedule); err != nil {
					return userErr(err)
				}
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			db, err := backend.DB()
			if err != nil {
				return sysErr(err)
			}
			backupDir, err := paths.ResolveBackupDir(a.cfg.GetString(cfgKeyBackupDir), backend.DataDir())
			if err != nil {
				return sysErr(fmt.Errorf("resolve backup dir: %w", err))
			}

			srv, err := web.New(web.Options{
				Store:          backend,
				DB:             db,
				Log:            a.log,
				Addr:           addr,
				BackupSchedule: schedule,
				BackupDir:      backupDir,
			})
			if err != nil {
				return sysErr(err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving catalog on http://%s (ctrl+c to stop)\n", addr)
			a.log.Info("serve starting", zap.String("addr", addr), zap.String("data_dir", backend.DataDir()))
			if err := srv.Run(ctx); err != nil {
				return sysErr(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: "+web.DefaultAddr+")")
	return cmd
}
