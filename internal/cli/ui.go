package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pustaka/internal/logger"
	"github.com/mesh-intelligence/pustaka/internal/tui"
)

// LogFileName is the log written inside the data directory while the
// terminal UI owns the screen.
const LogFileName = "pustaka.log"

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the full-screen catalog (default)",
		Long: `Open the catalog window: the book table, the entry form and a search field.

  ctrl+s  save the form          ctrl+v  paste "title, author, year"
  ctrl+d  delete selected row    ctrl+e  export to CSV
  ctrl+f  search                 tab     next pane
  enter   edit cell (table)      left/right  choose column
  ctrl+q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUI(cmd)
		},
	}
}

func (a *app) runUI(cmd *cobra.Command) error {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return sysErr(fmt.Errorf("resolve data dir: %w", err))
	}

	// Log lines on stderr would corrupt the screen.
	logFile := a.cfg.GetString(cfgKeyLogFile)
	if logFile == "" {
		logFile = filepath.Join(dataDir, LogFileName)
	}
	if err := a.useLogFile(logFile); err != nil {
		return err
	}

	backend, view, form, err := a.openCatalog()
	if err != nil {
		return err
	}
	defer backend.Detach()

	a.log.Info("terminal ui started", zap.Int("books", view.Len()))
	if err := tui.Run(cmd.Context(), tui.New(view, form, a.log)); err != nil {
		return sysErr(err)
	}
	return nil
}

// useLogFile swaps the invocation logger for one writing to path.
func (a *app) useLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return sysErr(fmt.Errorf("create log dir: %w", err))
	}
	log, err := logger.NewLogger("pustaka", a.logLevel(), path)
	if err != nil {
		return sysErr(fmt.Errorf("create logger: %w", err))
	}
	a.log.Sync()
	a.log = log
	return nil
}
