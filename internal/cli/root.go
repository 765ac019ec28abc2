// Package cli implements the pustaka command-line interface. Every
// subcommand attaches the catalog, drives the catalog View and Form, and
// detaches before returning.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pustaka/internal/catalog"
	"github.com/mesh-intelligence/pustaka/internal/logger"
	"github.com/mesh-intelligence/pustaka/internal/paths"
	"github.com/mesh-intelligence/pustaka/internal/sqlite"
	"github.com/mesh-intelligence/pustaka/pkg/pustaka"
	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app is the state shared by one invocation of the command tree.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	log       *zap.Logger
	clipboard catalog.Clipboard
}

func newApp() *app {
	return &app{log: zap.NewNop(), clipboard: catalog.NewSystemClipboard()}
}

// NewRootCmd creates the top-level "pustaka" command with global flags and
// all subcommands registered. Running it without a subcommand opens the
// terminal UI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "pustaka",
		Short:   "A local book catalog",
		Long:    "Pustaka keeps a catalog of books in a local SQLite file.\nAdd, edit, delete, search and export records from the terminal UI,\nthe command line, or a local web page.",
		Version: pustaka.Version,
		// Errors are printed once by Run, with the exit code they map to.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUI(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.pustaka)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.pustaka-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newUICmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the root command against the process arguments and exits
// with the mapped code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Run executes the command tree with the given arguments and streams and
// returns the exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return run(newApp(), args, stdin, stdout, stderr)
}

func run(a *app, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	a.log.Sync()
	if err == nil {
		return exitSuccess
	}

	fmt.Fprintln(stderr, "pustaka:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Cobra argument and flag errors.
	return exitUserError
}

// setup resolves the config directory, loads config.yaml, and builds the
// logger for the invocation. The ui and serve commands replace the logger
// once they know where to write.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysErr(err)
	}
	a.configDir = configDir
	a.cfg = cfg

	log, err := logger.NewLogger("pustaka", a.logLevel(), cfg.GetString(cfgKeyLogFile))
	if err != nil {
		return sysErr(fmt.Errorf("create logger: %w", err))
	}
	a.log = log
	return nil
}

// logLevel returns the --log-level flag, else log_level from config.yaml.
func (a *app) logLevel() string {
	if a.flags.logLevel != "" {
		return a.flags.logLevel
	}
	return a.cfg.GetString(cfgKeyLogLevel)
}

// resolveDataDir applies the precedence chain:
// --data-dir flag > config.yaml data_dir > PUSTAKA_DATA_DIR env > default.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
}

// attachBackend resolves the data directory and attaches a SQLite backend.
// The caller must defer backend.Detach().
func (a *app) attachBackend() (*sqlite.Backend, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, sysErr(fmt.Errorf("resolve data dir: %w", err))
	}

	backend := sqlite.NewBackend(a.log)
	if err := backend.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return nil, sysErr(fmt.Errorf("attach catalog: %w", err))
	}
	return backend, nil
}

// openCatalog attaches the backend and returns a loaded View and a Form
// over it.
func (a *app) openCatalog() (*sqlite.Backend, *catalog.View, *catalog.Form, error) {
	backend, err := a.attachBackend()
	if err != nil {
		return nil, nil, nil, err
	}
	view := catalog.NewView(backend)
	if err := view.Reload(); err != nil {
		backend.Detach()
		return nil, nil, nil, sysErr(err)
	}
	return backend, view, catalog.NewForm(backend, view, a.clipboard), nil
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func sysErr(err error) error {
	return &exitError{code: exitSysError, err: err}
}

func userErr(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// userErrors are the sentinels reported with exitUserError.
var userErrors = []error{
	types.ErrValidation,
	types.ErrNotFound,
	types.ErrUnknownColumn,
	types.ErrReadOnlyColumn,
	types.ErrNoSelection,
	types.ErrInvalidCSV,
	catalog.ErrNoClipboard,
}

// classify wraps err with the exit code it maps to: user mistakes exit 1,
// storage and filesystem failures exit 2.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userErr(err)
		}
	}
	return sysErr(err)
}
