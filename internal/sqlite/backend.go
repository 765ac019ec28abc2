// Package sqlite implements the record store for pustaka on top of SQLite.
// The database file is the source of truth; every command is a single
// autocommit statement.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// DatabaseFileName is the SQLite file created inside the data directory.
const DatabaseFileName = "perpustakaan.db"

// Compile-time interface check.
var _ types.Catalog = (*Backend)(nil)

// Backend implements the Catalog interface using SQLite.
// The handle is opened once by Attach and held until Detach.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *zap.Logger
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
// A nil logger disables logging.
func NewBackend(log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{log: log.Named("store")}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist and creates the Buku table if absent.
// Existing records are kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// One connection keeps statements strictly sequential, even when the web
	// front end serves requests concurrently.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.config.DataDir = dataDir
	b.attached = true

	b.log.Debug("catalog attached", zap.String("path", dbPath))
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrCatalogDetached.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.log.Debug("catalog detached")
	return nil
}

// DB returns the underlying database handle so that front ends can keep
// auxiliary tables (such as web sessions) in the same file.
// Returns ErrCatalogDetached if the backend is not attached.
func (b *Backend) DB() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCatalogDetached
	}
	return b.db, nil
}

// DataDir returns the data directory the backend is attached to.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// handle returns the open database or ErrCatalogDetached.
// The caller must hold b.mu (read or write lock).
func (b *Backend) handle() (*sql.DB, error) {
	if !b.attached {
		return nil, types.ErrCatalogDetached
	}
	return b.db, nil
}
