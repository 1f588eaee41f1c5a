// Package database provides sqlite-backed persistence for the catalog.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/halfmoss/reelmatch/internal/paths"
)

// CatalogDB is the database handle for catalog items and their materials.
type CatalogDB struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens or creates the database at the default location.
func Open() (*CatalogDB, error) {
	dbPath, err := paths.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	return OpenPath(dbPath)
}

// OpenPath opens or creates the database at a specific path.
func OpenPath(path string) (*CatalogDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode for better concurrent access
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cdb := &CatalogDB{
		db:   db,
		path: path,
	}

	if err := cdb.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return cdb, nil
}

// OpenInMemory opens an in-memory database for testing.
func OpenInMemory() (*CatalogDB, error) {
	db, err := sql.Open("sqlite", ":memory:?_cache=shared")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping in-memory database: %w", err)
	}

	cdb := &CatalogDB{
		db:   db,
		path: ":memory:",
	}

	if err := cdb.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate in-memory database: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (c *CatalogDB) Close() error {
	return c.db.Close()
}

// Path returns the filesystem path to the database file.
func (c *CatalogDB) Path() string {
	return c.path
}

func (c *CatalogDB) migrate() error {
	return applyMigrations(c.db)
}
