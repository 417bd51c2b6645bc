package test_utils

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite" // Import the SQLite driver
)

// NewInMemoryDB creates a new in-memory SQLite database for testing
// Each database is completely isolated from others
func NewInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SetupTestDB creates a new in-memory SQLite database and applies all migrations
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db := NewInMemoryDB(t)

	// Enable foreign keys for SQLite
	_, err := db.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := ApplyMigrations(t, db); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return db
}

// ApplyMigrations uses golang-migrate to apply all migrations to the database
func ApplyMigrations(t *testing.T, db *sql.DB) error {
	t.Helper()

	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %v", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %v", err)
	}

	migrationsPath := fmt.Sprintf("file://%s", filepath.Join(projectRoot, "migrations", "sqlite"))

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %v", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %v", err)
	}

	return nil
}

// findProjectRoot attempts to locate the project root directory
// It looks for .git directory or go.mod file
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if fileExists(filepath.Join(dir, ".git")) || fileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}

// fileExists checks if a file or directory exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
