//go:build !embed_migrations

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const defaultMigrationsPath = "db/migrations"

// migrationsPath returns the migration directory of a dialect, overridable
// with METASTORE_MIGRATIONS_PATH
func migrationsPath(dialect string) string {
	base := os.Getenv("METASTORE_MIGRATIONS_PATH")
	if base == "" {
		base = defaultMigrationsPath
	}
	return filepath.Join(base, dialect)
}

func createMigrateInstance(dialect, dbURL string) (*migrate.Migrate, error) {
	path := migrationsPath(dialect)
	fmt.Printf("Running migrations from file://%s\n", path)
	return migrate.New("file://"+path, dbURL)
}

func listMigrationFiles(dialect string) ([]string, error) {
	entries, err := os.ReadDir(migrationsPath(dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
