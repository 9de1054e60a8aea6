//go:build embed_migrations

package main

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	migrations "github.com/doodlesbykumbi/metastore/db"
	"github.com/doodlesbykumbi/metastore/pkg/db"
)

func init() {
	fmt.Println("Using embedded migrations (production build)")
}

func createMigrateInstance(dialect, dbURL string) (*migrate.Migrate, error) {
	migrationsFS, err := fs.Sub(migrations.Migrations, path.Join("migrations", dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}

	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}

	return migrate.NewWithSourceInstance("iofs", d, dbURL)
}

func listMigrationFiles(dialect string) ([]string, error) {
	files, err := db.MigrationFiles(dialect)
	if err != nil {
		return nil, err
	}
	for i, file := range files {
		files[i] = path.Base(file)
	}
	return files, nil
}
