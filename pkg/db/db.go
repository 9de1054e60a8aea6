package db

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	migrations "github.com/doodlesbykumbi/metastore/db"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// MigrationsTable is the golang-migrate bookkeeping table
const MigrationsTable = "metastore_schema_migrations"

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// LogLevel is the logrus level name; "debug" enables SQL logging
	LogLevel string
}

// Dialect returns the SQL dialect a database URL points at
func Dialect(dbURL string) (string, error) {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return DialectPostgres, nil
	case strings.HasPrefix(dbURL, "sqlite://"), strings.HasPrefix(dbURL, "sqlite3://"), strings.HasPrefix(dbURL, "file:"):
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("unsupported database URL scheme: %q", redact(dbURL))
}

// SQLiteDSN converts a sqlite:// URL into a go-sqlite3 DSN with foreign
// keys enabled
func SQLiteDSN(dbURL string) string {
	dsn := dbURL
	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if strings.HasPrefix(dsn, prefix) {
			dsn = strings.TrimPrefix(dsn, prefix)
			break
		}
	}
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

// Connect establishes a database connection.
// If no URL is provided, it reads from DATABASE_URL environment variable.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	dialect, err := Dialect(dbURL)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	case DialectSQLite:
		dialector = sqlite.Open(SQLiteDSN(dbURL))
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: NewLogger(cfg.LogLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == DialectSQLite {
		// go-sqlite3 serializes writers; one connection avoids "database is locked"
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

// NewLogger routes GORM's logger through logrus. SQL statements are only
// logged at debug level.
func NewLogger(level string) logger.Interface {
	logMode := logger.Warn
	switch strings.ToLower(level) {
	case "debug", "trace":
		logMode = logger.Info
	case "error", "fatal", "panic":
		logMode = logger.Error
	}
	return logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logMode,
		IgnoreRecordNotFoundError: true,
	})
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}

// MigrateURL returns the URL golang-migrate expects for dbURL: the sqlite
// scheme becomes sqlite3 and the bookkeeping table is set.
func MigrateURL(dbURL string) (string, error) {
	dialect, err := Dialect(dbURL)
	if err != nil {
		return "", err
	}
	if dialect == DialectSQLite {
		dsn := strings.TrimPrefix(strings.TrimPrefix(dbURL, "sqlite3://"), "sqlite://")
		dbURL = "sqlite3://" + dsn
	}
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + MigrationsTable, nil
	}
	return dbURL + "?x-migrations-table=" + MigrationsTable, nil
}

// MigrationFiles returns the embedded up migrations of a dialect in order
func MigrationFiles(dialect string) ([]string, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrations.Migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations for %s: %w", dialect, err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ExecMigrations applies every embedded up migration of dialect directly,
// without golang-migrate bookkeeping. It is meant for fresh test databases.
func ExecMigrations(gdb *gorm.DB, dialect string) error {
	files, err := MigrationFiles(dialect)
	if err != nil {
		return err
	}
	for _, file := range files {
		content, err := fs.ReadFile(migrations.Migrations, file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if err := gdb.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to apply %s: %w", file, err)
		}
	}
	return nil
}

func redact(dbURL string) string {
	if i := strings.Index(dbURL, "@"); i >= 0 {
		if j := strings.Index(dbURL, "://"); j >= 0 && j < i {
			return dbURL[:j+3] + "***" + dbURL[i:]
		}
	}
	return dbURL
}
