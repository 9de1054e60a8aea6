package integration

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/metastore/pkg/server"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB            *gorm.DB
	Container     testcontainers.Container
	ServerURL     string
	DatabaseURL   string
	HTTPClient    *http.Client
	ServerProcess *exec.Cmd
	InlineServer  *server.Server
	stop          func()
}

// NewTestContext starts PostgreSQL in a container and a metastore server
// against it.
// Modes:
//   - Binary mode (default): Set METASTORE_BINARY to the path of the metastorectl binary
//   - Inline mode: Set METASTORE_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}

	inlineMode := os.Getenv("METASTORE_INLINE") == "1"
	binaryPath := os.Getenv("METASTORE_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either METASTORE_BINARY or METASTORE_INLINE=1 is required.\n\nBinary mode:\n  go build -o metastorectl ./cmd/metastorectl\n  INTEGRATION_TEST=1 METASTORE_BINARY=$(pwd)/metastorectl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 METASTORE_INLINE=1 go test -v ./test/integration/...")
	}

	if !inlineMode {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("METASTORE_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	pgContainer, connStr, err := startPostgres(ctx)
	if err != nil {
		return nil, err
	}

	tc := &TestContext{
		Container:   pgContainer,
		DatabaseURL: connStr,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}

	port, err := freePort()
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	tc.ServerURL = fmt.Sprintf("http://127.0.0.1:%d", port)

	if inlineMode {
		tc.InlineServer, tc.stop, err = startInlineServer(connStr, port)
	} else {
		migrationsDir := filepath.Join(projectRoot, "db", "migrations")
		tc.ServerProcess, tc.stop, err = startBinary(binaryPath, connStr, migrationsDir, port)
	}
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	if err := waitForServer(tc.ServerURL, 30*time.Second); err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	// The schema exists once the server is healthy
	tc.DB, err = gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return tc, nil
}

// startPostgres runs a throwaway PostgreSQL container and returns its URL
func startPostgres(ctx context.Context) (*tcpostgres.PostgresContainer, string, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("metastore_test"),
		tcpostgres.WithUsername("metastore"),
		tcpostgres.WithPassword("metastore"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get connection string: %w", err)
	}
	return pgContainer, connStr, nil
}

// Reset empties every table so scenarios start from a clean database
func (tc *TestContext) Reset() error {
	return tc.DB.Exec(`TRUNCATE projects, artifacts, artifacts_tags, functions, functions_tags,
		feature_sets, feature_sets_tags, runs, schedules_v2, audit_messages RESTART IDENTITY CASCADE`).Error
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.stop != nil {
		tc.stop()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}
