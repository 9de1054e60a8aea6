package endpoints

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/db"
	"github.com/doodlesbykumbi/metastore/pkg/model"
	"github.com/doodlesbykumbi/metastore/pkg/server"
	gormstore "github.com/doodlesbykumbi/metastore/pkg/server/store/gorm"
)

// NewTestServer creates a server with every endpoint registered, backed by
// the fresh database at dbURL. The schema is applied directly. An empty
// dbURL selects a private in-memory SQLite database.
func NewTestServer(dbURL string) (*server.Server, error) {
	if dbURL == "" {
		dbURL = fmt.Sprintf("sqlite://file:memdb_%s?mode=memory&cache=shared",
			strings.ReplaceAll(uuid.NewString(), "-", ""))
	}

	dialect, err := db.Dialect(dbURL)
	if err != nil {
		return nil, err
	}
	gdb, err := db.Connect(db.Config{URL: dbURL, LogLevel: "error"})
	if err != nil {
		return nil, err
	}
	if err := db.ExecMigrations(gdb, dialect); err != nil {
		return nil, err
	}

	tagStore, err := gormstore.NewTagStore(gdb, model.DefaultKinds())
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.DatabaseURL = dbURL
	cfg.Port = 0

	s := server.NewServer(gdb, server.Stores{
		Tags:      tagStore,
		Projects:  gormstore.NewProjectsStore(gdb),
		Runs:      gormstore.NewRunsStore(gdb),
		Schedules: gormstore.NewSchedulesStore(gdb),
		Health:    gormstore.NewHealthStore(gdb),
	}, cfg)
	RegisterAll(s)
	return s, nil
}
