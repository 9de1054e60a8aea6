package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/db"
	"github.com/doodlesbykumbi/metastore/pkg/model"
	"github.com/doodlesbykumbi/metastore/pkg/server"
	gormstore "github.com/doodlesbykumbi/metastore/pkg/server/store/gorm"
)

// openStores connects to the configured database and builds every store
// over it, serving the configured kinds
func openStores(cfg *config.MetastoreConfig) (*gorm.DB, server.Stores, error) {
	if cfg.DatabaseURL == "" {
		return nil, server.Stores{}, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	kinds, err := model.SelectKinds(cfg.Kinds)
	if err != nil {
		return nil, server.Stores{}, err
	}

	gdb, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
	if err != nil {
		return nil, server.Stores{}, err
	}

	tagStore, err := gormstore.NewTagStore(gdb, kinds, gormstore.WithDefaultProject(cfg.DefaultProject))
	if err != nil {
		return nil, server.Stores{}, err
	}

	return gdb, server.Stores{
		Tags:      tagStore,
		Projects:  gormstore.NewProjectsStore(gdb),
		Runs:      gormstore.NewRunsStore(gdb),
		Schedules: gormstore.NewSchedulesStore(gdb),
		Health:    gormstore.NewHealthStore(gdb),
	}, nil
}
