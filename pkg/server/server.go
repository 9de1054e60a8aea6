package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server/middleware"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// Stores groups the stores the endpoints are served from
type Stores struct {
	Tags      store.TagStore
	Projects  store.ProjectsStore
	Runs      store.RunsStore
	Schedules store.SchedulesStore
	Health    store.HealthStore
}

type Server struct {
	Router *mux.Router
	DB     *gorm.DB
	Config *config.MetastoreConfig

	TagStore       store.TagStore
	ProjectsStore  store.ProjectsStore
	RunsStore      store.RunsStore
	SchedulesStore store.SchedulesStore
	HealthStore    store.HealthStore

	srv       *http.Server
	accessLog io.Closer
}

func NewServer(db *gorm.DB, stores Stores, cfg *config.MetastoreConfig) *Server {
	router := mux.NewRouter().UseEncodedPath()
	router.Use(middleware.RequestID)

	accessLog := logrus.StandardLogger().WriterLevel(logrus.InfoLevel)
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(accessLog, router),
		Addr:         cfg.ListenAddress(),
		WriteTimeout: cfg.WriteTimeout(),
		ReadTimeout:  cfg.ReadTimeout(),
	}

	return &Server{
		Router:         router,
		DB:             db,
		Config:         cfg,
		TagStore:       stores.Tags,
		ProjectsStore:  stores.Projects,
		RunsStore:      stores.Runs,
		SchedulesStore: stores.Schedules,
		HealthStore:    stores.Health,
		srv:            srv,
		accessLog:      accessLog,
	}
}

// Addr returns the address the server listens on
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartWithListener serves on an existing listener until Shutdown is called
func (s *Server) StartWithListener(l net.Listener) error {
	err := s.srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	_ = s.accessLog.Close()
	return err
}
