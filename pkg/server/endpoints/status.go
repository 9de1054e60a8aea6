package endpoints

import (
	"net/http"
	"os"

	"github.com/doodlesbykumbi/metastore/pkg/server"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// StatusResponse is returned by GET /
type StatusResponse struct {
	Service string   `json:"service"`
	Version string   `json:"version"`
	Kinds   []string `json:"kinds"`
}

// HealthResponse is returned by GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/", handleStatus(s.TagStore)).Methods("GET")
	s.Router.HandleFunc("/healthz", handleHealth(s.HealthStore)).Methods("GET")
}

func handleStatus(tagStore store.TagStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("METASTORE_VERSION")
		if version == "" {
			version = "0.1.0"
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{
			Service: "metastore",
			Version: version,
			Kinds:   tagStore.Kinds(),
		})
	}
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
