package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// RegisterSchedulesEndpoints registers the schedule endpoints
func RegisterSchedulesEndpoints(s *server.Server) {
	schedulesStore := s.SchedulesStore
	cfg := s.Config

	s.Router.HandleFunc("/projects/{project}/schedules", handleListSchedules(schedulesStore)).Methods("GET")

	schedulesRouter := s.Router.PathPrefix("/projects/{project}/schedules").Subrouter()
	schedulesRouter.HandleFunc("/{name}", handleUpsertSchedule(schedulesStore, cfg)).Methods("PUT")
	schedulesRouter.HandleFunc("/{name}", handleGetSchedule(schedulesStore)).Methods("GET")
	schedulesRouter.HandleFunc("/{name}", handleDeleteSchedule(schedulesStore, cfg)).Methods("DELETE")
}

func handleUpsertSchedule(schedulesStore store.SchedulesStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)

		var schedule store.Schedule
		if !decodeJSON(w, r, &schedule) {
			return
		}
		// the path names the schedule
		schedule.Project = vars["project"]
		schedule.Name = vars["name"]

		saved, err := schedulesStore.UpsertSchedule(r.Context(), schedule)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.VersionStoredEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Kind:         "schedule",
			Project:      schedule.Project,
			Key:          schedule.Name,
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, saved)
	}
}

func handleGetSchedule(schedulesStore store.SchedulesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		schedule, err := schedulesStore.GetSchedule(r.Context(), vars["project"], vars["name"])
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, schedule)
	}
}

func handleListSchedules(schedulesStore store.SchedulesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedules, err := schedulesStore.ListSchedules(r.Context(), pathVars(r)["project"])
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
	}
}

func handleDeleteSchedule(schedulesStore store.SchedulesStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		project, name := vars["project"], vars["name"]

		err := schedulesStore.DeleteSchedule(r.Context(), project, name)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.DeleteEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Project:      project,
			Resource:     "schedule",
			Name:         name,
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
