package endpoints

import (
	"net/http"
	"strings"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// RegisterRunsEndpoints registers the run endpoints
func RegisterRunsEndpoints(s *server.Server) {
	runsStore := s.RunsStore
	cfg := s.Config

	s.Router.HandleFunc("/projects/{project}/runs", handleListRuns(runsStore)).Methods("GET")

	runsRouter := s.Router.PathPrefix("/projects/{project}/runs").Subrouter()
	runsRouter.HandleFunc("/{uid}", handleStoreRun(runsStore, cfg)).Methods("POST")
	runsRouter.HandleFunc("/{uid}", handleReadRun(runsStore)).Methods("GET")
	runsRouter.HandleFunc("/{uid}", handleDeleteRun(runsStore, cfg)).Methods("DELETE")
}

// runIter returns the iter query parameter, 0 when absent
func runIter(w http.ResponseWriter, r *http.Request) (int, bool) {
	iter, err := queryInt(r, "iter")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	if iter == nil {
		return 0, true
	}
	return *iter, true
}

func handleStoreRun(runsStore store.RunsStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		project, uid := vars["project"], vars["uid"]

		iter, ok := runIter(w, r)
		if !ok {
			return
		}
		var body map[string]any
		if !decodeJSON(w, r, &body) {
			return
		}

		err := runsStore.StoreRun(r.Context(), body, uid, project, iter)
		var run *store.Run
		if err == nil {
			run, err = runsStore.ReadRun(r.Context(), uid, project, iter)
		}
		info := newRequestInfo(r, cfg)
		audit.Log(audit.VersionStoredEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Kind:         "run",
			Project:      project,
			Key:          uid,
			UID:          uid,
			Iter:         iter,
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, run)
	}
}

func handleReadRun(runsStore store.RunsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		iter, ok := runIter(w, r)
		if !ok {
			return
		}

		run, err := runsStore.ReadRun(r.Context(), vars["uid"], vars["project"], iter)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, run)
	}
}

func handleListRuns(runsStore store.RunsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := store.RunFilter{
			Project: pathVars(r)["project"],
			Name:    query.Get("name"),
			State:   query.Get("state"),
		}
		// label=key=value, repeatable
		for _, label := range query["label"] {
			k, v, _ := strings.Cut(label, "=")
			if filter.Labels == nil {
				filter.Labels = make(map[string]string)
			}
			filter.Labels[k] = v
		}

		runs, err := runsStore.ListRuns(r.Context(), filter)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
	}
}

func handleDeleteRun(runsStore store.RunsStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		project, uid := vars["project"], vars["uid"]

		iter, ok := runIter(w, r)
		if !ok {
			return
		}

		err := runsStore.DeleteRun(r.Context(), uid, project, iter)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.DeleteEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Project:      project,
			Resource:     "run",
			Name:         uid,
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
