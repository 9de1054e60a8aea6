package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// RegisterProjectsEndpoints registers the project record endpoints
func RegisterProjectsEndpoints(s *server.Server) {
	projectsStore := s.ProjectsStore
	cfg := s.Config

	s.Router.HandleFunc("/projects", handleCreateProject(projectsStore, cfg)).Methods("POST")
	s.Router.HandleFunc("/projects", handleListProjects(projectsStore)).Methods("GET")
	s.Router.HandleFunc("/projects/{project}", handleGetProject(projectsStore)).Methods("GET")
	s.Router.HandleFunc("/projects/{project}", handlePatchProject(projectsStore, cfg)).Methods("PATCH")
	s.Router.HandleFunc("/projects/{project}", handleDeleteProject(projectsStore, cfg)).Methods("DELETE")
}

func handleCreateProject(projectsStore store.ProjectsStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var project store.Project
		if !decodeJSON(w, r, &project) {
			return
		}

		created, err := projectsStore.CreateProject(r.Context(), project)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.ProjectEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Project:      project.Name,
			Operation:    "create",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleListProjects(projectsStore store.ProjectsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := store.ProjectsFormat(r.URL.Query().Get("format"))
		if format == "" {
			format = store.ProjectsFormatFull
		}

		projects, err := projectsStore.ListProjects(r.Context(), format)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}

		if format == store.ProjectsFormatNameOnly {
			names := make([]string, 0, len(projects))
			for _, p := range projects {
				names = append(names, p.Name)
			}
			respondWithJSON(w, http.StatusOK, map[string]interface{}{"projects": names})
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
	}
}

func handleGetProject(projectsStore store.ProjectsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := projectsStore.GetProject(r.Context(), pathVars(r)["project"])
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, project)
	}
}

func handlePatchProject(projectsStore store.ProjectsStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathVars(r)["project"]

		var patch store.ProjectPatch
		if !decodeJSON(w, r, &patch) {
			return
		}

		project, err := projectsStore.PatchProject(r.Context(), name, patch)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.ProjectEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Project:      name,
			Operation:    "patch",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, project)
	}
}

func handleDeleteProject(projectsStore store.ProjectsStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathVars(r)["project"]

		err := projectsStore.DeleteProject(r.Context(), name)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.DeleteEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Project:      name,
			Resource:     "project",
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
