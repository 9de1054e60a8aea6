package endpoints

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// StoreVersionRequest is the body of POST /projects/{project}/{kind}/{key}
type StoreVersionRequest struct {
	UID     string         `json:"uid"`
	Iter    int            `json:"iter"`
	Tag     string         `json:"tag"`
	Updated *time.Time     `json:"updated"`
	Body    map[string]any `json:"body"`
}

// DeleteVersionsResponse reports how many versions a delete removed
type DeleteVersionsResponse struct {
	Deleted int64 `json:"deleted"`
}

// RegisterVersionsEndpoints registers the versioned object endpoints.
// It must run after the tags, runs and schedules registrations.
func RegisterVersionsEndpoints(s *server.Server) {
	tagStore := s.TagStore
	cfg := s.Config

	s.Router.HandleFunc("/projects/{project}/{kind}/{key}", handleStoreVersion(tagStore, cfg)).Methods("POST")
	s.Router.HandleFunc("/projects/{project}/{kind}/{key}", handleReadVersion(tagStore)).Methods("GET")
	s.Router.HandleFunc("/projects/{project}/{kind}/{key}", handleDeleteVersions(tagStore, cfg)).Methods("DELETE")
	s.Router.HandleFunc("/projects/{project}/{kind}", handleListVersions(tagStore)).Methods("GET")
}

// newUID returns a random uid in the compact hex form
func newUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func handleStoreVersion(tagStore store.TagStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		project, kind, key := vars["project"], vars["kind"], vars["key"]

		var req StoreVersionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.UID == "" {
			req.UID = newUID()
		}

		opts := store.StoreOptions{Project: project, Tag: req.Tag, Iter: req.Iter}
		if req.Updated != nil {
			opts.Updated = *req.Updated
		}

		record, err := tagStore.StoreVersion(r.Context(), kind, key, req.UID, req.Body, opts)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.VersionStoredEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Kind:         kind,
			Project:      project,
			Key:          key,
			UID:          req.UID,
			Iter:         req.Iter,
			Tag:          req.Tag,
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, record)
	}
}

func handleReadVersion(tagStore store.TagStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		query := r.URL.Query()

		iter, err := queryInt(r, "iter")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		record, err := tagStore.Read(r.Context(), vars["kind"], vars["key"], store.ReadOptions{
			Project: vars["project"],
			Tag:     query.Get("tag"),
			UID:     query.Get("uid"),
			Iter:    iter,
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, record)
	}
}

func handleListVersions(tagStore store.TagStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		query := r.URL.Query()

		filter := store.ListFilter{
			Project: vars["project"],
			Key:     query.Get("key"),
			Tag:     query.Get("tag"),
		}

		var err error
		if filter.Since, err = queryTime(r, "since"); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if filter.Until, err = queryTime(r, "until"); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if filter.IncludeUntagged, err = queryBool(r, "include-untagged"); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		records, err := tagStore.List(r.Context(), vars["kind"], filter)
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"objects": records})
	}
}

func handleDeleteVersions(tagStore store.TagStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		project, kind, key := vars["project"], vars["kind"], vars["key"]

		deleted, err := tagStore.DeleteVersions(r.Context(), kind, project, key)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.DeleteEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Project:      project,
			Resource:     kind,
			Name:         key,
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, DeleteVersionsResponse{Deleted: deleted})
	}
}

// queryTime parses an optional RFC 3339 query parameter
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
