package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// RegisterTagsEndpoints registers the tag endpoints
func RegisterTagsEndpoints(s *server.Server) {
	tagStore := s.TagStore
	cfg := s.Config

	tagsRouter := s.Router.PathPrefix("/projects/{project}").Subrouter()

	// GET /projects/{project}/tags - distinct tag names
	tagsRouter.HandleFunc("/tags", handleListTags(tagStore)).Methods("GET")

	// GET /projects/{project}/tags/{tag} - objects of any kind with the tag
	tagsRouter.HandleFunc("/tags/{tag}", handleFindTagged(tagStore)).Methods("GET")

	// PUT /projects/{project}/tags/{tag} - tag objects, all or nothing
	tagsRouter.HandleFunc("/tags/{tag}", handleTagObjects(tagStore, cfg)).Methods("PUT")

	// DELETE /projects/{project}/tags/{tag} - remove the tag from every kind
	tagsRouter.HandleFunc("/tags/{tag}", handleDeleteTag(tagStore, cfg)).Methods("DELETE")

	// GET /projects/{project}/tag-refs/{kind} - (project, key, tag) triples
	tagsRouter.HandleFunc("/tag-refs/{kind}", handleListTagRefs(tagStore)).Methods("GET")
}

func handleListTags(tagStore store.TagStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := tagStore.ListTags(r.Context(), pathVars(r)["project"])
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
	}
}

func handleFindTagged(tagStore store.TagStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		records, err := tagStore.FindTagged(r.Context(), vars["project"], vars["tag"])
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"objects": records})
	}
}

func handleTagObjects(tagStore store.TagStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		project, tag := vars["project"], vars["tag"]

		var objects []store.ObjectRef
		if !decodeJSON(w, r, &objects) {
			return
		}

		err := tagStore.TagObjects(r.Context(), objects, project, tag)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.TagEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Project:      project,
			Tag:          tag,
			Operation:    audit.TagAssign,
			Objects:      len(objects),
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

func handleDeleteTag(tagStore store.TagStore, cfg *config.MetastoreConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		project, tag := vars["project"], vars["tag"]

		err := tagStore.DelTag(r.Context(), project, tag)
		info := newRequestInfo(r, cfg)
		audit.Log(audit.TagEvent{
			ClientIP:     info.ClientIP,
			RequestID:    info.RequestID,
			Project:      project,
			Tag:          tag,
			Operation:    audit.TagDelete,
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

func handleListTagRefs(tagStore store.TagStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := pathVars(r)
		refs, err := tagStore.ListTagRefs(r.Context(), vars["kind"], vars["project"])
		if err != nil {
			respondWithStoreError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"tag_refs": refs})
	}
}
