package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

func TestProjectsEndpoints(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Projects.On("CreateProject", mock.Anything, store.Project{Name: "p1", Description: "first"}).
			Return(&store.Project{ID: 1, Name: "p1", Description: "first"}, nil)

		req := httptest.NewRequest("POST", "/projects", strings.NewReader(`{"name": "p1", "description": "first"}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mocks.AssertExpectations(t)
	})

	t.Run("create duplicate", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Projects.On("CreateProject", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: project %q exists", store.ErrConflict, "p1"))

		req := httptest.NewRequest("POST", "/projects", strings.NewReader(`{"name": "p1"}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("list names only", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Projects.On("ListProjects", mock.Anything, store.ProjectsFormatNameOnly).
			Return([]store.Project{{Name: "p1"}, {Name: "p2"}}, nil)

		req := httptest.NewRequest("GET", "/projects?format=name_only", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"projects": ["p1", "p2"]}`, w.Body.String())
	})

	t.Run("list defaults to full", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Projects.On("ListProjects", mock.Anything, store.ProjectsFormatFull).
			Return([]store.Project{{ID: 1, Name: "p1"}}, nil)

		req := httptest.NewRequest("GET", "/projects", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Projects []store.Project `json:"projects"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "p1", resp.Projects[0].Name)
	})

	t.Run("patch", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Projects.On("PatchProject", mock.Anything, "p1", mock.MatchedBy(func(p store.ProjectPatch) bool {
			return p.Description != nil && *p.Description == "second" && p.Spec["source"] == "git"
		})).Return(&store.Project{ID: 1, Name: "p1", Description: "second"}, nil)

		req := httptest.NewRequest("PATCH", "/projects/p1", strings.NewReader(`{"description": "second", "spec": {"source": "git"}}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.AssertExpectations(t)
	})

	t.Run("delete missing", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Projects.On("DeleteProject", mock.Anything, "nope").
			Return(fmt.Errorf("%w: project %q", store.ErrNotFound, "nope"))

		req := httptest.NewRequest("DELETE", "/projects/nope", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRunsEndpoints(t *testing.T) {
	t.Run("store then read back", func(t *testing.T) {
		s, mocks := newMockServer(t)
		run := map[string]any{"metadata": map[string]any{"name": "train"}}
		mocks.Runs.On("StoreRun", mock.Anything, run, "abc", "p1", 2).Return(nil)
		mocks.Runs.On("ReadRun", mock.Anything, "abc", "p1", 2).Return(&store.Run{UID: "abc", Iter: 2, Name: "train"}, nil)

		req := httptest.NewRequest("POST", "/projects/p1/runs/abc?iter=2", strings.NewReader(`{"metadata": {"name": "train"}}`))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"train"`)
		mocks.AssertExpectations(t)
	})

	t.Run("list filters by label", func(t *testing.T) {
		s, mocks := newMockServer(t)
		filter := store.RunFilter{Project: "p1", State: "completed", Labels: map[string]string{"owner": "ada"}}
		mocks.Runs.On("ListRuns", mock.Anything, filter).Return([]store.Run{{UID: "abc"}}, nil)

		req := httptest.NewRequest("GET", "/projects/p1/runs?state=completed&label=owner=ada", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Runs.On("DeleteRun", mock.Anything, "abc", "p1", 0).Return(nil)

		req := httptest.NewRequest("DELETE", "/projects/p1/runs/abc", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestSchedulesEndpoints(t *testing.T) {
	t.Run("upsert takes project and name from the path", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Schedules.On("UpsertSchedule", mock.Anything, mock.MatchedBy(func(sc store.Schedule) bool {
			return sc.Project == "p1" && sc.Name == "nightly" && sc.Cron == "0 0 * * *"
		})).Return(&store.Schedule{ID: 5, Project: "p1", Name: "nightly"}, nil)

		body := `{"name": "ignored", "kind": "job", "cron": "0 0 * * *"}`
		req := httptest.NewRequest("PUT", "/projects/p1/schedules/nightly", strings.NewReader(body))
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mocks.AssertExpectations(t)
	})

	t.Run("delete missing", func(t *testing.T) {
		s, mocks := newMockServer(t)
		mocks.Schedules.On("DeleteSchedule", mock.Anything, "p1", "nightly").
			Return(fmt.Errorf("%w: schedule", store.ErrNotFound))

		req := httptest.NewRequest("DELETE", "/projects/p1/schedules/nightly", nil)
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
