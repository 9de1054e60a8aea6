package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

func TestCreateAndListProjects(t *testing.T) {
	s := newTestStores(t)

	var out bytes.Buffer
	require.NoError(t, createProject(testCtx, &out, s.ProjectsStore, store.Project{Name: "iris", Labels: map[string]string{"team": "ml"}}))
	assert.Contains(t, out.String(), "Created project 'iris'")

	out.Reset()
	require.NoError(t, createProject(testCtx, &out, s.ProjectsStore, store.Project{Name: "mnist"}))

	err := createProject(testCtx, &out, s.ProjectsStore, store.Project{Name: "iris"})
	assert.ErrorIs(t, err, store.ErrConflict)

	out.Reset()
	require.NoError(t, listProjects(testCtx, &out, s.ProjectsStore, "text"))
	assert.Equal(t, "iris\nmnist\n", out.String())

	out.Reset()
	require.NoError(t, listProjects(testCtx, &out, s.ProjectsStore, "json"))
	var projects []store.Project
	require.NoError(t, json.Unmarshal(out.Bytes(), &projects))
	require.Len(t, projects, 2)
	assert.Equal(t, "iris", projects[0].Name)
	assert.Equal(t, map[string]string{"team": "ml"}, projects[0].Labels)
}
