package gorm

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/metastore/pkg/model"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

func TestDelTagSQL(t *testing.T) {
	gdb, mock := newMockDB(t)
	s, err := NewTagStore(gdb, model.DefaultKinds())
	require.NoError(t, err)

	mock.ExpectBegin()
	for _, table := range []string{"artifacts_tags", "functions_tags", "feature_sets_tags"} {
		query := `DELETE FROM ` + table + ` WHERE project = $1 AND name = $2`
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("p1", "prod").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, s.DelTag(context.Background(), "p1", "prod"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelTagRollsBackOnError(t *testing.T) {
	gdb, mock := newMockDB(t)
	s, err := NewTagStore(gdb, model.DefaultKinds())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM artifacts_tags`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM functions_tags`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = s.DelTag(context.Background(), "p1", "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTagsSQL(t *testing.T) {
	gdb, mock := newMockDB(t)
	s, err := NewTagStore(gdb, model.DefaultKinds())
	require.NoError(t, err)

	query := `SELECT name FROM artifacts_tags WHERE project = $1 UNION ` +
		`SELECT name FROM functions_tags WHERE project = $2 UNION ` +
		`SELECT name FROM feature_sets_tags WHERE project = $3 ORDER BY name`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("p1", "p1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("dev").AddRow("prod"))

	tags, err := s.ListTags(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "prod"}, tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreVersionRollsBackOnInsertError(t *testing.T) {
	gdb, mock := newMockDB(t)
	s, err := NewTagStore(gdb, model.DefaultKinds())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO artifacts (project, key, uid, iter, body, updated)`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = s.StoreVersion(context.Background(), "artifact", "model", "u1", nil, store.StoreOptions{Project: "p1", Tag: "prod"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidationIssuesNoSQL(t *testing.T) {
	gdb, mock := newMockDB(t)
	s, err := NewTagStore(gdb, model.DefaultKinds())
	require.NoError(t, err)

	_, err = s.StoreVersion(context.Background(), "artifact", "", "u1", nil, store.StoreOptions{})
	assert.True(t, errors.Is(err, store.ErrInvalidArgument))
	err = s.TagObjects(context.Background(), []store.ObjectRef{{Kind: "model", ID: 1}}, "p1", "prod")
	assert.True(t, errors.Is(err, store.ErrUnknownKind))
	err = s.DelTag(context.Background(), "p1", "")
	assert.True(t, errors.Is(err, store.ErrInvalidArgument))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckConnectivity(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`SELECT 1`)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewHealthStore(gdb).CheckConnectivity(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckConnectivityError(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`SELECT 1`)).WillReturnError(errors.New("connection refused"))

	assert.Error(t, NewHealthStore(gdb).CheckConnectivity(context.Background()))
}

func TestCreateProjectConflictSQL(t *testing.T) {
	gdb, mock := newMockDB(t)

	// a concurrent insert won the race: the row is skipped, not rejected
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "projects" .* ON CONFLICT \("name"\) DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	_, err := NewProjectsStore(gdb).CreateProject(context.Background(), store.Project{Name: "p1"})
	assert.True(t, errors.Is(err, store.ErrConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
