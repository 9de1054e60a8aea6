package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
)

func newMockAuditStore(t *testing.T) (*audit.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return audit.NewStoreWithDB(db), mock
}

func auditRows() *sqlmock.Rows {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"facility", "severity", "timestamp", "msgid", "sdata", "message"}).
		AddRow(audit.FacilityLocal0, int(audit.SeverityInfo), ts, "tag",
			`{"subject@32473":{"tag":"production","project":"iris"}}`, "deleted tag production in iris")
}

func TestShowRecentAuditText(t *testing.T) {
	s, mock := newMockAuditStore(t)
	mock.ExpectQuery(`SELECT facility, severity, timestamp, msgid, sdata, message FROM audit_messages WHERE msgid = \$1 ORDER BY id DESC LIMIT 5`).
		WithArgs("tag").
		WillReturnRows(auditRows())

	var out bytes.Buffer
	require.NoError(t, showRecentAudit(&out, s, "tag", 5, "text"))
	assert.Equal(t,
		"2024-03-01T12:00:00Z tag      deleted tag production in iris [subject@32473.project=iris subject@32473.tag=production]\n",
		out.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowRecentAuditJSON(t *testing.T) {
	s, mock := newMockAuditStore(t)
	mock.ExpectQuery(`FROM audit_messages ORDER BY id DESC LIMIT 20`).
		WillReturnRows(sqlmock.NewRows([]string{"facility", "severity", "timestamp", "msgid", "sdata", "message"}))

	var out bytes.Buffer
	require.NoError(t, showRecentAudit(&out, s, "", 20, "json"))

	var messages []audit.Message
	require.NoError(t, json.Unmarshal(out.Bytes(), &messages))
	assert.Empty(t, messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowRecentAuditRejectsLimit(t *testing.T) {
	s, _ := newMockAuditStore(t)
	assert.Error(t, showRecentAudit(&bytes.Buffer{}, s, "", 0, "text"))
}
