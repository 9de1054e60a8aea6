package audit

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := VersionStoredEvent{
		ClientIP: "10.0.0.1",
		Kind:     "artifact",
		Project:  "p1",
		Key:      "model",
		UID:      "u1",
		Tag:      "prod",
		Success:  true,
	}

	mock.ExpectExec(`INSERT INTO audit_messages`).
		WithArgs(
			FacilityLocal0,    // facility
			int(SeverityInfo), // severity
			sqlmock.AnyArg(),  // timestamp
			sqlmock.AnyArg(),  // hostname
			"metastore",       // appname
			sqlmock.AnyArg(),  // procid
			"store",           // msgid
			sqlmock.AnyArg(),  // sdata (JSON)
			"stored artifact p1/model@u1 tagged prod",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Save(event); err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveFailedEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	mock.ExpectExec(`INSERT INTO audit_messages`).
		WithArgs(
			FacilityLocal0,
			int(SeverityWarning),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			"metastore",
			sqlmock.AnyArg(),
			"tag",
			sqlmock.AnyArg(),
			"failed to assign tag prod in p1: not found",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(TagEvent{Project: "p1", Tag: "prod", Operation: TagAssign, ErrorMessage: "not found"})
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreNilDB(t *testing.T) {
	store := &Store{db: nil}

	err := store.Save(DeleteEvent{Project: "p1", Resource: "run", Name: "u1", Success: true})
	if err != nil {
		t.Errorf("Save() with nil db should not error, got: %v", err)
	}
}

func TestStoreClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	store := NewStoreWithDB(db)
	mock.ExpectClose()

	if err := store.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreCloseNilDB(t *testing.T) {
	store := &Store{db: nil}
	if err := store.Close(); err != nil {
		t.Errorf("Close() with nil db should not error, got: %v", err)
	}
}

func TestStoreRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT facility, severity, timestamp, msgid, sdata, message FROM audit_messages WHERE msgid = \$1 ORDER BY id DESC LIMIT 10`).
		WithArgs("tag").
		WillReturnRows(sqlmock.NewRows([]string{"facility", "severity", "timestamp", "msgid", "sdata", "message"}).
			AddRow(FacilityLocal0, int(SeverityInfo), ts, "tag", `{"tag@32473":{"name":"prod"}}`, "deleted tag prod in p1").
			AddRow(FacilityLocal0, int(SeverityInfo), ts, "tag", nil, "deleted tag dev in p1"))

	messages, err := NewStoreWithDB(db).Recent("tag", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Recent() returned %d messages, want 2", len(messages))
	}
	if messages[0].Sdata[SDIDTag]["name"] != "prod" {
		t.Errorf("sdata tag name = %q, want prod", messages[0].Sdata[SDIDTag]["name"])
	}
	if messages[1].Sdata != nil {
		t.Errorf("expected nil sdata for NULL column, got %v", messages[1].Sdata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestNewStoreRejectsUnknownScheme(t *testing.T) {
	if _, err := NewStore("mysql://localhost/audit"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestNewStoreSQLite(t *testing.T) {
	store, err := NewStore("file:audit_store_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer store.Close()

	var _ *sql.DB = store.DB()
	if err := store.DB().Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
