package audit

import (
	"database/sql"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/doodlesbykumbi/metastore/pkg/db"
)

// Store handles audit message persistence to the audit_messages table
type Store struct {
	db *sql.DB
}

// NewStore opens the audit database at dbURL. PostgreSQL and SQLite URLs
// are accepted.
func NewStore(dbURL string) (*Store, error) {
	dialect, err := db.Dialect(dbURL)
	if err != nil {
		return nil, err
	}

	driver, dsn := "postgres", dbURL
	if dialect == db.DialectSQLite {
		driver, dsn = "sqlite3", db.SQLiteDSN(dbURL)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: conn}, nil
}

// NewStoreWithDB creates a store with an existing database connection
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists an audit event
func (s *Store) Save(event Event) error {
	if s.db == nil {
		return nil
	}

	hostname, _ := os.Hostname()
	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}

	// $n placeholders are understood by both lib/pq and go-sqlite3
	_, err = s.db.Exec(`
		INSERT INTO audit_messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		event.Facility(),
		int(event.Severity()),
		time.Now().UTC(),
		hostname,
		AppName,
		strconv.Itoa(os.Getpid()),
		event.MessageID(),
		string(sdata),
		event.Message(),
	)
	return err
}

// Message is one persisted audit message
type Message struct {
	Facility  int                          `json:"facility"`
	Severity  int                          `json:"severity"`
	Timestamp time.Time                    `json:"timestamp"`
	Msgid     string                       `json:"msgid"`
	Sdata     map[string]map[string]string `json:"sdata"`
	Message   string                       `json:"message"`
}

// Recent returns up to limit messages, newest first, optionally filtered by
// message id
func (s *Store) Recent(msgid string, limit int) ([]Message, error) {
	query := `SELECT facility, severity, timestamp, msgid, sdata, message FROM audit_messages`
	args := []any{}
	if msgid != "" {
		query += ` WHERE msgid = $1`
		args = append(args, msgid)
	}
	query += ` ORDER BY id DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []Message
	for rows.Next() {
		var (
			m     Message
			sdata sql.NullString
		)
		if err := rows.Scan(&m.Facility, &m.Severity, &m.Timestamp, &m.Msgid, &sdata, &m.Message); err != nil {
			return nil, err
		}
		if sdata.Valid && strings.TrimSpace(sdata.String) != "" {
			if err := json.Unmarshal([]byte(sdata.String), &m.Sdata); err != nil {
				return nil, err
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DB returns the underlying database connection
func (s *Store) DB() *sql.DB {
	return s.db
}
