package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AppName is the RFC5424 APP-NAME of every audit message
const AppName = "metastore"

// SDID constants for structured data IDs (RFC5424).
// 32473 is the documentation Private Enterprise Number from RFC 5612.
const (
	PEN         = 32473
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
	SDIDTag     = "tag@32473"
)

// Syslog facility constants
const (
	FacilityUser   = 1  // LOG_USER
	FacilityLocal0 = 16 // LOG_LOCAL0 - metadata changes
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	appName  string
	pid      int
	now      func() time.Time
}

// NewLogger creates a new audit logger writing to stdout
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  AppName,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Format renders an event as one RFC5424 line:
// <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Format(event Event) string {
	pri := event.Facility()*8 + int(event.Severity())
	timestamp := l.now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}
	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)
}

// Log writes an audit event
func (l *Logger) Log(event Event) {
	line := l.Format(event)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.writer, line); err != nil {
		logrus.WithError(err).Warn("audit: failed to write event")
	}
}

// formatStructuredData formats the structured data according to RFC5424.
// Elements and params are sorted so output is stable.
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	ids := make([]string, 0, len(sd))
	for id := range sd {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		params := sd[id]
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("[" + id)
		for _, k := range keys {
			b.WriteString(" " + k + "=" + escapeSDValue(params[k]))
		}
		b.WriteString("]")
	}
	return b.String()
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}

// Default logger instance
var DefaultLogger = NewLogger()

var (
	mu           sync.RWMutex
	auditEnabled = true
	defaultStore *Store
)

// IsEnabled returns whether audit logging is enabled
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return auditEnabled
}

// SetEnabled allows programmatic control of audit logging
func SetEnabled(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	auditEnabled = enabled
}

// SetStore sets the store events are persisted to; nil disables persistence
func SetStore(store *Store) {
	mu.Lock()
	defer mu.Unlock()
	defaultStore = store
}

// Configure enables or disables auditing and opens the audit database when
// dbURL is set
func Configure(enabled bool, dbURL string) error {
	SetEnabled(enabled)
	if dbURL == "" {
		SetStore(nil)
		return nil
	}
	store, err := NewStore(dbURL)
	if err != nil {
		return fmt.Errorf("audit: failed to open audit database: %w", err)
	}
	SetStore(store)
	return nil
}

// Log writes an event to the default logger and store (if audit is enabled)
func Log(event Event) {
	mu.RLock()
	enabled, store := auditEnabled, defaultStore
	mu.RUnlock()
	if !enabled {
		return
	}
	DefaultLogger.Log(event)

	if store != nil {
		if err := store.Save(event); err != nil {
			logrus.WithError(err).WithField("msgid", event.MessageID()).Warn("audit: failed to save event")
		}
	}
}
