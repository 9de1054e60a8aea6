// Package audit provides audit logging for metastore write operations.
//
// Events are rendered as RFC5424 syslog lines and, when an audit database
// is configured, persisted to the audit_messages table.
//
// # Event Types
//
//   - VersionStoredEvent: a version of an object was stored (optionally tagged)
//   - TagEvent: a tag was assigned to objects or deleted
//   - ProjectEvent: a project was created or patched
//   - DeleteEvent: a project, run, schedule or the versions of a key were deleted
//
// # Usage
//
//	audit.Log(audit.TagEvent{
//	    Project:   "p1",
//	    Tag:       "prod",
//	    Operation: audit.TagAssign,
//	    Objects:   2,
//	    Success:   true,
//	})
package audit
