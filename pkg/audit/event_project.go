package audit

import "fmt"

// ProjectEvent is logged when a project record is created or patched
type ProjectEvent struct {
	ClientIP     string
	RequestID    string
	Project      string
	Operation    string // "create" or "patch"
	Success      bool
	ErrorMessage string
}

func (e ProjectEvent) MessageID() string {
	return "project"
}

func (e ProjectEvent) Message() string {
	if e.Success {
		done := e.Operation + "ed"
		if e.Operation == "create" {
			done = "created"
		}
		return fmt.Sprintf("%s project %s", done, e.Project)
	}
	msg := fmt.Sprintf("failed to %s project %s", e.Operation, e.Project)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ProjectEvent) Severity() Severity {
	return severity(e.Success)
}

func (e ProjectEvent) Facility() int {
	return FacilityLocal0
}

func (e ProjectEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"project": e.Project,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
		SDIDClient: clientData(e.ClientIP, e.RequestID),
	}
}
