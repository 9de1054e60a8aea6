package audit

// DeleteEvent is logged when a project, run, schedule or the versions of
// a key are deleted
type DeleteEvent struct {
	ClientIP     string
	RequestID    string
	Project      string
	Resource     string // "project", "run", "schedule" or an object kind
	Name         string
	Success      bool
	ErrorMessage string
}

func (e DeleteEvent) MessageID() string {
	return "delete"
}

func (e DeleteEvent) Message() string {
	if e.Success {
		return "deleted " + e.Resource + " " + e.Project + "/" + e.Name
	}
	msg := "failed to delete " + e.Resource + " " + e.Project + "/" + e.Name
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e DeleteEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e DeleteEvent) Facility() int {
	return FacilityLocal0
}

func (e DeleteEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"resource": e.Resource,
			"project":  e.Project,
			"name":     e.Name,
		},
		SDIDAction: {
			"operation": "delete",
			"result":    result(e.Success),
		},
		SDIDClient: clientData(e.ClientIP, e.RequestID),
	}
}
