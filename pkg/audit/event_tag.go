package audit

import (
	"fmt"
	"strconv"
)

// Tag operations
const (
	TagAssign = "assign"
	TagDelete = "delete"
)

// TagEvent is logged when a tag is assigned to objects or deleted
type TagEvent struct {
	ClientIP     string
	RequestID    string
	Project      string
	Tag          string
	Operation    string
	Objects      int
	Success      bool
	ErrorMessage string
}

func (e TagEvent) MessageID() string {
	return "tag"
}

func (e TagEvent) Message() string {
	var msg string
	switch {
	case e.Operation == TagAssign && e.Success:
		return fmt.Sprintf("assigned tag %s in %s to %d object(s)", e.Tag, e.Project, e.Objects)
	case e.Success:
		return fmt.Sprintf("deleted tag %s in %s", e.Tag, e.Project)
	case e.Operation == TagAssign:
		msg = fmt.Sprintf("failed to assign tag %s in %s", e.Tag, e.Project)
	default:
		msg = fmt.Sprintf("failed to delete tag %s in %s", e.Tag, e.Project)
	}
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e TagEvent) Severity() Severity {
	return severity(e.Success)
}

func (e TagEvent) Facility() int {
	return FacilityLocal0
}

func (e TagEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDTag: {
			"name":    e.Tag,
			"project": e.Project,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
		SDIDClient: clientData(e.ClientIP, e.RequestID),
	}
	if e.Operation == TagAssign {
		sd[SDIDTag]["objects"] = strconv.Itoa(e.Objects)
	}
	return sd
}
