package audit

import (
	"fmt"
	"strconv"
)

// VersionStoredEvent is logged when a version of an object is stored. Runs
// and schedules reuse it with Kind "run" or "schedule".
type VersionStoredEvent struct {
	ClientIP     string
	RequestID    string
	Kind         string
	Project      string
	Key          string
	UID          string
	Iter         int
	Tag          string
	Success      bool
	ErrorMessage string
}

func (e VersionStoredEvent) MessageID() string {
	return "store"
}

func (e VersionStoredEvent) object() string {
	return fmt.Sprintf("%s %s/%s@%s", e.Kind, e.Project, e.Key, e.UID)
}

func (e VersionStoredEvent) Message() string {
	if e.Success {
		msg := "stored " + e.object()
		if e.Tag != "" {
			msg += " tagged " + e.Tag
		}
		return msg
	}
	msg := "failed to store " + e.object()
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e VersionStoredEvent) Severity() Severity {
	return severity(e.Success)
}

func (e VersionStoredEvent) Facility() int {
	return FacilityLocal0
}

func (e VersionStoredEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"kind":    e.Kind,
			"project": e.Project,
			"key":     e.Key,
			"uid":     e.UID,
			"iter":    strconv.Itoa(e.Iter),
		},
		SDIDAction: {
			"operation": "store",
			"result":    result(e.Success),
		},
		SDIDClient: clientData(e.ClientIP, e.RequestID),
	}
	if e.Tag != "" {
		sd[SDIDTag] = map[string]string{"name": e.Tag}
	}
	return sd
}

func clientData(ip, requestID string) map[string]string {
	client := map[string]string{"ip": ip}
	if requestID != "" {
		client["request"] = requestID
	}
	return client
}
