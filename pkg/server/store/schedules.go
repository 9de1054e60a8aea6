package store

import (
	"context"
	"time"
)

// Schedule is a named schedule within a project
type Schedule struct {
	ID      int64             `json:"id"`
	Project string            `json:"project"`
	Name    string            `json:"name"`
	Kind    string            `json:"kind,omitempty"`
	Cron    string            `json:"cron,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
	Body    map[string]any    `json:"body,omitempty"`
	Created time.Time         `json:"created"`
	Updated time.Time         `json:"updated"`
}

// SchedulesStore abstracts schedule storage operations
type SchedulesStore interface {
	// UpsertSchedule creates or updates the schedule (project, name).
	// An update keeps the existing id and creation time.
	UpsertSchedule(ctx context.Context, schedule Schedule) (*Schedule, error)

	// GetSchedule returns a schedule by project and name
	GetSchedule(ctx context.Context, project, name string) (*Schedule, error)

	// ListSchedules returns the schedules of a project ordered by name
	ListSchedules(ctx context.Context, project string) ([]Schedule, error)

	// DeleteSchedule deletes a schedule
	DeleteSchedule(ctx context.Context, project, name string) error
}
