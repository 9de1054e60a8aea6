package store

import (
	"context"
	"time"
)

// Run is one iteration of a run
type Run struct {
	UID       string            `json:"uid"`
	Project   string            `json:"project"`
	Iter      int               `json:"iter"`
	Name      string            `json:"name,omitempty"`
	State     string            `json:"state,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	StartTime *time.Time        `json:"start_time,omitempty"`
	Updated   time.Time         `json:"updated"`
	Body      map[string]any    `json:"body"`
}

// RunFilter narrows ListRuns. Labels must all match.
type RunFilter struct {
	Project string
	Name    string
	State   string
	Labels  map[string]string
}

// RunsStore abstracts run storage operations
type RunsStore interface {
	// StoreRun inserts or replaces the run at (project, uid, iter)
	StoreRun(ctx context.Context, run map[string]any, uid, project string, iter int) error

	// ReadRun returns exactly the requested iteration
	ReadRun(ctx context.Context, uid, project string, iter int) (*Run, error)

	// ListRuns returns runs newest first
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// DeleteRun deletes one iteration of a run
	DeleteRun(ctx context.Context, uid, project string, iter int) error
}
