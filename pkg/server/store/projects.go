package store

import (
	"context"
	"time"
)

// ProjectsFormat selects how much of a project ListProjects returns
type ProjectsFormat string

const (
	ProjectsFormatFull     ProjectsFormat = "full"
	ProjectsFormatNameOnly ProjectsFormat = "name_only"
)

// Project is a project record
type Project struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	State       string            `json:"state,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Spec        map[string]any    `json:"spec,omitempty"`
	Created     time.Time         `json:"created"`
}

// ProjectPatch is applied by PatchProject. Nil fields are left alone; Spec
// is deep-merged onto the stored spec.
type ProjectPatch struct {
	Description *string           `json:"description,omitempty"`
	State       *string           `json:"state,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Spec        map[string]any    `json:"spec,omitempty"`
}

// ProjectsStore abstracts project storage operations
type ProjectsStore interface {
	// CreateProject creates a project. Returns ErrConflict if the name exists.
	CreateProject(ctx context.Context, project Project) (*Project, error)

	// GetProject returns a project by name
	GetProject(ctx context.Context, name string) (*Project, error)

	// PatchProject merges patch into the stored project
	PatchProject(ctx context.Context, name string, patch ProjectPatch) (*Project, error)

	// ListProjects returns projects in creation order. With
	// ProjectsFormatNameOnly only names are populated.
	ListProjects(ctx context.Context, format ProjectsFormat) ([]Project, error)

	// DeleteProject deletes a project record
	DeleteProject(ctx context.Context, name string) error
}
