package store

import (
	"context"
	"time"
)

// LatestTag is the derived pseudo-tag naming the most recently updated
// version of a key. It is never stored.
const LatestTag = "latest"

// AnyTag selects every (version, tag) pair in List.
const AnyTag = "*"

// Record is one versioned object as returned by the tag store. Tag is set
// only when the record was resolved through a tag mapping.
type Record struct {
	ID      int64          `json:"id"`
	Kind    string         `json:"kind"`
	Project string         `json:"project"`
	Key     string         `json:"key"`
	UID     string         `json:"uid"`
	Iter    int            `json:"iter"`
	Tag     string         `json:"tag,omitempty"`
	Updated time.Time      `json:"updated"`
	Body    map[string]any `json:"body"`
}

// ObjectRef identifies a stored version by kind and row id.
type ObjectRef struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// TagRef is a (project, key, tag) triple of one kind.
type TagRef struct {
	Project string `json:"project"`
	Key     string `json:"key"`
	Tag     string `json:"tag"`
}

// StoreOptions controls StoreVersion. A zero Updated means "now".
type StoreOptions struct {
	Project string
	Tag     string
	Iter    int
	Updated time.Time
}

// ReadOptions controls Read. UID wins over Tag. A nil Iter matches any
// iteration.
type ReadOptions struct {
	Project string
	Tag     string
	UID     string
	Iter    *int
}

// ListFilter controls List. Since and Until are inclusive.
type ListFilter struct {
	Project         string
	Key             string
	Tag             string
	Since           *time.Time
	Until           *time.Time
	IncludeUntagged bool
}

// TagStore stores versioned objects of several kinds and maintains
// project-scoped tags over them.
type TagStore interface {
	// Kinds returns the names of the registered kinds
	Kinds() []string

	// StoreVersion inserts or replaces a version and optionally tags it.
	StoreVersion(ctx context.Context, kind, key, uid string, body map[string]any, opts StoreOptions) (*Record, error)

	// Read resolves one version of a key by uid, tag or latest.
	// Returns ErrNotFound when nothing matches.
	Read(ctx context.Context, kind, key string, opts ReadOptions) (*Record, error)

	// List returns versions of a kind matching filter, newest first.
	List(ctx context.Context, kind string, filter ListFilter) ([]Record, error)

	// DeleteVersions deletes every version of a key and returns how many
	// were removed. Tags on them go with them.
	DeleteVersions(ctx context.Context, kind, project, key string) (int64, error)

	// TagObjects tags every referenced object, or none of them.
	TagObjects(ctx context.Context, objects []ObjectRef, project, tag string) error

	// DelTag removes a tag from every kind. Deleting a missing tag is not an error.
	DelTag(ctx context.Context, project, tag string) error

	// FindTagged returns every object of any kind carrying the tag.
	FindTagged(ctx context.Context, project, tag string) ([]Record, error)

	// ListTags returns the distinct tag names used in a project, sorted.
	ListTags(ctx context.Context, project string) ([]string, error)

	// ListTagRefs returns the (project, key, tag) triples of one kind.
	ListTagRefs(ctx context.Context, kind, project string) ([]TagRef, error)
}
