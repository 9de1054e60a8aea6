package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/metastore/pkg/model"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// Ensure RunsStore implements store.RunsStore
var _ store.RunsStore = (*RunsStore)(nil)

// RunsStore implements store.RunsStore using GORM
type RunsStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRunsStore creates a new RunsStore
func NewRunsStore(db *gorm.DB) *RunsStore {
	return &RunsStore{db: db, now: time.Now}
}

// runFields pulls the indexed columns out of a run document:
// metadata.name, metadata.labels, status.state and status.start_time.
func runFields(run map[string]any) (name, state string, labels map[string]string, start *time.Time) {
	labels = map[string]string{}
	if meta, ok := run["metadata"].(map[string]any); ok {
		name, _ = meta["name"].(string)
		if l, ok := meta["labels"].(map[string]any); ok {
			for k, v := range l {
				if sv, ok := v.(string); ok {
					labels[k] = sv
				} else {
					labels[k] = fmt.Sprint(v)
				}
			}
		}
	}
	if status, ok := run["status"].(map[string]any); ok {
		state, _ = status["state"].(string)
		if raw, ok := status["start_time"].(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				t = t.UTC()
				start = &t
			}
		}
	}
	return name, state, labels, start
}

// StoreRun inserts or replaces the run at (project, uid, iter)
func (s *RunsStore) StoreRun(ctx context.Context, run map[string]any, uid, project string, iter int) error {
	if uid == "" {
		return fmt.Errorf("%w: run uid is required", store.ErrInvalidArgument)
	}
	if project == "" {
		project = DefaultProject
	}
	if iter < 0 {
		return fmt.Errorf("%w: iter must not be negative", store.ErrInvalidArgument)
	}

	name, state, labels, start := runFields(run)
	body, err := encodeJSON(nonNilDoc(run))
	if err != nil {
		return fmt.Errorf("%w: run body: %v", store.ErrInvalidArgument, err)
	}
	labelsJSON, err := encodeJSON(labels)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Exec(`
		INSERT INTO runs (project, uid, iter, name, state, labels, body, start_time, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project, uid, iter) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			labels = excluded.labels,
			body = excluded.body,
			start_time = excluded.start_time,
			updated = excluded.updated
	`, project, uid, iter, name, state, labelsJSON, body, start, s.now().UTC()).Error
	if err != nil {
		return fmt.Errorf("store run %s/%s iter %d: %w", project, uid, iter, err)
	}
	return nil
}

// ReadRun returns exactly the requested iteration of a run
func (s *RunsStore) ReadRun(ctx context.Context, uid, project string, iter int) (*store.Run, error) {
	if project == "" {
		project = DefaultProject
	}
	var row model.Run
	err := s.db.WithContext(ctx).
		Where("project = ? AND uid = ? AND iter = ?", project, uid, iter).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: run %s/%s iter %d", store.ErrNotFound, project, uid, iter)
	}
	if err != nil {
		return nil, err
	}
	return toRun(row)
}

// ListRuns returns runs newest first. Label filters are applied after the
// query since label columns are JSON.
func (s *RunsStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]store.Run, error) {
	query := s.db.WithContext(ctx).Model(&model.Run{})
	if filter.Project != "" {
		query = query.Where("project = ?", filter.Project)
	}
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}

	var rows []model.Run
	if err := query.Order("updated DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	runs := make([]store.Run, 0, len(rows))
	for _, row := range rows {
		run, err := toRun(row)
		if err != nil {
			return nil, err
		}
		if !matchLabels(run.Labels, filter.Labels) {
			continue
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

// DeleteRun deletes one iteration of a run. Deleting a missing run is not
// an error.
func (s *RunsStore) DeleteRun(ctx context.Context, uid, project string, iter int) error {
	if project == "" {
		project = DefaultProject
	}
	return s.db.WithContext(ctx).
		Where("project = ? AND uid = ? AND iter = ?", project, uid, iter).
		Delete(&model.Run{}).Error
}

func matchLabels(labels, want map[string]string) bool {
	for k, v := range want {
		if labels[k] != v {
			return false
		}
	}
	return true
}

func toRun(row model.Run) (*store.Run, error) {
	body, err := decodeDoc(row.Body)
	if err != nil {
		return nil, fmt.Errorf("decode run %s: %w", row.UID, err)
	}
	labels, err := decodeLabels(row.Labels)
	if err != nil {
		return nil, fmt.Errorf("decode run %s labels: %w", row.UID, err)
	}
	run := &store.Run{
		UID:     row.UID,
		Project: row.Project,
		Iter:    row.Iter,
		Name:    row.Name,
		State:   row.State,
		Labels:  labels,
		Updated: row.Updated.UTC(),
		Body:    body,
	}
	if row.StartTime != nil {
		t := row.StartTime.UTC()
		run.StartTime = &t
	}
	return run, nil
}
