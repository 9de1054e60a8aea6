package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/metastore/pkg/model"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// Ensure ProjectsStore implements store.ProjectsStore
var _ store.ProjectsStore = (*ProjectsStore)(nil)

// ProjectsStore implements store.ProjectsStore using GORM
type ProjectsStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProjectsStore creates a new ProjectsStore
func NewProjectsStore(db *gorm.DB) *ProjectsStore {
	return &ProjectsStore{db: db, now: time.Now}
}

// CreateProject creates a project
func (s *ProjectsStore) CreateProject(ctx context.Context, project store.Project) (*store.Project, error) {
	if project.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", store.ErrInvalidArgument)
	}
	labels, err := encodeJSON(nonNilLabels(project.Labels))
	if err != nil {
		return nil, fmt.Errorf("%w: labels: %v", store.ErrInvalidArgument, err)
	}
	spec, err := encodeJSON(nonNilDoc(project.Spec))
	if err != nil {
		return nil, fmt.Errorf("%w: spec: %v", store.ErrInvalidArgument, err)
	}
	created := project.Created
	if created.IsZero() {
		created = s.now()
	}

	row := model.Project{
		Name:        project.Name,
		Description: project.Description,
		State:       project.State,
		Labels:      labels,
		Spec:        spec,
		Created:     created.UTC(),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("create project %q: %w", project.Name, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: project %q already exists", store.ErrConflict, project.Name)
	}
	return toProject(row, store.ProjectsFormatFull)
}

// GetProject returns a project by name
func (s *ProjectsStore) GetProject(ctx context.Context, name string) (*store.Project, error) {
	var row model.Project
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: project %q", store.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return toProject(row, store.ProjectsFormatFull)
}

// PatchProject merges patch into the stored project
func (s *ProjectsStore) PatchProject(ctx context.Context, name string, patch store.ProjectPatch) (*store.Project, error) {
	var row model.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: project %q", store.ErrNotFound, name)
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Description != nil {
			row.Description = *patch.Description
			updates["description"] = row.Description
		}
		if patch.State != nil {
			row.State = *patch.State
			updates["state"] = row.State
		}
		if len(patch.Labels) > 0 {
			labels, err := decodeLabels(row.Labels)
			if err != nil {
				return err
			}
			for k, v := range patch.Labels {
				labels[k] = v
			}
			if row.Labels, err = encodeJSON(labels); err != nil {
				return err
			}
			updates["labels"] = row.Labels
		}
		if len(patch.Spec) > 0 {
			spec, err := decodeDoc(row.Spec)
			if err != nil {
				return err
			}
			if row.Spec, err = encodeJSON(mergeDocs(spec, patch.Spec)); err != nil {
				return err
			}
			updates["spec"] = row.Spec
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&model.Project{}).Where("id = ?", row.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return toProject(row, store.ProjectsFormatFull)
}

// ListProjects returns projects in creation order
func (s *ProjectsStore) ListProjects(ctx context.Context, format store.ProjectsFormat) ([]store.Project, error) {
	switch format {
	case "", store.ProjectsFormatFull, store.ProjectsFormatNameOnly:
	default:
		return nil, fmt.Errorf("%w: unknown projects format %q", store.ErrInvalidArgument, format)
	}

	var rows []model.Project
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	projects := make([]store.Project, 0, len(rows))
	for _, row := range rows {
		project, err := toProject(row, format)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, nil
}

// DeleteProject deletes a project record. Tags and versions scoped by the
// project name are left alone.
func (s *ProjectsStore) DeleteProject(ctx context.Context, name string) error {
	result := s.db.WithContext(ctx).Where("name = ?", name).Delete(&model.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: project %q", store.ErrNotFound, name)
	}
	return nil
}

func toProject(row model.Project, format store.ProjectsFormat) (*store.Project, error) {
	if format == store.ProjectsFormatNameOnly {
		return &store.Project{Name: row.Name}, nil
	}
	labels, err := decodeLabels(row.Labels)
	if err != nil {
		return nil, fmt.Errorf("decode project %q labels: %w", row.Name, err)
	}
	spec, err := decodeDoc(row.Spec)
	if err != nil {
		return nil, fmt.Errorf("decode project %q spec: %w", row.Name, err)
	}
	return &store.Project{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		State:       row.State,
		Labels:      labels,
		Spec:        spec,
		Created:     row.Created.UTC(),
	}, nil
}

func nonNilLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return map[string]string{}
	}
	return labels
}

func nonNilDoc(doc map[string]any) map[string]any {
	if doc == nil {
		return map[string]any{}
	}
	return doc
}
