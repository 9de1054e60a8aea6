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

// Ensure SchedulesStore implements store.SchedulesStore
var _ store.SchedulesStore = (*SchedulesStore)(nil)

// SchedulesStore implements store.SchedulesStore using GORM
type SchedulesStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSchedulesStore creates a new SchedulesStore
func NewSchedulesStore(db *gorm.DB) *SchedulesStore {
	return &SchedulesStore{db: db, now: time.Now}
}

// UpsertSchedule creates or updates the schedule (project, name)
func (s *SchedulesStore) UpsertSchedule(ctx context.Context, schedule store.Schedule) (*store.Schedule, error) {
	if schedule.Project == "" || schedule.Name == "" {
		return nil, fmt.Errorf("%w: schedule project and name are required", store.ErrInvalidArgument)
	}
	labels, err := encodeJSON(nonNilLabels(schedule.Labels))
	if err != nil {
		return nil, fmt.Errorf("%w: labels: %v", store.ErrInvalidArgument, err)
	}
	body, err := encodeJSON(nonNilDoc(schedule.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", store.ErrInvalidArgument, err)
	}
	now := s.now().UTC()

	var row model.Schedule
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("project = ? AND name = ?", schedule.Project, schedule.Name).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = model.Schedule{
				Project: schedule.Project,
				Name:    schedule.Name,
				Kind:    schedule.Kind,
				Cron:    schedule.Cron,
				Labels:  labels,
				Body:    body,
				Created: now,
				Updated: now,
			}
			return tx.Create(&row).Error
		case err != nil:
			return err
		}

		row.Kind = schedule.Kind
		row.Cron = schedule.Cron
		row.Labels = labels
		row.Body = body
		row.Updated = now
		return tx.Model(&model.Schedule{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
			"kind":    row.Kind,
			"cron":    row.Cron,
			"labels":  row.Labels,
			"body":    row.Body,
			"updated": row.Updated,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("upsert schedule %s/%s: %w", schedule.Project, schedule.Name, err)
	}
	return toSchedule(row)
}

// GetSchedule returns a schedule by project and name
func (s *SchedulesStore) GetSchedule(ctx context.Context, project, name string) (*store.Schedule, error) {
	var row model.Schedule
	err := s.db.WithContext(ctx).Where("project = ? AND name = ?", project, name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: schedule %s/%s", store.ErrNotFound, project, name)
	}
	if err != nil {
		return nil, err
	}
	return toSchedule(row)
}

// ListSchedules returns the schedules of a project ordered by name
func (s *SchedulesStore) ListSchedules(ctx context.Context, project string) ([]store.Schedule, error) {
	var rows []model.Schedule
	if err := s.db.WithContext(ctx).Where("project = ?", project).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	schedules := make([]store.Schedule, 0, len(rows))
	for _, row := range rows {
		schedule, err := toSchedule(row)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, nil
}

// DeleteSchedule deletes a schedule
func (s *SchedulesStore) DeleteSchedule(ctx context.Context, project, name string) error {
	result := s.db.WithContext(ctx).Where("project = ? AND name = ?", project, name).Delete(&model.Schedule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: schedule %s/%s", store.ErrNotFound, project, name)
	}
	return nil
}

func toSchedule(row model.Schedule) (*store.Schedule, error) {
	labels, err := decodeLabels(row.Labels)
	if err != nil {
		return nil, fmt.Errorf("decode schedule %s labels: %w", row.Name, err)
	}
	body, err := decodeDoc(row.Body)
	if err != nil {
		return nil, fmt.Errorf("decode schedule %s body: %w", row.Name, err)
	}
	return &store.Schedule{
		ID:      row.ID,
		Project: row.Project,
		Name:    row.Name,
		Kind:    row.Kind,
		Cron:    row.Cron,
		Labels:  labels,
		Body:    body,
		Created: row.Created.UTC(),
		Updated: row.Updated.UTC(),
	}, nil
}
