package model

import (
	"time"

	"gorm.io/datatypes"
)

// Project is a project record. Tags and versions reference projects by
// name only; there is no foreign key.
type Project struct {
	ID          int64          `gorm:"column:id;primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Description string         `gorm:"column:description"`
	State       string         `gorm:"column:state"`
	Labels      datatypes.JSON `gorm:"column:labels"`
	Spec        datatypes.JSON `gorm:"column:spec"`
	Created     time.Time      `gorm:"column:created"`
}

func (Project) TableName() string {
	return "projects"
}
