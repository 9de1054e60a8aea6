package model

import (
	"time"

	"gorm.io/datatypes"
)

// Run is a run document for one iteration of a run uid.
type Run struct {
	ID        int64          `gorm:"column:id;primaryKey"`
	Project   string         `gorm:"column:project;not null"`
	UID       string         `gorm:"column:uid;not null"`
	Iter      int            `gorm:"column:iter;not null"`
	Name      string         `gorm:"column:name"`
	State     string         `gorm:"column:state"`
	Labels    datatypes.JSON `gorm:"column:labels"`
	Body      datatypes.JSON `gorm:"column:body"`
	StartTime *time.Time     `gorm:"column:start_time"`
	Updated   time.Time      `gorm:"column:updated;not null"`
}

func (Run) TableName() string {
	return "runs"
}
