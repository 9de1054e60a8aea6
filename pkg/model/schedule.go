package model

import (
	"time"

	"gorm.io/datatypes"
)

// Schedule is a named schedule within a project
type Schedule struct {
	ID      int64          `gorm:"column:id;primaryKey"`
	Project string         `gorm:"column:project;not null"`
	Name    string         `gorm:"column:name;not null"`
	Kind    string         `gorm:"column:kind"`
	Cron    string         `gorm:"column:cron"`
	Labels  datatypes.JSON `gorm:"column:labels"`
	Body    datatypes.JSON `gorm:"column:body"`
	Created time.Time      `gorm:"column:created"`
	Updated time.Time      `gorm:"column:updated"`
}

func (Schedule) TableName() string {
	return "schedules_v2"
}
