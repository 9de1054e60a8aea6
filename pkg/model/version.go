package model

import (
	"time"

	"gorm.io/datatypes"
)

// Version is one stored version of a taggable object. The table depends on
// the kind, so callers select it with db.Table(kind.Table).
type Version struct {
	ID      int64          `gorm:"column:id;primaryKey"`
	Project string         `gorm:"column:project;not null"`
	Key     string         `gorm:"column:key;not null"`
	UID     string         `gorm:"column:uid;not null"`
	Iter    int            `gorm:"column:iter;not null"`
	Body    datatypes.JSON `gorm:"column:body"`
	Updated time.Time      `gorm:"column:updated;not null"`
}

// Tag maps a project-scoped tag name onto one version of a key.
type Tag struct {
	ID      int64  `gorm:"column:id;primaryKey"`
	Project string `gorm:"column:project;not null"`
	Name    string `gorm:"column:name;not null"`
	ObjID   int64  `gorm:"column:obj_id;not null"`
	ObjKey  string `gorm:"column:obj_key;not null"`
	ObjIter int    `gorm:"column:obj_iter;not null"`
}
