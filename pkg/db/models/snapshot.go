package models

import "time"

// Snapshot holds one serialized state document per key.
type Snapshot struct {
	Key       string    `gorm:"column:snapshot_key;primaryKey;size:128"`
	Document  string    `gorm:"column:document;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Snapshot) TableName() string { return "snapshots" }
