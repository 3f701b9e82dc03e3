package models

import "time"

// DatasetStatus is the lifecycle flag of a dataset
type DatasetStatus string

const (
	DatasetStatusCreating DatasetStatus = "creating"
	DatasetStatusReady    DatasetStatus = "ready"
	DatasetStatusArchived DatasetStatus = "archived"
)

// IsValid reports whether s is one of the known dataset statuses
func (s DatasetStatus) IsValid() bool {
	switch s {
	case DatasetStatusCreating, DatasetStatusReady, DatasetStatusArchived:
		return true
	default:
		return false
	}
}

// Dataset represents a collection of images and the labels used to annotate them.
// It corresponds to the 'datasets' table.
type Dataset struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description *string       `gorm:"type:text" json:"description"` // Nullable
	Status      DatasetStatus `gorm:"size:32;not null;default:creating;index" json:"status"`
	CreatedAt   time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Dataset) TableName() string {
	return "datasets"
}
