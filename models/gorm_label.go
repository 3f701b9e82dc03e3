package models

import "time"

// Label is a class name usable for annotations inside one dataset.
// It corresponds to the 'labels' table; names are unique per dataset.
type Label struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_labels_dataset_name,priority:2" json:"name"`
	DatasetID uint      `gorm:"not null;index;uniqueIndex:idx_labels_dataset_name,priority:1" json:"dataset_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (Label) TableName() string {
	return "labels"
}
