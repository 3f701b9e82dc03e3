package models

import "time"

// Annotation attaches a label to an image, optionally with a bounding box.
// Box coordinates are independent; no ordering between min and max is enforced.
// It corresponds to the 'annotations' table.
type Annotation struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageID   uint      `gorm:"not null;index" json:"image_id"`
	LabelID   uint      `gorm:"not null;index" json:"label_id"`
	BboxXmin  *int      `gorm:"column:bbox_xmin" json:"bbox_xmin"` // Nullable
	BboxYmin  *int      `gorm:"column:bbox_ymin" json:"bbox_ymin"` // Nullable
	BboxXmax  *int      `gorm:"column:bbox_xmax" json:"bbox_xmax"` // Nullable
	BboxYmax  *int      `gorm:"column:bbox_ymax" json:"bbox_ymax"` // Nullable
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (Annotation) TableName() string {
	return "annotations"
}

// BoundingBox groups the optional box coordinates of an annotation
type BoundingBox struct {
	Xmin *int `json:"bbox_xmin"`
	Ymin *int `json:"bbox_ymin"`
	Xmax *int `json:"bbox_xmax"`
	Ymax *int `json:"bbox_ymax"`
}
