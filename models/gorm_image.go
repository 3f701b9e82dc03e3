package models

import "time"

// ImageStatus tracks the upload lifecycle of an image
type ImageStatus string

const (
	ImageStatusUploading ImageStatus = "uploading"
	ImageStatusUploaded  ImageStatus = "uploaded"
	ImageStatusError     ImageStatus = "error"
)

// IsValid reports whether s is one of the known image statuses
func (s ImageStatus) IsValid() bool {
	switch s {
	case ImageStatusUploading, ImageStatusUploaded, ImageStatusError:
		return true
	default:
		return false
	}
}

// Image represents an image record in the database using GORM.
// The binary payload lives in object storage under S3Key.
// It corresponds to the 'images' table.
type Image struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename  string      `gorm:"size:255;not null" json:"filename"`
	S3Key     string      `gorm:"column:s3_key;size:500;not null;uniqueIndex" json:"s3_key"`
	FileSize  int64       `gorm:"not null" json:"file_size"`
	MimeType  string      `gorm:"size:100;not null" json:"mime_type"`
	Width     *int        `gorm:"" json:"width"`  // Nullable
	Height    *int        `gorm:"" json:"height"` // Nullable
	Status    ImageStatus `gorm:"size:32;not null;default:uploading;index" json:"status"`
	DatasetID uint        `gorm:"not null;index" json:"dataset_id"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Image) TableName() string {
	return "images"
}
