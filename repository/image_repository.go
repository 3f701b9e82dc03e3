package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/labelloopbackend/models"
	"gorm.io/gorm"
)

// ImageFilter narrows an image listing; zero Limit means no limit
type ImageFilter struct {
	DatasetID *uint
	Status    *models.ImageStatus
	Skip      int
	Limit     int
}

// ImagePatch lists the user-editable image fields; nil pointers are left untouched
type ImagePatch struct {
	Filename *string
	Width    *int
	Height   *int
	Status   *models.ImageStatus
}

// ImageRepository handles database operations for Image entities
type ImageRepository struct {
	DB *gorm.DB
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{DB: db}
}

// Create inserts a new image record, defaulting to the uploading state
func (r *ImageRepository) Create(image *models.Image) error {
	if image.Status == "" {
		image.Status = models.ImageStatusUploading
	}
	if err := r.DB.Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image record for %s: %w", image.S3Key, err)
	}
	return nil
}

// GetByID retrieves an image by its ID
func (r *ImageRepository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.DB.First(&image, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get image by ID %d: %w", id, err)
	}
	return &image, nil
}

// List retrieves a page of images ordered by id together with the total match count
func (r *ImageRepository) List(filter ImageFilter) ([]models.Image, int64, error) {
	q := r.DB.Model(&models.Image{})
	if filter.DatasetID != nil {
		q = q.Where("dataset_id = ?", *filter.DatasetID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count images: %w", err)
	}

	q = q.Order("id ASC").Offset(filter.Skip)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	images := []models.Image{}
	if err := q.Find(&images).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list images: %w", err)
	}
	return images, total, nil
}

// ListByDataset retrieves every image of a dataset
func (r *ImageRepository) ListByDataset(datasetID uint) ([]models.Image, error) {
	images := []models.Image{}
	if err := r.DB.Where("dataset_id = ?", datasetID).Order("id ASC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list images for dataset %d: %w", datasetID, err)
	}
	return images, nil
}

// SetStatus moves an image to a new upload status
func (r *ImageRepository) SetStatus(imageID uint, status models.ImageStatus) error {
	result := r.DB.Model(&models.Image{}).Where("id = ?", imageID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to set status %s for image ID %d: %w", status, imageID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Update applies a partial patch to an image
func (r *ImageRepository) Update(imageID uint, patch ImagePatch) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Filename != nil {
		updates["filename"] = *patch.Filename
	}
	if patch.Width != nil {
		updates["width"] = *patch.Width
	}
	if patch.Height != nil {
		updates["height"] = *patch.Height
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if len(updates) == 1 {
		return nil
	}

	result := r.DB.Model(&models.Image{}).Where("id = ?", imageID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update image ID %d: %w", imageID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.Image{}).Where("id = ?", imageID).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Delete removes an image record and its annotations
func (r *ImageRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&models.Annotation{}).Error; err != nil {
			return fmt.Errorf("failed to delete annotations of image ID %d: %w", id, err)
		}
		result := tx.Delete(&models.Image{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete image record ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteMany removes several images and their annotations, committing once
// returns the number of image rows deleted
func (r *ImageRepository) DeleteMany(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id IN ?", ids).Delete(&models.Annotation{}).Error; err != nil {
			return fmt.Errorf("failed to delete annotations of %d images: %w", len(ids), err)
		}
		result := tx.Where("id IN ?", ids).Delete(&models.Image{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete %d image records: %w", len(ids), result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
