package repository

import (
	"errors"
	"fmt"

	"github.com/camden-git/labelloopbackend/models"
	"gorm.io/gorm"
)

// AnnotationPatch lists the editable annotation fields; nil pointers are left untouched
type AnnotationPatch struct {
	LabelID *uint
	Box     models.BoundingBox
}

// AnnotationRepository handles database operations for Annotation entities
type AnnotationRepository struct {
	DB *gorm.DB
}

// NewAnnotationRepository creates a new instance of AnnotationRepository
func NewAnnotationRepository(db *gorm.DB) *AnnotationRepository {
	return &AnnotationRepository{DB: db}
}

// Create creates a new annotation record in the database
func (r *AnnotationRepository) Create(annotation *models.Annotation) error {
	if err := r.DB.Create(annotation).Error; err != nil {
		return fmt.Errorf("failed to create annotation for image %d: %w", annotation.ImageID, err)
	}
	return nil
}

// GetByID retrieves an annotation by its ID
func (r *AnnotationRepository) GetByID(id uint) (*models.Annotation, error) {
	var annotation models.Annotation
	err := r.DB.First(&annotation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get annotation by ID %d: %w", id, err)
	}
	return &annotation, nil
}

// ListByImage retrieves all annotations of an image
func (r *AnnotationRepository) ListByImage(imageID uint) ([]models.Annotation, error) {
	annotations := []models.Annotation{}
	if err := r.DB.Where("image_id = ?", imageID).Order("id ASC").Find(&annotations).Error; err != nil {
		return nil, fmt.Errorf("failed to list annotations for image %d: %w", imageID, err)
	}
	return annotations, nil
}

// ListByLabel retrieves all annotations using a label
func (r *AnnotationRepository) ListByLabel(labelID uint) ([]models.Annotation, error) {
	annotations := []models.Annotation{}
	if err := r.DB.Where("label_id = ?", labelID).Order("id ASC").Find(&annotations).Error; err != nil {
		return nil, fmt.Errorf("failed to list annotations for label %d: %w", labelID, err)
	}
	return annotations, nil
}

// Update changes the label and/or box coordinates of an annotation
func (r *AnnotationRepository) Update(annotationID uint, patch AnnotationPatch) error {
	updates := make(map[string]interface{})
	if patch.LabelID != nil {
		updates["label_id"] = *patch.LabelID
	}
	if patch.Box.Xmin != nil {
		updates["bbox_xmin"] = *patch.Box.Xmin
	}
	if patch.Box.Ymin != nil {
		updates["bbox_ymin"] = *patch.Box.Ymin
	}
	if patch.Box.Xmax != nil {
		updates["bbox_xmax"] = *patch.Box.Xmax
	}
	if patch.Box.Ymax != nil {
		updates["bbox_ymax"] = *patch.Box.Ymax
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.DB.Model(&models.Annotation{}).Where("id = ?", annotationID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update annotation ID %d: %w", annotationID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.Annotation{}).Where("id = ?", annotationID).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Delete removes an annotation by its ID
func (r *AnnotationRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Annotation{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete annotation ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
