package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/camden-git/labelloopbackend/database"
	"github.com/camden-git/labelloopbackend/models"
	"gorm.io/gorm"
)

// LabelRepository handles database operations for Label entities
type LabelRepository struct {
	DB *gorm.DB
}

// NewLabelRepository creates a new instance of LabelRepository
func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{DB: db}
}

// Create creates a new label record in the database
func (r *LabelRepository) Create(label *models.Label) error {
	label.Name = strings.TrimSpace(label.Name)
	if err := r.DB.Create(label).Error; err != nil {
		return fmt.Errorf("failed to create label %s in dataset %d: %w", label.Name, label.DatasetID, err)
	}
	return nil
}

// GetByID retrieves a label by its ID
func (r *LabelRepository) GetByID(id uint) (*models.Label, error) {
	var label models.Label
	err := r.DB.First(&label, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get label by ID %d: %w", id, err)
	}
	return &label, nil
}

// NameTaken reports whether the dataset already has a label called name (other than excludeID)
func (r *LabelRepository) NameTaken(datasetID uint, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.DB.Model(&models.Label{}).Where("dataset_id = ? AND name = ?", datasetID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check label name %s in dataset %d: %w", name, datasetID, err)
	}
	return count > 0, nil
}

// ListByDataset retrieves every label of a dataset ordered by name
func (r *LabelRepository) ListByDataset(datasetID uint) ([]models.Label, error) {
	labels := []models.Label{}
	err := r.DB.Where("dataset_id = ?", datasetID).Order("name ASC").Order("id ASC").Find(&labels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list labels for dataset %d: %w", datasetID, err)
	}
	return labels, nil
}

// List retrieves a page of labels across all datasets along with the total match count
func (r *LabelRepository) List(skip, limit int, search string) ([]models.Label, int64, error) {
	q := r.DB.Model(&models.Label{})
	if term := strings.TrimSpace(search); term != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", database.ContainsPattern(term))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count labels: %w", err)
	}

	labels := []models.Label{}
	if err := q.Order("id ASC").Offset(skip).Limit(limit).Find(&labels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, total, nil
}

// Search finds labels whose name contains term (case-insensitive), optionally within one dataset
func (r *LabelRepository) Search(term string, datasetID *uint) ([]models.Label, error) {
	q := r.DB.Where("LOWER(name) LIKE ? ESCAPE '!'", database.ContainsPattern(term))
	if datasetID != nil {
		q = q.Where("dataset_id = ?", *datasetID)
	}

	labels := []models.Label{}
	if err := q.Order("name ASC").Order("id ASC").Find(&labels).Error; err != nil {
		return nil, fmt.Errorf("failed to search labels for %q: %w", term, err)
	}
	return labels, nil
}

// Rename changes the name of a label
func (r *LabelRepository) Rename(labelID uint, name string) error {
	result := r.DB.Model(&models.Label{}).Where("id = ?", labelID).Update("name", strings.TrimSpace(name))
	if result.Error != nil {
		return fmt.Errorf("failed to rename label ID %d: %w", labelID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.Label{}).Where("id = ?", labelID).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Delete removes a label and its annotations in one transaction
func (r *LabelRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", id).Delete(&models.Annotation{}).Error; err != nil {
			return fmt.Errorf("failed to delete annotations of label ID %d: %w", id, err)
		}
		result := tx.Delete(&models.Label{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete label ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountAnnotations returns how many annotations use the label
func (r *LabelRepository) CountAnnotations(labelID uint) (int64, error) {
	var count int64
	if err := r.DB.Model(&models.Annotation{}).Where("label_id = ?", labelID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count annotations of label ID %d: %w", labelID, err)
	}
	return count, nil
}
