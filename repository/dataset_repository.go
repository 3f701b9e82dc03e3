package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camden-git/labelloopbackend/database"
	"github.com/camden-git/labelloopbackend/models"
	"gorm.io/gorm"
)

// DatasetWithCount is a dataset row as returned by listings
type DatasetWithCount struct {
	models.Dataset
	ImageCount int64 `gorm:"column:image_count" json:"image_count"`
}

// DatasetCounts aggregates the children of a dataset
type DatasetCounts struct {
	ImageCount      int64 `json:"image_count"`
	AnnotationCount int64 `json:"annotation_count"`
	LabelCount      int64 `json:"label_count"`
}

// DatasetRepository handles database operations for Dataset entities
type DatasetRepository struct {
	DB *gorm.DB
}

// NewDatasetRepository creates a new instance of DatasetRepository
func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{DB: db}
}

// uniqueLabelNames trims names and drops blanks and duplicates, keeping first-seen order
func uniqueLabelNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Create inserts the dataset and its initial labels in one transaction
func (r *DatasetRepository) Create(dataset *models.Dataset, labelNames []string) error {
	if dataset.Status == "" {
		dataset.Status = models.DatasetStatusCreating
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dataset).Error; err != nil {
			return fmt.Errorf("failed to create dataset %s: %w", dataset.Name, err)
		}

		names := uniqueLabelNames(labelNames)
		if len(names) == 0 {
			return nil
		}
		labels := make([]models.Label, len(names))
		for i, name := range names {
			labels[i] = models.Label{Name: name, DatasetID: dataset.ID}
		}
		if err := tx.Create(&labels).Error; err != nil {
			return fmt.Errorf("failed to create initial labels for dataset %s: %w", dataset.Name, err)
		}
		return nil
	})
}

// GetByID retrieves a dataset by its ID
func (r *DatasetRepository) GetByID(id uint) (*models.Dataset, error) {
	var dataset models.Dataset
	err := r.DB.First(&dataset, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get dataset by ID %d: %w", id, err)
	}
	return &dataset, nil
}

// NameTaken reports whether another dataset (not excludeID) already uses name
func (r *DatasetRepository) NameTaken(name string, excludeID uint) (bool, error) {
	var count int64
	q := r.DB.Model(&models.Dataset{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check dataset name %s: %w", name, err)
	}
	return count > 0, nil
}

// List runs the filtered, sorted and paged dataset listing
func (r *DatasetRepository) List(query database.DatasetListQuery) ([]DatasetWithCount, int64, error) {
	countSQL, countArgs, err := query.CountSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.DB.Raw(countSQL, countArgs...).Scan(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count datasets: %w", err)
	}

	itemsSQL, itemArgs, err := query.ItemsSQL()
	if err != nil {
		return nil, 0, err
	}
	datasets := []DatasetWithCount{}
	if err := r.DB.Raw(itemsSQL, itemArgs...).Scan(&datasets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list datasets: %w", err)
	}
	return datasets, total, nil
}

// Update patches name and/or description; nil pointers are left untouched
func (r *DatasetRepository) Update(datasetID uint, name *string, description *string) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}

	// if only updated_at is present, no actual fields were changed
	if len(updates) == 1 {
		return nil
	}

	result := r.DB.Model(&models.Dataset{}).Where("id = ?", datasetID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update dataset ID %d: %w", datasetID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.Dataset{}).Where("id = ?", datasetID).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// UpdateStatus sets the lifecycle status of a dataset
func (r *DatasetRepository) UpdateStatus(datasetID uint, status models.DatasetStatus) error {
	result := r.DB.Model(&models.Dataset{}).Where("id = ?", datasetID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update status for dataset ID %d: %w", datasetID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a dataset and, in the same transaction, its annotations, images and labels
func (r *DatasetRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("image_id IN (SELECT id FROM images WHERE dataset_id = ?) OR label_id IN (SELECT id FROM labels WHERE dataset_id = ?)", id, id).
			Delete(&models.Annotation{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete annotations of dataset ID %d: %w", id, err)
		}
		if err := tx.Where("dataset_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return fmt.Errorf("failed to delete images of dataset ID %d: %w", id, err)
		}
		if err := tx.Where("dataset_id = ?", id).Delete(&models.Label{}).Error; err != nil {
			return fmt.Errorf("failed to delete labels of dataset ID %d: %w", id, err)
		}

		result := tx.Delete(&models.Dataset{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete dataset ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Counts returns the number of images, annotations (through images) and labels of a dataset
func (r *DatasetRepository) Counts(datasetID uint) (DatasetCounts, error) {
	var counts DatasetCounts

	if err := r.DB.Model(&models.Image{}).Where("dataset_id = ?", datasetID).Count(&counts.ImageCount).Error; err != nil {
		return DatasetCounts{}, fmt.Errorf("failed to count images of dataset ID %d: %w", datasetID, err)
	}
	err := r.DB.Model(&models.Annotation{}).
		Joins("JOIN images ON images.id = annotations.image_id").
		Where("images.dataset_id = ?", datasetID).
		Count(&counts.AnnotationCount).Error
	if err != nil {
		return DatasetCounts{}, fmt.Errorf("failed to count annotations of dataset ID %d: %w", datasetID, err)
	}
	if err := r.DB.Model(&models.Label{}).Where("dataset_id = ?", datasetID).Count(&counts.LabelCount).Error; err != nil {
		return DatasetCounts{}, fmt.Errorf("failed to count labels of dataset ID %d: %w", datasetID, err)
	}
	return counts, nil
}
