package services

import (
	"strings"

	"github.com/camden-git/labelloopbackend/models"
	"github.com/camden-git/labelloopbackend/repository"
)

// LabelStats is a label with its usage and the name of its dataset
type LabelStats struct {
	models.Label
	AnnotationCount int64  `json:"annotation_count"`
	DatasetName     string `json:"dataset_name"`
}

// LabelService implements label business rules
type LabelService struct {
	labels   repository.LabelRepositoryInterface
	datasets repository.DatasetRepositoryInterface
}

// NewLabelService creates a new LabelService
func NewLabelService(labels repository.LabelRepositoryInterface, datasets repository.DatasetRepositoryInterface) *LabelService {
	return &LabelService{labels: labels, datasets: datasets}
}

// Create adds a label to an existing dataset; names are unique per dataset
func (s *LabelService) Create(datasetID uint, name string) (*models.Label, error) {
	if _, err := s.datasets.GetByID(datasetID); err != nil {
		return nil, notFound(err, "Dataset not found")
	}

	name = strings.TrimSpace(name)
	taken, err := s.labels.NameTaken(datasetID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(ErrConflict, "Label with name '%s' already exists", name)
	}

	label := &models.Label{Name: name, DatasetID: datasetID}
	if err := s.labels.Create(label); err != nil {
		return nil, err
	}
	return label, nil
}

// Get returns a label by id
func (s *LabelService) Get(id uint) (*models.Label, error) {
	label, err := s.labels.GetByID(id)
	if err != nil {
		return nil, notFound(err, "Label not found")
	}
	return label, nil
}

// ListByDataset lists the labels of a dataset ordered by name
func (s *LabelService) ListByDataset(datasetID uint) ([]models.Label, error) {
	if _, err := s.datasets.GetByID(datasetID); err != nil {
		return nil, notFound(err, "Dataset not found")
	}
	return s.labels.ListByDataset(datasetID)
}

// List pages over all labels with an optional name filter
func (s *LabelService) List(skip, limit int, search string) ([]models.Label, int64, error) {
	return s.labels.List(skip, limit, search)
}

// Search finds labels by case-insensitive substring, optionally inside one dataset
func (s *LabelService) Search(term string, datasetID *uint) ([]models.Label, error) {
	return s.labels.Search(term, datasetID)
}

// Update renames a label, keeping names unique within its dataset
func (s *LabelService) Update(id uint, name string) (*models.Label, error) {
	label, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name != label.Name {
		taken, err := s.labels.NameTaken(label.DatasetID, name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, newError(ErrConflict, "Label with name '%s' already exists", name)
		}
	}

	if err := s.labels.Rename(id, name); err != nil {
		return nil, notFound(err, "Label not found")
	}
	return s.Get(id)
}

// Delete removes a label and its annotations
func (s *LabelService) Delete(id uint) error {
	if err := s.labels.Delete(id); err != nil {
		return notFound(err, "Label not found")
	}
	return nil
}

// Stats returns the label, how many annotations use it and its dataset name
func (s *LabelService) Stats(id uint) (*LabelStats, error) {
	label, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	count, err := s.labels.CountAnnotations(id)
	if err != nil {
		return nil, err
	}

	stats := &LabelStats{Label: *label, AnnotationCount: count}
	if dataset, err := s.datasets.GetByID(label.DatasetID); err == nil {
		stats.DatasetName = dataset.Name
	}
	return stats, nil
}
