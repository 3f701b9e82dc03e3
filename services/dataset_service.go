package services

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/camden-git/labelloopbackend/database"
	"github.com/camden-git/labelloopbackend/logging"
	"github.com/camden-git/labelloopbackend/models"
	"github.com/camden-git/labelloopbackend/repository"
)

// DatasetDetail is a dataset together with the size of its children
type DatasetDetail struct {
	models.Dataset
	repository.DatasetCounts
}

// DatasetStats is the summary returned by the stats endpoint
type DatasetStats struct {
	DatasetID  uint                 `json:"dataset_id"`
	Name       string               `json:"name"`
	Status     models.DatasetStatus `json:"status"`
	ImageCount int64                `json:"image_count"`
	LabelCount int64                `json:"label_count"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// DatasetWithImages embeds every image of the dataset
type DatasetWithImages struct {
	models.Dataset
	ImageCount int            `json:"image_count"`
	Images     []models.Image `json:"images"`
}

// DatasetService implements dataset business rules on top of the repositories
type DatasetService struct {
	datasets repository.DatasetRepositoryInterface
	labels   repository.LabelRepositoryInterface
	images   repository.ImageRepositoryInterface
	log      *zap.SugaredLogger
}

// NewDatasetService creates a new DatasetService
func NewDatasetService(
	datasets repository.DatasetRepositoryInterface,
	labels repository.LabelRepositoryInterface,
	images repository.ImageRepositoryInterface,
) *DatasetService {
	return &DatasetService{
		datasets: datasets,
		labels:   labels,
		images:   images,
		log:      logging.Named("datasets"),
	}
}

// Create inserts a dataset in status creating along with its initial labels
func (s *DatasetService) Create(name string, description *string, labelNames []string) (*models.Dataset, error) {
	name = strings.TrimSpace(name)
	taken, err := s.datasets.NameTaken(name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(ErrConflict, "Dataset with name '%s' already exists", name)
	}

	dataset := &models.Dataset{
		Name:        name,
		Description: description,
		Status:      models.DatasetStatusCreating,
	}
	if err := s.datasets.Create(dataset, labelNames); err != nil {
		return nil, err
	}
	s.log.Infof("created dataset %d (%s)", dataset.ID, dataset.Name)
	return dataset, nil
}

// Get returns a dataset by id
func (s *DatasetService) Get(id uint) (*models.Dataset, error) {
	dataset, err := s.datasets.GetByID(id)
	if err != nil {
		return nil, notFound(err, "Dataset not found")
	}
	return dataset, nil
}

// GetDetail returns a dataset with image, annotation and label counts
func (s *DatasetService) GetDetail(id uint) (*DatasetDetail, error) {
	dataset, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	counts, err := s.datasets.Counts(id)
	if err != nil {
		return nil, err
	}
	return &DatasetDetail{Dataset: *dataset, DatasetCounts: counts}, nil
}

// List returns one page of datasets and the total number of matches
func (s *DatasetService) List(query database.DatasetListQuery) ([]repository.DatasetWithCount, int64, error) {
	return s.datasets.List(query)
}

// Update patches name and/or description; renames must not collide
func (s *DatasetService) Update(id uint, name *string, description *string) (*models.Dataset, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		name = &trimmed
		if trimmed != current.Name {
			taken, err := s.datasets.NameTaken(trimmed, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, newError(ErrConflict, "Dataset with name '%s' already exists", trimmed)
			}
		}
	}

	if err := s.datasets.Update(id, name, description); err != nil {
		return nil, notFound(err, "Dataset not found")
	}
	return s.Get(id)
}

// ChangeStatus moves a dataset to another lifecycle status
func (s *DatasetService) ChangeStatus(id uint, status models.DatasetStatus) (*models.Dataset, error) {
	if err := s.datasets.UpdateStatus(id, status); err != nil {
		return nil, notFound(err, "Dataset not found")
	}
	s.log.Infof("dataset %d status changed to %s", id, status)
	return s.Get(id)
}

// Delete removes a dataset with its labels, images and annotations. Stored objects are not touched.
func (s *DatasetService) Delete(id uint) error {
	if err := s.datasets.Delete(id); err != nil {
		return notFound(err, "Dataset not found")
	}
	s.log.Infof("deleted dataset %d", id)
	return nil
}

// Stats summarizes a dataset
func (s *DatasetService) Stats(id uint) (*DatasetStats, error) {
	dataset, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	counts, err := s.datasets.Counts(id)
	if err != nil {
		return nil, err
	}
	return &DatasetStats{
		DatasetID:  dataset.ID,
		Name:       dataset.Name,
		Status:     dataset.Status,
		ImageCount: counts.ImageCount,
		LabelCount: counts.LabelCount,
		CreatedAt:  dataset.CreatedAt,
		UpdatedAt:  dataset.UpdatedAt,
	}, nil
}

// WithImages returns the dataset and all of its images
func (s *DatasetService) WithImages(id uint) (*DatasetWithImages, error) {
	dataset, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	images, err := s.images.ListByDataset(id)
	if err != nil {
		return nil, err
	}
	return &DatasetWithImages{Dataset: *dataset, ImageCount: len(images), Images: images}, nil
}

// Labels lists the labels of a dataset
func (s *DatasetService) Labels(id uint) ([]models.Label, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return s.labels.ListByDataset(id)
}

// AddLabel creates a label inside the dataset
func (s *DatasetService) AddLabel(id uint, name string) (*models.Label, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	taken, err := s.labels.NameTaken(id, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newError(ErrConflict, "Label with name '%s' already exists in this dataset", name)
	}

	label := &models.Label{Name: name, DatasetID: id}
	if err := s.labels.Create(label); err != nil {
		return nil, err
	}
	return label, nil
}

// RemoveLabel deletes a label of the dataset together with its annotations
func (s *DatasetService) RemoveLabel(id uint, labelID uint) error {
	label, err := s.labels.GetByID(labelID)
	if err != nil {
		return notFound(err, "Label not found")
	}
	if label.DatasetID != id {
		return newError(ErrNotFound, "Label %d is not part of dataset %d", labelID, id)
	}
	if err := s.labels.Delete(labelID); err != nil {
		return notFound(err, "Label not found")
	}
	return nil
}
