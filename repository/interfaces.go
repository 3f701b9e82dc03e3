package repository

import (
	"github.com/camden-git/labelloopbackend/database"
	"github.com/camden-git/labelloopbackend/models"
)

// DatasetRepositoryInterface defines the methods for dataset data operations
type DatasetRepositoryInterface interface {
	Create(dataset *models.Dataset, labelNames []string) error
	GetByID(id uint) (*models.Dataset, error)
	NameTaken(name string, excludeID uint) (bool, error)
	List(query database.DatasetListQuery) ([]DatasetWithCount, int64, error)
	Update(datasetID uint, name *string, description *string) error
	UpdateStatus(datasetID uint, status models.DatasetStatus) error
	Delete(id uint) error
	Counts(datasetID uint) (DatasetCounts, error)
}

// LabelRepositoryInterface defines the methods for label data operations
type LabelRepositoryInterface interface {
	Create(label *models.Label) error
	GetByID(id uint) (*models.Label, error)
	NameTaken(datasetID uint, name string, excludeID uint) (bool, error)
	ListByDataset(datasetID uint) ([]models.Label, error)
	List(skip, limit int, search string) ([]models.Label, int64, error)
	Search(term string, datasetID *uint) ([]models.Label, error)
	Rename(labelID uint, name string) error
	Delete(id uint) error
	CountAnnotations(labelID uint) (int64, error)
}

// ImageRepositoryInterface defines the methods for image data operations
type ImageRepositoryInterface interface {
	Create(image *models.Image) error
	GetByID(id uint) (*models.Image, error)
	List(filter ImageFilter) ([]models.Image, int64, error)
	ListByDataset(datasetID uint) ([]models.Image, error)
	SetStatus(imageID uint, status models.ImageStatus) error
	Update(imageID uint, patch ImagePatch) error
	Delete(id uint) error
	DeleteMany(ids []uint) (int64, error)
}

// AnnotationRepositoryInterface defines the methods for annotation data operations
type AnnotationRepositoryInterface interface {
	Create(annotation *models.Annotation) error
	GetByID(id uint) (*models.Annotation, error)
	ListByImage(imageID uint) ([]models.Annotation, error)
	ListByLabel(labelID uint) ([]models.Annotation, error)
	Update(annotationID uint, patch AnnotationPatch) error
	Delete(id uint) error
}
