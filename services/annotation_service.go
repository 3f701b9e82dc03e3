package services

import (
	"github.com/camden-git/labelloopbackend/models"
	"github.com/camden-git/labelloopbackend/repository"
)

// AnnotationService validates that annotations reference an image and a label of the same dataset
type AnnotationService struct {
	annotations repository.AnnotationRepositoryInterface
	images      repository.ImageRepositoryInterface
	labels      repository.LabelRepositoryInterface
}

// NewAnnotationService creates a new AnnotationService
func NewAnnotationService(
	annotations repository.AnnotationRepositoryInterface,
	images repository.ImageRepositoryInterface,
	labels repository.LabelRepositoryInterface,
) *AnnotationService {
	return &AnnotationService{annotations: annotations, images: images, labels: labels}
}

// checkLabel makes sure labelID exists and belongs to the dataset of image
func (s *AnnotationService) checkLabel(image *models.Image, labelID uint) error {
	label, err := s.labels.GetByID(labelID)
	if err != nil {
		return notFound(err, "Label not found")
	}
	if label.DatasetID != image.DatasetID {
		return newError(ErrInvalidReference, "Label %d does not belong to the dataset of image %d", labelID, image.ID)
	}
	return nil
}

// Create attaches a label (and optional box) to an image
func (s *AnnotationService) Create(imageID, labelID uint, box models.BoundingBox) (*models.Annotation, error) {
	image, err := s.images.GetByID(imageID)
	if err != nil {
		return nil, notFound(err, "Image not found")
	}
	if err := s.checkLabel(image, labelID); err != nil {
		return nil, err
	}

	annotation := &models.Annotation{
		ImageID:  imageID,
		LabelID:  labelID,
		BboxXmin: box.Xmin,
		BboxYmin: box.Ymin,
		BboxXmax: box.Xmax,
		BboxYmax: box.Ymax,
	}
	if err := s.annotations.Create(annotation); err != nil {
		return nil, err
	}
	return annotation, nil
}

// Get returns an annotation by id
func (s *AnnotationService) Get(id uint) (*models.Annotation, error) {
	annotation, err := s.annotations.GetByID(id)
	if err != nil {
		return nil, notFound(err, "Annotation not found")
	}
	return annotation, nil
}

// ListByImage lists the annotations of an image
func (s *AnnotationService) ListByImage(imageID uint) ([]models.Annotation, error) {
	if _, err := s.images.GetByID(imageID); err != nil {
		return nil, notFound(err, "Image not found")
	}
	return s.annotations.ListByImage(imageID)
}

// ListByLabel lists the annotations using a label
func (s *AnnotationService) ListByLabel(labelID uint) ([]models.Annotation, error) {
	if _, err := s.labels.GetByID(labelID); err != nil {
		return nil, notFound(err, "Label not found")
	}
	return s.annotations.ListByLabel(labelID)
}

// Update changes the label and/or the box of an annotation
func (s *AnnotationService) Update(id uint, patch repository.AnnotationPatch) (*models.Annotation, error) {
	if patch.LabelID == nil && patch.Box.Xmin == nil && patch.Box.Ymin == nil &&
		patch.Box.Xmax == nil && patch.Box.Ymax == nil {
		return nil, newError(ErrNothingToUpdate, "No fields to update")
	}

	annotation, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if patch.LabelID != nil && *patch.LabelID != annotation.LabelID {
		image, err := s.images.GetByID(annotation.ImageID)
		if err != nil {
			return nil, notFound(err, "Image not found")
		}
		if err := s.checkLabel(image, *patch.LabelID); err != nil {
			return nil, err
		}
	}

	if err := s.annotations.Update(id, patch); err != nil {
		return nil, notFound(err, "Annotation not found")
	}
	return s.Get(id)
}

// Delete removes an annotation
func (s *AnnotationService) Delete(id uint) error {
	if err := s.annotations.Delete(id); err != nil {
		return notFound(err, "Annotation not found")
	}
	return nil
}
