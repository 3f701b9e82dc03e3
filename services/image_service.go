package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/camden-git/labelloopbackend/logging"
	"github.com/camden-git/labelloopbackend/metrics"
	"github.com/camden-git/labelloopbackend/models"
	"github.com/camden-git/labelloopbackend/repository"
	"github.com/camden-git/labelloopbackend/storage"
	"github.com/camden-git/labelloopbackend/utils"
)

// UploadURLTTL is how long a presigned upload URL stays valid
const UploadURLTTL = time.Hour

// DefaultDownloadTTL applies when the client does not ask for a specific expiry
const DefaultDownloadTTL = time.Hour

// FileDescriptor describes a file the client intends to upload
type FileDescriptor struct {
	Filename string `json:"filename"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// PreparedUpload tells the client where to PUT one file
type PreparedUpload struct {
	ImageID   uint   `json:"image_id"`
	UploadURL string `json:"upload_url"`
	S3Key     string `json:"s3_key"`
	ExpiresIn int    `json:"expires_in"`
}

// ImageWithURL is an image row plus an optional presigned download URL
type ImageWithURL struct {
	models.Image
	DownloadURL  *string `json:"download_url"`
	URLExpiresIn *int    `json:"url_expires_in"`
}

// BulkDeleteResult tallies a dataset-wide image deletion
type BulkDeleteResult struct {
	DeletedCount int64  `json:"deleted_count"`
	S3Deleted    int    `json:"s3_deleted"`
	S3Errors     int    `json:"s3_errors"`
	Message      string `json:"message"`
}

// ImageService drives the upload lifecycle: uploading -> uploaded | error.
// Object storage failures never block database changes.
type ImageService struct {
	images   repository.ImageRepositoryInterface
	datasets repository.DatasetRepositoryInterface
	store    storage.ObjectStore
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
}

// NewImageService creates a new ImageService; m may be nil
func NewImageService(
	images repository.ImageRepositoryInterface,
	datasets repository.DatasetRepositoryInterface,
	store storage.ObjectStore,
	m *metrics.Metrics,
) *ImageService {
	return &ImageService{
		images:   images,
		datasets: datasets,
		store:    store,
		metrics:  m,
		log:      logging.Named("images"),
	}
}

// PrepareUpload creates one uploading record per file and presigns its upload URL.
// Items are independent: a file whose record can't be stored is left out, and a
// file whose URL can't be issued is marked error and left out.
func (s *ImageService) PrepareUpload(datasetID uint, files []FileDescriptor) ([]PreparedUpload, error) {
	if _, err := s.datasets.GetByID(datasetID); err != nil {
		return nil, notFound(err, "Dataset not found")
	}

	uploads := make([]PreparedUpload, 0, len(files))
	for _, file := range files {
		key, err := utils.GenerateObjectKey(datasetID, file.Filename)
		if err != nil {
			s.log.Errorw("skipping file", "filename", file.Filename, "error", err)
			continue
		}

		image := &models.Image{
			Filename:  file.Filename,
			S3Key:     key,
			FileSize:  file.FileSize,
			MimeType:  file.MimeType,
			Status:    models.ImageStatusUploading,
			DatasetID: datasetID,
		}
		if err := s.images.Create(image); err != nil {
			s.log.Errorw("skipping file, image record not created", "filename", file.Filename, "error", err)
			continue
		}
		s.metrics.RecordImageTransition(string(models.ImageStatusUploading), 1)

		url, ok := s.store.PresignUpload(key, file.MimeType, UploadURLTTL)
		s.metrics.RecordStorageOperation("presign_upload", ok)
		if !ok {
			if err := s.images.SetStatus(image.ID, models.ImageStatusError); err != nil {
				s.log.Errorw("failed to mark image as error", "image_id", image.ID, "error", err)
			} else {
				s.metrics.RecordImageTransition(string(models.ImageStatusError), 1)
			}
			continue
		}

		uploads = append(uploads, PreparedUpload{
			ImageID:   image.ID,
			UploadURL: url,
			S3Key:     key,
			ExpiresIn: int(UploadURLTTL.Seconds()),
		})
	}

	s.log.Infof("prepared %d of %d uploads for dataset %d", len(uploads), len(files), datasetID)
	return uploads, nil
}

// ConfirmUpload verifies the objects of the given uploading images.
// Present objects become uploaded, missing ones error; ids that are absent or
// not uploading are skipped. Returns how many images became uploaded.
func (s *ImageService) ConfirmUpload(imageIDs []uint) (int, error) {
	confirmed, failed := 0, 0
	for _, id := range imageIDs {
		image, err := s.images.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return confirmed, err
		}
		if image.Status != models.ImageStatusUploading {
			continue
		}

		exists := s.store.Exists(image.S3Key)
		s.metrics.RecordStorageOperation("exists", exists)
		status := models.ImageStatusError
		if exists {
			status = models.ImageStatusUploaded
		}
		if err := s.images.SetStatus(id, status); err != nil {
			return confirmed, err
		}
		if exists {
			confirmed++
		} else {
			failed++
		}
	}

	s.metrics.RecordImageTransition(string(models.ImageStatusUploaded), confirmed)
	s.metrics.RecordImageTransition(string(models.ImageStatusError), failed)
	return confirmed, nil
}

// List pages over the images of a dataset, optionally filtered by status
func (s *ImageService) List(datasetID uint, skip, limit int, status *models.ImageStatus) ([]models.Image, int64, error) {
	return s.images.List(repository.ImageFilter{
		DatasetID: &datasetID,
		Status:    status,
		Skip:      skip,
		Limit:     limit,
	})
}

// ListWithURLs is List plus presigned download URLs for uploaded images
func (s *ImageService) ListWithURLs(datasetID uint, skip, limit int, status *models.ImageStatus, ttl time.Duration) ([]ImageWithURL, int64, error) {
	images, total, err := s.List(datasetID, skip, limit, status)
	if err != nil {
		return nil, 0, err
	}

	expiresIn := int(ttl.Seconds())
	items := make([]ImageWithURL, len(images))
	for i, image := range images {
		items[i] = ImageWithURL{Image: image}
		if image.Status != models.ImageStatusUploaded {
			continue
		}
		url, ok := s.store.PresignDownload(image.S3Key, ttl)
		s.metrics.RecordStorageOperation("presign_download", ok)
		if ok {
			items[i].DownloadURL = &url
			items[i].URLExpiresIn = &expiresIn
		}
	}
	return items, total, nil
}

// DownloadURL presigns a GET URL for an uploaded image
func (s *ImageService) DownloadURL(id uint, ttl time.Duration) (string, error) {
	image, err := s.images.GetByID(id)
	if err != nil {
		return "", notFound(err, "Image not found or not yet uploaded")
	}
	if image.Status != models.ImageStatusUploaded {
		return "", newError(ErrNotFound, "Image not found or not yet uploaded")
	}
	url, ok := s.store.PresignDownload(image.S3Key, ttl)
	s.metrics.RecordStorageOperation("presign_download", ok)
	if !ok {
		return "", newError(ErrNotFound, "Image not found or not yet uploaded")
	}
	return url, nil
}

// Get returns an image by id
func (s *ImageService) Get(id uint) (*models.Image, error) {
	image, err := s.images.GetByID(id)
	if err != nil {
		return nil, notFound(err, "Image not found")
	}
	return image, nil
}

// Update applies a partial patch to an image
func (s *ImageService) Update(id uint, patch repository.ImagePatch) (*models.Image, error) {
	if err := s.images.Update(id, patch); err != nil {
		return nil, notFound(err, "Image not found")
	}
	image, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		s.metrics.RecordImageTransition(string(*patch.Status), 1)
	}
	return image, nil
}

// MarkError flags an image whose upload failed on the client side
func (s *ImageService) MarkError(id uint) error {
	if err := s.images.SetStatus(id, models.ImageStatusError); err != nil {
		return notFound(err, "Image not found")
	}
	s.metrics.RecordImageTransition(string(models.ImageStatusError), 1)
	return nil
}

// Delete removes the stored object (best effort) and then the image row with its annotations
func (s *ImageService) Delete(id uint) error {
	image, err := s.Get(id)
	if err != nil {
		return err
	}

	ok := s.store.Delete(image.S3Key)
	s.metrics.RecordStorageOperation("delete", ok)
	if !ok {
		s.log.Warnw("object delete failed; removing record anyway", "image_id", id, "key", image.S3Key)
	}

	if err := s.images.Delete(id); err != nil {
		return notFound(err, "Image not found")
	}
	return nil
}

// DeleteAllForDataset removes every image of a dataset. Objects are deleted one by one
// and tallied; the rows and their annotations go in one transaction.
func (s *ImageService) DeleteAllForDataset(datasetID uint) (*BulkDeleteResult, error) {
	images, err := s.images.ListByDataset(datasetID)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return &BulkDeleteResult{Message: "No images found for this dataset"}, nil
	}

	result := &BulkDeleteResult{}
	ids := make([]uint, len(images))
	for i, image := range images {
		ids[i] = image.ID
		ok := s.store.Delete(image.S3Key)
		s.metrics.RecordStorageOperation("delete", ok)
		if ok {
			result.S3Deleted++
		} else {
			result.S3Errors++
		}
	}

	deleted, err := s.images.DeleteMany(ids)
	if err != nil {
		return nil, err
	}
	result.DeletedCount = deleted
	result.Message = fmt.Sprintf("Successfully deleted %d images", deleted)

	if result.S3Errors > 0 {
		s.log.Warnf("dataset %d: %d objects could not be deleted from storage", datasetID, result.S3Errors)
	}
	return result, nil
}
