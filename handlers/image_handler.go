package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/camden-git/labelloopbackend/models"
	"github.com/camden-git/labelloopbackend/repository"
	"github.com/camden-git/labelloopbackend/services"
	"github.com/camden-git/labelloopbackend/utils"
)

const maxFilesPerBatch = 100

type ImageHandler struct {
	Images      *services.ImageService
	Annotations *services.AnnotationService
}

func NewImageHandler(images *services.ImageService, annotations *services.AnnotationService) *ImageHandler {
	return &ImageHandler{Images: images, Annotations: annotations}
}

type PrepareUploadPayload struct {
	Files []services.FileDescriptor `json:"files"`
}

type ConfirmUploadPayload struct {
	ImageIDs []uint `json:"image_ids"`
}

type ImagePatchPayload struct {
	Filename *string             `json:"filename,omitempty"`
	Width    *int                `json:"width,omitempty"`
	Height   *int                `json:"height,omitempty"`
	Status   *models.ImageStatus `json:"status,omitempty"`
}

func validateFile(i int, f services.FileDescriptor) error {
	name, err := validateName(fmt.Sprintf("files[%d].filename", i), f.Filename)
	if err != nil {
		return err
	}
	if !utils.IsRasterImage(name) {
		return fmt.Errorf("files[%d].filename %q does not have a supported image extension", i, name)
	}
	if f.FileSize <= 0 {
		return fmt.Errorf("files[%d].file_size must be greater than 0", i)
	}
	if strings.TrimSpace(f.MimeType) == "" {
		return fmt.Errorf("files[%d].mime_type is required", i)
	}
	if !utils.IsSupportedImageType(f.MimeType) {
		return fmt.Errorf("files[%d].mime_type %q is not a supported image type", i, f.MimeType)
	}
	return nil
}

// statusFilter reads the optional ?status= image filter
func statusFilter(r *http.Request) (*models.ImageStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	status := models.ImageStatus(raw)
	if !status.IsValid() {
		return nil, fmt.Errorf("Invalid status: must be one of uploading, uploaded, error")
	}
	return &status, nil
}

// PrepareUpload handles POST /datasets/{id}/images/prepare-upload
func (h *ImageHandler) PrepareUpload(w http.ResponseWriter, r *http.Request) {
	datasetID, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req PrepareUploadPayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if len(req.Files) == 0 || len(req.Files) > maxFilesPerBatch {
		writeValidationError(w, fmt.Sprintf("files must contain between 1 and %d entries", maxFilesPerBatch))
		return
	}
	for i, f := range req.Files {
		if err := validateFile(i, f); err != nil {
			writeValidationError(w, err.Error())
			return
		}
	}

	uploads, err := h.Images.PrepareUpload(datasetID, req.Files)
	if err != nil {
		writeServiceError(w, err, "Failed to prepare uploads")
		return
	}
	if len(uploads) == 0 {
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to prepare uploads")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"uploads": uploads})
}

// ConfirmUpload handles POST /datasets/{id}/images/confirm-upload
func (h *ImageHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	if _, err := idParam(r, "id"); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req ConfirmUploadPayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if len(req.ImageIDs) == 0 {
		writeValidationError(w, "image_ids must not be empty")
		return
	}

	count, err := h.Images.ConfirmUpload(req.ImageIDs)
	if err != nil {
		writeServiceError(w, err, "Failed to confirm uploads")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         fmt.Sprintf("Successfully confirmed %d uploads", count),
		"updated_count":   count,
		"total_requested": len(req.ImageIDs),
	})
}

// ListDatasetImages handles GET /datasets/{id}/images
func (h *ImageHandler) ListDatasetImages(w http.ResponseWriter, r *http.Request) {
	datasetID, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	skip, limit, err := paging(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	status, err := statusFilter(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	images, total, err := h.Images.List(datasetID, skip, limit, status)
	if err != nil {
		writeServiceError(w, err, "Failed to list images")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Total: total, Items: images})
}

// ListDatasetImagesWithURLs handles GET /datasets/{id}/images/with-urls.
// Only uploaded images get a download URL.
func (h *ImageHandler) ListDatasetImagesWithURLs(w http.ResponseWriter, r *http.Request) {
	datasetID, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	skip, limit, err := paging(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	status, err := statusFilter(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	ttl, err := expiresIn(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	items, total, err := h.Images.ListWithURLs(datasetID, skip, limit, status, ttl)
	if err != nil {
		writeServiceError(w, err, "Failed to list images")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Total: total, Items: items})
}

// DeleteDatasetImages handles DELETE /datasets/{id}/images
func (h *ImageHandler) DeleteDatasetImages(w http.ResponseWriter, r *http.Request) {
	datasetID, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	result, err := h.Images.DeleteAllForDataset(datasetID)
	if err != nil {
		writeServiceError(w, err, "Failed to delete images")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	image, err := h.Images.Get(id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve image")
		return
	}
	writeJSON(w, http.StatusOK, image)
}

func (h *ImageHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	ttl, err := expiresIn(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	url, err := h.Images.DownloadURL(id, ttl)
	if err != nil {
		writeServiceError(w, err, "Failed to generate download URL")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"download_url": url,
		"expires_in":   int(ttl.Seconds()),
	})
}

func (h *ImageHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req ImagePatchPayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.Filename != nil {
		name, err := validateName("filename", *req.Filename)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		req.Filename = &name
	}
	if (req.Width != nil && *req.Width <= 0) || (req.Height != nil && *req.Height <= 0) {
		writeValidationError(w, "width and height must be greater than 0")
		return
	}
	if req.Status != nil && !req.Status.IsValid() {
		writeValidationError(w, "Invalid status: must be one of uploading, uploaded, error")
		return
	}

	image, err := h.Images.Update(id, repository.ImagePatch{
		Filename: req.Filename,
		Width:    req.Width,
		Height:   req.Height,
		Status:   req.Status,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to update image")
		return
	}
	writeJSON(w, http.StatusOK, image)
}

func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.Images.Delete(id); err != nil {
		writeServiceError(w, err, "Failed to delete image")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}

func (h *ImageHandler) ListImageAnnotations(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	annotations, err := h.Annotations.ListByImage(id)
	if err != nil {
		writeServiceError(w, err, "Failed to list annotations")
		return
	}
	writeJSON(w, http.StatusOK, annotations)
}
