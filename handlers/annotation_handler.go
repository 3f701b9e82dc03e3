package handlers

import (
	"net/http"

	"github.com/camden-git/labelloopbackend/models"
	"github.com/camden-git/labelloopbackend/repository"
	"github.com/camden-git/labelloopbackend/services"
)

type AnnotationHandler struct {
	Annotations *services.AnnotationService
}

func NewAnnotationHandler(annotations *services.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{Annotations: annotations}
}

type AnnotationCreatePayload struct {
	ImageID uint `json:"image_id"`
	LabelID uint `json:"label_id"`
	models.BoundingBox
}

type AnnotationUpdatePayload struct {
	LabelID *uint `json:"label_id,omitempty"`
	models.BoundingBox
}

// validateBox enforces non-negative coordinates; min/max ordering is not checked
func validateBox(b models.BoundingBox) error {
	for _, c := range []struct {
		field string
		v     *int
	}{
		{"bbox_xmin", b.Xmin},
		{"bbox_ymin", b.Ymin},
		{"bbox_xmax", b.Xmax},
		{"bbox_ymax", b.Ymax},
	} {
		if err := validateNonNegative(c.field, c.v); err != nil {
			return err
		}
	}
	return nil
}

func (h *AnnotationHandler) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	var req AnnotationCreatePayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.ImageID == 0 || req.LabelID == 0 {
		writeValidationError(w, "image_id and label_id are required")
		return
	}
	if err := validateBox(req.BoundingBox); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	annotation, err := h.Annotations.Create(req.ImageID, req.LabelID, req.BoundingBox)
	if err != nil {
		writeServiceError(w, err, "Failed to create annotation")
		return
	}
	writeJSON(w, http.StatusCreated, annotation)
}

func (h *AnnotationHandler) GetAnnotation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	annotation, err := h.Annotations.Get(id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve annotation")
		return
	}
	writeJSON(w, http.StatusOK, annotation)
}

func (h *AnnotationHandler) UpdateAnnotation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req AnnotationUpdatePayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.LabelID != nil && *req.LabelID == 0 {
		writeValidationError(w, "label_id must be a positive integer")
		return
	}
	if err := validateBox(req.BoundingBox); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	annotation, err := h.Annotations.Update(id, repository.AnnotationPatch{LabelID: req.LabelID, Box: req.BoundingBox})
	if err != nil {
		writeServiceError(w, err, "Failed to update annotation")
		return
	}
	writeJSON(w, http.StatusOK, annotation)
}

func (h *AnnotationHandler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.Annotations.Delete(id); err != nil {
		writeServiceError(w, err, "Failed to delete annotation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
