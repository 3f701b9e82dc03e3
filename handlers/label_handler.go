package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/camden-git/labelloopbackend/services"
)

type LabelHandler struct {
	Labels      *services.LabelService
	Annotations *services.AnnotationService
}

func NewLabelHandler(labels *services.LabelService, annotations *services.AnnotationService) *LabelHandler {
	return &LabelHandler{Labels: labels, Annotations: annotations}
}

type LabelCreatePayload struct {
	Name      string `json:"name"`
	DatasetID uint   `json:"dataset_id"`
}

// ListResponse is the {total, items} envelope used by paged label and image listings
type ListResponse struct {
	Total int64       `json:"total"`
	Items interface{} `json:"items"`
}

func (h *LabelHandler) CreateLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelCreatePayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.DatasetID == 0 {
		writeValidationError(w, "dataset_id is required")
		return
	}
	name, err := validateName("name", req.Name)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	label, err := h.Labels.Create(req.DatasetID, name)
	if err != nil {
		writeServiceError(w, err, "Failed to create label")
		return
	}
	writeJSON(w, http.StatusCreated, label)
}

func (h *LabelHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paging(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	labels, total, err := h.Labels.List(skip, limit, r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, err, "Failed to list labels")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Total: total, Items: labels})
}

func (h *LabelHandler) ListLabelsByDataset(w http.ResponseWriter, r *http.Request) {
	datasetID, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	labels, err := h.Labels.ListByDataset(datasetID)
	if err != nil {
		writeServiceError(w, err, "Failed to list labels")
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

// SearchLabels handles GET /labels/search?q=...&dataset_id=...
func (h *LabelHandler) SearchLabels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := strings.TrimSpace(q.Get("q"))
	if term == "" {
		writeValidationError(w, "q is required")
		return
	}

	var datasetID *uint
	if raw := strings.TrimSpace(q.Get("dataset_id")); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			writeValidationError(w, "Invalid dataset_id: must be a positive integer")
			return
		}
		id := uint(v)
		datasetID = &id
	}

	labels, err := h.Labels.Search(term, datasetID)
	if err != nil {
		writeServiceError(w, err, "Failed to search labels")
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

func (h *LabelHandler) GetLabel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	label, err := h.Labels.Get(id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve label")
		return
	}
	writeJSON(w, http.StatusOK, label)
}

func (h *LabelHandler) GetLabelStats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	stats, err := h.Labels.Stats(id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve label stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *LabelHandler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req LabelNamePayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	name, err := validateName("name", req.Name)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	label, err := h.Labels.Update(id, name)
	if err != nil {
		writeServiceError(w, err, "Failed to update label")
		return
	}
	writeJSON(w, http.StatusOK, label)
}

func (h *LabelHandler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.Labels.Delete(id); err != nil {
		writeServiceError(w, err, "Failed to delete label")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LabelHandler) ListLabelAnnotations(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	annotations, err := h.Annotations.ListByLabel(id)
	if err != nil {
		writeServiceError(w, err, "Failed to list annotations")
		return
	}
	writeJSON(w, http.StatusOK, annotations)
}
