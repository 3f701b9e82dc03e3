package handlers

import (
	"net/http"
	"strings"

	"github.com/camden-git/labelloopbackend/database"
	"github.com/camden-git/labelloopbackend/models"
	"github.com/camden-git/labelloopbackend/services"
)

type DatasetHandler struct {
	Datasets *services.DatasetService
	Images   *services.ImageService
}

func NewDatasetHandler(datasets *services.DatasetService, images *services.ImageService) *DatasetHandler {
	return &DatasetHandler{Datasets: datasets, Images: images}
}

type DatasetCreatePayload struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	LabelNames  []string `json:"label_names"`
}

type DatasetUpdatePayload struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type DatasetStatusPayload struct {
	Status models.DatasetStatus `json:"status"`
}

type LabelNamePayload struct {
	Name string `json:"name"`
}

// DatasetListResponse is the body of GET /datasets
type DatasetListResponse struct {
	Datasets interface{} `json:"datasets"`
	Total    int64       `json:"total"`
	Skip     int         `json:"skip"`
	Limit    int         `json:"limit"`
}

// CreateDataset handles POST /datasets
func (h *DatasetHandler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req DatasetCreatePayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	name, err := validateName("name", req.Name)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := validateDescription(req.Description); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	for _, labelName := range req.LabelNames {
		if len([]rune(strings.TrimSpace(labelName))) > maxNameLength {
			writeValidationError(w, "label names must be at most 255 characters")
			return
		}
	}

	dataset, err := h.Datasets.Create(name, req.Description, req.LabelNames)
	if err != nil {
		writeServiceError(w, err, "Failed to create dataset")
		return
	}
	writeJSON(w, http.StatusCreated, dataset)
}

// ListDatasets handles GET /datasets with paging, filters and sorting
func (h *DatasetHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paging(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	q := r.URL.Query()
	status := strings.TrimSpace(q.Get("status"))
	if status != "" && !models.DatasetStatus(status).IsValid() {
		writeValidationError(w, "Invalid status: must be one of creating, ready, archived")
		return
	}

	query := database.DatasetListQuery{
		Skip:      skip,
		Limit:     limit,
		Search:    q.Get("search"),
		LabelName: q.Get("label_name"),
		Status:    status,
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	datasets, total, err := h.Datasets.List(query)
	if err != nil {
		writeServiceError(w, err, "Failed to list datasets")
		return
	}
	writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: datasets, Total: total, Skip: skip, Limit: limit})
}

// GetDataset handles GET /datasets/{id}
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	detail, err := h.Datasets.GetDetail(id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve dataset")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetDatasetWithImages handles GET /datasets/{id}/with-images
func (h *DatasetHandler) GetDatasetWithImages(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	dataset, err := h.Datasets.WithImages(id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve dataset images")
		return
	}
	writeJSON(w, http.StatusOK, dataset)
}

// GetDatasetStats handles GET /datasets/{id}/stats
func (h *DatasetHandler) GetDatasetStats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	stats, err := h.Datasets.Stats(id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve dataset stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UpdateDataset handles PUT /datasets/{id}
func (h *DatasetHandler) UpdateDataset(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req DatasetUpdatePayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.Name != nil {
		name, err := validateName("name", *req.Name)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		req.Name = &name
	}
	if err := validateDescription(req.Description); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	dataset, err := h.Datasets.Update(id, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err, "Failed to update dataset")
		return
	}
	writeJSON(w, http.StatusOK, dataset)
}

// ChangeDatasetStatus handles PATCH /datasets/{id}/status
func (h *DatasetHandler) ChangeDatasetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req DatasetStatusPayload
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if !req.Status.IsValid() {
		writeValidationError(w, "Invalid status: must be one of creating, ready, archived")
		return
	}

	dataset, err := h.Datasets.ChangeStatus(id, req.Status)
	if err != nil {
		writeServiceError(w, err, "Failed to change dataset status")
		return
	}
	writeJSON(w, http.StatusOK, dataset)
}

// DeleteDataset handles DELETE /datasets/{id}. Stored objects are removed
// first on a best-effort basis, then the rows go in one transaction.
func (h *DatasetHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if _, err := h.Datasets.Get(id); err != nil {
		writeServiceError(w, err, "Failed to delete dataset")
		return
	}
	if _, err := h.Images.DeleteAllForDataset(id); err != nil {
		writeServiceError(w, err, "Failed to delete dataset images")
		return
	}
	if err := h.Datasets.Delete(id); err != nil {
		writeServiceError(w, err, "Failed to delete dataset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDatasetLabels handles GET /datasets/{id}/labels
func (h *DatasetHandler) ListDatasetLabels(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	labels, err := h.Datasets.Labels(id)
	if err != nil {
		writeServiceError(w, err, "Failed to list labels")
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

// AddDatasetLabel handles POST /datasets/{id}/labels
func (h *DatasetHandler) AddDatasetLabel(w http.ResponseWriter, r *http.Request) {
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

	label, err := h.Datasets.AddLabel(id, name)
	if err != nil {
		writeServiceError(w, err, "Failed to add label")
		return
	}
	writeJSON(w, http.StatusCreated, label)
}

// RemoveDatasetLabel handles DELETE /datasets/{id}/labels/{label_id}
func (h *DatasetHandler) RemoveDatasetLabel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	labelID, err := idParam(r, "label_id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := h.Datasets.RemoveLabel(id, labelID); err != nil {
		writeServiceError(w, err, "Failed to remove label")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
