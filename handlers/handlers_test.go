package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/labelloopbackend/config"
	"github.com/camden-git/labelloopbackend/database"
	"github.com/camden-git/labelloopbackend/metrics"
	"github.com/camden-git/labelloopbackend/repository"
	"github.com/camden-git/labelloopbackend/services"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string]bool
}

func (m *memoryStore) PresignUpload(key, contentType string, ttl time.Duration) (string, bool) {
	return "http://storage.test/put/" + key, true
}

func (m *memoryStore) PresignDownload(key string, ttl time.Duration) (string, bool) {
	return "http://storage.test/get/" + key, true
}

func (m *memoryStore) Exists(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key]
}

func (m *memoryStore) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return true
}

func (m *memoryStore) TestConnection() (bool, string, float64) { return true, "S3 connection successful", 1 }
func (m *memoryStore) IsConfigured() bool                       { return true }

func (m *memoryStore) put(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = true
}

type testServer struct {
	handler http.Handler
	store   *memoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(config.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrateModels(db))

	m, err := metrics.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	datasetRepo := repository.NewDatasetRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	imageRepo := repository.NewImageRepository(db)
	annotationRepo := repository.NewAnnotationRepository(db)
	store := &memoryStore{objects: make(map[string]bool)}

	router := NewRouter(RouterDeps{
		AppName:        "LabelLoop API",
		AllowedOrigins: []string{"http://localhost:5173"},
		Datasets:       services.NewDatasetService(datasetRepo, labelRepo, imageRepo),
		Labels:         services.NewLabelService(labelRepo, datasetRepo),
		Images:         services.NewImageService(imageRepo, datasetRepo, store, m),
		Annotations:    services.NewAnnotationService(annotationRepo, imageRepo, labelRepo),
		Health:         services.NewHealthService(db, store, false),
		Metrics:        m,
	})
	return &testServer{handler: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type idBody struct {
	ID uint `json:"id"`
}

func (s *testServer) createDataset(t *testing.T, name string, labels ...string) uint {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/datasets", map[string]interface{}{"name": name, "label_names": labels})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body idBody
	decode(t, rec, &body)
	return body.ID
}

func TestDatasetCreateDuplicateAndSearch(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/datasets", map[string]interface{}{"name": "cats-v1", "description": "house cats"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	decode(t, rec, &created)
	assert.Equal(t, "cats-v1", created.Name)
	assert.Equal(t, "creating", created.Status)

	rec = s.do(t, http.MethodPost, "/datasets", map[string]interface{}{"name": "cats-v1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var apiErr APIErrorResponse
	decode(t, rec, &apiErr)
	assert.Equal(t, "Dataset with name 'cats-v1' already exists", apiErr.Detail)
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, CodeConflict, apiErr.Errors[0].Code)
	assert.Equal(t, "400", apiErr.Errors[0].Status)

	rec = s.do(t, http.MethodGet, "/datasets/?search=cats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Datasets []struct {
			ID         uint  `json:"id"`
			ImageCount int64 `json:"image_count"`
		} `json:"datasets"`
		Total int64 `json:"total"`
		Skip  int   `json:"skip"`
		Limit int   `json:"limit"`
	}
	decode(t, rec, &list)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 100, list.Limit)
	require.Len(t, list.Datasets, 1)
	assert.Equal(t, created.ID, list.Datasets[0].ID)
}

func TestDatasetValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"empty name", http.MethodPost, "/datasets", map[string]interface{}{"name": "  "}},
		{"unknown field", http.MethodPost, "/datasets", map[string]interface{}{"name": "x", "owner": "me"}},
		{"limit too large", http.MethodGet, "/datasets?limit=1001", nil},
		{"negative skip", http.MethodGet, "/datasets?skip=-1", nil},
		{"bad status filter", http.MethodGet, "/datasets?status=deleted", nil},
		{"non numeric id", http.MethodGet, "/datasets/abc", nil},
		{"bad status body", http.MethodPatch, "/datasets/1/status", map[string]interface{}{"status": "done"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestDatasetLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := s.createDataset(t, "flowers", "rose", "tulip")

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/datasets/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		LabelCount int64 `json:"label_count"`
	}
	decode(t, rec, &detail)
	assert.EqualValues(t, 2, detail.LabelCount)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/datasets/%d", id), map[string]interface{}{"description": "garden"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/datasets/%d/status", id), map[string]interface{}{"status": "ready"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/datasets/%d/stats", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		DatasetID uint   `json:"dataset_id"`
		Status    string `json:"status"`
	}
	decode(t, rec, &stats)
	assert.Equal(t, id, stats.DatasetID)
	assert.Equal(t, "ready", stats.Status)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/labels", id), map[string]interface{}{"name": "rose"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/labels", id), map[string]interface{}{"name": "lily"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var lily idBody
	decode(t, rec, &lily)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/datasets/%d/labels/%d", id, lily.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/datasets/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/datasets/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/datasets/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.createDataset(t, "uploads", "cat")

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/images/prepare-upload", id), map[string]interface{}{
		"files": []map[string]interface{}{
			{"filename": "a cat.jpg", "file_size": 1000, "mime_type": "image/jpeg"},
			{"filename": "b.png", "file_size": 2000, "mime_type": "image/png"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var prepared struct {
		Uploads []services.PreparedUpload `json:"uploads"`
	}
	decode(t, rec, &prepared)
	require.Len(t, prepared.Uploads, 2)
	assert.Equal(t, 3600, prepared.Uploads[0].ExpiresIn)

	s.store.put(prepared.Uploads[0].S3Key)
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/images/confirm-upload", id), map[string]interface{}{
		"image_ids": []uint{prepared.Uploads[0].ImageID, prepared.Uploads[1].ImageID},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed struct {
		UpdatedCount   int `json:"updated_count"`
		TotalRequested int `json:"total_requested"`
	}
	decode(t, rec, &confirmed)
	assert.Equal(t, 1, confirmed.UpdatedCount)
	assert.Equal(t, 2, confirmed.TotalRequested)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/datasets/%d/images/with-urls?expires_in=120", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var withURLs struct {
		Total int64 `json:"total"`
		Items []struct {
			ID           uint    `json:"id"`
			Status       string  `json:"status"`
			DownloadURL  *string `json:"download_url"`
			URLExpiresIn *int    `json:"url_expires_in"`
		} `json:"items"`
	}
	decode(t, rec, &withURLs)
	assert.EqualValues(t, 2, withURLs.Total)
	require.Len(t, withURLs.Items, 2)
	assert.Equal(t, "uploaded", withURLs.Items[0].Status)
	require.NotNil(t, withURLs.Items[0].DownloadURL)
	assert.Equal(t, 120, *withURLs.Items[0].URLExpiresIn)
	assert.Equal(t, "error", withURLs.Items[1].Status)
	assert.Nil(t, withURLs.Items[1].DownloadURL)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/datasets/%d/images/with-urls?expires_in=30", id), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/images/%d/download-url", prepared.Uploads[0].ImageID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/images/%d/download-url", prepared.Uploads[1].ImageID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/images/%d", prepared.Uploads[0].ImageID), map[string]interface{}{"width": 640, "height": 480})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/images/%d", prepared.Uploads[0].ImageID), map[string]interface{}{"width": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/images/%d", prepared.Uploads[1].ImageID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/datasets/%d/images", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bulk services.BulkDeleteResult
	decode(t, rec, &bulk)
	assert.EqualValues(t, 1, bulk.DeletedCount)
	assert.Equal(t, 1, bulk.S3Deleted)
}

func TestPrepareUploadValidation(t *testing.T) {
	s := newTestServer(t)
	id := s.createDataset(t, "validation")

	bad := []map[string]interface{}{
		{"filename": "a.jpg", "file_size": 0, "mime_type": "image/jpeg"},
		{"filename": "", "file_size": 1, "mime_type": "image/jpeg"},
		{"filename": "a.pdf", "file_size": 1, "mime_type": "application/pdf"},
		{"filename": "notes.txt", "file_size": 1, "mime_type": "image/jpeg"},
		{"filename": "photo", "file_size": 1, "mime_type": "image/png"},
	}
	for _, f := range bad {
		rec := s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/images/prepare-upload", id), map[string]interface{}{"files": []interface{}{f}})
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodPost, "/datasets/999/images/prepare-upload", map[string]interface{}{
		"files": []map[string]interface{}{{"filename": "a.jpg", "file_size": 1, "mime_type": "image/jpeg"}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLabelAndAnnotationRoutes(t *testing.T) {
	s := newTestServer(t)
	id := s.createDataset(t, "animals")
	otherID := s.createDataset(t, "other", "bird")

	rec := s.do(t, http.MethodPost, "/labels", map[string]interface{}{"name": "cat", "dataset_id": id})
	require.Equal(t, http.StatusCreated, rec.Code)
	var cat idBody
	decode(t, rec, &cat)

	rec = s.do(t, http.MethodPost, "/labels", map[string]interface{}{"name": "cat", "dataset_id": id})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/labels/search?q=CA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []idBody
	decode(t, rec, &found)
	require.Len(t, found, 1)
	assert.Equal(t, cat.ID, found[0].ID)

	rec = s.do(t, http.MethodGet, "/labels/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/labels/dataset/%d", otherID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var birds []idBody
	decode(t, rec, &birds)
	require.Len(t, birds, 1)

	rec = s.do(t, http.MethodGet, "/labels?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var labelList struct {
		Total int64    `json:"total"`
		Items []idBody `json:"items"`
	}
	decode(t, rec, &labelList)
	assert.EqualValues(t, 2, labelList.Total)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/images/prepare-upload", id), map[string]interface{}{
		"files": []map[string]interface{}{{"filename": "c.jpg", "file_size": 1, "mime_type": "image/jpeg"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var prepared struct {
		Uploads []services.PreparedUpload `json:"uploads"`
	}
	decode(t, rec, &prepared)
	imageID := prepared.Uploads[0].ImageID

	rec = s.do(t, http.MethodPost, "/annotations", map[string]interface{}{"image_id": imageID, "label_id": cat.ID, "bbox_xmin": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/annotations", map[string]interface{}{"image_id": imageID, "label_id": birds[0].ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/annotations", map[string]interface{}{"image_id": imageID, "label_id": cat.ID, "bbox_xmin": 1, "bbox_ymin": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ann idBody
	decode(t, rec, &ann)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/annotations/%d", ann.ID), map[string]interface{}{"bbox_xmax": 50})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/annotations/%d", ann.ID), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/images/%d/annotations", imageID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var anns []idBody
	decode(t, rec, &anns)
	assert.Len(t, anns, 1)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/labels/%d/stats", cat.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		AnnotationCount int64  `json:"annotation_count"`
		DatasetName     string `json:"dataset_name"`
	}
	decode(t, rec, &stats)
	assert.EqualValues(t, 1, stats.AnnotationCount)
	assert.Equal(t, "animals", stats.DatasetName)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/labels/%d", cat.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/annotations/%d", ann.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthWelcomeAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LabelLoop API - Welcome!")

	rec = s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health services.Health
	decode(t, rec, &health)
	assert.Equal(t, services.HealthOK, health.Status)
	assert.Equal(t, services.HealthOK, health.Components["db"].Status)

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "labelloop_http_requests_total")
}

func TestRequestsCarryNoServerDeadline(t *testing.T) {
	s := newTestServer(t)
	mux, ok := s.handler.(*chi.Mux)
	require.True(t, ok)

	var hasDeadline bool
	mux.Get("/deadline", func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusNoContent)
	})

	rec := s.do(t, http.MethodGet, "/deadline", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, hasDeadline)
}
