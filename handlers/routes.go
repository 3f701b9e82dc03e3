package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/camden-git/labelloopbackend/metrics"
	"github.com/camden-git/labelloopbackend/services"
)

// RouterDeps is everything the HTTP layer needs
type RouterDeps struct {
	AppName        string
	AllowedOrigins []string
	Datasets       *services.DatasetService
	Labels         *services.LabelService
	Images         *services.ImageService
	Annotations    *services.AnnotationService
	Health         *services.HealthService
	Metrics        *metrics.Metrics // optional
}

// NewRouter builds the chi router with middleware and every API route
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)
	r.Use(middleware.StripSlashes)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	datasetHandler := NewDatasetHandler(deps.Datasets, deps.Images)
	labelHandler := NewLabelHandler(deps.Labels, deps.Annotations)
	imageHandler := NewImageHandler(deps.Images, deps.Annotations)
	annotationHandler := NewAnnotationHandler(deps.Annotations)
	healthHandler := &HealthHandler{Health: deps.Health, AppName: deps.AppName}

	r.Get("/", healthHandler.Welcome)
	r.Get("/health", healthHandler.Check)

	r.Route("/datasets", func(r chi.Router) {
		r.Post("/", datasetHandler.CreateDataset)
		r.Get("/", datasetHandler.ListDatasets)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", datasetHandler.GetDataset)
			r.Put("/", datasetHandler.UpdateDataset)
			r.Delete("/", datasetHandler.DeleteDataset)
			r.Patch("/status", datasetHandler.ChangeDatasetStatus)
			r.Get("/stats", datasetHandler.GetDatasetStats)
			r.Get("/with-images", datasetHandler.GetDatasetWithImages)
			r.Route("/labels", func(r chi.Router) {
				r.Get("/", datasetHandler.ListDatasetLabels)
				r.Post("/", datasetHandler.AddDatasetLabel)
				r.Delete("/{label_id}", datasetHandler.RemoveDatasetLabel)
			})
			r.Route("/images", func(r chi.Router) {
				r.Get("/", imageHandler.ListDatasetImages)
				r.Delete("/", imageHandler.DeleteDatasetImages)
				r.Get("/with-urls", imageHandler.ListDatasetImagesWithURLs)
				r.Post("/prepare-upload", imageHandler.PrepareUpload)
				r.Post("/confirm-upload", imageHandler.ConfirmUpload)
			})
		})
	})

	r.Route("/labels", func(r chi.Router) {
		r.Post("/", labelHandler.CreateLabel)
		r.Get("/", labelHandler.ListLabels)
		r.Get("/search", labelHandler.SearchLabels)
		r.Get("/dataset/{id}", labelHandler.ListLabelsByDataset)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", labelHandler.GetLabel)
			r.Put("/", labelHandler.UpdateLabel)
			r.Delete("/", labelHandler.DeleteLabel)
			r.Get("/stats", labelHandler.GetLabelStats)
			r.Get("/annotations", labelHandler.ListLabelAnnotations)
		})
	})

	r.Route("/images/{id}", func(r chi.Router) {
		r.Get("/", imageHandler.GetImage)
		r.Patch("/", imageHandler.UpdateImage)
		r.Delete("/", imageHandler.DeleteImage)
		r.Get("/download-url", imageHandler.GetDownloadURL)
		r.Get("/annotations", imageHandler.ListImageAnnotations)
	})

	r.Route("/annotations", func(r chi.Router) {
		r.Post("/", annotationHandler.CreateAnnotation)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", annotationHandler.GetAnnotation)
			r.Put("/", annotationHandler.UpdateAnnotation)
			r.Delete("/", annotationHandler.DeleteAnnotation)
		})
	})

	return r
}
